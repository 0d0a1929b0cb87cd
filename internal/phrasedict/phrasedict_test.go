package phrasedict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestDict(t *testing.T, entries []Entry) string {
	t.Helper()
	data, err := Encode(entries)
	require.NoError(t, err)
	dir := t.TempDir()
	path := filepath.Join(dir, "phrase-dictionary")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpenAndLookup(t *testing.T) {
	path := writeTestDict(t, []Entry{
		{Word: "hello", Frequency: 1000, WordID: 1},
		{Word: "the", Frequency: 2_000_000_000, WordID: 2},
	})
	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	e, ok := d.Lookup("hello")
	require.True(t, ok)
	require.Equal(t, uint64(1000), e.Frequency)
	require.False(t, e.IsStopword())

	e2, ok := d.Lookup("the")
	require.True(t, ok)
	require.True(t, e2.IsStopword())

	_, ok = d.Lookup("missing")
	require.False(t, ok)

	require.Equal(t, 2, d.Len())
}

func TestOpenEmptyDictionary(t *testing.T) {
	path := writeTestDict(t, nil)
	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()
	require.Equal(t, 0, d.Len())
}
