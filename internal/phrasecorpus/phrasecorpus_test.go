package phrasecorpus

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netspeak/netspeak-go/pkg/phrase"
	"github.com/netspeak/netspeak-go/pkg/value"
)

func TestVocabularyRoundtrip(t *testing.T) {
	data := EncodeVocabulary([]string{"hello", "world", "foo"})
	v, err := DecodeVocabulary(data)
	require.NoError(t, err)
	require.Equal(t, 3, v.Len())

	w, ok := v.Word(1)
	require.True(t, ok)
	require.Equal(t, "world", w)

	id, ok := v.ID("foo")
	require.True(t, ok)
	require.Equal(t, uint32(2), id)

	_, ok = v.Word(99)
	require.False(t, ok)
}

func writeBinFile(t *testing.T, dir string, length uint32, rows []value.PhraseRow) string {
	t.Helper()
	rowSize := value.RowSize(int(length))
	buf := make([]byte, rowSize*len(rows))
	for i, r := range rows {
		value.EncodeRow(buf[i*rowSize:(i+1)*rowSize], r)
	}
	path := filepath.Join(dir, strconv.Itoa(int(length)))
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestMaterialize(t *testing.T) {
	dir := t.TempDir()
	vocabData := EncodeVocabulary([]string{"hello", "world"})
	writeBinFile(t, dir, 2, []value.PhraseRow{
		{WordIDs: []uint32{0, 1}, Frequency: 42},
	})

	c, err := Open(vocabData, func(l uint32) string {
		return filepath.Join(dir, strconv.Itoa(int(l)))
	})
	require.NoError(t, err)
	defer c.Close()

	refs := []phrase.Ref{{ID: phrase.ID{Length: 2, Local: 0}, IndexFrequency: 42}}
	phrases, err := c.Materialize(refs)
	require.NoError(t, err)
	require.Len(t, phrases, 1)
	require.Equal(t, []phrase.Word{"hello", "world"}, phrases[0].Words)
	require.Equal(t, uint64(42), phrases[0].Frequency)
}

func TestMaterializeMissingWordIsCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	vocabData := EncodeVocabulary([]string{"hello"})
	writeBinFile(t, dir, 2, []value.PhraseRow{
		{WordIDs: []uint32{0, 99}, Frequency: 1},
	})
	c, err := Open(vocabData, func(l uint32) string {
		return filepath.Join(dir, strconv.Itoa(int(l)))
	})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Materialize([]phrase.Ref{{ID: phrase.ID{Length: 2, Local: 0}}})
	require.Error(t, err)
}
