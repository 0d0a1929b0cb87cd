package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsFromHome(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "netspeak.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
path.to.home: /var/netspeak/en
cache.capacity: 1000
`), 0o644))

	c, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "/var/netspeak/en/phrase-corpus", c.PathToPhraseCorpus)
	assert.Equal(t, "/var/netspeak/en/phrase-dictionary", c.PathToPhraseDictionary)
	assert.Equal(t, "/var/netspeak/en/postlist-index", c.PathToPostlistIndex)
	assert.Equal(t, 1000, c.CacheCapacity)
}

func TestLoadExplicitPathsOverrideDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "netspeak.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
path.to.home: /var/netspeak/en
path.to.phrase.corpus: /custom/corpus
`), 0o644))

	c, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "/custom/corpus", c.PathToPhraseCorpus)
	assert.Equal(t, "/var/netspeak/en/phrase-dictionary", c.PathToPhraseDictionary)
}

func TestLoadWithoutHomeLeavesPathsEmpty(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "netspeak.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`cache.capacity: 5`), 0o644))

	c, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Empty(t, c.PathToPhraseCorpus)
}
