// Package config loads the configuration mapping of spec.md §6: a set of
// `path.to.*` keys plus `cache.capacity`, with missing paths derived from
// `path.to.home` and a fixed set of subdirectory names.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config mirrors the on-disk YAML mapping. Yaml tags use the dotted key
// names of spec.md §6 literally, since that's the wire format a human
// operator edits.
type Config struct {
	PathToHome             string `yaml:"path.to.home"`
	PathToPhraseIndex      string `yaml:"path.to.phrase.index"`
	PathToPhraseCorpus     string `yaml:"path.to.phrase.corpus"`
	PathToPhraseDictionary string `yaml:"path.to.phrase.dictionary"`
	PathToPostlistIndex    string `yaml:"path.to.postlist.index"`
	PathToHashDictionary   string `yaml:"path.to.hash.dictionary"`
	PathToRegexVocabulary  string `yaml:"path.to.regex.vocabulary"`
	CacheCapacity          int    `yaml:"cache.capacity"`
}

// Load reads and parses the YAML configuration file at path, then fills in
// any missing path.to.* keys by joining path.to.home with the fixed
// subdirectory names of spec.md §6.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.PathToHome == "" {
		return
	}
	defaults := []struct {
		field *string
		dir   string
	}{
		{&c.PathToPhraseIndex, "phrase-index"},
		{&c.PathToPhraseCorpus, "phrase-corpus"},
		{&c.PathToPhraseDictionary, "phrase-dictionary"},
		{&c.PathToPostlistIndex, "postlist-index"},
		{&c.PathToHashDictionary, "hash-dictionary"},
		{&c.PathToRegexVocabulary, "regex-vocabulary"},
	}
	for _, d := range defaults {
		if *d.field == "" {
			*d.field = filepath.Join(c.PathToHome, d.dir)
		}
	}
}
