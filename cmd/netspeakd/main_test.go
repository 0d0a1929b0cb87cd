package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netspeak/netspeak-go/internal/config"
	"github.com/netspeak/netspeak-go/internal/invindex"
	"github.com/netspeak/netspeak-go/internal/phrasecorpus"
	"github.com/netspeak/netspeak-go/internal/phrasedict"
	"github.com/netspeak/netspeak-go/internal/proxy"
	"github.com/netspeak/netspeak-go/pkg/value"
)

func writeFixtureCorpus(t *testing.T, home string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "postlist-index"), 0o755))
	require.NoError(t, os.MkdirAll(home, 0o755))

	key := invindex.Key(1, 0, "hello")
	entries := []value.Uint32Pair{{E1: 10, E2: 0}}
	buf := make([]byte, len(entries)*value.Uint32PairSize)
	entries[0].Encode(buf)
	require.NoError(t, os.WriteFile(filepath.Join(home, "postlist-index", "postlist-index"),
		invindex.EncodeBlockFile(map[string][]byte{key: buf}, []string{key}), 0o644))

	cps := []value.Uint64Uint32Pair{{E1: 0, E2: 10}}
	cbuf := make([]byte, len(cps)*value.Uint64Uint32PairSize)
	cps[0].Encode(cbuf)
	require.NoError(t, os.WriteFile(filepath.Join(home, "postlist-index", "postlist-meta"),
		invindex.EncodeBlockFile(map[string][]byte{key: cbuf}, []string{key}), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(home, "phrase-corpus"), 0o755))
	vocab := phrasecorpus.EncodeVocabulary([]string{"hello"})
	require.NoError(t, os.WriteFile(filepath.Join(home, "phrase-corpus", "vocabulary"), vocab, 0o644))
	row := value.PhraseRow{WordIDs: []uint32{0}, Frequency: 10}
	rowSize := value.RowSize(1)
	rbuf := make([]byte, rowSize)
	value.EncodeRow(rbuf, row)
	require.NoError(t, os.WriteFile(filepath.Join(home, "phrase-corpus", "1"), rbuf, 0o644))

	data, err := phrasedict.Encode([]phrasedict.Entry{{Word: "hello", Frequency: 10, WordID: 0}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(home, "phrase-dictionary"), data, 0o644))
}

func TestBuildOrchestratorServesPureWordQuery(t *testing.T) {
	home := t.TempDir()
	writeFixtureCorpus(t, home)

	cfg := &config.Config{PathToHome: home}
	cfg.PathToPhraseIndex = filepath.Join(home, "postlist-index")
	cfg.PathToPhraseCorpus = filepath.Join(home, "phrase-corpus")
	cfg.PathToPhraseDictionary = filepath.Join(home, "phrase-dictionary")
	cfg.PathToPostlistIndex = filepath.Join(home, "postlist-index")

	orch, closeAll, err := buildOrchestrator(cfg, proxy.Corpus{Key: "en", Name: "English", Language: "en"})
	require.NoError(t, err)
	defer closeAll()

	p, err := proxy.New(context.Background(), []proxy.Backend{orch})
	require.NoError(t, err)

	result, serr := p.Search(context.Background(), proxy.SearchRequest{Corpus: "en", Query: "hello", MaxPhrases: 10})
	require.Nil(t, serr)
	require.Len(t, result.Phrases, 1)
	assert.Equal(t, uint64(10), result.Phrases[0].Frequency)
}

func TestPatternParserSplitsWordsAndWildcards(t *testing.T) {
	root, err := patternParser{}.Parse("hello ? world")
	require.NoError(t, err)
	assert.Len(t, root.Children, 3)
}

func TestReadWordListSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\n\nbeta\n"), 0o644))

	words, err := readWordList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, words)
}
