package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netspeak/netspeak-go/internal/cache"
	"github.com/netspeak/netspeak-go/internal/invindex"
	"github.com/netspeak/netspeak-go/internal/normalizer"
	"github.com/netspeak/netspeak-go/internal/phrasecorpus"
	"github.com/netspeak/netspeak-go/internal/phrasedict"
	"github.com/netspeak/netspeak-go/internal/proxy"
	"github.com/netspeak/netspeak-go/internal/retrieval"
	"github.com/netspeak/netspeak-go/pkg/phrase"
	"github.com/netspeak/netspeak-go/pkg/query"
	"github.com/netspeak/netspeak-go/pkg/value"
)

// fakeParser turns a space-joined pattern into a literal CONCAT of WORD /
// QMARK terminals, mirroring the tiny grammar spec.md's end-to-end
// scenarios use ("?" is QMARK, anything else is a literal word).
type fakeParser struct{}

func (fakeParser) Parse(q string) (*query.Node, error) {
	var words []string
	start := 0
	for i := 0; i <= len(q); i++ {
		if i == len(q) || q[i] == ' ' {
			if i > start {
				words = append(words, q[start:i])
			}
			start = i + 1
		}
	}
	children := make([]*query.Node, len(words))
	for i, w := range words {
		if w == "?" {
			children[i] = query.NewQMark(i)
		} else {
			children[i] = query.NewWord(w, i)
		}
	}
	return query.NewConcat(0, children...), nil
}

func writePostlistFile(t *testing.T, dir, name string, blocks map[string][]value.Uint32Pair) string {
	t.Helper()
	raw := make(map[string][]byte, len(blocks))
	order := make([]string, 0, len(blocks))
	for k, entries := range blocks {
		buf := make([]byte, len(entries)*value.Uint32PairSize)
		for i, e := range entries {
			e.Encode(buf[i*value.Uint32PairSize:])
		}
		raw[k] = buf
		order = append(order, k)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, invindex.EncodeBlockFile(raw, order), 0o644))
	return path
}

func writeMetaFile(t *testing.T, dir, name string, blocks map[string][]value.Uint64Uint32Pair) string {
	t.Helper()
	raw := make(map[string][]byte, len(blocks))
	order := make([]string, 0, len(blocks))
	for k, cps := range blocks {
		buf := make([]byte, len(cps)*value.Uint64Uint32PairSize)
		for i, cp := range cps {
			cp.Encode(buf[i*value.Uint64Uint32PairSize:])
		}
		raw[k] = buf
		order = append(order, k)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, invindex.EncodeBlockFile(raw, order), 0o644))
	return path
}

func writeDict(t *testing.T, dir string, entries []phrasedict.Entry) string {
	t.Helper()
	data, err := phrasedict.Encode(entries)
	require.NoError(t, err)
	path := filepath.Join(dir, "phrase-dictionary")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeBin(t *testing.T, dir string, length uint32, rows []value.PhraseRow) {
	t.Helper()
	rowSize := value.RowSize(int(length))
	buf := make([]byte, rowSize*len(rows))
	for i, r := range rows {
		value.EncodeRow(buf[i*rowSize:(i+1)*rowSize], r)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, strconv.Itoa(int(length))), buf, 0o644))
}

func setup(t *testing.T) (*Orchestrator, func()) {
	dir := t.TempDir()

	keyHello := invindex.Key(2, 0, "hello")
	postlistPath := writePostlistFile(t, dir, "postlist-index", map[string][]value.Uint32Pair{
		keyHello: {{E1: 100, E2: 3}, {E1: 42, E2: 7}, {E1: 10, E2: 9}},
	})
	metaPath := writeMetaFile(t, dir, "postlist-meta", map[string][]value.Uint64Uint32Pair{
		keyHello: {{E1: 0, E2: 100}},
	})
	dictPath := writeDict(t, dir, []phrasedict.Entry{
		{Word: "hello world", Frequency: 42, WordID: 7},
	})
	// Local-ids 3, 7, 9 are the postlist's hits for "hello" at position 0
	// (frequencies 100, 42, 10); id 7 doubles as the "hello world" phrase
	// the pure-word dictionary entry above points at.
	writeBin(t, dir, 2, []value.PhraseRow{
		{WordIDs: []uint32{0, 4}, Frequency: 1},  // hello a
		{WordIDs: []uint32{0, 5}, Frequency: 2},  // hello b
		{WordIDs: []uint32{0, 6}, Frequency: 3},  // hello c
		{WordIDs: []uint32{0, 2}, Frequency: 100}, // hello there
		{WordIDs: []uint32{0, 7}, Frequency: 5},  // hello d
		{WordIDs: []uint32{1, 0}, Frequency: 6},  // world hello
		{WordIDs: []uint32{1, 2}, Frequency: 7},  // world there
		{WordIDs: []uint32{0, 1}, Frequency: 42}, // hello world
		{WordIDs: []uint32{1, 3}, Frequency: 8},  // world friend
		{WordIDs: []uint32{0, 3}, Frequency: 10}, // hello friend
	})
	vocabData := phrasecorpus.EncodeVocabulary([]string{"hello", "world", "there", "friend", "a", "b", "c", "d"})

	pl, err := invindex.OpenPostlistIndex(postlistPath)
	require.NoError(t, err)
	meta, err := invindex.OpenPostlistMetaIndex(metaPath)
	require.NoError(t, err)
	dict, err := phrasedict.Open(dictPath)
	require.NoError(t, err)
	corpus, err := phrasecorpus.Open(vocabData, func(l uint32) string {
		return filepath.Join(dir, strconv.Itoa(int(l)))
	})
	require.NoError(t, err)

	strat := retrieval.New(pl, meta, dict)
	norm := normalizer.New(nil, nil)
	resultCache := cache.New[retrieval.RawRefResult](16)

	o := New(
		proxy.Corpus{Key: "en", Name: "English", Language: "en"},
		fakeParser{}, norm, strat, corpus, dict, resultCache,
		Limits{MaxNormQueries: 100, PruningLow: 100, PruningHigh: 100},
	)

	cleanup := func() {
		pl.Close()
		meta.Close()
		dict.Close()
		corpus.Close()
	}
	return o, cleanup
}

func TestSearchPureWordLookup(t *testing.T) {
	o, cleanup := setup(t)
	defer cleanup()

	result, serr := o.Search(context.Background(), proxy.SearchRequest{Corpus: "en", Query: "hello world", MaxPhrases: 10})
	require.Nil(t, serr)
	require.Len(t, result.Phrases, 1)
	assert.Equal(t, []phrase.Word{"hello", "world"}, result.Phrases[0].Words)
	assert.Equal(t, uint64(42), result.Phrases[0].Frequency)
}

func TestSearchWildcardUsesRetrievalAndCache(t *testing.T) {
	o, cleanup := setup(t)
	defer cleanup()

	result, serr := o.Search(context.Background(), proxy.SearchRequest{Corpus: "en", Query: "hello ?", MaxPhrases: 2})
	require.Nil(t, serr)
	require.Len(t, result.Phrases, 2)
	assert.Equal(t, uint64(100), result.Phrases[0].Frequency)
	assert.Equal(t, uint64(42), result.Phrases[1].Frequency)

	_, cached := o.ResultCache.Find(fingerprint(normalizer.NormQuery{{Word: "hello"}, {IsQMark: true}}, retrieval.Options{
		MaxPhraseCount: 2, PruningLow: 100, PruningHigh: 100,
	}))
	assert.True(t, cached)
}

func TestSearchUnknownCorpus(t *testing.T) {
	o, cleanup := setup(t)
	defer cleanup()

	_, serr := o.Search(context.Background(), proxy.SearchRequest{Corpus: "de", Query: "hello world"})
	require.NotNil(t, serr)
}

func TestSearchUnknownWordIsCollated(t *testing.T) {
	o, cleanup := setup(t)
	defer cleanup()

	result, serr := o.Search(context.Background(), proxy.SearchRequest{Corpus: "en", Query: "zzznotaword ?", MaxPhrases: 10})
	require.Nil(t, serr)
	assert.Empty(t, result.Phrases)
	assert.Equal(t, []string{"zzznotaword"}, result.UnknownWords)
}
