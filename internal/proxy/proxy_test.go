package proxy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netspeak/netspeak-go/internal/netspeakerr"
)

type fakeBackend struct {
	name    string
	corpora []Corpus
	calls   int
}

func (f *fakeBackend) GetCorpora(ctx context.Context) ([]Corpus, error) {
	return f.corpora, nil
}

func (f *fakeBackend) Search(ctx context.Context, req SearchRequest) (*SearchResult, *SearchError) {
	f.calls++
	return &SearchResult{Phrases: nil}, nil
}

func TestBitMixDeterministic(t *testing.T) {
	a := bitMix(fnv1a64("hello world"))
	b := bitMix(fnv1a64("hello world"))
	assert.Equal(t, a, b)
}

func TestProxyDispatchSingleBackend(t *testing.T) {
	b := &fakeBackend{corpora: []Corpus{{Key: "en", Name: "English", Language: "en"}}}
	p, err := New(context.Background(), []Backend{b})
	require.NoError(t, err)

	_, serr := p.Search(context.Background(), SearchRequest{Corpus: "en", Query: "hello"})
	require.Nil(t, serr)
	assert.Equal(t, 1, b.calls)
}

func TestProxyUnknownCorpus(t *testing.T) {
	b := &fakeBackend{corpora: []Corpus{{Key: "en", Name: "English", Language: "en"}}}
	p, err := New(context.Background(), []Backend{b})
	require.NoError(t, err)

	_, serr := p.Search(context.Background(), SearchRequest{Corpus: "de"})
	require.NotNil(t, serr)
	assert.Equal(t, netspeakerr.InvalidCorpus, serr.Kind)
}

func TestProxyIncompatibleCorporaRefusesInit(t *testing.T) {
	a := &fakeBackend{corpora: []Corpus{{Key: "en", Name: "English", Language: "en"}}}
	b := &fakeBackend{corpora: []Corpus{{Key: "en", Name: "English", Language: "de"}}}
	_, err := New(context.Background(), []Backend{a, b})
	require.Error(t, err)
	assert.True(t, netspeakerr.Is(err, netspeakerr.IncompatibleCorpora))
}

func TestProxyRoutingStability(t *testing.T) {
	a := &fakeBackend{corpora: []Corpus{{Key: "en", Name: "English", Language: "en"}}}
	b := &fakeBackend{corpora: []Corpus{{Key: "en", Name: "English", Language: "en"}}}
	p, err := New(context.Background(), []Backend{a, b})
	require.NoError(t, err)

	p.Search(context.Background(), SearchRequest{Corpus: "en", Query: "stable query"})
	firstA := a.calls

	p.Search(context.Background(), SearchRequest{Corpus: "en", Query: "stable query"})
	// Same backend chosen both times.
	if firstA == 1 {
		assert.Equal(t, 2, a.calls)
		assert.Equal(t, 0, b.calls)
	} else {
		assert.Equal(t, 2, b.calls)
		assert.Equal(t, 0, a.calls)
	}
}

func TestProxyGetCorpora(t *testing.T) {
	b := &fakeBackend{corpora: []Corpus{{Key: "en", Name: "English", Language: "en"}}}
	p, err := New(context.Background(), []Backend{b})
	require.NoError(t, err)
	assert.Len(t, p.GetCorpora(), 1)
}
