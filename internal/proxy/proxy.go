// Package proxy implements the load-balancing proxy (C11): it fronts a
// static set of backend stubs, groups them by corpus, and routes each
// search consistently by a mix of the query hash, per spec.md §4.6.
package proxy

import (
	"context"
	"fmt"

	"github.com/netspeak/netspeak-go/internal/netspeakerr"
	"github.com/netspeak/netspeak-go/pkg/phrase"
)

// Corpus identifies a corpus served by one or more backends (spec.md §6
// "Corpus identity"): key is opaque and must be unique fleet-wide; name and
// language are advisory but must agree for equal keys behind one proxy.
type Corpus struct {
	Key      string
	Name     string
	Language string
}

func areCompatible(a, b Corpus) bool {
	return a.Name == b.Name && a.Language == b.Language
}

// SearchRequest is the wire-level search request of spec.md §6.
type SearchRequest struct {
	Corpus          string
	Query           string
	MaxPhrases      int
	MaxPhraseFreq   uint64
	PhraseLengthMin int
	PhraseLengthMax int
}

// SearchResult is a successful search response.
type SearchResult struct {
	Phrases      []phrase.Phrase
	UnknownWords []string
}

// SearchError is a typed error response (spec.md §6 "error(kind, message)").
type SearchError struct {
	Kind    netspeakerr.Kind
	Message string
}

func (e *SearchError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// Backend is the proxy's view of one downstream server: the two RPCs of
// spec.md §6.
type Backend interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, *SearchError)
	GetCorpora(ctx context.Context) ([]Corpus, error)
}

// Proxy routes Search calls to the backend serving the requested corpus,
// picking consistently among multiple backends via bitMix(hash(query)).
type Proxy struct {
	servicesByCorpus map[string][]Backend
	corpora          []Corpus
}

// New scans backends at startup, grouping them by corpus key. Two corpora
// sharing a key must agree on name and language, else initialization fails
// with IncompatibleCorpora (spec.md §4.6).
func New(ctx context.Context, backends []Backend) (*Proxy, error) {
	known := make(map[string]Corpus)
	services := make(map[string][]Backend)
	var corpora []Corpus

	for _, b := range backends {
		served, err := b.GetCorpora(ctx)
		if err != nil {
			return nil, fmt.Errorf("proxy: GetCorpora: %w", err)
		}
		for _, c := range served {
			if existing, ok := known[c.Key]; ok {
				if !areCompatible(existing, c) {
					return nil, netspeakerr.New(netspeakerr.IncompatibleCorpora,
						fmt.Sprintf("corpora with key %q disagree on name/language", c.Key))
				}
			} else {
				known[c.Key] = c
				corpora = append(corpora, c)
			}
			services[c.Key] = append(services[c.Key], b)
		}
	}
	return &Proxy{servicesByCorpus: services, corpora: corpora}, nil
}

// GetCorpora returns the union of known corpora.
func (p *Proxy) GetCorpora() []Corpus { return p.corpora }

// Search routes req to the backend serving req.Corpus.
func (p *Proxy) Search(ctx context.Context, req SearchRequest) (*SearchResult, *SearchError) {
	backends, ok := p.servicesByCorpus[req.Corpus]
	if !ok || len(backends) == 0 {
		return nil, &SearchError{Kind: netspeakerr.InvalidCorpus, Message: "unknown corpus: " + req.Corpus}
	}
	if len(backends) == 1 {
		return backends[0].Search(ctx, req)
	}
	idx := bitMix(fnv1a64(req.Query)) % uint64(len(backends))
	return backends[idx].Search(ctx, req)
}
