// Package orchestrator implements the search orchestrator (C10): the
// per-request driver that turns a request into (normalizer options,
// search options), invokes C7, fans out across normalized queries through
// the C9 cache and C8 retrieval strategy, materializes phrases via C2, and
// merges everything into one response (spec.md §4.4).
//
// Orchestrator implements proxy.Backend, so a corpus served by one process
// is wired into internal/proxy the same way any other backend stub would
// be.
package orchestrator

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/netspeak/netspeak-go/internal/cache"
	"github.com/netspeak/netspeak-go/internal/netspeakerr"
	"github.com/netspeak/netspeak-go/internal/normalizer"
	"github.com/netspeak/netspeak-go/internal/phrasecorpus"
	"github.com/netspeak/netspeak-go/internal/phrasedict"
	"github.com/netspeak/netspeak-go/internal/proxy"
	"github.com/netspeak/netspeak-go/internal/retrieval"
	"github.com/netspeak/netspeak-go/pkg/phrase"
	"github.com/netspeak/netspeak-go/pkg/query"
)

// Limits holds the per-orchestrator bounds that proxy.SearchRequest does
// not carry: the normalizer budgets and the retrieval pruning budgets.
type Limits struct {
	MaxNormQueries  int
	MaxRegexMatches int
	MaxRegexTime    time.Duration
	PruningLow      int
	PruningHigh     int
}

// Parser produces the pattern AST from request query text. It is the
// external, out-of-scope query parser of spec.md §1; the orchestrator only
// consumes its output.
type Parser interface {
	Parse(query string) (*query.Node, error)
}

// Orchestrator drives one corpus's pipeline end to end.
type Orchestrator struct {
	Corpus      proxy.Corpus
	Parser      Parser
	Normalizer  *normalizer.Normalizer
	Strategy    *retrieval.Strategy
	CorpusData  *phrasecorpus.Corpus
	Dict        *phrasedict.Dictionary
	ResultCache *cache.Cache[retrieval.RawRefResult]
	Limits      Limits
}

// New builds an Orchestrator for one corpus.
func New(corpus proxy.Corpus, parser Parser, norm *normalizer.Normalizer, strat *retrieval.Strategy,
	corpusData *phrasecorpus.Corpus, dict *phrasedict.Dictionary, resultCache *cache.Cache[retrieval.RawRefResult],
	limits Limits) *Orchestrator {
	return &Orchestrator{
		Corpus: corpus, Parser: parser, Normalizer: norm, Strategy: strat,
		CorpusData: corpusData, Dict: dict, ResultCache: resultCache, Limits: limits,
	}
}

// GetCorpora implements proxy.Backend.
func (o *Orchestrator) GetCorpora(ctx context.Context) ([]proxy.Corpus, error) {
	return []proxy.Corpus{o.Corpus}, nil
}

// Search implements proxy.Backend: spec.md §4.4 steps 1-7.
func (o *Orchestrator) Search(ctx context.Context, req proxy.SearchRequest) (*proxy.SearchResult, *proxy.SearchError) {
	if req.Corpus != o.Corpus.Key {
		return nil, &proxy.SearchError{Kind: netspeakerr.InvalidCorpus, Message: "orchestrator serves corpus " + o.Corpus.Key}
	}

	root, err := o.Parser.Parse(req.Query)
	if err != nil {
		return nil, &proxy.SearchError{Kind: netspeakerr.InvalidPattern, Message: err.Error()}
	}

	normOpts := normalizer.Options{
		MaxNormQueries:  o.Limits.MaxNormQueries,
		MaxRegexMatches: o.Limits.MaxRegexMatches,
		MaxRegexTime:    o.Limits.MaxRegexTime,
	}
	normQueries, err := o.Normalizer.Normalize(root, normOpts)
	if err != nil {
		kind := netspeakerr.InvalidPattern
		if nerr, ok := err.(*netspeakerr.Error); ok {
			kind = nerr.Kind
		}
		return nil, &proxy.SearchError{Kind: kind, Message: err.Error()}
	}

	searchOpts := retrieval.Options{
		MaxPhraseCount:     req.MaxPhrases,
		MaxPhraseFrequency: uint32(req.MaxPhraseFreq),
		PhraseLengthMin:    uint32(req.PhraseLengthMin),
		PhraseLengthMax:    uint32(req.PhraseLengthMax),
		PruningLow:         o.Limits.PruningLow,
		PruningHigh:        o.Limits.PruningHigh,
	}

	var (
		allRefs []phrase.Ref
		unknown = make(map[string]struct{})
	)

	for _, nq := range normQueries {
		result, err := o.resolve(nq, searchOpts)
		if err != nil {
			return nil, &proxy.SearchError{Kind: netspeakerr.CorruptIndex, Message: err.Error()}
		}
		allRefs = append(allRefs, result.Refs...)
		for _, w := range result.UnknownWords {
			unknown[w] = struct{}{}
		}
	}

	sort.Slice(allRefs, func(i, j int) bool { return allRefs[i].Less(allRefs[j]) })
	allRefs = dedupRefs(allRefs)
	if req.MaxPhrases > 0 && len(allRefs) > req.MaxPhrases {
		allRefs = allRefs[:req.MaxPhrases]
	}

	phrases, err := o.CorpusData.Materialize(allRefs)
	if err != nil {
		return nil, &proxy.SearchError{Kind: netspeakerr.CorruptIndex, Message: err.Error()}
	}

	unknownWords := make([]string, 0, len(unknown))
	for w := range unknown {
		unknownWords = append(unknownWords, w)
	}
	sort.Strings(unknownWords)

	return &proxy.SearchResult{Phrases: phrases, UnknownWords: unknownWords}, nil
}

// resolve handles one normalized query: the pure-word shortcut of spec.md
// §4.4 step 3, or a cached/fresh C8 retrieval for wildcard-bearing ones.
func (o *Orchestrator) resolve(nq normalizer.NormQuery, opts retrieval.Options) (retrieval.RawRefResult, error) {
	if isPureWord(nq) {
		return o.resolvePureWord(nq, opts), nil
	}

	key := fingerprint(nq, opts)
	if cached, ok := o.ResultCache.Find(key); ok {
		return cached, nil
	}

	result, err := o.Strategy.Search(nq, opts)
	if err != nil {
		return retrieval.RawRefResult{}, err
	}
	o.ResultCache.Insert(key, result)
	return result, nil
}

// resolvePureWord looks the full phrase text up directly in the phrase
// dictionary, skipping C8 entirely (spec.md §4.4 step 3, §8 scenario 1 /
// property 8).
func (o *Orchestrator) resolvePureWord(nq normalizer.NormQuery, opts retrieval.Options) retrieval.RawRefResult {
	words := make([]string, len(nq))
	for i, u := range nq {
		words[i] = u.Word
	}
	text := strings.Join(words, " ")
	entry, ok := o.Dict.Lookup(text)
	if !ok {
		return retrieval.RawRefResult{UnknownWords: []string{text}}
	}
	if opts.MaxPhraseFrequency != 0 && entry.Frequency > uint64(opts.MaxPhraseFrequency) {
		return retrieval.RawRefResult{}
	}
	indexFreq := entry.Frequency
	if indexFreq > uint64(^uint32(0)) {
		indexFreq = uint64(^uint32(0))
	}
	ref := phrase.Ref{
		ID:             phrase.ID{Length: uint32(len(nq)), Local: entry.WordID},
		IndexFrequency: uint32(indexFreq),
	}
	return retrieval.RawRefResult{Refs: []phrase.Ref{ref}}
}

func isPureWord(nq normalizer.NormQuery) bool {
	for _, u := range nq {
		if u.IsQMark {
			return false
		}
	}
	return true
}

// fingerprint builds the C9 cache key of spec.md §4.5: normalized query
// text plus the salient search-option fields.
func fingerprint(nq normalizer.NormQuery, opts retrieval.Options) string {
	var sb strings.Builder
	for _, u := range nq {
		if u.IsQMark {
			sb.WriteString("\x00?")
		} else {
			sb.WriteString(u.Word)
		}
		sb.WriteByte('\x1f')
	}
	sb.WriteByte('\x02')
	sb.WriteString(strconv.Itoa(opts.MaxPhraseCount))
	sb.WriteByte('\x1f')
	sb.WriteString(strconv.FormatUint(uint64(opts.MaxPhraseFrequency), 10))
	sb.WriteByte('\x1f')
	sb.WriteString(strconv.FormatUint(uint64(opts.PhraseLengthMin), 10))
	sb.WriteByte('\x1f')
	sb.WriteString(strconv.FormatUint(uint64(opts.PhraseLengthMax), 10))
	sb.WriteByte('\x1f')
	sb.WriteString(strconv.Itoa(opts.PruningLow))
	sb.WriteByte('\x1f')
	sb.WriteString(strconv.Itoa(opts.PruningHigh))
	return sb.String()
}

func dedupRefs(refs []phrase.Ref) []phrase.Ref {
	out := refs[:0]
	var last phrase.ID
	first := true
	for _, r := range refs {
		if !first && r.ID == last {
			continue
		}
		out = append(out, r)
		last = r.ID
		first = false
	}
	return out
}
