// Package retrieval implements the "postlist-index with jump-in
// frequency" retrieval strategy (C8, spec.md §4.2) — the hottest and most
// delicate component of the pipeline. Given one normalized query it
// intersects per-unit postlists from the inverted phrase index, using the
// postlist-meta skip index and a jump-in frequency bound to avoid scanning
// whole postlists.
package retrieval

import (
	"sort"
	"strings"

	"github.com/netspeak/netspeak-go/internal/invindex"
	"github.com/netspeak/netspeak-go/internal/normalizer"
	"github.com/netspeak/netspeak-go/internal/phrasedict"
	"github.com/netspeak/netspeak-go/pkg/phrase"
	"github.com/netspeak/netspeak-go/pkg/value"
)

// Options carries the search-side knobs named in spec.md §4.2/§4.5.
type Options struct {
	MaxPhraseCount     int
	MaxPhraseFrequency uint32
	PhraseLengthMin    uint32
	PhraseLengthMax    uint32
	PruningLow         int // content words
	PruningHigh        int // stopwords
}

// UnitStats is a per-unit diagnostic, reported but not part of the
// contract (spec.md §4.2 "Stats").
type UnitStats struct {
	Key             string
	EntriesEvaluated int
	MinFrequency    uint32
	MaxFrequency    uint32
	Unknown         bool
}

// RawRefResult is the output of one retrieval call: a descending-
// frequency, ascending-phrase-id ordered list of references, plus any
// words that had no postlist at all.
type RawRefResult struct {
	Refs         []phrase.Ref
	UnknownWords []string
	Stats        []UnitStats
}

// Strategy is the jump-in-frequency retrieval strategy over a fixed set
// of indexes.
type Strategy struct {
	Postlists *invindex.PostlistIndex
	Metas     *invindex.PostlistMetaIndex
	Dict      *phrasedict.Dictionary
}

// New builds a Strategy over the given indexes.
func New(postlists *invindex.PostlistIndex, metas *invindex.PostlistMetaIndex, dict *phrasedict.Dictionary) *Strategy {
	return &Strategy{Postlists: postlists, Metas: metas, Dict: dict}
}

type unit struct {
	pos     int
	word    string
	isQMark bool
	key     string
}

// Search resolves q against the indexes, implementing spec.md §4.2 end to
// end: jump-in frequency, ascending-postlist-length ordering, seed/filter
// intersection, and final re-sort.
func (s *Strategy) Search(q normalizer.NormQuery, opt Options) (RawRefResult, error) {
	length := uint32(len(q))
	if opt.PhraseLengthMin != 0 && length < opt.PhraseLengthMin {
		return RawRefResult{}, nil
	}
	if opt.PhraseLengthMax != 0 && length > opt.PhraseLengthMax {
		return RawRefResult{}, nil
	}

	units := make([]unit, 0, len(q))
	for i, u := range q {
		un := unit{pos: i, word: u.Word, isQMark: u.IsQMark}
		if !u.IsQMark {
			un.key = invindex.Key(len(q), i, u.Word)
		}
		units = append(units, un)
	}

	jumpIn := s.jumpInFrequency(q, opt.MaxPhraseFrequency)

	nonQMark := make([]unit, 0, len(units))
	for _, u := range units {
		if !u.isQMark {
			nonQMark = append(nonQMark, u)
		}
	}
	sort.SliceStable(nonQMark, func(i, j int) bool {
		li, _ := s.Postlists.Len(nonQMark[i].key)
		lj, _ := s.Postlists.Len(nonQMark[j].key)
		return li < lj
	})

	var (
		result  RawRefResult
		current map[uint32]value.Uint32Pair
	)

	for i, u := range nonQMark {
		if i == 0 {
			entries, stats, ok := s.scanUnit(u, jumpIn, opt)
			result.Stats = append(result.Stats, stats)
			if !ok {
				result.UnknownWords = append(result.UnknownWords, u.word)
				return result, nil
			}
			current = make(map[uint32]value.Uint32Pair, len(entries))
			for _, e := range entries {
				current[e.E2] = e
			}
			continue
		}

		if _, ok := s.Postlists.Len(u.key); !ok {
			result.Stats = append(result.Stats, UnitStats{Key: u.key, Unknown: true})
			result.UnknownWords = append(result.UnknownWords, u.word)
			return result, nil
		}

		// Intersection fallback (spec.md §4.2): before decoding and
		// budget-scanning this unit's postlist, test the already-surviving
		// candidates against it via the O(1) bitmap membership check. A
		// large stopword postlist can then be skipped entirely once none
		// of the (typically few) candidates from the seed unit appear in
		// it, rather than paying for a budgeted scan that can only confirm
		// the same emptiness.
		if len(current) == 0 || !s.anyContained(u.key, current) {
			result.Stats = append(result.Stats, UnitStats{Key: u.key})
			current = nil
			continue
		}

		entries, stats, ok := s.scanUnit(u, jumpIn, opt)
		result.Stats = append(result.Stats, stats)
		if !ok {
			result.UnknownWords = append(result.UnknownWords, u.word)
			return result, nil
		}

		next := make(map[uint32]value.Uint32Pair, len(current))
		for _, e := range entries {
			if prior, ok := current[e.E2]; ok {
				merged := e
				if prior.E1 < merged.E1 {
					merged.E1 = prior.E1
				}
				next[e.E2] = merged
			}
		}
		current = next
	}

	refs := make([]phrase.Ref, 0, len(current))
	for id, e := range current {
		refs = append(refs, phrase.Ref{
			ID:             phrase.ID{Length: length, Local: id},
			IndexFrequency: e.E1,
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	if opt.MaxPhraseCount > 0 && len(refs) > opt.MaxPhraseCount {
		refs = refs[:opt.MaxPhraseCount]
	}
	result.Refs = refs
	return result, nil
}

// scanUnit implements the per-unit postlist walk of spec.md §4.2: jump to
// the checkpoint at or just above J, skip to the first entry ≤ J, then
// drain under the unit's pruning budget.
func (s *Strategy) scanUnit(u unit, jumpIn uint32, opt Options) ([]value.Uint32Pair, UnitStats, bool) {
	stats := UnitStats{Key: u.key}

	entries, ok := s.Postlists.Entries(u.key)
	if !ok {
		stats.Unknown = true
		return nil, stats, false
	}

	start := 0
	if offset, ok := s.Metas.FindStartOffset(u.key, jumpIn); ok {
		start = int(offset) / value.Uint32PairSize
		if start > len(entries) {
			start = len(entries)
		}
	}

	budget := s.pruningBudget(u.key, u.word, opt)

	out := make([]value.Uint32Pair, 0, budget)
	seenFirst := false
	for i := start; i < len(entries) && len(out) < budget; i++ {
		e := entries[i]
		if !seenFirst {
			if e.E1 > jumpIn {
				continue
			}
			seenFirst = true
		}
		if stats.EntriesEvaluated == 0 {
			stats.MaxFrequency = e.E1
		}
		stats.MinFrequency = e.E1
		stats.EntriesEvaluated++
		out = append(out, e)
	}
	return out, stats, true
}

// anyContained reports whether any id in candidates appears in key's
// postlist, via PostlistIndex.Contains's roaring-bitmap fast path.
func (s *Strategy) anyContained(key string, candidates map[uint32]value.Uint32Pair) bool {
	for id := range candidates {
		if s.Postlists.Contains(key, id) {
			return true
		}
	}
	return false
}

// pruningBudget grants the high (stopword) budget when the phrase
// dictionary marks word a stopword, or — as a fallback for words the
// dictionary has no entry for — when the postlist-meta skip index
// reports that none of key's checkpoints is at or below the stopword
// threshold, i.e. every block of the postlist starts in the stopword-
// frequency range (spec.md §4.2 "Pruning budget"). That is an O(1) check
// against the block-presence bitset rather than a checkpoint scan.
func (s *Strategy) pruningBudget(key, word string, opt Options) int {
	if e, ok := s.Dict.Lookup(word); ok {
		if e.IsStopword() {
			return opt.PruningHigh
		}
		return opt.PruningLow
	}
	if cps, ok := s.Metas.Checkpoints(key); ok && len(cps) > 0 && !s.Metas.HasLowFrequencyBlock(key) {
		return opt.PruningHigh
	}
	return opt.PruningLow
}

// jumpInFrequency implements spec.md §4.2 "Jump-in frequency": the
// minimum exact frequency over every maximal substring of consecutive
// WORD units, intersected with the caller's max_phrase_frequency.
func (s *Strategy) jumpInFrequency(q normalizer.NormQuery, callerMax uint32) uint32 {
	best := callerMax
	if best == 0 {
		best = ^uint32(0)
	}

	i := 0
	for i < len(q) {
		if q[i].IsQMark {
			i++
			continue
		}
		j := i
		words := make([]string, 0, len(q)-i)
		for j < len(q) && !q[j].IsQMark {
			words = append(words, q[j].Word)
			j++
		}
		if freq, ok := s.Dict.Frequency(strings.Join(words, " ")); ok && freq < uint64(best) {
			best = uint32(freq)
		}
		i = j
	}
	return best
}
