// Package normalizer implements the query normalizer (C7): it evaluates a
// query.Node AST bottom-up as an algebraic expression over concatenation
// and alternation of unit-sequence sets, per spec.md §4.1.
package normalizer

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/netspeak/netspeak-go/internal/netspeakerr"
	"github.com/netspeak/netspeak-go/pkg/phrase"
	"github.com/netspeak/netspeak-go/pkg/query"
)

// Unit is one unit of a normalized query: either a concrete word or a
// QMARK wildcard matching exactly one (any) word.
type Unit struct {
	Word    string
	IsQMark bool
}

func wordUnit(w string) Unit { return Unit{Word: w} }
func qmarkUnit() Unit        { return Unit{IsQMark: true} }

func (u Unit) key() string {
	if u.IsQMark {
		return "\x00?"
	}
	return u.Word
}

// NormQuery is a finite sequence of units — one output of normalization.
type NormQuery []Unit

func (q NormQuery) key() string {
	var sb strings.Builder
	for _, u := range q {
		sb.WriteString(u.key())
		sb.WriteByte('\x1f')
	}
	return sb.String()
}

// HashDictionary resolves the synonyms of a word for DICTSET expansion. It
// is an external collaborator (spec.md §4.1), backed by internal/hashdict.
type HashDictionary interface {
	Synonyms(word string) ([]string, error)
}

// RegexVocabulary resolves the words matching a regular expression for
// REGEX expansion, under a match-count and time budget. It is an external
// collaborator (spec.md §6 "external regex-vocabulary"), backed by
// internal/regexvocab.
type RegexVocabulary interface {
	Match(pattern string, maxMatches int, maxTime time.Duration) ([]string, error)
}

// Options bounds normalization (spec.md §4.1 "Contract").
type Options struct {
	MaxNormQueries  int
	MaxRegexMatches int
	MaxRegexTime    time.Duration
}

// Normalizer evaluates query ASTs into normalized queries.
type Normalizer struct {
	Dict  HashDictionary
	Regex RegexVocabulary
}

// New builds a Normalizer with the given external collaborators.
func New(dict HashDictionary, regex RegexVocabulary) *Normalizer {
	return &Normalizer{Dict: dict, Regex: regex}
}

// evalCtx carries the request-scoped options through one Normalize call,
// plus a truncated flag that latches true the first time any node's
// expansion is cut short by max_norm_queries (clampAndDedup) or the
// crossProduct scratch ceiling. It distinguishes a genuine cap overflow
// from a pattern that legitimately normalizes to zero sequences — an
// empty LengthRange (spec.md §3), or a REGEX/DICTSET leaf that resolves
// to no words at all — neither of which ever sets it.
type evalCtx struct {
	opts      Options
	truncated bool
}

// Normalize expands root into a finite, deduplicated, cap-bounded sequence
// of normalized queries.
func (n *Normalizer) Normalize(root *query.Node, opts Options) ([]NormQuery, error) {
	if root == nil {
		return nil, netspeakerr.New(netspeakerr.InvalidPattern, "nil query AST")
	}
	if opts.MaxNormQueries <= 0 {
		return nil, netspeakerr.New(netspeakerr.ExpansionOverflow, "max_norm_queries <= 0")
	}
	ctx := &evalCtx{opts: opts}
	out, err := n.eval(root, ctx)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 && ctx.truncated {
		return nil, netspeakerr.New(netspeakerr.ExpansionOverflow,
			"expansion produced no sequence within max_norm_queries")
	}
	return out, nil
}

func (n *Normalizer) eval(node *query.Node, ctx *evalCtx) ([]NormQuery, error) {
	var set []NormQuery
	var err error

	switch node.Kind {
	case query.Word:
		set = []NormQuery{{wordUnit(node.Text)}}
	case query.QMark:
		set = []NormQuery{{qmarkUnit()}}
	case query.Star:
		set = n.starSet(ctx.opts, 0)
	case query.Plus:
		set = n.starSet(ctx.opts, 1)
	case query.Regex:
		set, err = n.regexSet(node, ctx.opts)
	case query.DictSet:
		set, err = n.dictSet(node)
	case query.Concat:
		set, err = n.concatSet(node.Children, ctx)
	case query.Alternation:
		set, err = n.alternationSet(node.Children, ctx)
	case query.OptionSet, query.OrderSet:
		set, err = n.permutationSet(node.Children, ctx)
	default:
		return nil, netspeakerr.New(netspeakerr.InvalidPattern, "unknown AST node kind")
	}
	if err != nil {
		return nil, err
	}

	out, truncated := clampAndDedup(set, node.LengthRange(), ctx.opts.MaxNormQueries)
	if truncated {
		ctx.truncated = true
	}
	return out, nil
}

// starSet builds {[], [?], [?,?], …} (or, for min=1, without the empty
// alternative), up to a residual length budget bounded by the request cap
// and the hard phrase-length invariant.
func (n *Normalizer) starSet(opts Options, min int) []NormQuery {
	limit := opts.MaxNormQueries
	if limit > phrase.MaxLength {
		limit = phrase.MaxLength
	}
	set := make([]NormQuery, 0, limit-min+1)
	for length := min; length <= limit; length++ {
		q := make(NormQuery, length)
		for i := range q {
			q[i] = qmarkUnit()
		}
		set = append(set, q)
	}
	return set
}

// regexSet resolves node against the regex vocabulary. A pattern that
// matches no vocabulary word at all is a legitimate empty result, not an
// error: it is the caller's (Normalize's) job to tell that apart from a
// genuine cap overflow elsewhere in the tree.
func (n *Normalizer) regexSet(node *query.Node, opts Options) ([]NormQuery, error) {
	if n.Regex == nil {
		return nil, netspeakerr.New(netspeakerr.InvalidPattern, "REGEX node but no regex vocabulary configured")
	}
	maxMatches := opts.MaxRegexMatches
	words, err := n.Regex.Match(node.Text, maxMatches, opts.MaxRegexTime)
	if err != nil {
		return nil, netspeakerr.Wrap(netspeakerr.InvalidPattern, "regex vocabulary lookup failed", err)
	}
	seen := make(map[string]bool, len(words))
	set := make([]NormQuery, 0, len(words))
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		if l := utf8.RuneCountInString(w); (node.RegexMinLen > 0 && l < node.RegexMinLen) ||
			(node.RegexMaxLen > 0 && l > node.RegexMaxLen) {
			continue
		}
		set = append(set, NormQuery{wordUnit(w)})
	}
	return set, nil
}

func (n *Normalizer) dictSet(node *query.Node) ([]NormQuery, error) {
	set := []NormQuery{{wordUnit(node.Text)}}
	if n.Dict == nil {
		return set, nil
	}
	synonyms, err := n.Dict.Synonyms(node.Text)
	if err != nil {
		return nil, netspeakerr.Wrap(netspeakerr.InvalidPattern, "hash dictionary lookup failed", err)
	}
	seen := map[string]bool{node.Text: true}
	for _, s := range synonyms {
		if seen[s] {
			continue
		}
		seen[s] = true
		set = append(set, NormQuery{wordUnit(s)})
	}
	return set, nil
}

func (n *Normalizer) concatSet(children []*query.Node, ctx *evalCtx) ([]NormQuery, error) {
	acc := []NormQuery{{}}
	for _, c := range children {
		childSet, err := n.eval(c, ctx)
		if err != nil {
			return nil, err
		}
		var truncated bool
		acc, truncated = crossProduct(acc, childSet, ctx.opts.MaxNormQueries)
		if truncated {
			ctx.truncated = true
		}
	}
	return acc, nil
}

func (n *Normalizer) alternationSet(children []*query.Node, ctx *evalCtx) ([]NormQuery, error) {
	var acc []NormQuery
	for _, c := range children {
		childSet, err := n.eval(c, ctx)
		if err != nil {
			return nil, err
		}
		acc = append(acc, childSet...)
	}
	return acc, nil
}

// permutationSet expands OPTIONSET/ORDERSET into the alternation of all n!
// orderings of concatenations of its children (spec.md §4.1).
func (n *Normalizer) permutationSet(children []*query.Node, ctx *evalCtx) ([]NormQuery, error) {
	childSets := make([][]NormQuery, len(children))
	for i, c := range children {
		s, err := n.eval(c, ctx)
		if err != nil {
			return nil, err
		}
		childSets[i] = s
	}

	var acc []NormQuery
	indices := make([]int, len(children))
	for i := range indices {
		indices[i] = i
	}
	permute(indices, func(order []int) {
		seq := []NormQuery{{}}
		for _, idx := range order {
			var truncated bool
			seq, truncated = crossProduct(seq, childSets[idx], ctx.opts.MaxNormQueries)
			if truncated {
				ctx.truncated = true
			}
		}
		acc = append(acc, seq...)
		if len(acc) > ctx.opts.MaxNormQueries*4 {
			var truncated bool
			acc, truncated = clampAndDedup(acc, phrase.AtLeast(0), ctx.opts.MaxNormQueries)
			if truncated {
				ctx.truncated = true
			}
		}
	})
	return acc, nil
}

// permute calls visit once for every permutation of indices, in
// lexicographic order (Heap's algorithm would not guarantee that, so this
// uses plain recursive selection).
func permute(indices []int, visit func([]int)) {
	n := len(indices)
	used := make([]bool, n)
	cur := make([]int, 0, n)
	var rec func()
	rec = func() {
		if len(cur) == n {
			snapshot := make([]int, n)
			copy(snapshot, cur)
			visit(snapshot)
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			cur = append(cur, indices[i])
			rec()
			cur = cur[:len(cur)-1]
			used[i] = false
		}
	}
	rec()
}

// crossProduct computes {a ++ b | a∈A, b∈B}, bounded by a generous scratch
// ceiling so a single expensive node cannot blow up memory before the
// per-node cap is reapplied by clampAndDedup. The second return value
// reports whether the ceiling was hit, i.e. whether some combinations were
// never generated at all.
func crossProduct(a, b []NormQuery, cap int) ([]NormQuery, bool) {
	scratch := cap * 4
	if scratch < 64 {
		scratch = 64
	}
	out := make([]NormQuery, 0, min(len(a)*len(b), scratch))
	for _, x := range a {
		for _, y := range b {
			q := make(NormQuery, 0, len(x)+len(y))
			q = append(q, x...)
			q = append(q, y...)
			out = append(out, q)
			if len(out) >= scratch {
				return out, true
			}
		}
	}
	return out, false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// clampAndDedup filters by r, deduplicates exact-equal sequences, and
// truncates to cap using the deterministic order of spec.md §4.1: shortest
// sequences first, lexicographic on unit texts as final tiebreak. The
// second return value reports whether the cap actually discarded
// sequences that passed the length-range filter — as opposed to every
// sequence simply failing that filter, which is not a cap overflow.
func clampAndDedup(set []NormQuery, r phrase.LengthRange, cap int) ([]NormQuery, bool) {
	seen := make(map[string]bool, len(set))
	out := make([]NormQuery, 0, len(set))
	for _, q := range set {
		if !r.Accepts(uint32(len(q))) {
			continue
		}
		k := q.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, q)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return out[i].key() < out[j].key()
	})
	truncated := len(out) > cap
	if truncated {
		out = out[:cap]
	}
	return out, truncated
}
