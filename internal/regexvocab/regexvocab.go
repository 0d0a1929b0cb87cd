// Package regexvocab is a concrete implementation of the external
// regex-vocabulary collaborator (C6, spec.md §1 "explicitly out of
// scope... named interfaces only"): given a character-class regex and
// bounds, it returns the set of matching words. It compiles patterns with
// coregx/coregex and linearly scans a word source, respecting
// max_regex_matches/max_regex_time.
//
// When a scan turns up more candidates than max_regex_matches allows,
// instead of an arbitrary prefix truncation it ranks candidates with an
// approximate nearest-neighbour pass over a small in-memory HNSW graph of
// bigram-hashed word embeddings, keeping the words closest to the
// candidate set's centroid — the same fogfish/hnsw + kshard/vector pairing
// pkg/vector uses for semantic search, repurposed here as a bounded
// candidate-selection step.
package regexvocab

import (
	"math"
	"time"

	"github.com/coregx/coregex"
	"github.com/fogfish/hnsw"
	fvector "github.com/fogfish/hnsw/vector"
	kvector "github.com/kshard/vector"

	"github.com/netspeak/netspeak-go/internal/netspeakerr"
)

const embeddingDim = 16

// Matcher scans a fixed word list for regex matches.
type Matcher struct {
	words []string
}

// New builds a Matcher over words. words need not be sorted.
func New(words []string) *Matcher {
	return &Matcher{words: words}
}

// Match implements normalizer.RegexVocabulary: it compiles pattern,
// scans the word list until maxTime elapses, and ranks down to
// maxMatches if the scan found more than that.
func (m *Matcher) Match(pattern string, maxMatches int, maxTime time.Duration) ([]string, error) {
	re, err := coregex.Compile(pattern)
	if err != nil {
		return nil, netspeakerr.Wrap(netspeakerr.InvalidPattern, "compile regex vocabulary pattern", err)
	}

	var deadline time.Time
	hasDeadline := maxTime > 0
	if hasDeadline {
		deadline = time.Now().Add(maxTime)
	}

	var matches []string
	for i, w := range m.words {
		if hasDeadline && i%256 == 0 && time.Now().After(deadline) {
			break
		}
		if re.MatchString(w) {
			matches = append(matches, w)
		}
	}

	if maxMatches > 0 && len(matches) > maxMatches {
		matches = rankAndTruncate(matches, maxMatches)
	}
	return matches, nil
}

// embed hashes a word's letter bigrams into a fixed-size, L2-normalized
// vector — a cheap stand-in for a real semantic embedding, sufficient to
// cluster lexically similar candidates for the truncation step above.
func embed(word string) []float32 {
	vec := make([]float32, embeddingDim)
	for i := 0; i+1 < len(word); i++ {
		h := uint32(word[i])*31 + uint32(word[i+1])
		vec[h%embeddingDim]++
	}
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(float64(norm)))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

// rankAndTruncate keeps the k words whose embeddings are nearest the
// candidate set's centroid, via an ephemeral HNSW graph.
func rankAndTruncate(words []string, k int) []string {
	idx := hnsw.New[fvector.VF32](fvector.SurfaceVF32(kvector.Cosine()))
	centroid := make([]float32, embeddingDim)
	for i, w := range words {
		vec := embed(w)
		idx.Insert(fvector.VF32{Key: uint32(i), Vec: vec})
		for d, v := range vec {
			centroid[d] += v
		}
	}
	for d := range centroid {
		centroid[d] /= float32(len(words))
	}

	ef := k * 2
	if ef < 50 {
		ef = 50
	}
	results := idx.Search(fvector.VF32{Vec: centroid}, k, ef)
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, words[r.Key])
	}
	return out
}
