// Package phrase holds the core data model of spec.md §3: phrases, words,
// phrase identifiers, and length ranges. It has no I/O and no dependencies
// beyond the standard library, since it is shared by every other package.
package phrase

import "fmt"

// MaxLength is the hard invariant cap on phrase length (spec.md §3).
const MaxLength = 255

// StopwordFrequencyThreshold is the dictionary-frequency threshold above
// which a word is classified as a stopword (spec.md §3 "Phrase-dictionary
// entry").
const StopwordFrequencyThreshold = 1_000_000_000

// Word is a non-empty UTF-8 string containing no ASCII whitespace.
type Word = string

// ID is a phrase identifier: the pair (Length, Local) from spec.md §3.
// The local id is unique within its length class.
type ID struct {
	Length uint32
	Local  uint32
}

// Global returns the 64-bit global id: (length << 32) | local-id.
func (id ID) Global() uint64 {
	return uint64(id.Length)<<32 | uint64(id.Local)
}

func (id ID) String() string {
	return fmt.Sprintf("Phrase(%d:%d)", id.Length, id.Local)
}

// Phrase is a materialized n-gram: its identifier, its words, and its true
// frequency (recovered from the phrase corpus, overriding any bounded
// IndexFrequency carried by the inverted index).
type Phrase struct {
	ID        ID
	Words     []Word
	Frequency uint64
}

// Ref is a lightweight reference into the phrase corpus, as produced by the
// retrieval strategy before materialization: a phrase-id plus the bounded
// IndexFrequency from the postlist entry it came from.
type Ref struct {
	ID             ID
	IndexFrequency uint32
}

// Less orders refs the way spec.md §8 property 2 requires: descending by
// frequency, ties broken ascending by phrase-id.
func (r Ref) Less(o Ref) bool {
	if r.IndexFrequency != o.IndexFrequency {
		return r.IndexFrequency > o.IndexFrequency
	}
	return r.ID.Global() < o.ID.Global()
}
