// Package phrasedict implements the phrase dictionary (C3): a word-string
// → (Frequency, word-id) map, used for stopword classification, jump-in
// frequency bounds, and the pure-word retrieval shortcut. The key is
// either a single word (the common case, used for stopword/pruning
// classification) or a space-joined sequence of words (used when the
// dictionary also carries exact frequencies for whole phrases, per
// spec.md §8 scenario 1 and §4.2's jump-in substring lookups) — both
// share the same Entry shape and lookup map.
//
// On disk it is a kelindar/binary-encoded entry slice behind a memory-
// mapped file, matching spec.md §6 "on-disk hash maps, big-endian-
// independent key lookup": lookup is an in-memory map keyed by word text,
// never by the byte order of the underlying mapping.
package phrasedict

import (
	"sort"

	"github.com/kelindar/binary"

	"github.com/netspeak/netspeak-go/internal/mmap"
	"github.com/netspeak/netspeak-go/internal/netspeakerr"
	"github.com/netspeak/netspeak-go/pkg/phrase"
)

// Entry is one phrase-dictionary entry.
type Entry struct {
	Word      string
	Frequency uint64
	WordID    uint32
}

// IsStopword reports whether e's frequency classifies it as a stopword.
func (e Entry) IsStopword() bool { return e.Frequency > phrase.StopwordFrequencyThreshold }

// Dictionary is an immutable, process-lifetime handle onto a phrase
// dictionary file (spec.md §5 "Shared immutable state").
type Dictionary struct {
	file    *mmap.File
	byWord  map[string]Entry
	entries []Entry // sorted by Word, for prefix scans
}

// Open memory-maps path and decodes its entries.
func Open(path string) (*Dictionary, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, netspeakerr.Wrap(netspeakerr.CorruptIndex, "open phrase dictionary", err)
	}
	entries, err := decodeEntries(f.Bytes())
	if err != nil {
		f.Release()
		return nil, netspeakerr.Wrap(netspeakerr.CorruptIndex, "decode phrase dictionary", err)
	}
	byWord := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byWord[e.Word] = e
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Word < entries[j].Word })
	return &Dictionary{file: f, byWord: byWord, entries: entries}, nil
}

// Close releases the underlying memory mapping.
func (d *Dictionary) Close() error { return d.file.Release() }

// Lookup returns the entry for word, if present.
func (d *Dictionary) Lookup(word string) (Entry, bool) {
	e, ok := d.byWord[word]
	return e, ok
}

// Frequency returns the exact frequency of word, or false if unknown.
func (d *Dictionary) Frequency(word string) (uint64, bool) {
	e, ok := d.byWord[word]
	return e.Frequency, ok
}

// Len returns the number of entries.
func (d *Dictionary) Len() int { return len(d.entries) }

func decodeEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := binary.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Encode serializes entries into the on-disk format decodeEntries reads,
// for use by offline builder tooling and tests.
func Encode(entries []Entry) ([]byte, error) {
	return binary.Marshal(entries)
}
