// Package phrasecorpus implements the phrase corpus (C2): phrase-id →
// (words, exact frequency) via length-partitioned, memory-mapped files,
// per spec.md §4.3 and §6 "On-disk layout".
package phrasecorpus

import (
	"fmt"
	"sync"

	"github.com/netspeak/netspeak-go/internal/mmap"
	"github.com/netspeak/netspeak-go/internal/netspeakerr"
	"github.com/netspeak/netspeak-go/pkg/phrase"
	"github.com/netspeak/netspeak-go/pkg/value"
)

// Corpus is an immutable, process-lifetime handle onto a phrase-corpus
// directory (vocab + bin/<length> files).
type Corpus struct {
	dir   string
	vocab *Vocabulary

	mu    sync.Mutex
	files map[uint32]*mmap.File // lazily opened, keyed by length
	open  func(length uint32) (*mmap.File, error)
}

// Open decodes the vocab file contents in vocabData and prepares lazy access
// to the length-partitioned bin/<length> files. binPath formats the file path for
// a given phrase length (e.g. func(l uint32) string { return
// filepath.Join(dir, "bin", strconv.Itoa(int(l))) }).
func Open(vocabData []byte, binPath func(length uint32) string) (*Corpus, error) {
	vocab, err := DecodeVocabulary(vocabData)
	if err != nil {
		return nil, netspeakerr.Wrap(netspeakerr.CorruptIndex, "decode vocabulary", err)
	}
	return &Corpus{
		vocab: vocab,
		files: make(map[uint32]*mmap.File),
		open: func(length uint32) (*mmap.File, error) {
			return mmap.Open(binPath(length))
		},
	}, nil
}

// Close releases every opened bin file.
func (c *Corpus) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for _, f := range c.files {
		if err := f.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Vocabulary exposes the corpus vocabulary (used by callers translating
// postlist entries or building hash-dictionary synonyms).
func (c *Corpus) Vocabulary() *Vocabulary { return c.vocab }

func (c *Corpus) fileFor(length uint32) (*mmap.File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.files[length]; ok {
		return f, nil
	}
	f, err := c.open(length)
	if err != nil {
		return nil, err
	}
	c.files[length] = f
	return f, nil
}

// Materialize turns phrase references into full phrases: groups by length,
// reads the fixed-width record at local_id × RowSize(length) out of the
// memory-mapped bin file for that length, and resolves word-ids through
// the vocabulary. Exact frequency from the record overrides the bounded
// IndexFrequency carried by refs. A missing word-id is CorruptIndex
// (spec.md §4.3).
func (c *Corpus) Materialize(refs []phrase.Ref) ([]phrase.Phrase, error) {
	byLength := make(map[uint32][]int) // length -> indices into refs
	for i, r := range refs {
		byLength[r.ID.Length] = append(byLength[r.ID.Length], i)
	}

	out := make([]phrase.Phrase, len(refs))
	for length, indices := range byLength {
		f, err := c.fileFor(length)
		if err != nil {
			return nil, netspeakerr.Wrap(netspeakerr.CorruptIndex,
				fmt.Sprintf("open bin file for length %d", length), err)
		}
		data := f.Bytes()
		rowSize := value.RowSize(int(length))
		for _, i := range indices {
			r := refs[i]
			start := int(r.ID.Local) * rowSize
			if start+rowSize > len(data) {
				return nil, netspeakerr.New(netspeakerr.CorruptIndex,
					fmt.Sprintf("local-id %d out of range for length %d", r.ID.Local, length))
			}
			row := value.DecodeRow(data[start:start+rowSize], int(length))
			words := make([]phrase.Word, len(row.WordIDs))
			for j, wid := range row.WordIDs {
				w, ok := c.vocab.Word(wid)
				if !ok {
					return nil, netspeakerr.New(netspeakerr.CorruptIndex,
						fmt.Sprintf("word-id %d missing from vocabulary", wid))
				}
				words[j] = w
			}
			out[i] = phrase.Phrase{ID: r.ID, Words: words, Frequency: row.Frequency}
		}
	}
	return out, nil
}
