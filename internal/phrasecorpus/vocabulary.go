package phrasecorpus

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Vocabulary maps corpus-local word-ids to word text and back, decoded from
// the `vocab` file of spec.md §6: word-id(4) ‖ NUL-terminated UTF-8 word,
// sorted by id.
type Vocabulary struct {
	byID   []string // index i holds the word for id i, contiguous from 0
	byWord map[string]uint32
}

// DecodeVocabulary parses a vocab file's raw bytes.
func DecodeVocabulary(data []byte) (*Vocabulary, error) {
	var byID []string
	byWord := make(map[string]uint32)
	off := 0
	for off < len(data) {
		if off+4 > len(data) {
			return nil, fmt.Errorf("phrasecorpus: truncated vocab entry at byte %d", off)
		}
		id := binary.BigEndian.Uint32(data[off : off+4])
		off += 4
		nul := bytes.IndexByte(data[off:], 0)
		if nul < 0 {
			return nil, fmt.Errorf("phrasecorpus: unterminated word at byte %d", off)
		}
		word := string(data[off : off+nul])
		off += nul + 1

		for uint32(len(byID)) <= id {
			byID = append(byID, "")
		}
		byID[id] = word
		byWord[word] = id
	}
	return &Vocabulary{byID: byID, byWord: byWord}, nil
}

// EncodeVocabulary is the inverse of DecodeVocabulary, for builder tooling
// and tests.
func EncodeVocabulary(words []string) []byte {
	var buf []byte
	var idBuf [4]byte
	for id, w := range words {
		binary.BigEndian.PutUint32(idBuf[:], uint32(id))
		buf = append(buf, idBuf[:]...)
		buf = append(buf, w...)
		buf = append(buf, 0)
	}
	return buf
}

// Word resolves a word-id to its text. Words are non-empty by invariant
// (spec.md §3 "Word"), so an empty slot unambiguously means "missing".
func (v *Vocabulary) Word(id uint32) (string, bool) {
	if int(id) >= len(v.byID) {
		return "", false
	}
	w := v.byID[id]
	return w, w != ""
}

// ID resolves word text to its word-id.
func (v *Vocabulary) ID(word string) (uint32, bool) {
	id, ok := v.byWord[word]
	return id, ok
}

// Len returns the number of distinct words.
func (v *Vocabulary) Len() int { return len(v.byWord) }
