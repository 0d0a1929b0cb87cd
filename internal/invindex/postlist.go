package invindex

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/netspeak/netspeak-go/pkg/value"
)

// RoaringThreshold is the postlist entry count at or above which a postlist
// also gets a roaring bitmap of local-ids built alongside its sorted slice,
// for O(1) membership tests during the filter phase of C8's intersection
// (spec.md §4.2 "First unit vs. subsequent units"). Below it, Contains
// scans the slice linearly, which is cheaper than building a bitmap.
const RoaringThreshold = 512

// PostlistIndex is the inverted phrase index (C4): key → postlist of
// (IndexFrequency, local-phrase-id), sorted descending by frequency.
type PostlistIndex struct {
	blocks *BlockFile

	mu    sync.Mutex
	cache map[string]*postlistEntry
}

type postlistEntry struct {
	entries []value.Uint32Pair
	ids     *roaring.Bitmap // non-nil only when len(entries) >= RoaringThreshold
}

// OpenPostlistIndex opens the inverted-index file at path.
func OpenPostlistIndex(path string) (*PostlistIndex, error) {
	b, err := OpenBlockFile(path)
	if err != nil {
		return nil, err
	}
	return &PostlistIndex{blocks: b, cache: make(map[string]*postlistEntry)}, nil
}

// Close releases the underlying mapping.
func (p *PostlistIndex) Close() error { return p.blocks.Close() }

// Len returns the number of postlist entries for key, without fully
// decoding them — used to sort units by ascending postlist length
// (spec.md §4.2 "Ordering the intersection").
func (p *PostlistIndex) Len(key string) (int, bool) {
	block, ok := p.blocks.Block(key)
	if !ok {
		return 0, false
	}
	return len(block) / value.Uint32PairSize, true
}

// Entries returns the full, decoded postlist for key, in on-disk
// (descending-frequency) order.
func (p *PostlistIndex) Entries(key string) ([]value.Uint32Pair, bool) {
	e, ok := p.entryFor(key)
	if !ok {
		return nil, false
	}
	return e.entries, true
}

// Contains reports whether localID appears anywhere in key's postlist.
// Uses the roaring bitmap fast path when available.
func (p *PostlistIndex) Contains(key string, localID uint32) bool {
	e, ok := p.entryFor(key)
	if !ok {
		return false
	}
	if e.ids != nil {
		return e.ids.Contains(localID)
	}
	for _, entry := range e.entries {
		if entry.E2 == localID {
			return true
		}
	}
	return false
}

func (p *PostlistIndex) entryFor(key string) (*postlistEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.cache[key]; ok {
		return e, true
	}
	block, ok := p.blocks.Block(key)
	if !ok {
		return nil, false
	}
	entries := decodeUint32Pairs(block)
	e := &postlistEntry{entries: entries}
	if len(entries) >= RoaringThreshold {
		bm := roaring.New()
		for _, entry := range entries {
			bm.Add(entry.E2)
		}
		e.ids = bm
	}
	p.cache[key] = e
	return e, true
}

func decodeUint32Pairs(block []byte) []value.Uint32Pair {
	n := len(block) / value.Uint32PairSize
	out := make([]value.Uint32Pair, n)
	for i := 0; i < n; i++ {
		out[i] = value.DecodeUint32Pair(block[i*value.Uint32PairSize:])
	}
	return out
}
