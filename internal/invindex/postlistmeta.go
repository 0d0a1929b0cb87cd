package invindex

import (
	"sort"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/netspeak/netspeak-go/pkg/phrase"
	"github.com/netspeak/netspeak-go/pkg/value"
)

// PostlistMetaIndex is the postlist-meta skip index (C5): key → skip-list
// of (start-offset, IndexFrequency) checkpoints, one per on-disk block of
// the matching C4 postlist.
type PostlistMetaIndex struct {
	blocks *BlockFile

	mu    sync.Mutex
	cache map[string]*metaEntry
}

type metaEntry struct {
	checkpoints []value.Uint64Uint32Pair
	// lowFreq marks, per checkpoint, whether its frequency is at or below
	// the stopword threshold — a block-presence bitset answering "does
	// this key have any block with freq ≤ threshold" in O(1), avoiding a
	// scan over checkpoints for that common pruning decision.
	lowFreq *bitset.BitSet
}

// OpenPostlistMetaIndex opens the postlist-meta file at path.
func OpenPostlistMetaIndex(path string) (*PostlistMetaIndex, error) {
	b, err := OpenBlockFile(path)
	if err != nil {
		return nil, err
	}
	return &PostlistMetaIndex{blocks: b, cache: make(map[string]*metaEntry)}, nil
}

// Close releases the underlying mapping.
func (m *PostlistMetaIndex) Close() error { return m.blocks.Close() }

// Checkpoints returns the full, decoded checkpoint list for key, in
// ascending-offset (== descending-frequency) order.
func (m *PostlistMetaIndex) Checkpoints(key string) ([]value.Uint64Uint32Pair, bool) {
	e, ok := m.entryFor(key)
	if !ok {
		return nil, false
	}
	return e.checkpoints, true
}

// HasLowFrequencyBlock reports whether key has at least one checkpoint at
// or below the stopword-frequency threshold, in O(1).
func (m *PostlistMetaIndex) HasLowFrequencyBlock(key string) bool {
	e, ok := m.entryFor(key)
	if !ok {
		return false
	}
	return e.lowFreq.Any()
}

// FindStartOffset implements spec.md §4.2 step 1: binary-scan forward
// until finding the latest checkpoint whose recorded frequency is still
// >= J, and return its offset. If even the earliest checkpoint's
// frequency is already below J, the whole postlist is in range and 0 is
// returned.
func (m *PostlistMetaIndex) FindStartOffset(key string, jumpInFrequency uint32) (uint64, bool) {
	cps, ok := m.Checkpoints(key)
	if !ok {
		return 0, false
	}
	if len(cps) == 0 {
		return 0, true
	}
	// cps[i].E2 (frequency) is non-increasing in i. Find the first index
	// whose frequency drops below J; the checkpoint just before it (if
	// any) is the latest one still >= J.
	boundary := sort.Search(len(cps), func(i int) bool {
		return uint32(cps[i].E2) < jumpInFrequency
	})
	if boundary == 0 {
		return 0, true
	}
	return cps[boundary-1].E1, true
}

func (m *PostlistMetaIndex) entryFor(key string) (*metaEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.cache[key]; ok {
		return e, true
	}
	block, ok := m.blocks.Block(key)
	if !ok {
		return nil, false
	}
	n := len(block) / value.Uint64Uint32PairSize
	cps := make([]value.Uint64Uint32Pair, n)
	low := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		cp := value.DecodeUint64Uint32Pair(block[i*value.Uint64Uint32PairSize:])
		cps[i] = cp
		if uint64(cp.E2) <= phrase.StopwordFrequencyThreshold {
			low.Set(uint(i))
		}
	}
	e := &metaEntry{checkpoints: cps, lowFreq: low}
	m.cache[key] = e
	return e, true
}
