// Package value provides fixed-width binary tuple codecs used as postlist
// entries and phrase-corpus rows throughout netspeak.
//
// These mirror the C++ value::pair/value::quadruple family: a tuple is
// ordered first by its first element, which is always the field the
// retrieval strategy sorts and prunes on.
package value

import "encoding/binary"

// Uint32Pair is the (IndexFrequency, local-phrase-id) postlist entry type
// from spec.md §3 "Postlist entry".
type Uint32Pair struct {
	E1 uint32
	E2 uint32
}

const Uint32PairSize = 8

func (p Uint32Pair) Encode(dst []byte) {
	binary.BigEndian.PutUint32(dst[0:4], p.E1)
	binary.BigEndian.PutUint32(dst[4:8], p.E2)
}

func DecodeUint32Pair(src []byte) Uint32Pair {
	return Uint32Pair{
		E1: binary.BigEndian.Uint32(src[0:4]),
		E2: binary.BigEndian.Uint32(src[4:8]),
	}
}

// Uint64Uint32Pair is the (start-offset, IndexFrequency) postlist-meta
// checkpoint type from spec.md §3 "Postlist-meta entry".
type Uint64Uint32Pair struct {
	E1 uint64
	E2 uint32
}

const Uint64Uint32PairSize = 12

func (p Uint64Uint32Pair) Encode(dst []byte) {
	binary.BigEndian.PutUint64(dst[0:8], p.E1)
	binary.BigEndian.PutUint32(dst[8:12], p.E2)
}

func DecodeUint64Uint32Pair(src []byte) Uint64Uint32Pair {
	return Uint64Uint32Pair{
		E1: binary.BigEndian.Uint64(src[0:8]),
		E2: binary.BigEndian.Uint32(src[8:12]),
	}
}

// Less orders two postlist entries the way the retrieval strategy expects
// iteration order to already be: descending by E1 (frequency), ascending by
// E2 (phrase-id) to break ties deterministically (spec.md §8 property 2).
func (p Uint32Pair) Less(o Uint32Pair) bool {
	if p.E1 != o.E1 {
		return p.E1 > o.E1
	}
	return p.E2 < o.E2
}
