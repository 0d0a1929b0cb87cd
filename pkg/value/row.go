package value

import "encoding/binary"

// PhraseRow is one fixed-width record of a length-partitioned phrase-corpus
// file (spec.md §3 "Phrase-corpus row"): length×4 bytes of word-ids
// followed by 8 bytes of exact frequency.
type PhraseRow struct {
	WordIDs   []uint32
	Frequency uint64
}

// RowSize returns the encoded byte size of a phrase-corpus row for phrases
// of the given length.
func RowSize(length int) int { return length*4 + 8 }

// EncodeRow writes row into dst, which must be at least RowSize(len(row.WordIDs)) bytes.
func EncodeRow(dst []byte, row PhraseRow) {
	off := 0
	for _, id := range row.WordIDs {
		binary.BigEndian.PutUint32(dst[off:off+4], id)
		off += 4
	}
	binary.BigEndian.PutUint64(dst[off:off+8], row.Frequency)
}

// DecodeRow reads a phrase of the given length out of src, which must be
// exactly RowSize(length) bytes.
func DecodeRow(src []byte, length int) PhraseRow {
	ids := make([]uint32, length)
	off := 0
	for i := range ids {
		ids[i] = binary.BigEndian.Uint32(src[off : off+4])
		off += 4
	}
	freq := binary.BigEndian.Uint64(src[off : off+8])
	return PhraseRow{WordIDs: ids, Frequency: freq}
}
