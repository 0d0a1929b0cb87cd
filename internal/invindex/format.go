// Package invindex implements the inverted phrase index (C4) and the
// postlist-meta skip index (C5). Both share the on-disk block/key-table
// format defined here: spec.md §6 says only that they share "a shared
// on-disk format consisting of per-block payloads plus a table of key →
// (offset, length)"; it does not name a concrete format (Open Question),
// so this file defines our own, documented format — only the observable
// behavior (key → descending-frequency postlist; key → checkpoint list)
// is required to match spec.md.
//
// File layout:
//
//	[ uint32 keyCount ]
//	repeated keyCount times:
//	  [ uint16 keyLen ][ keyLen bytes of key ][ uint64 offset ][ uint64 length ]
//	[ payload region: keyCount blocks of raw bytes, each `length` bytes
//	  starting at `offset` from the start of the file ]
package invindex

import (
	"encoding/binary"
	"fmt"

	"github.com/netspeak/netspeak-go/internal/mmap"
)

type tableEntry struct {
	Offset uint64
	Length uint64
}

// BlockFile is the shared reader abstraction of spec.md §6: a memory-mapped
// file holding a key → (offset, length) table plus the block payloads it
// points into.
type BlockFile struct {
	file  *mmap.File
	table map[string]tableEntry
	keys  []string
}

// Options holds MaxMemory, an advisory ceiling on how much of a
// BlockFile's payload region a reader keeps resident. OpenBlockFile does
// not take Options and Properties does not report MaxMemory: the file is
// memory-mapped and the OS manages residency.
type Options struct {
	MaxMemory int64
}

// OpenBlockFile memory-maps path and decodes its key table.
func OpenBlockFile(path string) (*BlockFile, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("invindex: open %s: %w", path, err)
	}
	data := f.Bytes()
	if len(data) < 4 {
		if len(data) == 0 {
			return &BlockFile{file: f, table: map[string]tableEntry{}}, nil
		}
		f.Release()
		return nil, fmt.Errorf("invindex: %s: truncated header", path)
	}
	count := binary.BigEndian.Uint32(data[:4])
	off := 4
	table := make(map[string]tableEntry, count)
	keys := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if off+2 > len(data) {
			f.Release()
			return nil, fmt.Errorf("invindex: %s: truncated table entry %d", path, i)
		}
		keyLen := int(binary.BigEndian.Uint16(data[off : off+2]))
		off += 2
		if off+keyLen+16 > len(data) {
			f.Release()
			return nil, fmt.Errorf("invindex: %s: truncated table entry %d body", path, i)
		}
		key := string(data[off : off+keyLen])
		off += keyLen
		entry := tableEntry{
			Offset: binary.BigEndian.Uint64(data[off : off+8]),
			Length: binary.BigEndian.Uint64(data[off+8 : off+16]),
		}
		off += 16
		table[key] = entry
		keys = append(keys, key)
	}
	return &BlockFile{file: f, table: table, keys: keys}, nil
}

// Close releases the underlying mapping.
func (b *BlockFile) Close() error { return b.file.Release() }

// Block returns the raw bytes of the block for key, if present.
func (b *BlockFile) Block(key string) ([]byte, bool) {
	e, ok := b.table[key]
	if !ok {
		return nil, false
	}
	data := b.file.Bytes()
	if e.Offset+e.Length > uint64(len(data)) {
		return nil, false
	}
	return data[e.Offset : e.Offset+e.Length], true
}

// KeyCount returns the number of keys in the table.
func (b *BlockFile) KeyCount() int { return len(b.table) }

// Keys returns all keys in table order.
func (b *BlockFile) Keys() []string { return b.keys }

// TotalPayloadBytes sums the length of every block, for Properties.
func (b *BlockFile) TotalPayloadBytes() uint64 {
	var total uint64
	for _, e := range b.table {
		total += e.Length
	}
	return total
}

// EncodeBlockFile builds the on-disk byte layout described above, for
// builder tooling and tests. blocks maps key to raw block payload; keys
// are written in the order given by order (which must list exactly the
// keys of blocks) so tests can assert deterministic output.
func EncodeBlockFile(blocks map[string][]byte, order []string) []byte {
	var header []byte
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(order)))
	header = append(header, countBuf[:]...)

	payloadOffset := uint64(4)
	for _, k := range order {
		payloadOffset += 2 + uint64(len(k)) + 16
	}

	var payload []byte
	for _, k := range order {
		b := blocks[k]
		var keyLenBuf [2]byte
		binary.BigEndian.PutUint16(keyLenBuf[:], uint16(len(k)))
		header = append(header, keyLenBuf[:]...)
		header = append(header, k...)

		var offLenBuf [16]byte
		binary.BigEndian.PutUint64(offLenBuf[:8], payloadOffset)
		binary.BigEndian.PutUint64(offLenBuf[8:], uint64(len(b)))
		header = append(header, offLenBuf[:]...)

		payload = append(payload, b...)
		payloadOffset += uint64(len(b))
	}
	return append(header, payload...)
}
