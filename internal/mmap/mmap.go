// Package mmap provides reference-counted, read-only memory-mapped file
// handles for the index structures of spec.md §5 ("Resources"): phrase
// corpus, phrase dictionary, inverted index, and postlist-meta index files
// are all opened once at startup and mapped for process lifetime.
package mmap

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// File is a read-only memory-mapped file. Multiple holders may share one
// File through Ref/Release; the mapping is torn down when the last holder
// releases it.
type File struct {
	path string
	data []byte

	mu       sync.Mutex
	refCount int
}

// Open mmaps path read-only and returns a File with one outstanding
// reference. Call Release when done.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap: open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("mmap: stat %s: %w", path, err)
	}
	size := st.Size()
	if size == 0 {
		return &File{path: path, data: nil, refCount: 1}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: mmap %s: %w", path, err)
	}
	return &File{path: path, data: data, refCount: 1}, nil
}

// Bytes returns the mapped region. The slice is valid only while the
// caller holds a reference.
func (mf *File) Bytes() []byte { return mf.data }

// Path returns the path this File was opened from.
func (mf *File) Path() string { return mf.path }

// Ref increments the reference count and returns mf, for callers that want
// to hand out the same mapping to multiple owners without remapping.
func (mf *File) Ref() *File {
	mf.mu.Lock()
	mf.refCount++
	mf.mu.Unlock()
	return mf
}

// Release decrements the reference count, unmapping the file once it
// reaches zero.
func (mf *File) Release() error {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	mf.refCount--
	if mf.refCount > 0 {
		return nil
	}
	if mf.data == nil {
		return nil
	}
	err := unix.Munmap(mf.data)
	mf.data = nil
	return err
}
