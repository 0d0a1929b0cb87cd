// Package store provides the fs staging seam between the index builder and
// the serving process: a thin wrapper around hackpadfs.FS that writes and
// reads whole index files (vocabulary, phrase dictionary, postlist blocks)
// behind one interface, so a freshly built corpus directory can be staged
// on a real OS filesystem today and on an in-browser filesystem (WASM)
// tomorrow without touching the code that populates it.
//
// The serving hot path does not use this package: mmap (internal/mmap)
// needs a real file descriptor, so internal/phrasecorpus, internal/
// phrasedict and internal/invindex open OS files directly. Stage exists
// for the builder/publish boundary, where whole-file copy semantics are
// enough and the destination filesystem is not fixed in advance.
package store

import (
	"path/filepath"
	"sort"

	"github.com/hack-pad/hackpadfs"
	hpos "github.com/hack-pad/hackpadfs/os"

	"github.com/netspeak/netspeak-go/internal/netspeakerr"
)

// Manifest names the build artifacts staged for one corpus, in the layout
// internal/phrasecorpus, internal/phrasedict and internal/invindex expect
// to open.
type Manifest struct {
	Corpus string
	Files  map[string][]byte // file name -> contents, e.g. "vocabulary", "phrase-dictionary", "1", "2", ...
}

// Stage writes a corpus's build artifacts into dir on fsys, creating dir
// if necessary.
func Stage(fsys hackpadfs.FS, dir string, m Manifest) error {
	if err := hackpadfs.MkdirAll(fsys, dir, 0o755); err != nil {
		return netspeakerr.Wrap(netspeakerr.CorruptIndex, "stage corpus dir", err)
	}
	names := make([]string, 0, len(m.Files))
	for name := range m.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := hackpadfs.WriteFullFile(fsys, path, m.Files[name], 0o644); err != nil {
			return netspeakerr.Wrap(netspeakerr.CorruptIndex, "stage file "+name, err)
		}
	}
	return nil
}

// Load reads back the files listed in names from dir on fsys.
func Load(fsys hackpadfs.FS, dir string, names []string) (Manifest, error) {
	m := Manifest{Files: make(map[string][]byte, len(names))}
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := hackpadfs.ReadFile(fsys, path)
		if err != nil {
			return Manifest{}, netspeakerr.Wrap(netspeakerr.CorruptIndex, "load staged file "+name, err)
		}
		m.Files[name] = data
	}
	return m, nil
}

// NativeFS returns the hackpadfs.FS view of the real OS filesystem rooted
// at root, for staging into a normal directory the serving process will
// later mmap-open directly. The same Stage/Load pair works unmodified
// against a browser IndexedDB-backed FS (see cmd/wasm).
func NativeFS(root string) (hackpadfs.FS, error) {
	fsys, err := hackpadfs.Sub(hpos.NewFS(), root)
	if err != nil {
		return nil, netspeakerr.Wrap(netspeakerr.CorruptIndex, "open native staging fs", err)
	}
	return fsys, nil
}
