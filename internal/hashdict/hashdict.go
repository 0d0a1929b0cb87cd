// Package hashdict implements the external hash-dictionary collaborator
// used for DICTSET expansion (spec.md §4.1): word → synonym set. It backs
// normalizer.HashDictionary.
//
// On-disk storage is a small read-only SQLite table, opened with
// ncruces/go-sqlite3 — the teacher's own persistence idiom
// (internal/store.SQLiteStore), repurposed here as a read-only lookup
// table instead of a mutable graph store. A single Aho-Corasick automaton
// over every known head word serves both head-word resolution for
// Synonyms and substring scanning of arbitrary text (Scan), mirroring
// pkg/dafsa's "one automaton, two uses" design. A small prefix trie caches
// the synonyms resolved for recently seen query words for the lifetime of
// the Dictionary (it is reset wholesale once it holds cacheHi entries),
// avoiding a repeat automaton scan and SQL round trip for patterns like
// "{quick|fast} {red|blue} car" that reuse the same DICTSET head word.
package hashdict

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/derekparker/trie/v3"
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Dictionary is a read-only handle onto the hash-dictionary SQLite file.
type Dictionary struct {
	db *sql.DB
	ac ahocorasick.AhoCorasick

	mu        sync.Mutex
	cache     *trie.Trie
	cacheSize int
	heads     []string // ac pattern index -> head word
	cacheHi   int      // bound on cached entries; reset wholesale past this
}

// Match is one hit of Scan: a known head word found verbatim inside a
// larger piece of text.
type Match struct {
	Start, End int
	Word       string
}

// Open opens the SQLite file at path read-only and loads every head word
// in the `synonyms` table into an Aho-Corasick automaton.
//
// Schema: `synonyms(word TEXT, synonym TEXT)`, one row per (word, synonym)
// pair; a word with no synonyms need not appear.
func Open(path string) (*Dictionary, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("hashdict: open %s: %w", path, err)
	}
	rows, err := db.Query(`SELECT DISTINCT word FROM synonyms`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("hashdict: load head words: %w", err)
	}
	defer rows.Close()

	var heads []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			db.Close()
			return nil, err
		}
		heads = append(heads, w)
	}
	if err := rows.Err(); err != nil {
		db.Close()
		return nil, err
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: false,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	ac := builder.Build(heads)

	return &Dictionary{
		db:      db,
		ac:      ac,
		cache:   trie.New(),
		heads:   heads,
		cacheHi: 4096,
	}, nil
}

// Close releases the underlying database handle.
func (d *Dictionary) Close() error { return d.db.Close() }

// Synonyms implements normalizer.HashDictionary: it resolves word against
// the Aho-Corasick automaton of known head words, then returns every
// synonym registered for the resolved head, excluding the head itself.
func (d *Dictionary) Synonyms(word string) ([]string, error) {
	if cached, ok := d.lookupCache(word); ok {
		return cached, nil
	}

	head := d.resolveHead(word)
	if head == "" {
		d.storeCache(word, nil)
		return nil, nil
	}

	rows, err := d.db.Query(`SELECT synonym FROM synonyms WHERE word = ?`, head)
	if err != nil {
		return nil, fmt.Errorf("hashdict: query synonyms(%q): %w", word, err)
	}
	defer rows.Close()

	var synonyms []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		if s != head {
			synonyms = append(synonyms, s)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	d.storeCache(word, synonyms)
	return synonyms, nil
}

// Scan returns every known head word occurring verbatim in text, using the
// Aho-Corasick automaton built at Open time.
func (d *Dictionary) Scan(text string) []Match {
	matches := d.ac.FindAll(text)
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, Match{Start: m.Start(), End: m.End(), Word: text[m.Start():m.End()]})
	}
	return out
}

// resolveHead finds the longest known head word the automaton matches
// within word, so a query word that carries a suffix the dictionary
// wasn't built with (e.g. an inflected or compound form) still resolves
// to its entry rather than missing on an exact-equality lookup. Returns
// "" if no head word occurs in word at all.
func (d *Dictionary) resolveHead(word string) string {
	matches := d.ac.FindAll(word)
	best := ""
	for _, m := range matches {
		if m.End()-m.Start() > len(best) {
			best = word[m.Start():m.End()]
		}
	}
	return best
}

func (d *Dictionary) lookupCache(word string) ([]string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	node, ok := d.cache.Find(word)
	if !ok {
		return nil, false
	}
	synonyms, _ := node.Meta().([]string)
	return synonyms, true
}

func (d *Dictionary) storeCache(word string, synonyms []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cacheSize >= d.cacheHi {
		// Reset wholesale rather than track per-entry recency; a
		// normalization pass that cycles through this many distinct
		// DICTSET head words is already far outside the common case.
		d.cache = trie.New()
		d.cacheSize = 0
	}
	d.cache.Add(word, synonyms)
	d.cacheSize++
}
