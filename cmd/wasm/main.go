//go:build js && wasm

// Command wasm is the browser entry point. It runs query normalization
// (C7) client-side and stages/loads corpus build artifacts through an
// IndexedDB-backed filesystem, so a browser can validate and rewrite a
// query pattern without a round trip to the serving process. Retrieval
// itself stays server-side: internal/mmap needs a real file descriptor,
// which js/wasm does not have.
package main

import (
	"context"
	"encoding/json"
	"strings"
	"syscall/js"

	"github.com/hack-pad/hackpadfs/indexeddb"

	"github.com/netspeak/netspeak-go/internal/normalizer"
	"github.com/netspeak/netspeak-go/internal/store"
	"github.com/netspeak/netspeak-go/pkg/query"
)

// Version is reported to the host page.
const Version = "0.1.0"

var norm = normalizer.New(nil, nil)

func main() {
	js.Global().Set("Netspeak", js.ValueOf(map[string]interface{}{
		"version":   js.FuncOf(getVersion),
		"normalize": js.FuncOf(normalize),
		"stageFile": js.FuncOf(stageFile),
		"loadFile":  js.FuncOf(loadFile),
	}))
	select {}
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// normalize: [queryText string] — parses a plain space-separated query
// ("?" as a wildcard unit) and returns the C7-normalized query set as a
// JSON array of unit arrays.
func normalize(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: queryText")
	}
	root := parseSimple(args[0].String())
	normQueries, err := norm.Normalize(root, normalizer.Options{MaxNormQueries: 100})
	if err != nil {
		return errorResult("normalize: " + err.Error())
	}

	out := make([][]string, len(normQueries))
	for i, nq := range normQueries {
		units := make([]string, len(nq))
		for j, u := range nq {
			if u.IsQMark {
				units[j] = "?"
			} else {
				units[j] = u.Word
			}
		}
		out[i] = units
	}
	data, _ := json.Marshal(out)
	return string(data)
}

// stageFile: [dbName, dir, name string, contentsBase64... actually raw
// string] — writes one file into an IndexedDB-backed corpus directory via
// the same store.Stage seam the server uses for a real OS directory.
func stageFile(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errorResult("requires 4 args: dbName, dir, name, contents")
	}
	dbName, dir, name, contents := args[0].String(), args[1].String(), args[2].String(), args[3].String()

	fsys, err := indexeddb.NewFS(context.Background(), dbName, indexeddb.Options{})
	if err != nil {
		return errorResult("open indexeddb fs: " + err.Error())
	}
	err = store.Stage(fsys, dir, store.Manifest{Files: map[string][]byte{name: []byte(contents)}})
	if err != nil {
		return errorResult("stage: " + err.Error())
	}
	return successResult("staged")
}

// loadFile: [dbName, dir, name string] — reads one file back out of an
// IndexedDB-backed corpus directory.
func loadFile(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorResult("requires 3 args: dbName, dir, name")
	}
	dbName, dir, name := args[0].String(), args[1].String(), args[2].String()

	fsys, err := indexeddb.NewFS(context.Background(), dbName, indexeddb.Options{})
	if err != nil {
		return errorResult("open indexeddb fs: " + err.Error())
	}
	manifest, err := store.Load(fsys, dir, []string{name})
	if err != nil {
		return errorResult("load: " + err.Error())
	}
	return string(manifest.Files[name])
}

// parseSimple builds a literal CONCAT of WORD/QMARK terminals from a
// space-separated query string, the same tiny grammar the orchestrator's
// test fixtures use in place of the external query parser.
func parseSimple(q string) *query.Node {
	words := strings.Fields(q)
	children := make([]*query.Node, len(words))
	for i, w := range words {
		if w == "?" {
			children[i] = query.NewQMark(i)
		} else {
			children[i] = query.NewWord(w, i)
		}
	}
	return query.NewConcat(0, children...)
}

func errorResult(msg string) interface{} {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return string(data)
}

func successResult(msg string) interface{} {
	data, _ := json.Marshal(map[string]string{"ok": msg})
	return string(data)
}
