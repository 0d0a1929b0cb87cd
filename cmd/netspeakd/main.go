// Command netspeakd wires configuration, indexes and the orchestrator
// into a running search service. Transport is a named external interface
// (spec.md §6 "Wire protocol"); the gRPC/HTTP service itself is out of
// scope, so this binary exposes the same request/response shape as a
// line-delimited stdin/stdout loop — enough to drive locally and in
// integration tests without a real RPC stack.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/netspeak/netspeak-go/internal/cache"
	"github.com/netspeak/netspeak-go/internal/config"
	"github.com/netspeak/netspeak-go/internal/hashdict"
	"github.com/netspeak/netspeak-go/internal/invindex"
	"github.com/netspeak/netspeak-go/internal/logging"
	"github.com/netspeak/netspeak-go/internal/normalizer"
	"github.com/netspeak/netspeak-go/internal/orchestrator"
	"github.com/netspeak/netspeak-go/internal/phrasecorpus"
	"github.com/netspeak/netspeak-go/internal/phrasedict"
	"github.com/netspeak/netspeak-go/internal/proxy"
	"github.com/netspeak/netspeak-go/internal/regexvocab"
	"github.com/netspeak/netspeak-go/internal/retrieval"
	"github.com/netspeak/netspeak-go/pkg/query"
)

func main() {
	configPath := flag.String("config", "", "path to a netspeak.yaml configuration file")
	corpusKey := flag.String("corpus", "en", "corpus key this server serves")
	corpusName := flag.String("corpus-name", "English", "corpus display name")
	language := flag.String("language", "en", "corpus language tag")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "netspeakd: -config is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Errorf("load config: %v", err)
		os.Exit(1)
	}

	orch, closeAll, err := buildOrchestrator(cfg, proxy.Corpus{Key: *corpusKey, Name: *corpusName, Language: *language})
	if err != nil {
		logging.Errorf("build orchestrator: %v", err)
		os.Exit(1)
	}
	defer closeAll()

	p, err := proxy.New(context.Background(), []proxy.Backend{orch})
	if err != nil {
		logging.Errorf("build proxy: %v", err)
		os.Exit(1)
	}

	logging.Infof("netspeakd serving corpus %q from %s", *corpusKey, cfg.PathToHome)
	serveStdio(p)
}

// buildOrchestrator opens every index named by cfg and wires them into one
// Orchestrator. The returned closer releases all memory mappings.
func buildOrchestrator(cfg *config.Config, corpus proxy.Corpus) (*orchestrator.Orchestrator, func(), error) {
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logging.Errorf("close: %v", err)
			}
		}
	}

	dict, err := phrasedict.Open(cfg.PathToPhraseDictionary)
	if err != nil {
		return nil, closeAll, err
	}
	closers = append(closers, dict.Close)

	postlistPath := filepath.Join(cfg.PathToPostlistIndex, "postlist-index")
	metaPath := filepath.Join(cfg.PathToPostlistIndex, "postlist-meta")
	pl, err := invindex.OpenPostlistIndex(postlistPath)
	if err != nil {
		return nil, closeAll, err
	}
	closers = append(closers, pl.Close)
	meta, err := invindex.OpenPostlistMetaIndex(metaPath)
	if err != nil {
		return nil, closeAll, err
	}
	closers = append(closers, meta.Close)

	vocabPath := filepath.Join(cfg.PathToPhraseCorpus, "vocabulary")
	vocabData, err := os.ReadFile(vocabPath)
	if err != nil {
		return nil, closeAll, err
	}
	corpusData, err := phrasecorpus.Open(vocabData, func(l uint32) string {
		return filepath.Join(cfg.PathToPhraseCorpus, strconv.Itoa(int(l)))
	})
	if err != nil {
		return nil, closeAll, err
	}
	closers = append(closers, corpusData.Close)

	var hdict *hashdict.Dictionary
	if cfg.PathToHashDictionary != "" {
		hdict, err = hashdict.Open(cfg.PathToHashDictionary)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, hdict.Close)
	}

	var regex normalizer.RegexVocabulary
	if cfg.PathToRegexVocabulary != "" {
		words, err := readWordList(cfg.PathToRegexVocabulary)
		if err != nil {
			return nil, closeAll, err
		}
		regex = regexvocab.New(words)
	}

	norm := normalizer.New(hashDictAdapter{hdict}, regex)
	strat := retrieval.New(pl, meta, dict)

	capacity := cfg.CacheCapacity
	if capacity <= 0 {
		capacity = 10000
	}
	resultCache := cache.New[retrieval.RawRefResult](capacity)

	limits := orchestrator.Limits{
		MaxNormQueries:  1000,
		MaxRegexMatches: 10000,
		MaxRegexTime:    2 * time.Second,
		PruningLow:      1000,
		PruningHigh:     100000,
	}

	orch := orchestrator.New(corpus, patternParser{}, norm, strat, corpusData, dict, resultCache, limits)
	return orch, closeAll, nil
}

// hashDictAdapter adapts a possibly-nil *hashdict.Dictionary to
// normalizer.HashDictionary, so a server run without a hash dictionary
// configured simply resolves no synonyms rather than needing a nil check
// at every call site.
type hashDictAdapter struct{ d *hashdict.Dictionary }

func (a hashDictAdapter) Synonyms(word string) ([]string, error) {
	if a.d == nil {
		return nil, nil
	}
	return a.d.Synonyms(word)
}

func readWordList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	words := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			words = append(words, l)
		}
	}
	return words, nil
}

// patternParser is a minimal stand-in for the external query parser
// (spec.md §1 non-goal): it accepts a space-separated sequence of literal
// words and "?" wildcards. The real netspeak pattern grammar (STAR, PLUS,
// REGEX, DICTSET, alternation, option/order sets) is produced upstream by
// a parser this module only consumes through orchestrator.Parser.
type patternParser struct{}

func (patternParser) Parse(q string) (*query.Node, error) {
	fields := strings.Fields(q)
	children := make([]*query.Node, len(fields))
	for i, w := range fields {
		if w == "?" {
			children[i] = query.NewQMark(i)
		} else {
			children[i] = query.NewWord(w, i)
		}
	}
	return query.NewConcat(0, children...), nil
}

// serveStdio implements the stub transport: one search request per line,
// "corpus\tquery\tmaxPhrases", one result per response line.
func serveStdio(p *proxy.Proxy) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 2 {
			fmt.Println("error: expected corpus\\tquery[\\tmaxPhrases]")
			continue
		}
		maxPhrases := 100
		if len(parts) == 3 {
			if n, err := strconv.Atoi(parts[2]); err == nil {
				maxPhrases = n
			}
		}
		result, serr := p.Search(context.Background(), proxy.SearchRequest{
			Corpus: parts[0], Query: parts[1], MaxPhrases: maxPhrases,
		})
		if serr != nil {
			fmt.Printf("error: %s: %s\n", serr.Kind, serr.Message)
			continue
		}
		for _, ph := range result.Phrases {
			words := make([]string, len(ph.Words))
			for i, w := range ph.Words {
				words[i] = string(w)
			}
			fmt.Printf("%d\t%s\n", ph.Frequency, strings.Join(words, " "))
		}
	}
}
