package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/ieee0824/pinyin-go/language"
	"github.com/ieee0824/pinyin-go/lexicon"
)

// report lists the defects found in a model.
type report struct {
	Missing     []string // fallback syllables without a candidate
	BadKeys     []string // keys that are not space-joined canonical syllables
	BadProbs    []string // candidates whose log probability is not a finite value <= 0
	UnknownKeys int      // single-syllable keys not in the fallback table
	Stats       language.Stats
}

func (r *report) ok() bool {
	return len(r.Missing) == 0 && len(r.BadKeys) == 0 && len(r.BadProbs) == 0
}

func main() {
	fallbackPath := flag.String("fallback", "", "fallback table (default: embedded table)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: modelcheck [options] <unigrams.json> <bigrams.json>")
		fmt.Fprintln(os.Stderr, "  Checks that every syllable of the fallback table has a candidate")
		fmt.Fprintln(os.Stderr, "  and that keys and scores are well formed. Exits 1 on any defect.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	table := lexicon.Default()
	if *fallbackPath != "" {
		var err error
		if table, err = lexicon.LoadFile(*fallbackPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	m, err := language.LoadFiles(flag.Arg(0), flag.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	r := audit(m, table)
	r.print(os.Stdout)
	if !r.ok() {
		os.Exit(1)
	}
}

func audit(m *language.Model, table *lexicon.Table) *report {
	r := &report{
		Missing: m.Missing(table),
		Stats:   m.Stats(),
	}
	for _, key := range m.Keys() {
		sylls := strings.Split(key, " ")
		canonical := true
		for _, s := range sylls {
			if lexicon.Canonical(s) != s {
				canonical = false
			}
		}
		if !canonical || lexicon.Validate(sylls) != nil || key == "" {
			r.BadKeys = append(r.BadKeys, key)
			continue
		}
		if len(sylls) == 1 && !table.Has(key) {
			r.UnknownKeys++
		}
		for _, c := range m.Lookup(key) {
			if math.IsNaN(c.LogProb) || math.IsInf(c.LogProb, 0) || c.LogProb > 0 {
				r.BadProbs = append(r.BadProbs, fmt.Sprintf("%s/%s=%g", key, c.Text, c.LogProb))
			}
		}
	}
	return r
}

func (r *report) print(w io.Writer) {
	fmt.Fprintf(w, "Keys: %d, Candidates: %d, Bigrams: %d, MaxSpan: %d\n",
		r.Stats.Keys, r.Stats.Candidates, r.Stats.Bigrams, r.Stats.MaxSpan)
	fmt.Fprintf(w, "Missing syllables: %d\n", len(r.Missing))
	for _, s := range r.Missing {
		fmt.Fprintf(w, "  %s\n", s)
	}
	fmt.Fprintf(w, "Malformed keys: %d\n", len(r.BadKeys))
	for _, k := range r.BadKeys {
		fmt.Fprintf(w, "  %q\n", k)
	}
	fmt.Fprintf(w, "Bad scores: %d\n", len(r.BadProbs))
	for _, p := range r.BadProbs {
		fmt.Fprintf(w, "  %s\n", p)
	}
	fmt.Fprintf(w, "Single-syllable keys outside the fallback table: %d\n", r.UnknownKeys)
}
