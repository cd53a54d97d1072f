package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ieee0824/pinyin-go/decoder"
	"github.com/ieee0824/pinyin-go/eval"
	"github.com/ieee0824/pinyin-go/internal/parallel"
	"github.com/ieee0824/pinyin-go/language"
	"github.com/ieee0824/pinyin-go/lexicon"
)

type testCase struct {
	syllables []string
	expected  string
}

type result struct {
	cfg    decoder.Config
	report eval.Report
	failed int // inputs that returned an error
}

func main() {
	uniPath := flag.String("unigrams", "unigrams.json", "unigram table")
	biPath := flag.String("bigrams", "bigrams.json", "bigram table")
	inputPath := flag.String("input", "", "pinyin input, one sentence per line")
	expectedPath := flag.String("expected", "", "reference output, one sentence per line")
	penaltiesStr := flag.String("penalties", "0,0.5,1,1.5,2,3,4", "comma-separated backoff penalties")
	policiesStr := flag.String("policies", "single-syllable,dictionary-word", "comma-separated unit policies")
	workers := flag.Int("workers", 0, "parallel workers (default: NumCPU)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tuner -input IN -expected STD [options]")
		fmt.Fprintln(os.Stderr, "  Grid search decoder parameters against a labelled test set.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *inputPath == "" || *expectedPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	penalties := parseFloats(*penaltiesStr)
	policies, err := parsePolicies(*policiesStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	grid := buildGrid(policies, penalties)
	fmt.Fprintf(os.Stderr, "Grid: %d policies × %d penalties = %d combos\n", len(policies), len(penalties), len(grid))

	fmt.Fprintln(os.Stderr, "Loading model...")
	m, err := language.LoadFiles(*uniPath, *biPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load model: %v\n", err)
		os.Exit(1)
	}

	tests, err := loadTestSet(*inputPath, *expectedPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Loaded %d test sentences\n", len(tests))

	results := search(grid, tests, m, *workers)
	printResults(os.Stdout, results)
}

func buildGrid(policies []decoder.Policy, penalties []float64) []decoder.Config {
	var grid []decoder.Config
	for _, p := range policies {
		for _, pen := range penalties {
			cfg := decoder.Config{Policy: p, BackoffPenalty: pen}
			if cfg.Validate() != nil {
				fmt.Fprintf(os.Stderr, "skipping invalid penalty %g\n", pen)
				continue
			}
			grid = append(grid, cfg)
		}
	}
	return grid
}

// search scores every configuration of grid on the test set, one
// configuration per goroutine, and returns the results best first.
func search(grid []decoder.Config, tests []testCase, m *language.Model, workers int) []result {
	results := make([]result, len(grid))
	parallel.ForEach(len(grid), workers, func(gi int) {
		r := result{cfg: grid[gi]}
		for _, tc := range tests {
			got := ""
			res, err := decoder.Decode(tc.syllables, m, grid[gi])
			if err != nil {
				r.failed++
			} else {
				got = res.Text
			}
			r.report.Add(got, tc.expected)
		}
		results[gi] = r
	})

	// Sort by sentence accuracy, then character accuracy, then the smaller penalty
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].report, results[j].report
		if a.CorrectSentences != b.CorrectSentences {
			return a.CorrectSentences > b.CorrectSentences
		}
		if a.CorrectChars != b.CorrectChars {
			return a.CorrectChars > b.CorrectChars
		}
		return results[i].cfg.BackoffPenalty < results[j].cfg.BackoffPenalty
	})
	return results
}

func printResults(w io.Writer, results []result) {
	fmt.Fprintf(w, "%-16s %-8s %10s %10s %8s %7s\n",
		"Policy", "Penalty", "Sentence", "Character", "CER", "Failed")
	fmt.Fprintln(w, strings.Repeat("-", 64))
	for _, r := range results {
		fmt.Fprintf(w, "%-16s %-8.2f %9.2f%% %9.2f%% %7.2f%% %7d\n",
			r.cfg.Policy, r.cfg.BackoffPenalty,
			r.report.SentenceAccuracy()*100, r.report.CharAccuracy()*100, r.report.CER()*100,
			r.failed)
	}
}

// loadTestSet pairs the lines of the input and reference files.
func loadTestSet(inputPath, expectedPath string) ([]testCase, error) {
	inputs, err := readLines(inputPath)
	if err != nil {
		return nil, err
	}
	expected, err := readLines(expectedPath)
	if err != nil {
		return nil, err
	}
	if len(inputs) != len(expected) {
		return nil, fmt.Errorf("%s has %d lines but %s has %d", inputPath, len(inputs), expectedPath, len(expected))
	}

	cases := make([]testCase, 0, len(inputs))
	for i, line := range inputs {
		sylls, err := lexicon.Split(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", inputPath, i+1, err)
		}
		cases = append(cases, testCase{syllables: sylls, expected: strings.TrimSpace(expected[i])})
	}
	return cases, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func parsePolicies(s string) ([]decoder.Policy, error) {
	var out []decoder.Policy
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := decoder.ParsePolicy(part)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parseFloats(s string) []float64 {
	var vals []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid float %q: %v\n", part, err)
			continue
		}
		vals = append(vals, v)
	}
	return vals
}
