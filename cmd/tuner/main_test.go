package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ieee0824/pinyin-go/decoder"
	"github.com/ieee0824/pinyin-go/language"
)

func TestParseFloats(t *testing.T) {
	got := parseFloats("0, 1.5,x,,2")
	want := []float64{0, 1.5, 2}
	if len(got) != len(want) {
		t.Fatalf("parseFloats = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseFloats[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestParsePolicies(t *testing.T) {
	got, err := parsePolicies("char, word")
	if err != nil {
		t.Fatalf("parsePolicies error: %v", err)
	}
	if len(got) != 2 || got[0] != decoder.SingleSyllable || got[1] != decoder.DictionaryWord {
		t.Errorf("parsePolicies = %v", got)
	}
	if _, err := parsePolicies("char,trigram"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestBuildGrid(t *testing.T) {
	grid := buildGrid([]decoder.Policy{decoder.SingleSyllable, decoder.DictionaryWord}, []float64{0, -1, 2})
	if len(grid) != 4 {
		t.Fatalf("grid has %d entries, want 4 (negative penalty skipped)", len(grid))
	}
}

// The bigram 西安 only pays off when the backoff penalty is large enough.
func TestSearch(t *testing.T) {
	m := language.NewModel(
		language.UnigramTable{
			"xi":    {{Text: "西", LogProb: -2}},
			"an":    {{Text: "安", LogProb: -2}},
			"xi an": {{Text: "西岸", LogProb: -3.5}},
		},
		nil,
	)
	tests := []testCase{
		{syllables: []string{"xi", "an"}, expected: "西岸"},
		{syllables: []string{"xi"}, expected: "西"},
		{syllables: []string{"zhuang"}, expected: "装"},
	}
	grid := buildGrid([]decoder.Policy{decoder.SingleSyllable, decoder.DictionaryWord}, []float64{0, 1, 2})

	results := search(grid, tests, m, 2)
	if len(results) != len(grid) {
		t.Fatalf("got %d results, want %d", len(results), len(grid))
	}
	best := results[0]
	// 西岸 (-3.5) beats 西+安 (-4 - penalty) for every penalty; the smallest wins the tie
	if best.cfg.Policy != decoder.DictionaryWord || best.cfg.BackoffPenalty != 0 {
		t.Errorf("best = %+v, want dictionary-word with penalty 0", best.cfg)
	}
	if best.report.CorrectSentences != 2 || best.failed != 1 {
		t.Errorf("best report = %+v, failed %d", best.report, best.failed)
	}
	last := results[len(results)-1]
	if last.cfg.Policy != decoder.SingleSyllable || last.report.CorrectSentences != 1 {
		t.Errorf("last = %+v, %+v", last.cfg, last.report)
	}

	var out bytes.Buffer
	printResults(&out, results)
	if lines := strings.Count(out.String(), "\n"); lines != len(grid)+2 {
		t.Errorf("printed %d lines, want %d:\n%s", lines, len(grid)+2, out.String())
	}
}

func TestLoadTestSet(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.txt")
	std := filepath.Join(dir, "output_std.txt")
	os.WriteFile(in, []byte("ni hao\nlue\n"), 0o644)
	os.WriteFile(std, []byte("你好\n略 \n"), 0o644)

	cases, err := loadTestSet(in, std)
	if err != nil {
		t.Fatalf("loadTestSet error: %v", err)
	}
	if len(cases) != 2 || cases[1].syllables[0] != "lve" || cases[1].expected != "略" {
		t.Errorf("cases = %+v", cases)
	}

	os.WriteFile(std, []byte("你好\n"), 0o644)
	if _, err := loadTestSet(in, std); err == nil {
		t.Error("expected error for line count mismatch")
	}
}
