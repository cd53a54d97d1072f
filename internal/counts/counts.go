// Package counts reads the tab-separated dumps of a count store.
//
// Unigram dump: pronunciation<TAB>text<TAB>count
// Bigram dump:  left<TAB>right<TAB>count
//
// Blank lines and lines starting with '#' are skipped.
package counts

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ieee0824/pinyin-go/lexicon"
)

const maxLine = 1 << 20

// ReadUnigrams calls fn for every (pronunciation, text, count) tuple in r and
// returns the number of tuples read. Multi-syllable pronunciations are
// returned with single spaces and canonical syllable spellings.
func ReadUnigrams(r io.Reader, fn func(pron, text string, count int64) error) (int, error) {
	return read(r, func(lineNum int, a, b string, count int64) error {
		sylls := strings.Fields(a)
		if len(sylls) == 0 {
			return fmt.Errorf("line %d: empty pronunciation", lineNum)
		}
		for i, s := range sylls {
			sylls[i] = lexicon.Canonical(s)
		}
		if err := lexicon.Validate(sylls); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		return fn(strings.Join(sylls, " "), b, count)
	})
}

// ReadBigrams calls fn for every (left, right, count) tuple in r and returns
// the number of tuples read.
func ReadBigrams(r io.Reader, fn func(left, right string, count int64) error) (int, error) {
	return read(r, func(_ int, a, b string, count int64) error {
		return fn(a, b, count)
	})
}

func read(r io.Reader, fn func(lineNum int, a, b string, count int64) error) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	lineNum, n := 0, 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) != 3 {
			return n, fmt.Errorf("line %d: expected 3 tab-separated fields, got %d", lineNum, len(parts))
		}
		a, b := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if a == "" || b == "" {
			return n, fmt.Errorf("line %d: empty field", lineNum)
		}
		count, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil {
			return n, fmt.Errorf("line %d: count: %w", lineNum, err)
		}

		if err := fn(lineNum, a, b, count); err != nil {
			return n, err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("line %d: %w", lineNum+1, err)
	}
	return n, nil
}
