package lexicon

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInput reports a malformed pinyin token.
var ErrInput = errors.New("invalid pinyin input")

// umlaut maps the alternative spellings of ü to the v used by the tables.
var umlaut = strings.NewReplacer("ü", "v", "u:", "v")

// spellingRewrites holds the casual spellings that differ from the table keys.
var spellingRewrites = map[string]string{
	"lue": "lve",
	"nue": "nve",
}

// Canonical returns the spelling of a single syllable as stored in the model.
func Canonical(syllable string) string {
	syllable = umlaut.Replace(syllable)
	if s, ok := spellingRewrites[syllable]; ok {
		return s
	}
	return syllable
}

// Normalize folds a raw input line: NFKC (full-width letters and ideographic
// spaces become ASCII), lower case, surrounding whitespace removed.
func Normalize(line string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFKC.String(line)))
}

// Split tokenizes a line of space-separated pinyin into canonical syllables.
// A blank line yields no syllables and no error.
func Split(line string) ([]string, error) {
	fields := strings.Fields(Normalize(line))
	if len(fields) == 0 {
		return nil, nil
	}
	for i, f := range fields {
		fields[i] = Canonical(f)
	}
	if err := Validate(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Validate checks that every syllable is a non-empty run of a-z.
// A sequence consisting of one empty string is the empty sentence and is valid.
func Validate(syllables []string) error {
	if len(syllables) == 1 && syllables[0] == "" {
		return nil
	}
	for i, s := range syllables {
		if s == "" {
			return fmt.Errorf("%w: empty syllable at position %d", ErrInput, i)
		}
		if !isSyllable(s) {
			return fmt.Errorf("%w: syllable %q at position %d is not alphabetic", ErrInput, s, i)
		}
	}
	return nil
}

func isSyllable(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
