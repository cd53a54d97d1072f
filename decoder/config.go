package decoder

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrConfig reports invalid decoder parameters.
var ErrConfig = errors.New("invalid decoder config")

// Policy decides how many syllables a unit may span.
type Policy int

const (
	// SingleSyllable makes every unit span exactly one syllable.
	SingleSyllable Policy = iota
	// DictionaryWord lets a unit span any run of syllables that is a key of the unigram table.
	DictionaryWord
)

// Backoff penalties tuned on the news corpus test set.
const (
	DefaultSingleSyllablePenalty = 1.0
	DefaultDictionaryWordPenalty = 2.0
)

func (p Policy) String() string {
	switch p {
	case SingleSyllable:
		return "single-syllable"
	case DictionaryWord:
		return "dictionary-word"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses a policy name as written in configuration files and flags.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single-syllable", "single", "char":
		return SingleSyllable, nil
	case "dictionary-word", "dictionary", "word":
		return DictionaryWord, nil
	default:
		return 0, fmt.Errorf("%w: unknown policy %q", ErrConfig, s)
	}
}

// Config holds decoding parameters.
type Config struct {
	Policy         Policy
	BackoffPenalty float64 // subtracted for every transition without a bigram entry
}

// DefaultConfig returns the tuned parameters for a policy.
func DefaultConfig(p Policy) Config {
	cfg := Config{Policy: p, BackoffPenalty: DefaultSingleSyllablePenalty}
	if p == DictionaryWord {
		cfg.BackoffPenalty = DefaultDictionaryWordPenalty
	}
	return cfg
}

// Validate checks the parameters.
func (c Config) Validate() error {
	if c.Policy != SingleSyllable && c.Policy != DictionaryWord {
		return fmt.Errorf("%w: unknown policy %d", ErrConfig, int(c.Policy))
	}
	if math.IsNaN(c.BackoffPenalty) || math.IsInf(c.BackoffPenalty, 0) || c.BackoffPenalty < 0 {
		return fmt.Errorf("%w: backoff penalty %g must be a finite non-negative number", ErrConfig, c.BackoffPenalty)
	}
	return nil
}
