package language

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ieee0824/pinyin-go/lexicon"
)

// Candidate is one unit retrievable by a pronunciation key.
type Candidate struct {
	Text    string
	LogProb float64 // log10 unigram probability
}

// MarshalJSON encodes the candidate as a [text, logprob] pair.
func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.Text, c.LogProb})
}

// UnmarshalJSON decodes a [text, logprob] pair.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("candidate: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("candidate: expected [text, logprob], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Text); err != nil {
		return fmt.Errorf("candidate text: %w", err)
	}
	if err := json.Unmarshal(pair[1], &c.LogProb); err != nil {
		return fmt.Errorf("candidate logprob: %w", err)
	}
	return nil
}

// UnigramTable maps a pronunciation key (syllables joined by one space) to its candidates.
type UnigramTable map[string][]Candidate

// BigramTable maps an adjacent (left, right) text pair to its log10 probability.
// A missing pair is not an error; it tells the decoder to back off.
type BigramTable map[[2]string]float64

// Model is a built unigram/bigram model. It is never modified after
// construction, so any number of goroutines may read it concurrently.
type Model struct {
	unigrams UnigramTable
	bigrams  BigramTable
	maxSpan  int
}

// Stats summarizes the size of a model.
type Stats struct {
	Keys       int // pronunciation keys
	Candidates int // candidates over all keys
	Bigrams    int
	MaxSpan    int // longest key, in syllables
}

// NewModel creates a model from the given tables and takes ownership of them.
// Candidates are ranked by log probability; equal scores keep their order.
func NewModel(unigrams UnigramTable, bigrams BigramTable) *Model {
	if unigrams == nil {
		unigrams = make(UnigramTable)
	}
	if bigrams == nil {
		bigrams = make(BigramTable)
	}
	m := &Model{unigrams: unigrams, bigrams: bigrams}
	for key, cands := range unigrams {
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].LogProb > cands[j].LogProb
		})
		if span := strings.Count(key, " ") + 1; span > m.maxSpan {
			m.maxSpan = span
		}
	}
	return m
}

// Lookup returns the ranked candidates for a pronunciation key.
// The returned slice must not be modified.
func (m *Model) Lookup(pron string) []Candidate {
	return m.unigrams[pron]
}

// Bigram returns the log probability of the adjacent pair (left, right).
func (m *Model) Bigram(left, right string) (float64, bool) {
	lp, ok := m.bigrams[[2]string{left, right}]
	return lp, ok
}

// MaxSpan returns the number of syllables in the longest pronunciation key.
func (m *Model) MaxSpan() int {
	return m.maxSpan
}

// Keys returns all pronunciation keys, sorted.
func (m *Model) Keys() []string {
	keys := make([]string, 0, len(m.unigrams))
	for k := range m.unigrams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of pronunciation keys.
func (m *Model) Len() int {
	return len(m.unigrams)
}

// Stats returns size information about the model.
func (m *Model) Stats() Stats {
	s := Stats{Keys: len(m.unigrams), Bigrams: len(m.bigrams), MaxSpan: m.maxSpan}
	for _, cands := range m.unigrams {
		s.Candidates += len(cands)
	}
	return s
}

// Missing returns the syllables of the table that have no candidate in the model, sorted.
func (m *Model) Missing(t *lexicon.Table) []string {
	var missing []string
	for _, s := range t.Syllables() {
		if len(m.unigrams[s]) == 0 {
			missing = append(missing, s)
		}
	}
	return missing
}
