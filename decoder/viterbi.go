package decoder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ieee0824/pinyin-go/internal/mathutil"
	"github.com/ieee0824/pinyin-go/language"
	"github.com/ieee0824/pinyin-go/lexicon"
)

// ErrCoverageGap reports a syllable without any candidate in the model.
// A model built with a fallback table never has one, so this indicates a broken build.
var ErrCoverageGap = errors.New("model has no candidate for syllable")

// node is one lattice entry: the best path ending with cand over syllables [start, end).
// Paths are kept as back-pointers so no text is copied during the search.
type node struct {
	cand  language.Candidate
	pron  string
	start int
	end   int
	score float64
	prev  *node
}

// spans addresses every run of syllables as a substring of one joined string,
// so looking up a span allocates nothing.
type spans struct {
	joined string
	offs   []int // offs[i] is the byte offset of syllable i; offs[n] = len(joined)+1
}

func newSpans(syllables []string) spans {
	var b strings.Builder
	offs := make([]int, len(syllables)+1)
	for i, s := range syllables {
		if i > 0 {
			b.WriteByte(' ')
		}
		offs[i] = b.Len()
		b.WriteString(s)
	}
	offs[len(syllables)] = b.Len() + 1
	return spans{joined: b.String(), offs: offs}
}

// key returns the pronunciation key of syllables [start, end).
func (sp spans) key(start, end int) string {
	return sp.joined[sp.offs[start] : sp.offs[end]-1]
}

// Decode finds the most probable text for a syllable sequence.
// Syllables are canonicalized first (lue -> lve, nue -> nve). An empty
// sequence, or a single empty syllable, decodes to an empty Result.
func Decode(syllables []string, m *language.Model, cfg Config) (*Result, error) {
	if len(syllables) == 0 || (len(syllables) == 1 && syllables[0] == "") {
		return &Result{}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: nil model", ErrConfig)
	}

	sylls := make([]string, len(syllables))
	for i, s := range syllables {
		sylls[i] = lexicon.Canonical(s)
	}
	if err := lexicon.Validate(sylls); err != nil {
		return nil, err
	}
	for i, s := range sylls {
		if len(m.Lookup(s)) == 0 {
			return nil, fmt.Errorf("%w: %q at position %d", ErrCoverageGap, s, i)
		}
	}

	n := len(sylls)
	sp := newSpans(sylls)
	maxSpan := 1
	if cfg.Policy == DictionaryWord && m.MaxSpan() > 1 {
		maxSpan = m.MaxSpan()
	}

	// lattice[i] holds every node ending at syllable i
	lattice := make([][]*node, n+1)
	for end := 1; end <= n; end++ {
		for start := max(0, end-maxSpan); start < end; start++ {
			if start > 0 && len(lattice[start]) == 0 {
				continue
			}
			pron := sp.key(start, end)
			for _, u := range m.Lookup(pron) {
				nd := &node{cand: u, pron: pron, start: start, end: end}
				if start == 0 {
					nd.score = u.LogProb
				} else {
					extend(nd, lattice[start], m, cfg.BackoffPenalty)
				}
				lattice[end] = append(lattice[end], nd)
			}
		}
	}

	final := lattice[n]
	if len(final) == 0 {
		return nil, fmt.Errorf("%w: no path covers %q", ErrCoverageGap, sp.joined)
	}
	scores := make([]float64, len(final))
	for i, nd := range final {
		scores[i] = nd.score
	}
	_, best := mathutil.Max(scores)
	return backtrack(final[best]), nil
}

// extend picks the predecessor that maximizes the score of nd.
// Equal scores keep the first predecessor seen.
func extend(nd *node, prevs []*node, m *language.Model, penalty float64) {
	nd.score = mathutil.LogZero
	for _, v := range prevs {
		var s float64
		if lp, ok := m.Bigram(v.cand.Text, nd.cand.Text); ok {
			// P(u|v) = P(v,u) / P(v)
			s = v.score + lp - v.cand.LogProb
		} else {
			s = v.score + nd.cand.LogProb - penalty
		}
		if nd.prev == nil || s > nd.score {
			nd.score = s
			nd.prev = v
		}
	}
}

func backtrack(last *node) *Result {
	length := 0
	for cur := last; cur != nil; cur = cur.prev {
		length++
	}

	units := make([]Unit, length)
	cur := last
	for i := length - 1; i >= 0; i-- {
		units[i] = Unit{
			Text:          cur.cand.Text,
			Pronunciation: cur.pron,
			Start:         cur.start,
			End:           cur.end,
			LogProb:       cur.cand.LogProb,
		}
		cur = cur.prev
	}

	var b strings.Builder
	for _, u := range units {
		b.WriteString(u.Text)
	}
	return &Result{
		Text:     b.String(),
		Units:    units,
		LogScore: last.score,
	}
}
