// Package eval scores decoded sentences against reference text.
package eval

import "fmt"

// Report accumulates accuracy counters over a test set.
// The zero value is ready to use.
type Report struct {
	Sentences        int // sentences scored
	CorrectSentences int // exact matches
	Chars            int // reference characters
	CorrectChars     int // characters equal at the same position
	Edits            int // rune edit distance summed over all sentences
}

// Add scores one decoded sentence against its reference.
// Characters are compared position by position; extra output characters
// count against CER only.
func (r *Report) Add(got, want string) {
	g, w := []rune(got), []rune(want)
	r.Sentences++
	if got == want {
		r.CorrectSentences++
	}
	r.Chars += len(w)
	for i := 0; i < len(w) && i < len(g); i++ {
		if g[i] == w[i] {
			r.CorrectChars++
		}
	}
	r.Edits += EditDistance(g, w)
}

// Merge adds the counters of other into r.
func (r *Report) Merge(other Report) {
	r.Sentences += other.Sentences
	r.CorrectSentences += other.CorrectSentences
	r.Chars += other.Chars
	r.CorrectChars += other.CorrectChars
	r.Edits += other.Edits
}

// SentenceAccuracy returns the fraction of exact sentence matches.
func (r Report) SentenceAccuracy() float64 {
	if r.Sentences == 0 {
		return 0
	}
	return float64(r.CorrectSentences) / float64(r.Sentences)
}

// CharAccuracy returns the fraction of reference characters reproduced at their position.
func (r Report) CharAccuracy() float64 {
	if r.Chars == 0 {
		return 0
	}
	return float64(r.CorrectChars) / float64(r.Chars)
}

// CER returns the character error rate (edit distance over reference length).
func (r Report) CER() float64 {
	if r.Chars == 0 {
		return 0
	}
	return float64(r.Edits) / float64(r.Chars)
}

func (r Report) String() string {
	return fmt.Sprintf("sentence %d/%d = %.2f%%, character %d/%d = %.2f%%, CER %.2f%%",
		r.CorrectSentences, r.Sentences, r.SentenceAccuracy()*100,
		r.CorrectChars, r.Chars, r.CharAccuracy()*100,
		r.CER()*100)
}
