package language

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ieee0824/pinyin-go/internal/mathutil"
	"github.com/ieee0824/pinyin-go/lexicon"
)

// ErrBuild reports that a model could not be built from the given counts.
var ErrBuild = errors.New("model build failed")

// Defaults used for the news corpus model.
const (
	DefaultUnigramThreshold = 10
	DefaultBigramThreshold  = 1
	DefaultFallbackCount    = 0.1
)

// BuildConfig holds the normalization parameters of a Builder.
type BuildConfig struct {
	UnigramThreshold int64   // unigram entries with count <= threshold are dropped
	BigramThreshold  int64   // bigram entries with count <= threshold are dropped
	FallbackCount    float64 // pseudo-count given to fallback units, in (0, 1)
}

// DefaultBuildConfig returns the thresholds used for the news corpus.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		UnigramThreshold: DefaultUnigramThreshold,
		BigramThreshold:  DefaultBigramThreshold,
		FallbackCount:    DefaultFallbackCount,
	}
}

// BuildReport describes what a build did with its input.
type BuildReport struct {
	Fallbacks       []string // syllables filled from the fallback table, sorted
	UnigramTotal    int64    // sum of all raw unigram counts
	BigramTotal     int64    // sum of all raw bigram counts
	DroppedUnigrams int      // entries removed by the unigram threshold
	DroppedBigrams  int      // entries removed by the bigram threshold
	Stats           Stats
}

// Builder accumulates raw counts and builds a Model.
// A Builder is not safe for concurrent use; give each shard its own and Merge them.
type Builder struct {
	cfg      BuildConfig
	unigrams map[[2]string]int64 // (pronunciation, text) -> count
	bigrams  map[[2]string]int64 // (left text, right text) -> count
	err      error
}

// NewBuilder creates an empty builder.
func NewBuilder(cfg BuildConfig) *Builder {
	return &Builder{
		cfg:      cfg,
		unigrams: make(map[[2]string]int64),
		bigrams:  make(map[[2]string]int64),
	}
}

// AddUnigram adds count occurrences of text pronounced as pron.
// Invalid input is remembered and returned by Build.
func (b *Builder) AddUnigram(pron, text string, count int64) {
	if b.err != nil {
		return
	}
	if err := checkTuple(pron, text, count); err != nil {
		b.err = fmt.Errorf("%w: unigram (%q, %q): %v", ErrBuild, pron, text, err)
		return
	}
	b.unigrams[[2]string{pron, text}] += count
}

// AddBigram adds count occurrences of left immediately followed by right.
// The pronunciations that produced the pair are not part of the key:
// the same text pair reached through different readings is summed.
func (b *Builder) AddBigram(left, right string, count int64) {
	if b.err != nil {
		return
	}
	if err := checkTuple(left, right, count); err != nil {
		b.err = fmt.Errorf("%w: bigram (%q, %q): %v", ErrBuild, left, right, err)
		return
	}
	b.bigrams[[2]string{left, right}] += count
}

// Merge adds all counts of other into b. Merging is plain summation, so
// shards may be merged in any order.
func (b *Builder) Merge(other *Builder) {
	if b.err == nil && other.err != nil {
		b.err = other.err
	}
	for key, c := range other.unigrams {
		b.unigrams[key] += c
	}
	for key, c := range other.bigrams {
		b.bigrams[key] += c
	}
}

func checkTuple(a, b string, count int64) error {
	if a == "" || b == "" {
		return errors.New("empty key")
	}
	if count < 0 {
		return fmt.Errorf("negative count %d", count)
	}
	return nil
}

// Build normalizes the accumulated counts into a Model.
// Every syllable of fallback that has no candidate after thresholding gets
// the fallback unit with probability FallbackCount/total, which is below
// any observed entry. fallback may be nil.
func (b *Builder) Build(fallback *lexicon.Table) (*Model, *BuildReport, error) {
	if b.err != nil {
		return nil, nil, b.err
	}
	if b.cfg.FallbackCount <= 0 || b.cfg.FallbackCount >= 1 {
		return nil, nil, fmt.Errorf("%w: fallback count %g outside (0, 1)", ErrBuild, b.cfg.FallbackCount)
	}
	if b.cfg.UnigramThreshold < 0 || b.cfg.BigramThreshold < 0 {
		return nil, nil, fmt.Errorf("%w: negative threshold", ErrBuild)
	}

	report := &BuildReport{}
	for _, c := range b.unigrams {
		report.UnigramTotal += c
	}
	for _, c := range b.bigrams {
		report.BigramTotal += c
	}
	if report.UnigramTotal == 0 {
		return nil, nil, fmt.Errorf("%w: no unigram counts", ErrBuild)
	}
	if report.BigramTotal == 0 {
		return nil, nil, fmt.Errorf("%w: no bigram counts", ErrBuild)
	}

	uniTotal := float64(report.UnigramTotal)
	unigrams := make(UnigramTable)
	for key, c := range b.unigrams {
		// Low counts are mostly segmentation noise
		if c <= b.cfg.UnigramThreshold || c == 0 {
			report.DroppedUnigrams++
			continue
		}
		unigrams[key[0]] = append(unigrams[key[0]], Candidate{
			Text:    key[1],
			LogProb: mathutil.Log10Prob(float64(c), uniTotal),
		})
	}

	if fallback != nil {
		fallbackLogProb := mathutil.Log10Prob(b.cfg.FallbackCount, uniTotal)
		for _, s := range fallback.Syllables() {
			if len(unigrams[s]) > 0 {
				continue
			}
			unit, _ := fallback.Lookup(s)
			unigrams[s] = []Candidate{{Text: unit, LogProb: fallbackLogProb}}
			report.Fallbacks = append(report.Fallbacks, s)
		}
	}

	for _, cands := range unigrams {
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].LogProb != cands[j].LogProb {
				return cands[i].LogProb > cands[j].LogProb
			}
			return cands[i].Text < cands[j].Text
		})
	}

	biTotal := float64(report.BigramTotal)
	bigrams := make(BigramTable)
	for key, c := range b.bigrams {
		if c <= b.cfg.BigramThreshold || c == 0 {
			report.DroppedBigrams++
			continue
		}
		bigrams[key] = mathutil.Log10Prob(float64(c), biTotal)
	}

	m := NewModel(unigrams, bigrams)
	report.Stats = m.Stats()
	return m, report, nil
}
