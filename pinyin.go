// Package pinyin converts space-separated pinyin into Han text.
package pinyin

import (
	"fmt"
	"strings"

	"github.com/ieee0824/pinyin-go/decoder"
	"github.com/ieee0824/pinyin-go/language"
	"github.com/ieee0824/pinyin-go/lexicon"
)

// Converter is the top-level pinyin converter. It is safe for concurrent use.
type Converter struct {
	Model   *language.Model
	DecCfg  decoder.Config
	Workers int // goroutines used by ConvertLines; 0 = NumCPU
}

// Option configures a Converter.
type Option func(*Converter)

// WithDecoderConfig sets custom decoder parameters.
func WithDecoderConfig(cfg decoder.Config) Option {
	return func(c *Converter) {
		c.DecCfg = cfg
	}
}

// WithPolicy selects the unit policy together with its tuned backoff penalty.
func WithPolicy(p decoder.Policy) Option {
	return func(c *Converter) {
		c.DecCfg = decoder.DefaultConfig(p)
	}
}

// WithBackoffPenalty overrides the backoff penalty.
func WithBackoffPenalty(penalty float64) Option {
	return func(c *Converter) {
		c.DecCfg.BackoffPenalty = penalty
	}
}

// WithWorkers sets the number of goroutines used by ConvertLines.
func WithWorkers(n int) Option {
	return func(c *Converter) {
		c.Workers = n
	}
}

// NewConverter creates a Converter from the two model documents.
func NewConverter(unigramPath, bigramPath string, opts ...Option) (*Converter, error) {
	m, err := language.LoadFiles(unigramPath, bigramPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return NewConverterFromModel(m, opts...)
}

// NewConverterFromModel creates a Converter from a loaded model.
func NewConverterFromModel(m *language.Model, opts ...Option) (*Converter, error) {
	c := &Converter{
		Model:  m,
		DecCfg: decoder.DefaultConfig(decoder.DictionaryWord),
	}
	for _, opt := range opts {
		opt(c)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: nil model", decoder.ErrConfig)
	}
	if err := c.DecCfg.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ConvertResult converts one line of pinyin and returns the full decoding result.
func (c *Converter) ConvertResult(line string) (*decoder.Result, error) {
	syllables, err := lexicon.Split(line)
	if err != nil {
		return nil, err
	}
	return decoder.Decode(syllables, c.Model, c.DecCfg)
}

// Convert converts one line of pinyin into text.
func (c *Converter) Convert(line string) (string, error) {
	res, err := c.ConvertResult(line)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// ConvertLines converts independent lines concurrently.
// texts[i] and errs[i] belong to lines[i]; a failed line leaves texts[i] empty.
func (c *Converter) ConvertLines(lines []string) ([]string, []error) {
	inputs := make([][]string, len(lines))
	errs := make([]error, len(lines))
	for i, line := range lines {
		inputs[i], errs[i] = lexicon.Split(line)
	}

	results, decErrs := decoder.DecodeAll(inputs, c.Model, c.DecCfg, c.Workers)
	texts := make([]string, len(lines))
	for i := range lines {
		if errs[i] != nil {
			continue
		}
		if decErrs[i] != nil {
			errs[i] = decErrs[i]
			continue
		}
		texts[i] = results[i].Text
	}
	return texts, errs
}

// String describes the converter settings.
func (c *Converter) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "policy=%s penalty=%g", c.DecCfg.Policy, c.DecCfg.BackoffPenalty)
	if c.Model != nil {
		s := c.Model.Stats()
		fmt.Fprintf(&b, " keys=%d candidates=%d bigrams=%d", s.Keys, s.Candidates, s.Bigrams)
	}
	return b.String()
}
