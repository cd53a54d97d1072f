package decoder

import (
	"github.com/ieee0824/pinyin-go/internal/parallel"
	"github.com/ieee0824/pinyin-go/language"
)

// DecodeAll decodes independent inputs concurrently on at most workers
// goroutines (NumCPU when workers <= 0). The model is shared read-only.
// results[i] and errs[i] belong to inputs[i]; a failed input does not
// affect the others.
func DecodeAll(inputs [][]string, m *language.Model, cfg Config, workers int) ([]*Result, []error) {
	results := make([]*Result, len(inputs))
	errs := make([]error, len(inputs))
	parallel.ForEach(len(inputs), workers, func(i int) {
		results[i], errs[i] = Decode(inputs[i], m, cfg)
	})
	return results, errs
}
