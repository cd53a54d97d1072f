package mathutil

import "math"

// LogZero represents log(0), used as negative infinity in log-domain arithmetic.
const LogZero = -1e30

// Log10Prob returns log10(count / total), the relative frequency in the log10 domain.
// A non-positive count or total yields LogZero.
func Log10Prob(count, total float64) float64 {
	if count <= 0 || total <= 0 {
		return LogZero
	}
	return math.Log10(count / total)
}

// Max returns the largest of scores and its index. Ties keep the earliest index.
// An empty slice returns (LogZero, -1).
func Max(scores []float64) (float64, int) {
	best, idx := LogZero, -1
	for i, s := range scores {
		if idx < 0 || s > best {
			best, idx = s, i
		}
	}
	return best, idx
}
