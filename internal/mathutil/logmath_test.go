package mathutil

import (
	"math"
	"testing"
)

func TestLog10Prob(t *testing.T) {
	got := Log10Prob(30, 40)
	want := math.Log10(0.75)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Log10Prob(30, 40) = %f, want %f", got, want)
	}
	if got := Log10Prob(1, 1); got != 0 {
		t.Errorf("Log10Prob(1, 1) = %f, want 0", got)
	}
}

func TestLog10ProbDegenerate(t *testing.T) {
	if got := Log10Prob(0, 10); got != LogZero {
		t.Errorf("Log10Prob(0, 10) = %f, want LogZero", got)
	}
	if got := Log10Prob(5, 0); got != LogZero {
		t.Errorf("Log10Prob(5, 0) = %f, want LogZero", got)
	}
}

func TestMax(t *testing.T) {
	best, idx := Max([]float64{-3, -1, -2, -1})
	if best != -1 || idx != 1 {
		t.Errorf("Max = (%f, %d), want (-1, 1)", best, idx)
	}
	best, idx = Max(nil)
	if best != LogZero || idx != -1 {
		t.Errorf("Max(nil) = (%f, %d), want (LogZero, -1)", best, idx)
	}
}
