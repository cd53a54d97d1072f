package eval

import "testing"

func TestEditDistance(t *testing.T) {
	r := func(s string) []rune { return []rune(s) }

	tests := []struct {
		name string
		a, b []rune
		want int
	}{
		{"identical", r("你好"), r("你好"), 0},
		{"empty_both", nil, nil, 0},
		{"empty_a", nil, r("你好"), 2},
		{"empty_b", r("好"), nil, 1},
		{"substitution", r("你好"), r("你号"), 1},
		{"insertion", r("你好"), r("你好吗"), 1},
		{"deletion", r("我爱你们"), r("我爱们"), 1},
		{"homophone_word", r("去西安"), r("去西岸"), 1},
		{"shifted", r("北京欢迎你"), r("京欢迎你啊"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EditDistance(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("EditDistance() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEditDistanceStrings(t *testing.T) {
	a := []string{"ni", "hao", "ma"}
	b := []string{"ni", "hao"}
	if got := EditDistance(a, b); got != 1 {
		t.Errorf("EditDistance() = %d, want 1", got)
	}
}
