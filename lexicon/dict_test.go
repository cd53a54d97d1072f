package lexicon

import (
	"strings"
	"testing"
)

const testTable = `# syllable	fallback unit
ni	你
hao	好
lue	略
nü	女
`

func TestLoadTable(t *testing.T) {
	tbl, err := Load(strings.NewReader(testTable))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if tbl.Len() != 4 {
		t.Fatalf("Len = %d, want 4", tbl.Len())
	}
	if unit, ok := tbl.Lookup("ni"); !ok || unit != "你" {
		t.Errorf("Lookup(ni) = %q, %v, want 你, true", unit, ok)
	}

	// Stored under the canonical spelling, found under either spelling
	if _, ok := tbl.Entries["lve"]; !ok {
		t.Error("lue should be stored as lve")
	}
	if unit, ok := tbl.Lookup("lue"); !ok || unit != "略" {
		t.Errorf("Lookup(lue) = %q, %v, want 略, true", unit, ok)
	}
	if !tbl.Has("nv") {
		t.Error("nü should be stored as nv")
	}
}

func TestLoadTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing unit", "ni\n"},
		{"empty unit", "ni\t \n"},
		{"digit in syllable", "ni3\t你\n"},
	}

	for _, tt := range tests {
		if _, err := Load(strings.NewReader(tt.input)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestSyllablesSorted(t *testing.T) {
	tbl, err := Load(strings.NewReader(testTable))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	got := tbl.Syllables()
	want := []string{"hao", "lve", "ni", "nv"}
	if len(got) != len(want) {
		t.Fatalf("Syllables = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Syllables[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDefaultTable(t *testing.T) {
	tbl := Default()
	if tbl.Len() != 406 {
		t.Errorf("Default().Len() = %d, want 406", tbl.Len())
	}

	for _, s := range []string{"a", "zhuang", "lve", "nve", "lv", "nv", "ei"} {
		if !tbl.Has(s) {
			t.Errorf("default table is missing %q", s)
		}
	}
	for _, s := range tbl.Syllables() {
		if !isSyllable(s) {
			t.Errorf("default table key %q is not a syllable", s)
		}
		if Canonical(s) != s {
			t.Errorf("default table key %q is not canonical", s)
		}
	}
}
