package lexicon

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

//go:embed fallback.tsv
var defaultTable string

// Table maps every valid syllable to one representative unit.
// A model build uses it to guarantee that each syllable has at least one candidate.
type Table struct {
	Entries map[string]string // canonical syllable -> unit text
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		Entries: make(map[string]string),
	}
}

// Add registers unit as the fallback for syllable. The syllable is stored in canonical spelling.
func (t *Table) Add(syllable, unit string) {
	t.Entries[Canonical(syllable)] = unit
}

// Load reads a fallback table from a tab-separated file.
// Format: syllable<TAB>unit
func Load(r io.Reader) (*Table, error) {
	t := NewTable()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "\t", 2)
		if len(parts) < 2 {
			return nil, fmt.Errorf("line %d: expected 2 tab-separated fields, got %d", lineNum, len(parts))
		}

		syllable := Canonical(strings.TrimSpace(parts[0]))
		unit := strings.TrimSpace(parts[1])
		if !isSyllable(syllable) {
			return nil, fmt.Errorf("line %d: invalid syllable %q", lineNum, syllable)
		}
		if unit == "" {
			return nil, fmt.Errorf("line %d: empty unit for syllable %q", lineNum, syllable)
		}

		t.Add(syllable, unit)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return t, nil
}

// LoadFile is a convenience wrapper that opens a file path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

var defaultOnce = sync.OnceValue(func() *Table {
	t, err := Load(strings.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("lexicon: embedded fallback table: %v", err))
	}
	return t
})

// Default returns the embedded fallback table covering every Mandarin syllable.
// The returned table is shared and must not be modified.
func Default() *Table {
	return defaultOnce()
}

// Lookup returns the fallback unit for a syllable.
func (t *Table) Lookup(syllable string) (string, bool) {
	unit, ok := t.Entries[Canonical(syllable)]
	return unit, ok
}

// Has reports whether the syllable is covered by the table.
func (t *Table) Has(syllable string) bool {
	_, ok := t.Lookup(syllable)
	return ok
}

// Syllables returns all syllables in the table, sorted.
func (t *Table) Syllables() []string {
	syllables := make([]string, 0, len(t.Entries))
	for s := range t.Entries {
		syllables = append(syllables, s)
	}
	sort.Strings(syllables)
	return syllables
}

// Len returns the number of syllables in the table.
func (t *Table) Len() int {
	return len(t.Entries)
}
