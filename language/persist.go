package language

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// pairSep joins the left and right text of a bigram key in the persisted document.
const pairSep = "-"

// WriteUnigrams writes the unigram table as a JSON object:
// {"ni hao": [["你好", -3.2]], "ni": [["你", -2.1], ["呢", -3.0]]}
func (m *Model) WriteUnigrams(w io.Writer) error {
	if err := json.NewEncoder(w).Encode(m.unigrams); err != nil {
		return fmt.Errorf("write unigrams: %w", err)
	}
	return nil
}

// WriteBigrams writes the bigram table as a JSON object keyed by "left-right":
// {"你-好": -1.7}
func (m *Model) WriteBigrams(w io.Writer) error {
	doc := make(map[string]float64, len(m.bigrams))
	for key, lp := range m.bigrams {
		doc[key[0]+pairSep+key[1]] = lp
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("write bigrams: %w", err)
	}
	return nil
}

// Load reads a model from its unigram and bigram JSON documents.
func Load(unigrams, bigrams io.Reader) (*Model, error) {
	var uni UnigramTable
	if err := json.NewDecoder(unigrams).Decode(&uni); err != nil {
		return nil, fmt.Errorf("parse unigram table: %w", err)
	}

	var doc map[string]float64
	if err := json.NewDecoder(bigrams).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse bigram table: %w", err)
	}
	bi := make(BigramTable, len(doc))
	for key, lp := range doc {
		left, right, ok := strings.Cut(key, pairSep)
		if !ok || left == "" || right == "" {
			return nil, fmt.Errorf("parse bigram table: malformed pair key %q", key)
		}
		bi[[2]string{left, right}] = lp
	}

	return NewModel(uni, bi), nil
}

// LoadFiles is a convenience wrapper that opens both document paths.
func LoadFiles(unigramPath, bigramPath string) (*Model, error) {
	uf, err := os.Open(unigramPath)
	if err != nil {
		return nil, err
	}
	defer uf.Close()
	bf, err := os.Open(bigramPath)
	if err != nil {
		return nil, err
	}
	defer bf.Close()
	return Load(uf, bf)
}

// SaveFiles writes both documents to the given paths.
func (m *Model) SaveFiles(unigramPath, bigramPath string) error {
	if err := writeFile(unigramPath, m.WriteUnigrams); err != nil {
		return err
	}
	return writeFile(bigramPath, m.WriteBigrams)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
