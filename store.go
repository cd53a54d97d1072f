package pinyin

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ieee0824/pinyin-go/language"
)

// ObjectStore is a keyed blob store holding the persisted model documents.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// LoadModelFromStore reads the unigram and bigram documents from store.
func LoadModelFromStore(ctx context.Context, store ObjectStore, unigramKey, bigramKey string) (*language.Model, error) {
	uni, err := store.Download(ctx, unigramKey)
	if err != nil {
		return nil, fmt.Errorf("download unigrams: %w", err)
	}
	bi, err := store.Download(ctx, bigramKey)
	if err != nil {
		return nil, fmt.Errorf("download bigrams: %w", err)
	}
	return language.Load(bytes.NewReader(uni), bytes.NewReader(bi))
}

// SaveModelToStore writes the unigram and bigram documents of m to store.
func SaveModelToStore(ctx context.Context, store ObjectStore, m *language.Model, unigramKey, bigramKey string) error {
	var uni, bi bytes.Buffer
	if err := m.WriteUnigrams(&uni); err != nil {
		return err
	}
	if err := m.WriteBigrams(&bi); err != nil {
		return err
	}
	if err := store.Upload(ctx, unigramKey, uni.Bytes()); err != nil {
		return fmt.Errorf("upload unigrams: %w", err)
	}
	if err := store.Upload(ctx, bigramKey, bi.Bytes()); err != nil {
		return fmt.Errorf("upload bigrams: %w", err)
	}
	return nil
}
