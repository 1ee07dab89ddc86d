package dictionary

import "context"

//go:generate mockgen -source=store.go -destination=../mocks/dictionary/mock_store.go -package=mock_dictionary

// Store persists the normalized dataset together with its metadata.
// Load and Info return ErrNotFound when nothing is cached and ErrCorruptCache
// when the cache cannot be read back.
type Store interface {
	Load(ctx context.Context) (Dataset, Metadata, error)
	Save(ctx context.Context, dataset Dataset, metadata Metadata) error
	Clear(ctx context.Context) error
	Info(ctx context.Context) (Metadata, error)
	Location() string
}

var (
	_ Store = (*FileCache)(nil)
	_ Store = (*DBStore)(nil)
)
