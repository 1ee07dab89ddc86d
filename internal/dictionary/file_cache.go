package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CacheFileName is the file FileCache keeps under its directory.
const CacheFileName = "dictionary.json"

// cacheDocument is the on-disk layout of FileCache.
type cacheDocument struct {
	Metadata Metadata `json:"metadata"`
	Entries  Dataset  `json:"entries"`
}

// FileCache stores the whole dataset as a single JSON document.
// Writes go to a temporary file that is renamed over the previous cache,
// so a reader sees either the old or the new document.
type FileCache struct {
	rootDir string
}

func NewFileCache(cacheDirectory string) *FileCache {
	return &FileCache{
		rootDir: cacheDirectory,
	}
}

func (cache *FileCache) filePath() string {
	return filepath.Join(cache.rootDir, CacheFileName)
}

func (cache *FileCache) Location() string {
	return cache.filePath()
}

func (cache *FileCache) Load(_ context.Context) (Dataset, Metadata, error) {
	document, err := cache.read()
	if err != nil {
		return nil, Metadata{}, err
	}
	if len(document.Entries) != document.Metadata.EntryCount {
		return nil, Metadata{}, fmt.Errorf("%w: metadata reports %d entries but %d are stored",
			ErrCorruptCache, document.Metadata.EntryCount, len(document.Entries))
	}
	for i, entry := range document.Entries {
		if entry.ISV == "" {
			return nil, Metadata{}, fmt.Errorf("%w: entry %d has no isv headword", ErrCorruptCache, i)
		}
	}
	return document.Entries, document.Metadata, nil
}

func (cache *FileCache) Info(_ context.Context) (Metadata, error) {
	document, err := cache.read()
	if err != nil {
		return Metadata{}, err
	}
	return document.Metadata, nil
}

func (cache *FileCache) read() (cacheDocument, error) {
	var document cacheDocument
	contents, err := os.ReadFile(cache.filePath())
	if errors.Is(err, fs.ErrNotExist) {
		return document, ErrNotFound
	}
	if err != nil {
		return document, fmt.Errorf("os.ReadFile > %w", err)
	}

	if err := json.Unmarshal(contents, &document); err != nil {
		return document, fmt.Errorf("%w: json.Unmarshal > %v", ErrCorruptCache, err)
	}
	if document.Metadata.SchemaVersion != SchemaVersion {
		return document, fmt.Errorf("%w: schema version %d, want %d",
			ErrCorruptCache, document.Metadata.SchemaVersion, SchemaVersion)
	}
	return document, nil
}

func (cache *FileCache) Save(_ context.Context, dataset Dataset, metadata Metadata) error {
	if err := os.MkdirAll(cache.rootDir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll > %w", err)
	}

	metadata.EntryCount = len(dataset)
	metadata.SchemaVersion = SchemaVersion
	if dataset == nil {
		dataset = Dataset{}
	}
	contents, err := json.Marshal(cacheDocument{Metadata: metadata, Entries: dataset})
	if err != nil {
		return fmt.Errorf("json.Marshal > %w", err)
	}

	file, err := os.CreateTemp(cache.rootDir, CacheFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp > %w", err)
	}
	tempPath := file.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, err := file.Write(contents); err != nil {
		_ = file.Close()
		return fmt.Errorf("file.Write > %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("file.Sync > %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("file.Close > %w", err)
	}
	if err := os.Rename(tempPath, cache.filePath()); err != nil {
		return fmt.Errorf("os.Rename > %w", err)
	}
	return nil
}

func (cache *FileCache) Clear(_ context.Context) error {
	if err := os.Remove(cache.filePath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("os.Remove > %w", err)
	}
	return nil
}
