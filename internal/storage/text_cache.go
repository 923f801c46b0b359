package storage

import (
	"fmt"
	"path/filepath"

	"drivemerge/internal/events"
)

// TextCache stores extracted document text, one file per remote file,
// grouped by folder. Ledger records reference entries by the relative
// ref returned from Put.
type TextCache struct {
	store *LocalStore
}

// NewTextCache creates a text cache rooted at baseDir.
func NewTextCache(baseDir string, logger *events.Logger) (*TextCache, error) {
	store, err := NewLocalStore(baseDir, logger.WithField("component", "text_cache"))
	if err != nil {
		return nil, fmt.Errorf("create text cache: %w", err)
	}
	return &TextCache{store: store}, nil
}

// Put writes a document's text and returns its cache ref.
func (c *TextCache) Put(folderID, fileID, text string) (string, error) {
	ref := filepath.ToSlash(filepath.Join(folderID, fileID+".txt"))
	if err := c.store.Write(ref, []byte(text)); err != nil {
		return "", fmt.Errorf("cache text for %s: %w", fileID, err)
	}
	return ref, nil
}

// Get reads a document's text by ref.
func (c *TextCache) Get(ref string) (string, error) {
	data, err := c.store.Read(ref)
	if err != nil {
		return "", fmt.Errorf("load cached text %s: %w", ref, err)
	}
	return string(data), nil
}

// Remove drops a cached entry. Missing entries are not an error.
func (c *TextCache) Remove(ref string) error {
	return c.store.Remove(ref)
}
