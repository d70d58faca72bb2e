// Package filekv stores each key as a file in a directory. It is the
// default backend for a board used from the command line.
package filekv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dyluth/kanban/pkg/persist"
)

// Store keeps one file per key under dir.
type Store struct {
	dir string
}

// New creates a file store in dir. The directory will be created if it
// doesn't exist.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Get reads the file for key, or returns persist.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, persist.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set replaces the file for key. The new content is written to a
// temporary file and renamed over the old one, so readers never see a
// partial document.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), s.Path(key)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

// Close does nothing for the file store.
func (s *Store) Close() error {
	return nil
}

// Path returns the file that holds key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

// UpdatedAt returns the modification time of the file for key.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	info, err := os.Stat(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, persist.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return info.ModTime(), nil
}

// Ensure Store implements persist.Backend and persist.Timestamped.
var (
	_ persist.Backend     = (*Store)(nil)
	_ persist.Timestamped = (*Store)(nil)
)
