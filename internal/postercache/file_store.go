// file: internal/postercache/file_store.go
// version: 1.0.0
// guid: 5e1f7a02-3c8d-4b6e-9a10-d2c4b87f6e35

package postercache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/jdfalk/movie-recommender/internal/logging"
)

// FileStore keeps the whole cache in memory and rewrites a flat JSON object
// on every Put.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string
}

// NewFileStore loads path. A missing file is an empty cache; a file that is
// not a JSON object of strings is an error.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug().Str("path", path).Msg("poster cache file not found, starting empty")
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read poster cache: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.entries); err != nil {
			return nil, fmt.Errorf("poster cache %s is corrupt: %w", path, err)
		}
		if s.entries == nil {
			s.entries = make(map[string]string)
		}
	}
	logging.Info().Str("path", path).Int("entries", len(s.entries)).Msg("poster cache loaded")
	return s, nil
}

// Get returns the cached value for title.
func (s *FileStore) Get(title string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[title]
	return v, ok
}

// Put stores url and flushes the full map to disk. On a write failure the
// in-memory map is left unchanged.
func (s *FileStore) Put(title, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.entries[title]
	s.entries[title] = url
	if err := s.flush(); err != nil {
		if existed {
			s.entries[title] = prev
		} else {
			delete(s.entries, title)
		}
		return err
	}
	return nil
}

// Len returns the number of cached titles.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close is a no-op; every Put is already on disk.
func (s *FileStore) Close() error { return nil }

// flush writes to a temp file in the same directory, syncs it and renames it
// over the target. Caller holds s.mu.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode poster cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write poster cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync poster cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close poster cache: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace poster cache: %w", err)
	}
	return nil
}
