// file: internal/postercache/pebble_store.go
// version: 1.1.0
// guid: 8a4c2e61-d7f3-4b95-8e0a-1f6b3c9d7a24

package postercache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble/v2"

	"github.com/jdfalk/movie-recommender/internal/logging"
)

const prefixPoster = "poster:"

// PebbleStore keeps poster URLs in PebbleDB under "poster:<title>".
type PebbleStore struct {
	db *pebble.DB

	// mu serializes writes so the existence check and count agree
	mu    sync.Mutex
	count int
}

// NewPebbleStore opens or creates a PebbleDB at path.
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{
		FormatMajorVersion: pebble.FormatNewest,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open poster store: %w", err)
	}
	s := &PebbleStore{db: db}
	n, err := s.countEntries()
	if err != nil {
		db.Close()
		return nil, err
	}
	s.count = n
	logging.Info().Str("path", path).Int("entries", n).Msg("poster PebbleDB opened")
	return s, nil
}

func posterKey(title string) []byte {
	return []byte(prefixPoster + title)
}

// Get returns the cached value for title. Read errors count as a miss.
func (s *PebbleStore) Get(title string) (string, bool) {
	val, closer, err := s.db.Get(posterKey(title))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false
	}
	if err != nil {
		logging.Warn().Err(err).Str("title", title).Msg("poster store read failed")
		return "", false
	}
	defer closer.Close()
	return string(val), true
}

// Put writes url with a synced commit.
func (s *PebbleStore) Put(title, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.Get(title)
	if err := s.db.Set(posterKey(title), []byte(url), pebble.Sync); err != nil {
		return fmt.Errorf("failed to store poster for %q: %w", title, err)
	}
	if !existed {
		s.count++
	}
	return nil
}

// Len returns the number of cached titles.
func (s *PebbleStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Close closes the underlying PebbleDB.
func (s *PebbleStore) Close() error {
	return s.db.Close()
}

func (s *PebbleStore) countEntries() (int, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefixPoster),
		UpperBound: []byte("poster;"), // ';' follows ':'
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan poster store: %w", err)
	}
	defer iter.Close()

	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	return n, iter.Error()
}
