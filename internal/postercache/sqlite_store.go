// file: internal/postercache/sqlite_store.go
// version: 1.0.0
// guid: c61e9d04-2b7a-4f38-a5d1-93e0f4b6c8a7

package postercache

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jdfalk/movie-recommender/internal/logging"
)

// SQLiteStore keeps poster URLs in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// one writer at a time avoids SQLITE_BUSY under concurrent Puts
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS posters (
		title TEXT PRIMARY KEY,
		url TEXT NOT NULL
	);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get returns the cached value for title. Query errors count as a miss.
func (s *SQLiteStore) Get(title string) (string, bool) {
	var url string
	err := s.db.QueryRow("SELECT url FROM posters WHERE title = ?", title).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		logging.Warn().Err(err).Str("title", title).Msg("poster store query failed")
		return "", false
	}
	return url, true
}

// Put upserts url for title.
func (s *SQLiteStore) Put(title, url string) error {
	_, err := s.db.Exec(`
		INSERT INTO posters (title, url) VALUES (?, ?)
		ON CONFLICT(title) DO UPDATE SET url = excluded.url`, title, url)
	if err != nil {
		return fmt.Errorf("failed to store poster for %q: %w", title, err)
	}
	return nil
}

// Len returns the number of cached titles.
func (s *SQLiteStore) Len() int {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM posters").Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
