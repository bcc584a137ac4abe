// file: internal/postercache/store.go
// version: 1.0.0
// guid: 0d5b8c36-94e1-4f0a-b3f2-6a7de1c52e90

// Package postercache persists resolved poster URLs keyed by movie title.
// Entries are never evicted.
package postercache

import (
	"fmt"
)

// Store is a durable title -> poster URL map. Put must not return until the
// value is durable.
type Store interface {
	Get(title string) (string, bool)
	Put(title, url string) error
	Len() int
	Close() error
}

// Store kinds accepted by Open.
const (
	KindJSON   = "json"
	KindPebble = "pebble"
	KindSQLite = "sqlite"
)

// Open creates the store selected by kind at path. SQLite must be enabled
// explicitly.
func Open(kind, path string, enableSQLite bool) (Store, error) {
	switch kind {
	case KindJSON, "":
		return NewFileStore(path)
	case KindPebble:
		return NewPebbleStore(path)
	case KindSQLite, "sqlite3":
		if !enableSQLite {
			return nil, fmt.Errorf("SQLite3 is not enabled. Use --enable-sqlite3-i-know-the-risks or set 'enable_sqlite3_i_know_the_risks: true' in your config file")
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported poster cache type: %s (supported: json, pebble, sqlite)", kind)
	}
}
