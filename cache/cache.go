// Package cache stores converted Documents in SQLite, keyed by a digest of
// the source bytes and the options that shaped the conversion. Converting
// the same file twice with the same options reads the second result from
// the cache.
//
// Usage:
//
//	store, err := cache.Open("pagerag.db")
//	key := cache.Key(buf.Digest(), "chunk=800", "overlap=100")
//	if entry, ok, err := store.Get(ctx, key); ok { ... }
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tsawler/pagerag/internal/scope"
	"github.com/tsawler/pagerag/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	key        TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	documents  TEXT NOT NULL,
	warnings   TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Entry is one cached conversion
type Entry struct {
	Documents []model.Document
	Warnings  []scope.Warning
	CreatedAt time.Time
}

// Store is a conversion cache. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path, creating parent
// directories as needed
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("cache: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	for _, p := range append(pragmas, schema) {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("cache: %s: %w", strings.TrimSpace(p), err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens an in-memory cache
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Key derives a cache key from a source digest and the conversion options
func Key(digest string, options ...string) string {
	h := sha256.New()
	h.Write([]byte(digest))
	for _, o := range options {
		h.Write([]byte{0})
		h.Write([]byte(o))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the entry stored under key. ok is false when there is none.
func (s *Store) Get(ctx context.Context, key string) (entry Entry, ok bool, err error) {
	var docs, warnings string
	var created int64

	err = s.db.QueryRowContext(ctx,
		`SELECT documents, warnings, created_at FROM conversions WHERE key = ?`, key,
	).Scan(&docs, &warnings, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache: get: %w", err)
	}

	if err := json.Unmarshal([]byte(docs), &entry.Documents); err != nil {
		return Entry{}, false, fmt.Errorf("cache: decode documents: %w", err)
	}
	if err := json.Unmarshal([]byte(warnings), &entry.Warnings); err != nil {
		return Entry{}, false, fmt.Errorf("cache: decode warnings: %w", err)
	}
	entry.CreatedAt = time.Unix(created, 0)
	return entry, true, nil
}

// Put stores an entry under key, replacing any previous one
func (s *Store) Put(ctx context.Context, key, source string, entry Entry) error {
	docs, err := json.Marshal(entry.Documents)
	if err != nil {
		return fmt.Errorf("cache: encode documents: %w", err)
	}
	warnings, err := json.Marshal(entry.Warnings)
	if err != nil {
		return fmt.Errorf("cache: encode warnings: %w", err)
	}

	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversions (key, source, documents, warnings, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		key, source, string(docs), string(warnings), created.Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

// Delete removes the entry stored under key
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversions WHERE key = ?`, key); err != nil {
		return fmt.Errorf("cache: delete: %w", err)
	}
	return nil
}

// Prune removes entries created before cutoff and returns how many were
// removed
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversions WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("cache: prune: %w", err)
	}
	return res.RowsAffected()
}
