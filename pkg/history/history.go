// Package history persists completed analyses to a local SQLite database
// so past queries can be reviewed with `morfo history`.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/morfolab/morfo/pkg/dotdir"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	query      TEXT    NOT NULL,
	entries    INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);
`

// DefaultPath resolves the history database location inside the .morfo/
// directory when no explicit path is configured.
func DefaultPath(override string) (string, error) {
	target, err := dotdir.NewManager().Target(override)
	if err != nil {
		return "", fmt.Errorf("resolving history path: %w", err)
	}
	return filepath.Join(target, "history.db"), nil
}

// Record is one completed analysis.
type Record struct {
	ID        int64
	Query     string
	Entries   int
	Duration  time.Duration
	CreatedAt time.Time
}

// Store is a SQLite-backed analysis history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the history database at path.
// The path can be ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one completed analysis.
func (s *Store) Record(ctx context.Context, query string, entries int, duration time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (query, entries, duration_ms, created_at) VALUES (?, ?, ?, ?)`,
		query, entries, duration.Milliseconds(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording analysis: %w", err)
	}
	return nil
}

// List returns the most recent analyses, newest first, capped at limit.
// A non-positive limit returns the 20 most recent.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, entries, duration_ms, created_at
		 FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r  Record
			ms int64
		)
		if err := rows.Scan(&r.ID, &r.Query, &r.Entries, &ms, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning analysis row: %w", err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating analyses: %w", err)
	}

	return records, nil
}
