// Package history provides a SQLite-backed record of ingestion runs and
// question/answer exchanges. It exists so operators can audit what was
// indexed and what was asked across CLI invocations.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Run records one ingestion run.
type Run struct {
	// Source is the ingested document label (usually the file base name).
	Source string
	// Chunks is the number of chunks written to the index.
	Chunks int
	// Outcome is "ok", "empty", or "error".
	Outcome string
	// CreatedAt is when the run finished.
	CreatedAt time.Time
}

// Exchange records one question/answer round trip.
type Exchange struct {
	// Question is the user's query.
	Question string
	// Answer is the synthesized reply.
	Answer string
	// TopK is the number of chunks retrieved for the answer.
	TopK int
	// CreatedAt is when the exchange was persisted.
	CreatedAt time.Time
}

// Store persists runs and exchanges. Safe for concurrent use.
type Store struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the history database,
// ~/.docq/history.db, creating the directory if needed. DOCQ_HISTORY_DB
// overrides it.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("DOCQ_HISTORY_DB"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("history: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".docq")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("history: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (or creates) a Store at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*Store, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *Store) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    source      TEXT    NOT NULL,
    chunks      INTEGER NOT NULL,
    outcome     TEXT    NOT NULL CHECK(outcome IN ('ok','empty','error')),
    created_at  INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE TABLE IF NOT EXISTS exchanges (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    question    TEXT    NOT NULL,
    answer      TEXT    NOT NULL,
    top_k       INTEGER NOT NULL,
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs (created_at);
CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges (created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// RecordRun persists one ingestion run.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	const q = `INSERT INTO runs (source, chunks, outcome, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, r.Source, r.Chunks, r.Outcome, time.Now().Unix()); err != nil {
		return fmt.Errorf("history: record run: %w", err)
	}
	return nil
}

// RecordExchange persists one question/answer exchange.
func (s *Store) RecordExchange(ctx context.Context, e Exchange) error {
	const q = `INSERT INTO exchanges (question, answer, top_k, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, e.Question, e.Answer, e.TopK, time.Now().Unix()); err != nil {
		return fmt.Errorf("history: record exchange: %w", err)
	}
	return nil
}

// RecentRuns returns up to n ingestion runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, n int) ([]Run, error) {
	const q = `
SELECT source, chunks, outcome, created_at
FROM   runs
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("history: recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var ts int64
		if err := rows.Scan(&r.Source, &r.Chunks, &r.Outcome, &ts); err != nil {
			return nil, fmt.Errorf("history: recent runs scan: %w", err)
		}
		r.CreatedAt = time.Unix(ts, 0)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: recent runs rows: %w", err)
	}
	return runs, nil
}

// RecentExchanges returns up to n exchanges, newest first.
func (s *Store) RecentExchanges(ctx context.Context, n int) ([]Exchange, error) {
	const q = `
SELECT question, answer, top_k, created_at
FROM   exchanges
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("history: recent exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var e Exchange
		var ts int64
		if err := rows.Scan(&e.Question, &e.Answer, &e.TopK, &ts); err != nil {
			return nil, fmt.Errorf("history: recent exchanges scan: %w", err)
		}
		e.CreatedAt = time.Unix(ts, 0)
		exchanges = append(exchanges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: recent exchanges rows: %w", err)
	}
	return exchanges, nil
}

// Close releases the database connection pool.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("history: close: %w", err)
	}
	return nil
}
