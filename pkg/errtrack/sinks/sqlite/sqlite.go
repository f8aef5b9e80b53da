// Package sqlite provides a sink that persists records to a SQLite database
// for retrieval across sessions. Records are deduplicated by fingerprint
// with an occurrence count, so a flapping subsystem does not grow the
// database without bound.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lanwarden/errtrack/pkg/errtrack"
)

// Store persists error records to SQLite. It implements errtrack.Sink and
// additionally exposes query methods for diagnostics tooling.
type Store struct {
	db   *sql.DB
	path string
}

// StoreConfig configures the store.
type StoreConfig struct {
	Path string // Path to the SQLite database file
}

// NewStore opens (or creates) the database at cfg.Path and migrates the
// schema.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite store: path is required")
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("sqlite store: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: cfg.Path,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: migrate: %w", err)
	}

	return store, nil
}

// migrate creates or updates the database schema.
func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS errors (
			fingerprint  TEXT PRIMARY KEY,
			record_id    TEXT NOT NULL,
			session_id   TEXT NOT NULL,
			category     TEXT NOT NULL,
			severity     TEXT NOT NULL,
			message      TEXT NOT NULL,
			module       TEXT NOT NULL,
			function     TEXT NOT NULL,
			line         INTEGER NOT NULL,
			record_json  TEXT NOT NULL,
			first_seen   TIMESTAMP NOT NULL,
			last_seen    TIMESTAMP NOT NULL,
			occurrences  INTEGER DEFAULT 1
		);

		CREATE INDEX IF NOT EXISTS idx_errors_category ON errors(category);
		CREATE INDEX IF NOT EXISTS idx_errors_severity ON errors(severity);
		CREATE INDEX IF NOT EXISTS idx_errors_last_seen ON errors(last_seen);
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Write upserts the record. A record with a known fingerprint updates the
// stored row and bumps its occurrence count.
func (s *Store) Write(ctx context.Context, rec errtrack.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("sqlite store: marshal record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO errors (
			fingerprint, record_id, session_id, category, severity,
			message, module, function, line, record_json, first_seen, last_seen
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			record_id   = excluded.record_id,
			message     = excluded.message,
			severity    = excluded.severity,
			record_json = excluded.record_json,
			last_seen   = excluded.last_seen,
			occurrences = occurrences + 1
	`,
		rec.Fingerprint, rec.RecordID, rec.SessionID, rec.Category.String(),
		rec.Severity.String(), rec.Message, rec.Module, rec.Function, rec.Line,
		string(body), rec.Timestamp, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("sqlite store: insert record: %w", err)
	}
	return nil
}

// Flush is a no-op; writes are committed per record.
func (s *Store) Flush(ctx context.Context) error {
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StoredError is one deduplicated row from the errors table.
type StoredError struct {
	Record      errtrack.Record
	FirstSeen   time.Time
	LastSeen    time.Time
	Occurrences int64
}

// Recent returns up to n stored errors, most recently seen first.
func (s *Store) Recent(ctx context.Context, n int) ([]StoredError, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_json, first_seen, last_seen, occurrences
		FROM errors
		ORDER BY last_seen DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: query recent: %w", err)
	}
	defer rows.Close()

	var out []StoredError
	for rows.Next() {
		var body string
		var stored StoredError
		if err := rows.Scan(&body, &stored.FirstSeen, &stored.LastSeen, &stored.Occurrences); err != nil {
			return nil, fmt.Errorf("sqlite store: scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(body), &stored.Record); err != nil {
			return nil, fmt.Errorf("sqlite store: decode record: %w", err)
		}
		out = append(out, stored)
	}
	return out, rows.Err()
}

// CountBySeverity returns occurrence totals grouped by severity.
func (s *Store) CountBySeverity(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT severity, SUM(occurrences)
		FROM errors
		GROUP BY severity
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: query severities: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var severity string
		var n int64
		if err := rows.Scan(&severity, &n); err != nil {
			return nil, fmt.Errorf("sqlite store: scan row: %w", err)
		}
		counts[severity] = n
	}
	return counts, rows.Err()
}
