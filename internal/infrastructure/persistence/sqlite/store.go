// Package sqlite implements file-backed persistence on SQLite. It is the
// zero-dependency deployment option: one database file, no server. Local
// dates are stored as YYYY-MM-DD text, which sorts and compares correctly.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store owns the SQLite database handle shared by the repositories.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %s: %w", path, err)
	}

	// SQLite allows one writer; serialize access through a single connection
	// instead of surfacing SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id     INTEGER PRIMARY KEY,
			weight_kg   INTEGER NOT NULL DEFAULT 0,
			ml_per_kg   INTEGER NOT NULL,
			goal_ml     INTEGER NOT NULL DEFAULT 0,
			goal_source TEXT NOT NULL DEFAULT 'none',
			updated_at  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS intake_events (
			user_id      INTEGER NOT NULL,
			entry_id     INTEGER NOT NULL,
			ts           TEXT NOT NULL,
			local_date   TEXT NOT NULL,
			drink        TEXT NOT NULL,
			raw_ml       INTEGER NOT NULL,
			effective_ml INTEGER NOT NULL,
			PRIMARY KEY (user_id, entry_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_intake_events_user_date
			ON intake_events (user_id, local_date)`,
		`CREATE TABLE IF NOT EXISTS goal_history (
			user_id   INTEGER NOT NULL,
			from_date TEXT NOT NULL,
			goal_ml   INTEGER NOT NULL,
			PRIMARY KEY (user_id, from_date)
		)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: failed to init schema: %w", err)
		}
	}
	return nil
}
