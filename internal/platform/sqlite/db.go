package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// timeLayout is fixed width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS vocabulary_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		headword TEXT NOT NULL CHECK (headword <> ''),
		meaning TEXT NOT NULL CHECK (meaning <> ''),
		example TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vocabulary_items_user_id ON vocabulary_items(user_id)`,
	`CREATE TABLE IF NOT EXISTS schedule_states (
		user_id TEXT NOT NULL,
		item_id TEXT NOT NULL REFERENCES vocabulary_items(id) ON DELETE CASCADE,
		ease REAL NOT NULL CHECK (ease >= 1.3),
		interval_days INTEGER NOT NULL CHECK (interval_days >= 0),
		repetitions INTEGER NOT NULL CHECK (repetitions >= 0),
		last_reviewed TEXT,
		next_review TEXT NOT NULL,
		review_count INTEGER NOT NULL CHECK (review_count >= 0),
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_states_user_next_review ON schedule_states(user_id, next_review)`,
}

// Open opens or creates the SQLite database at dsn, applies pragmas and
// creates the schema if needed.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
	}

	return db, nil
}

func applyPragmas(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}
