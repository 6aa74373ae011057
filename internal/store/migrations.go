package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for the results database.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		algorithm  TEXT NOT NULL,
		strategy   TEXT NOT NULL DEFAULT '',
		seed       INTEGER NOT NULL DEFAULT 0,
		makespan   REAL NOT NULL,
		result     TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_algorithm ON runs(algorithm)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
