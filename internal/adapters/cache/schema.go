package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSqliteSchema creates the cache table in an SQLite database.
func InitSqliteSchema(ctx context.Context, db *sql.DB) error {
	return initSchema(ctx, db, []string{
		`
	CREATE TABLE IF NOT EXISTS cache_entries (
        fingerprint TEXT PRIMARY KEY,
        payload TEXT NOT NULL,
        metadata TEXT,
        created_at TEXT NOT NULL
    );
	`,
	})
}

// InitPostgresSchema creates the cache table in a PostgreSQL database.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	return initSchema(ctx, db, []string{
		`
	CREATE TABLE IF NOT EXISTS cache_entries (
        fingerprint TEXT PRIMARY KEY,
        payload JSONB NOT NULL,
        metadata JSONB,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    );
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_cache_entries_created_at
    ON cache_entries(created_at);
	`,
	})
}

func initSchema(ctx context.Context, db *sql.DB, statements []string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
