package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS habits (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    schedule        BOOLEAN[] NOT NULL DEFAULT '{f,f,f,f,f,f,f}'
                    CHECK (array_length(schedule, 1) = 7),
    completed_dates TEXT[] NOT NULL DEFAULT '{}',
    pinned          BOOLEAN NOT NULL DEFAULT FALSE,
    notes           JSONB NOT NULL DEFAULT '{}',
    current_streak  INTEGER NOT NULL DEFAULT 0 CHECK (current_streak >= 0),
    best_streak     INTEGER NOT NULL DEFAULT 0 CHECK (best_streak >= 0),
    version         INTEGER NOT NULL DEFAULT 1,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted_at      TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_habits_user_updated ON habits (user_id, updated_at);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS habits (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    schedule        TEXT NOT NULL DEFAULT '[false,false,false,false,false,false,false]',
    completed_dates TEXT NOT NULL DEFAULT '[]',
    pinned          INTEGER NOT NULL DEFAULT 0,
    notes           TEXT NOT NULL DEFAULT '{}',
    current_streak  INTEGER NOT NULL DEFAULT 0,
    best_streak     INTEGER NOT NULL DEFAULT 0,
    version         INTEGER NOT NULL DEFAULT 1,
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL,
    deleted_at      TEXT
);
CREATE INDEX IF NOT EXISTS idx_habits_user_updated ON habits (user_id, updated_at);
`

// Migrate creates the habits table for the driver db was opened with.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var schema string
	switch db.DriverName() {
	case "pgx", "postgres":
		schema = postgresSchema
	case "sqlite", "sqlite3":
		schema = sqliteSchema
	default:
		return fmt.Errorf("migrate: unsupported driver %q", db.DriverName())
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
