package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

// MemoryDSN keeps the database inside the process. Nothing survives a restart.
const MemoryDSN = ":memory:"

const driverName = "sqlite"

const gameSchema = `
CREATE TABLE IF NOT EXISTS games (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	status TEXT NOT NULL,
	winner TEXT NOT NULL DEFAULT '',
	vs_computer INTEGER NOT NULL,
	difficulty TEXT NOT NULL,
	moves TEXT NOT NULL,
	finished_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS games_session_id ON games (session_id);`

// Connect opens the SQLite database at dsn and verifies the schema. An empty dsn opens an
// in-memory database.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	pool, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	// Every connection to :memory: is a separate database.
	pool.SetMaxOpenConns(1)
	pool.SetMaxIdleConns(1)
	pool.SetConnMaxLifetime(0)

	if err := InitializeDB(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "Connected to history database", "db.dsn", dsn)
	return pool, nil
}

// InitializeDB creates the games table if it doesn't exist.
func InitializeDB(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, gameSchema); err != nil {
		return fmt.Errorf("failed to create games table: %w", err)
	}
	return nil
}
