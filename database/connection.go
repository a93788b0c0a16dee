package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

var (
	pool   *pgxpool.Pool
	poolMu sync.Mutex
)

// GetPool returns a process-wide PostgreSQL connection pool for connStr.
// Once a pool is connected, later calls reuse it regardless of connStr.
// Failed attempts are not cached, so the next call dials again.
func GetPool(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	poolMu.Lock()
	defer poolMu.Unlock()

	if pool != nil {
		return pool, nil
	}
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL not set in environment")
	}

	p, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Test the connection
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	pool = p
	return pool, nil
}

// ClosePool closes the connection pool (should be called on application shutdown)
func ClosePool() {
	poolMu.Lock()
	defer poolMu.Unlock()

	if pool != nil {
		pool.Close()
		pool = nil
	}
}

// OpenSQLite opens a SQLite database file (or ":memory:") with foreign keys enabled.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}

	// an in-memory database exists per connection, so keep exactly one
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return db, nil
}
