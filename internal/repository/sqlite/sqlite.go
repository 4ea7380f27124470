// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code.
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB      - a connection pool (NOT a single connection!)
//   - sql.Row     - a single result row
//   - sql.Rows    - multiple result rows (must be closed!)
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// The sqlite package's init() registers a database/sql driver named "sqlite".
	_ "modernc.org/sqlite"

	"github.com/sakif/users-api/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// Options tunes the pool and startup behaviour.
type Options struct {
	MaxOpenConns int
	AutoMigrate  bool
}

// DB wraps a sql.DB connection pool and implements repository.Store.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath, verifies it with a ping and, when
// opts.AutoMigrate is set, creates the users table.
//
// dbPath examples:
//   - "data/users.db"  → file-based database (persistent)
//   - ":memory:"       → in-memory database (great for tests, lost on close)
//
// An in-memory database exists per connection, so the pool is pinned to a
// single connection in that case; otherwise a second connection would see an
// empty schema.
func New(ctx context.Context, dbPath string, opts Options) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	switch {
	case dbPath == ":memory:":
		conn.SetMaxOpenConns(1)
	case opts.MaxOpenConns > 0:
		conn.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening.
	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Without a busy timeout concurrent writers fail immediately with SQLITE_BUSY.
	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if opts.AutoMigrate {
		if err := db.migrate(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: running migrations: %w", err)
		}
	}

	return db, nil
}

// Ping verifies the database is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the users table if it does not exist yet.
//
// birthday is TEXT rather than DATE: the driver converts DATE columns to
// time.Time on read, and the API stores whatever "YYYY-MM-DD"-shaped text it
// was given (including "2024-13-40").
func (db *DB) migrate(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			birthday   TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}
	return nil
}
