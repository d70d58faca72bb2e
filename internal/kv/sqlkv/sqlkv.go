// Package sqlkv stores board documents in a single SQL table, on SQLite or
// MySQL.
//
// Schema (both dialects):
//
//	kanban_kv(k VARCHAR(255) PRIMARY KEY, v <blob>, updated_at_ms BIGINT)
package sqlkv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dyluth/kanban/pkg/persist"
)

// Dialect selects the SQL driver and its upsert syntax.
type Dialect string

const (
	// DialectSQLite uses github.com/mattn/go-sqlite3; the DSN is a file path.
	DialectSQLite Dialect = "sqlite3"

	// DialectMySQL uses github.com/go-sql-driver/mysql; the DSN is
	// user:password@tcp(host:port)/dbname.
	DialectMySQL Dialect = "mysql"
)

// Validate checks if the Dialect is a supported value.
func (d Dialect) Validate() error {
	switch d {
	case DialectSQLite, DialectMySQL:
		return nil
	default:
		return fmt.Errorf("unknown SQL dialect: %q", d)
	}
}

// schema returns the CREATE TABLE statement for the dialect.
func (d Dialect) schema() string {
	blob := "BLOB"
	if d == DialectMySQL {
		blob = "LONGBLOB"
	}
	return `CREATE TABLE IF NOT EXISTS kanban_kv (
		k VARCHAR(255) NOT NULL PRIMARY KEY,
		v ` + blob + ` NOT NULL,
		updated_at_ms BIGINT NOT NULL
	)`
}

// upsert returns the insert-or-replace statement for the dialect.
func (d Dialect) upsert() string {
	if d == DialectMySQL {
		return `INSERT INTO kanban_kv (k, v, updated_at_ms) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at_ms = VALUES(updated_at_ms)`
	}
	return `INSERT INTO kanban_kv (k, v, updated_at_ms) VALUES (?, ?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at_ms = excluded.updated_at_ms`
}

// Store is a key-value table in a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// Open connects to the database and creates the table if needed.
// This function is idempotent - safe to call multiple times.
func Open(dialect Dialect, dsn string) (*Store, error) {
	if err := dialect.Validate(); err != nil {
		return nil, err
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s DSN cannot be empty", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialect == DialectSQLite {
		// SQLite only supports one writer at a time
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	if _, err := db.Exec(dialect.schema()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, dialect: dialect, now: time.Now}, nil
}

// applyPragmas sets the SQLite configuration used for board files.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// Get reads the value of key. Returns persist.ErrNotFound if no row exists.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kanban_kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persist.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

// Set inserts or replaces the row for key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.dialect.upsert(), key, value, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// UpdatedAt returns when key was last written.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT updated_at_ms FROM kanban_kv WHERE k = ?`, key).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, persist.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read %s: %w", key, err)
	}
	return time.UnixMilli(ms), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ensure Store implements persist.Backend and persist.Timestamped.
var (
	_ persist.Backend     = (*Store)(nil)
	_ persist.Timestamped = (*Store)(nil)
)
