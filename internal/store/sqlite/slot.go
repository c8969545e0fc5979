// Package sqlite provides a SQLite-backed slot for the local catalog cache.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS slots (
	name       TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Slot persists named values in a single SQLite table.
type Slot struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(path string) (*Slot, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Slot{sqlDB: sqlDB, now: time.Now}, nil
}

// Get returns ok=false when the slot has never been written.
func (s *Slot) Get(ctx context.Context, name string) ([]byte, bool, error) {
	var value []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM slots WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get slot %s: %w", name, err)
	}
	return value, true, nil
}

// Put upserts the slot value.
func (s *Slot) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, data, s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put slot %s: %w", name, err)
	}
	return nil
}

// Delete removes the named slots atomically.
func (s *Slot) Delete(ctx context.Context, names ...string) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete slot %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// Ping checks the database handle.
func (s *Slot) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Slot) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
