package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS cache_records (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		body       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cache_records_name ON cache_records(name)`,
}

// SQLite is a Store backed by a single SQLite file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at dbPath and ensures the schema.
func NewSQLite(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	// Single user, single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating cache schema: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

// Insert appends a record; existing records for the same name are kept.
func (s *SQLite) Insert(ctx context.Context, name string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_records (name, body, created_at) VALUES (?, ?, ?)`,
		name, string(body), now().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting cache record for '%s': %w", name, err)
	}
	return nil
}

// Exists reports whether any record matches name exactly.
func (s *SQLite) Exists(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM cache_records WHERE name = ? LIMIT 1`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking cache for '%s': %w", name, err)
	}
	return true, nil
}

// FirstMatch returns the oldest body stored for name.
func (s *SQLite) FirstMatch(ctx context.Context, name string) ([]byte, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM cache_records WHERE name = ? ORDER BY id ASC LIMIT 1`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache for '%s': %w", name, err)
	}
	return []byte(body), true, nil
}

// Count returns the number of records for name.
func (s *SQLite) Count(ctx context.Context, name string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_records WHERE name = ?`, name).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache records for '%s': %w", name, err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
