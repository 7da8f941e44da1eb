// Package store persists accounts, categories and transactions in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrDuplicateExternalID is returned when a transaction's external id is
	// already stored for its account.
	ErrDuplicateExternalID = errors.New("external id already imported for this account")

	// ErrDuplicateCategory is returned when the user already has a category with that name.
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrNotFound is returned by lookups that match nothing.
	ErrNotFound = errors.New("not found")
)

// busyTimeout is how long a writer waits for another process holding the database lock.
const busyTimeout = 5 * time.Second

// timeLayout stores instants as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS bank_accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	account_number TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	institution TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT 'checking',
	currency TEXT NOT NULL DEFAULT 'BRL',
	balance TEXT NOT NULL DEFAULT '0',
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL,
	UNIQUE (user_id, account_number)
);

CREATE TABLE IF NOT EXISTS transaction_categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	icon TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS bank_transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	bank_account_id INTEGER NOT NULL REFERENCES bank_accounts(id) ON DELETE CASCADE,
	category_id INTEGER REFERENCES transaction_categories(id) ON DELETE SET NULL,
	category TEXT,
	description TEXT NOT NULL,
	normalized_description TEXT NOT NULL,
	amount TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('credit', 'debit')),
	raw_type TEXT NOT NULL DEFAULT '',
	occurred_at TEXT NOT NULL,
	external_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE (bank_account_id, external_id)
);

CREATE INDEX IF NOT EXISTS bank_transactions_normalized_description
	ON bank_transactions (normalized_description);
`

// Store wraps the SQLite handle.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection serializes writers inside this process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}
