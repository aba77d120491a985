package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"blog-api/internal/repository"
)

// Open opens (or creates) a sqlite database at the given path and ensures directories exist.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	// foreign_keys is per connection; the DSN pragma sets it on each one.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

// Init runs each repository Init in order; tables referenced by foreign keys come first.
func Init(ctx context.Context, inits ...interface{ Init(context.Context) error }) error {
	for _, r := range inits {
		if err := r.Init(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot writes a consistent copy of the live database to dest.
func Snapshot(ctx context.Context, db *sql.DB, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("snapshot target %s already exists", dest)
	}
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return constraintViolation(err, "UNIQUE", sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

func isForeignKeyViolation(err error) bool {
	return constraintViolation(err, "FOREIGN KEY", sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY)
}

// constraintViolation matches the extended result codes, falling back to the
// message when only the primary SQLITE_CONSTRAINT code is reported.
func constraintViolation(err error, kind string, codes ...int) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	for _, c := range codes {
		if code == c {
			return true
		}
	}
	return code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), kind+" constraint failed")
}

// conflict converts a unique violation into a *repository.ConflictError,
// naming the offending column from messages like
// "UNIQUE constraint failed: users.email".
func conflict(err error) error {
	field := ""
	msg := err.Error()
	if i := strings.LastIndex(msg, "constraint failed: "); i >= 0 {
		cols := strings.TrimSpace(msg[i+len("constraint failed: "):])
		if j := strings.IndexAny(cols, ", )"); j >= 0 {
			cols = cols[:j]
		}
		if k := strings.LastIndex(cols, "."); k >= 0 {
			cols = cols[k+1:]
		}
		field = cols
	}
	return &repository.ConflictError{Field: field, Err: err}
}

type scanner interface {
	Scan(dest ...any) error
}
