package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUnknownTable      = errors.New("unknown table")
)

// ConnectionError reports that the store could not be opened or prepared.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return "connection failed"
	}
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("connect %s: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

type DB struct {
	conn *sql.DB
}

// Connect opens the SQLite file at path, verifies it is reachable and brings
// the schema up to date. Every failure is a *ConnectionError.
func Connect(ctx context.Context, path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dataSourceName(path))
	if err != nil {
		return nil, &ConnectionError{Path: path, Err: fmt.Errorf("open database: %w", err)}
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, &ConnectionError{Path: path, Err: fmt.Errorf("ping database: %w", err)}
	}

	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, &ConnectionError{Path: path, Err: fmt.Errorf("migrate: %w", err)}
	}

	return &DB{conn: conn}, nil
}

// dataSourceName builds a file: URI so characters such as '?' in path stay
// part of the file name instead of starting the option list.
func dataSourceName(path string) string {
	options := url.Values{}
	options.Set("_foreign_keys", "1")
	options.Set("_journal_mode", "WAL")
	options.Set("_busy_timeout", "5000")

	u := url.URL{
		Scheme:   "file",
		Path:     path,
		OmitHost: true,
		RawQuery: options.Encode(),
	}
	return u.String()
}

func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// IsEmpty reports whether table holds no rows. The table must exist; its
// name is checked against sqlite_master before being interpolated.
func (db *DB) IsEmpty(ctx context.Context, table string) (bool, error) {
	var name string
	err := db.conn.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE", table,
	).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%w: %q", ErrUnknownTable, table)
		}
		return false, fmt.Errorf("lookup table %q: %w", table, err)
	}

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM "%s")`, name)
	if err := db.conn.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		return false, fmt.Errorf("count rows in %q: %w", name, err)
	}
	return !exists, nil
}
