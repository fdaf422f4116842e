package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "topics.sqlite"

// SQLiteBackend stores key-value pairs in <Dir>/topics.sqlite.
//
// The database is opened and migrated on first use and kept until Close. The
// store writes the whole forest on every mutation, so two long-lived
// processes on one data dir overwrite each other: last writer wins.
type SQLiteBackend struct {
	Dir string

	once sync.Once
	db   *sql.DB
	err  error
}

func NewSQLiteBackend(dir string) *SQLiteBackend {
	return &SQLiteBackend{Dir: dir}
}

func (b *SQLiteBackend) Available() bool { return strings.TrimSpace(b.Dir) != "" }

func (b *SQLiteBackend) Path() string {
	return filepath.Join(filepath.Clean(b.Dir), sqliteFileName)
}

func (b *SQLiteBackend) Get(key string) (string, error) {
	return b.GetContext(context.Background(), key)
}

func (b *SQLiteBackend) Set(key, value string) error {
	return b.SetContext(context.Background(), key, value)
}

func (b *SQLiteBackend) GetContext(ctx context.Context, key string) (string, error) {
	db, err := b.conn(ctx)
	if err != nil {
		return "", err
	}

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite get %q: %w", key, err)
	}
	return v, nil
}

func (b *SQLiteBackend) SetContext(ctx context.Context, key, value string) error {
	db, err := b.conn(ctx)
	if err != nil {
		return err
	}

	nowMs := time.Now().UTC().UnixMilli()
	_, err = db.ExecContext(ctx, `INSERT INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at_unixms = excluded.updated_at_unixms`,
		key, value, nowMs)
	if err != nil {
		return fmt.Errorf("sqlite set %q: %w", key, err)
	}
	return nil
}

// Close releases the database handle. Later calls fail.
func (b *SQLiteBackend) Close() error {
	b.once.Do(func() { b.err = errClosed })
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	b.err = errClosed
	return err
}

var errClosed = errors.New("sqlite backend: closed")

func (b *SQLiteBackend) conn(ctx context.Context) (*sql.DB, error) {
	b.once.Do(func() { b.db, b.err = b.open(ctx) })
	if b.err != nil {
		return nil, b.err
	}
	return b.db, nil
}

func (b *SQLiteBackend) open(ctx context.Context) (*sql.DB, error) {
	if !b.Available() {
		return nil, errors.New("sqlite backend: missing dir")
	}
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", b.Path())
	if err != nil {
		return nil, err
	}
	// busy_timeout is per connection; one connection keeps the pragmas in effect.
	db.SetMaxOpenConns(1)
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
