// Package sqlite provides a SQLite-backed cache driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/respond/pkg/cache"
	"github.com/papercomputeco/respond/pkg/responses"
)

const schema = `
CREATE TABLE IF NOT EXISTS response_cache (
	key        TEXT PRIMARY KEY,
	model      TEXT NOT NULL,
	response   TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Driver implements cache.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

// NewDriver creates a new SQLite-backed cache.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// Put stores an entry. The insert is idempotent: an existing key is left
// untouched and Put reports false.
func (d *Driver) Put(ctx context.Context, entry *cache.Entry) (bool, error) {
	if entry == nil {
		return false, errors.New("cannot store nil entry")
	}

	body, err := json.Marshal(entry.Response)
	if err != nil {
		return false, fmt.Errorf("failed to encode response: %w", err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := d.db.ExecContext(ctx,
		`INSERT INTO response_cache (key, model, response, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (key) DO NOTHING`,
		entry.Key, entry.Model, string(body), createdAt.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get retrieves an entry by key.
func (d *Driver) Get(ctx context.Context, key string) (*cache.Entry, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT key, model, response, created_at FROM response_cache WHERE key = ?`, key)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cache.NotFoundError{Key: key}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query entry: %w", err)
	}

	return entry, nil
}

// Has checks whether an entry exists for the key.
func (d *Driver) Has(ctx context.Context, key string) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx,
		`SELECT 1 FROM response_cache WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query entry: %w", err)
	}

	return true, nil
}

// Delete removes an entry.
func (d *Driver) Delete(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx,
		`DELETE FROM response_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

// List returns all entries in the store, oldest first.
func (d *Driver) List(ctx context.Context) ([]*cache.Entry, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT key, model, response, created_at FROM response_cache ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var result []*cache.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}

	return result, rows.Err()
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*cache.Entry, error) {
	var (
		entry     cache.Entry
		body      string
		createdAt int64
	)
	if err := s.Scan(&entry.Key, &entry.Model, &body, &createdAt); err != nil {
		return nil, err
	}

	var resp responses.Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode cached response: %w", err)
	}

	entry.Response = &resp
	entry.CreatedAt = time.Unix(createdAt, 0)
	return &entry, nil
}
