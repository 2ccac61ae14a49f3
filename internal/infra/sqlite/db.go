// Package sqlite provides SQLite-based persistent storage for roadmap.
// State is kept as JSON blobs keyed by record name, plus a small meta table.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// FileName is the database file created inside the data directory.
const FileName = "state.db"

const metaDeviceID = "device_id"

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db   *sql.DB
	path string
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, FileName)
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db, path: dbPath}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Path is the database file path.
func (d *DB) Path() string { return d.path }

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		// One JSON document per logical record (progress, achievements, streak).
		`CREATE TABLE IF NOT EXISTS blobs (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Blobs ──────────────────────────────────────────────────────────────────

// GetBlob returns the stored value for key. ok is false when the key has
// never been written.
func (d *DB) GetBlob(ctx context.Context, key string) (value []byte, ok bool, err error) {
	var s string
	err = d.db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get blob %s: %w", key, err)
	}
	return []byte(s), true, nil
}

// PutBlob stores value under key, replacing any previous value.
func (d *DB) PutBlob(ctx context.Context, key string, value []byte) error {
	return d.PutBlobs(ctx, map[string][]byte{key: value})
}

// PutBlobs stores several blobs in one transaction.
func (d *DB) PutBlobs(ctx context.Context, blobs map[string][]byte) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for key, value := range blobs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
			key, string(value), now,
		); err != nil {
			return fmt.Errorf("put blob %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// ─── Meta ───────────────────────────────────────────────────────────────────

// GetMeta retrieves a value from meta. Returns "" if key not found.
func (d *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// DeviceID returns this installation's id, minting a UUID on first call.
func (d *DB) DeviceID(ctx context.Context) (string, error) {
	if _, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO meta (key, value) VALUES (?, ?)`,
		metaDeviceID, uuid.NewString(),
	); err != nil {
		return "", fmt.Errorf("mint device id: %w", err)
	}
	return d.GetMeta(ctx, metaDeviceID)
}
