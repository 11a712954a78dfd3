package cachestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"shuttersort/internal/logging"
)

// ErrOpen indicates the store could not be opened even after the
// recreate-from-scratch fallback.
var ErrOpen = errors.New("cache store unavailable")

// Store is an embedded key-value table backed by SQLite. Reads run against a
// WAL snapshot and never block each other; writes are single statements that
// commit atomically and are serialized by the engine. Multiple processes may
// share one store file.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open initializes or connects to the store database at path, creating parent
// directories and the records table as needed. A database that fails to open
// (corrupt file, incompatible format) is deleted and recreated once: losing
// stale cache data is acceptable, failing the whole run is not.
func Open(path string, logger *slog.Logger) (*Store, error) {
	logger = logging.NewComponentLogger(logger, "cachestore")

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create directory %q: %v", ErrOpen, dir, err)
		}
	}

	db, err := openDatabase(path)
	if err != nil {
		logger.Warn("cache store open failed, recreating",
			logging.String("path", path),
			logging.Error(err))
		removeDatabase(path)

		db, err = openDatabase(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reopen %q: %v", ErrOpen, path, err)
		}
	}

	return &Store{db: db, path: path, logger: logger}, nil
}

// openDatabase opens the sqlite file, applies pragmas, and (re)creates the
// records table. Table creation is idempotent and runs on every open.
func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	const schema = `CREATE TABLE IF NOT EXISTS records (
        key   TEXT PRIMARY KEY,
        value TEXT NOT NULL
    )`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}

	// Verify the file is actually readable; a corrupt database can open
	// lazily and only fail here.
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM records").Scan(&count); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("probe records table: %w", err)
	}

	return db, nil
}

func removeDatabase(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the store file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value stored under key. The second result is false when the
// key has no record.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get record %q: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value. Once Put returns
// without error the write is durable and visible to subsequent reads in any
// process.
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("put record %q: %w", key, err)
	}
	return nil
}

// Entry pairs a key with its stored value, for inspection commands.
type Entry struct {
	Key   string
	Value string
}

// List returns every record ordered by key.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM records ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Key, &entry.Value); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}
