// Package store implements the persistent key-value store (C1): a set of
// named "trees" backed by a single SQLite file, each holding independent
// key/value pairs. Encoding within a value is caller-defined; the store
// treats it as an opaque, length-prefixed byte blob.
//
// Usage example:
//
//	s, _ := store.New("/path/to/os-ghost.db")
//	defer s.Close()
//	s.Set("policy", "privacy", encoded)
//	v, ok, _ := s.Get("policy", "privacy")
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/os-ghost/core/internal/ghosterr"
	"github.com/os-ghost/core/internal/logging"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the C1 persistent key-value store. All operations are
// serialized through mu; SQLite itself is opened with a single
// connection, so this mirrors the teacher's one-writer-at-a-time model.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// New opens (creating if necessary) the SQLite-backed store at path.
// Pass ":memory:" for an ephemeral store, matching database/sql's own
// convention.
func New(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "New")
	defer timer.Stop()

	logging.Store("opening store at %s", path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.Get(logging.CategoryStore).Error("failed to create directory %s: %v", dir, err)
			return nil, fmt.Errorf("%w: create directory: %v", ghosterr.ErrIO, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("%w: open database: %v", ghosterr.ErrStore, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set journal_mode=WAL: %v", err)
	}
	// synchronous=NORMAL is safe under WAL, which already gives crash
	// recovery, and is materially faster than the FULL default.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("failed to set synchronous=NORMAL: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("store ready at %s", path)
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv_store (
		tree TEXT NOT NULL,
		key TEXT NOT NULL,
		value BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY(tree, key)
	);
	CREATE INDEX IF NOT EXISTS idx_kv_tree ON kv_store(tree);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("%w: create schema: %v", ghosterr.ErrStore, err)
	}
	if err := runMigrations(s.db); err != nil {
		return fmt.Errorf("%w: run migrations: %v", ghosterr.ErrStore, err)
	}
	return nil
}

// Get returns the value for (tree, key). The bool is false when the key
// does not exist; a corrupt row is treated as not-found per §4.1's
// corruption failure mode, and the corruption is logged rather than
// returned as an error.
func (s *Store) Get(tree, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE tree = ? AND key = ?`, tree, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		logging.Get(logging.CategoryStore).Error("corrupt read tree=%s key=%s: %v", tree, key, err)
		return nil, false, nil
	}
	return value, true, nil
}

// Set writes (tree, key) = value, overwriting any prior value.
func (s *Store) Set(tree, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO kv_store(tree, key, value, updated_at) VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(tree, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		tree, key, value,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("set failed tree=%s key=%s: %v", tree, key, err)
		return fmt.Errorf("%w: set: %v", ghosterr.ErrIO, err)
	}
	return nil
}

// Delete removes (tree, key). Deleting a missing key is a no-op.
func (s *Store) Delete(tree, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM kv_store WHERE tree = ? AND key = ?`, tree, key); err != nil {
		return fmt.Errorf("%w: delete: %v", ghosterr.ErrIO, err)
	}
	return nil
}

// ListKeys returns every key currently set within tree, in no particular
// order.
func (s *Store) ListKeys(tree string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT key FROM kv_store WHERE tree = ?`, tree)
	if err != nil {
		return nil, fmt.Errorf("%w: list_keys: %v", ghosterr.ErrIO, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			continue
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// GetAll returns every key/value pair within tree.
func (s *Store) GetAll(tree string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT key, value FROM kv_store WHERE tree = ?`, tree)
	if err != nil {
		return nil, fmt.Errorf("%w: get_all: %v", ghosterr.ErrIO, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			logging.Get(logging.CategoryStore).Warn("corrupt row in tree=%s: %v", tree, err)
			continue
		}
		out[k] = v
	}
	return out, rows.Err()
}

// ClearTree deletes every key within tree.
func (s *Store) ClearTree(tree string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM kv_store WHERE tree = ?`, tree); err != nil {
		return fmt.Errorf("%w: clear_tree: %v", ghosterr.ErrIO, err)
	}
	return nil
}

// UpdateFn computes a new value from the current one (nil if absent).
// Returning a nil value deletes the key.
type UpdateFn func(old []byte, present bool) (value []byte, deleteKey bool)

// Update performs a serialized read-modify-write on (tree, key). Two
// concurrent Updates on the same key are serialized in some order, each
// observing the other's effect or neither, because Update holds the
// store-wide write lock for its full duration.
func (s *Store) Update(tree, key string, fn UpdateFn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current []byte
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE tree = ? AND key = ?`, tree, key).Scan(&current)
	present := err == nil
	if err != nil && err != sql.ErrNoRows {
		logging.Get(logging.CategoryStore).Error("corrupt read during update tree=%s key=%s: %v", tree, key, err)
		present = false
	}

	newValue, del := fn(current, present)
	if del {
		_, err := s.db.Exec(`DELETE FROM kv_store WHERE tree = ? AND key = ?`, tree, key)
		if err != nil {
			return fmt.Errorf("%w: update delete: %v", ghosterr.ErrIO, err)
		}
		return nil
	}

	_, err = s.db.Exec(
		`INSERT INTO kv_store(tree, key, value, updated_at) VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(tree, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		tree, key, newValue,
	)
	if err != nil {
		return fmt.Errorf("%w: update write: %v", ghosterr.ErrIO, err)
	}
	return nil
}

// Flush fsyncs all trees. With WAL mode this is a checkpoint back into
// the main database file.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		logging.Get(logging.CategoryStore).Warn("flush checkpoint failed: %v", err)
		return fmt.Errorf("%w: flush: %v", ghosterr.ErrIO, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	logging.Store("closing store at %s", s.dbPath)
	return s.db.Close()
}

// DB returns the underlying *sql.DB for components that want their own
// table in the same file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// TreeStats returns the key count of every tree with at least one key.
func (s *Store) TreeStats() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT tree, COUNT(*) FROM kv_store GROUP BY tree`)
	if err != nil {
		return nil, fmt.Errorf("%w: tree_stats: %v", ghosterr.ErrIO, err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var tree string
		var count int64
		if err := rows.Scan(&tree, &count); err != nil {
			continue
		}
		stats[tree] = count
	}
	return stats, rows.Err()
}
