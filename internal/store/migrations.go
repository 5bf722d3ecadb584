package store

import (
	"database/sql"
	"fmt"

	"github.com/os-ghost/core/internal/logging"
)

// CurrentSchemaVersion tracks the kv_store schema.
// v1: kv_store(tree, key, value, updated_at)
const CurrentSchemaVersion = 1

// columnMigration adds a column to an existing table when missing.
type columnMigration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations lists schema migrations to apply to existing
// databases. Empty today; kept as the mechanism for future column
// additions without breaking databases created by earlier versions.
var pendingMigrations = []columnMigration{}

// runMigrations applies any pending column migrations and records the
// current schema version.
func runMigrations(db *sql.DB) error {
	timer := logging.StartTimer(logging.CategoryStore, "runMigrations")
	defer timer.Stop()

	applied, skipped := 0, 0
	for _, m := range pendingMigrations {
		if !tableExists(db, m.Table) {
			skipped++
			continue
		}
		if columnExists(db, m.Table, m.Column) {
			skipped++
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := db.Exec(query); err != nil {
			logging.Get(logging.CategoryStore).Warn("migration failed %s.%s: %v", m.Table, m.Column, err)
			skipped++
			continue
		}
		logging.Store("migration applied: %s.%s", m.Table, m.Column)
		applied++
	}

	if err := recordSchemaVersion(db); err != nil {
		return err
	}

	if applied > 0 || skipped > 0 {
		logging.Store("schema migrations complete: applied=%d skipped=%d", applied, skipped)
	}
	return nil
}

func recordSchemaVersion(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}
	_, err := db.Exec(`INSERT OR IGNORE INTO schema_versions(version) VALUES(?)`, CurrentSchemaVersion)
	return err
}

// GetSchemaVersion returns the most recently recorded schema version, or
// 0 if the database predates version tracking.
func GetSchemaVersion(db *sql.DB) int {
	if !tableExists(db, "schema_versions") {
		return 0
	}
	var version int
	err := db.QueryRow(`SELECT version FROM schema_versions ORDER BY applied_at DESC LIMIT 1`).Scan(&version)
	if err != nil {
		return 0
	}
	return version
}

func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

func tableExists(db *sql.DB, table string) bool {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table,
	).Scan(&count)
	if err != nil {
		return false
	}
	return count > 0
}
