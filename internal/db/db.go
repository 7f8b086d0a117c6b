// Package db provides the persistent SQLite cache behind display-name
// resolution. Only display metadata lives here; the scanner never persists
// price or scan history.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"limited-flipper/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

func dbPath() string {
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "flipper.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "flipper.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open() (*DB, error) {
	return OpenPath(dbPath())
}

// OpenPath opens the database at an explicit path (used by tests).
func OpenPath(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS item_names (
				asset_id INTEGER PRIMARY KEY,
				name     TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS creator_names (
				creator_kind TEXT NOT NULL,
				creator_id   INTEGER NOT NULL,
				name         TEXT NOT NULL,
				PRIMARY KEY (creator_kind, creator_id)
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetItemName returns a cached asset name.
func (d *DB) GetItemName(assetID int64) (string, bool) {
	var name string
	err := d.sql.QueryRow("SELECT name FROM item_names WHERE asset_id = ?", assetID).Scan(&name)
	if err != nil {
		return "", false
	}
	return name, true
}

// SetItemName stores an asset name.
func (d *DB) SetItemName(assetID int64, name string) {
	d.sql.Exec("INSERT OR REPLACE INTO item_names (asset_id, name) VALUES (?, ?)", assetID, name)
}

// GetCreatorName returns a cached creator display name.
func (d *DB) GetCreatorName(kind string, creatorID int64) (string, bool) {
	var name string
	err := d.sql.QueryRow(
		"SELECT name FROM creator_names WHERE creator_kind = ? AND creator_id = ?",
		kind, creatorID).Scan(&name)
	if err != nil {
		return "", false
	}
	return name, true
}

// SetCreatorName stores a creator display name.
func (d *DB) SetCreatorName(kind string, creatorID int64, name string) {
	d.sql.Exec(
		"INSERT OR REPLACE INTO creator_names (creator_kind, creator_id, name) VALUES (?, ?, ?)",
		kind, creatorID, name)
}
