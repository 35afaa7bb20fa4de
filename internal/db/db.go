package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"albion-market/internal/logger"
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
		return filepath.Join(wd, "albion-market.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "albion-market.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open() (*DB, error) {
	path := dbPath()
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

			CREATE TABLE IF NOT EXISTS config (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS price_history (
				region        TEXT NOT NULL,
				item_id       TEXT NOT NULL,
				city          TEXT NOT NULL,
				quality       INTEGER NOT NULL,
				timestamp     TEXT NOT NULL,
				item_count    INTEGER,
				average_price REAL,
				PRIMARY KEY (region, item_id, city, quality, timestamp)
			);

			CREATE TABLE IF NOT EXISTS price_history_meta (
				region     TEXT NOT NULL,
				item_id    TEXT NOT NULL,
				city       TEXT NOT NULL,
				quality    INTEGER NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (region, item_id, city, quality)
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS recent_lookups (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				item_id      TEXT NOT NULL,
				display_name TEXT NOT NULL,
				region       TEXT NOT NULL,
				looked_up_at TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_recent_lookups_ts ON recent_lookups(looked_up_at);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (recent lookups)")
	}

	return nil
}
