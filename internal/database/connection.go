// Package database provides sqlx-backed persistence for the scheduling
// engine: memory states, the append-only review log, and the referential
// item/user tables. SQLite and PostgreSQL are both supported; the driver
// is chosen once at connect time and repositories branch on it where the
// SQL dialects differ.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"           // PostgreSQL driver.
	_ "github.com/mattn/go-sqlite3" // SQLite driver.
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// DB wraps the sqlx handle together with the driver name so callers and
// repositories never consult the environment to learn the dialect.
type DB struct {
	*sqlx.DB
	driver string
}

// Driver returns the driver name the connection was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Postgres reports whether the connection speaks the PostgreSQL dialect.
func (db *DB) Postgres() bool {
	return db.driver == DriverPostgres
}

// Connect opens the database and initializes the schema.
// For SQLite the parent directory of the file is created if needed.
func Connect(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." && dir != "" && !strings.HasPrefix(dsn, ":memory:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: conn, driver: driver}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite serializes writers; a single connection avoids
		// SQLITE_BUSY churn under concurrent requests.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.initializeSchema(); err != nil {
		return nil, err
	}
	return db, nil
}

// serialPK returns the autoincrement primary key clause for the dialect.
func (db *DB) serialPK() string {
	if db.Postgres() {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// initializeSchema creates the engine's tables if they do not exist.
func (db *DB) initializeSchema() error {
	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS users (
				id %s,
				name TEXT NOT NULL,
				daily_capacity INTEGER NOT NULL DEFAULT 50,
				digest_hour INTEGER NOT NULL DEFAULT 9,
				digest_enabled BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`, db.serialPK()),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS items (
				id %s,
				prompt TEXT NOT NULL,
				answer TEXT NOT NULL,
				topic TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`, db.serialPK()),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS memory_states (
				id %s,
				user_id BIGINT NOT NULL,
				item_id BIGINT NOT NULL,
				state TEXT NOT NULL,
				difficulty REAL NOT NULL,
				stability REAL NOT NULL,
				reps INTEGER NOT NULL DEFAULT 0,
				lapses INTEGER NOT NULL DEFAULT 0,
				streak INTEGER NOT NULL DEFAULT 0,
				last_rating TEXT,
				scheduled_days REAL NOT NULL DEFAULT 0,
				elapsed_days REAL NOT NULL DEFAULT 0,
				last_review TIMESTAMP,
				due TIMESTAMP,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id),
				FOREIGN KEY (item_id) REFERENCES items(id),
				UNIQUE (user_id, item_id)
			)`, db.serialPK()),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS review_logs (
				id %s,
				user_id BIGINT NOT NULL,
				item_id BIGINT NOT NULL,
				session_id TEXT NOT NULL,
				mode TEXT NOT NULL,
				rating TEXT NOT NULL,
				reviewed_at TIMESTAMP NOT NULL,
				quality INTEGER,
				is_correct BOOLEAN,
				target_text TEXT NOT NULL DEFAULT '',
				user_text TEXT NOT NULL DEFAULT '',
				duration_ms BIGINT NOT NULL DEFAULT 0,
				before_state TEXT NOT NULL,
				before_difficulty REAL NOT NULL,
				before_stability REAL NOT NULL,
				before_reps INTEGER NOT NULL,
				before_lapses INTEGER NOT NULL,
				before_scheduled_days REAL NOT NULL,
				before_elapsed_days REAL NOT NULL,
				after_state TEXT NOT NULL,
				after_difficulty REAL NOT NULL,
				after_stability REAL NOT NULL,
				after_reps INTEGER NOT NULL,
				after_lapses INTEGER NOT NULL,
				after_scheduled_days REAL NOT NULL,
				after_elapsed_days REAL NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(id),
				FOREIGN KEY (item_id) REFERENCES items(id)
			)`, db.serialPK()),
		`CREATE INDEX IF NOT EXISTS idx_memory_states_user_due ON memory_states(user_id, due)`,
		`CREATE INDEX IF NOT EXISTS idx_review_logs_user_item_time ON review_logs(user_id, item_id, reviewed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_review_logs_session ON review_logs(session_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
