// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary needs
// no C toolchain. The driver registers itself with database/sql under the
// name "sqlite".
//
// Every mutating method runs inside an explicit transaction (see withTx):
// either all of its writes commit or none do.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/violets.db" → file-based database (persistent)
//   - ":memory:"        → in-memory database (tests)
//
// The pool is capped at one connection. PRAGMAs such as foreign_keys are
// per-connection in SQLite, and ":memory:" databases are private to the
// connection that created them; a single connection keeps both consistent.
// SQLite serialises writers anyway.
//
// The parent directory of a file path is created if needed.
func New(dbPath string) (*DB, error) {
	if err := ensureParentDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Off by default in SQLite; care_logs relies on ON DELETE CASCADE.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func ensureParentDir(dbPath string) error {
	if dbPath == ":memory:" || strings.HasPrefix(dbPath, "file:") {
		return nil
	}
	dir := filepath.Dir(dbPath)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sqlite: creating database directory: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. Every statement is idempotent, so it runs on
// each start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS cultivars (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL UNIQUE,
			flower_color     TEXT,
			leaf_description TEXT,
			acquisition_date TEXT,
			light_level      TEXT,
			soil_mix         TEXT,
			notes            TEXT,
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating cultivars table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS care_logs (
			id           TEXT PRIMARY KEY,
			cultivar_id  TEXT NOT NULL REFERENCES cultivars(id) ON DELETE CASCADE,
			performed_on TEXT NOT NULL,
			action       TEXT NOT NULL,
			notes        TEXT,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_care_logs_cultivar
			ON care_logs(cultivar_id, performed_on);
	`)
	if err != nil {
		return fmt.Errorf("creating care_logs table: %w", err)
	}

	return nil
}

// withTx runs fn inside a transaction. fn's error (or a failed commit) rolls
// everything back; the deferred Rollback is a no-op after a successful Commit.
//
// fn must only use tx: with a single pooled connection, a query on db.conn
// from inside fn would wait forever for the connection tx is holding.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlitedriver.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// likePattern builds a LIKE pattern matching any name containing q, with
// the wildcard characters in q escaped (paired with ESCAPE '\').
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
