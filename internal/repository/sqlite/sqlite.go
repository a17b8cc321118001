// Package sqlite implements the repository interfaces over SQLite.
//
// modernc.org/sqlite is a pure Go translation of the SQLite C code — no CGo,
// no C compiler, cross-compiles anywhere Go does. The driver registers itself
// with database/sql under the name "sqlite" via the blank import below.
//
// Concurrency control is delegated entirely to the database: unique
// constraints carry the duplicate-detection contract, and the services react
// to constraint violations rather than locking anything themselves.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Fail now on a bad path or permissions, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress, which a web
	// server needs.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; squad_members relies on
	// ON DELETE CASCADE.
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

// Close closes the connection pool. Callers should defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id               TEXT PRIMARY KEY,
			github_id        INTEGER NOT NULL UNIQUE,
			username         TEXT NOT NULL,
			email            TEXT NOT NULL DEFAULT '',
			avatar_url       TEXT NOT NULL DEFAULT '',
			bio              TEXT NOT NULL DEFAULT '',
			location         TEXT NOT NULL DEFAULT '',
			website_url      TEXT NOT NULL DEFAULT '',
			twitter_username TEXT NOT NULL DEFAULT '',
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS repositories (
			id                 TEXT PRIMARY KEY,
			github_repo_id     INTEGER NOT NULL UNIQUE,
			full_name          TEXT NOT NULL UNIQUE,
			name               TEXT NOT NULL,
			description        TEXT NOT NULL DEFAULT '',
			language           TEXT NOT NULL DEFAULT '',
			stars_count        INTEGER NOT NULL DEFAULT 0,
			forks_count        INTEGER NOT NULL DEFAULT 0,
			watchers_count     INTEGER NOT NULL DEFAULT 0,
			open_issues_count  INTEGER NOT NULL DEFAULT 0,
			size_kb            INTEGER NOT NULL DEFAULT 0,
			default_branch     TEXT NOT NULL DEFAULT '',
			homepage_url       TEXT NOT NULL DEFAULT '',
			topics             TEXT NOT NULL DEFAULT '[]',
			license_name       TEXT NOT NULL DEFAULT '',
			created_at_github  DATETIME,
			last_commit_at     DATETIME,
			last_push_at       DATETIME,
			abandonment_status TEXT NOT NULL DEFAULT 'active',
			maintenance_score  INTEGER NOT NULL DEFAULT 0,
			is_analyzed        INTEGER NOT NULL DEFAULT 0,
			last_analyzed_at   DATETIME,
			views_count        INTEGER NOT NULL DEFAULT 0,
			interest_count     INTEGER NOT NULL DEFAULT 0,
			created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_repositories_language ON repositories(language);
		CREATE INDEX IF NOT EXISTS idx_repositories_status ON repositories(abandonment_status);
		CREATE INDEX IF NOT EXISTS idx_repositories_stars ON repositories(stars_count);

		CREATE TABLE IF NOT EXISTS squads (
			id          TEXT PRIMARY KEY,
			repo_id     TEXT NOT NULL REFERENCES repositories(id),
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_by  TEXT NOT NULL REFERENCES users(id),
			is_active   INTEGER NOT NULL DEFAULT 1,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(repo_id, name)
		);
		CREATE INDEX IF NOT EXISTS idx_squads_repo_id ON squads(repo_id);

		CREATE TABLE IF NOT EXISTS squad_members (
			id        TEXT PRIMARY KEY,
			squad_id  TEXT NOT NULL REFERENCES squads(id) ON DELETE CASCADE,
			user_id   TEXT NOT NULL REFERENCES users(id),
			role      TEXT NOT NULL DEFAULT 'member',
			joined_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(squad_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_squad_members_user_id ON squad_members(user_id);

		CREATE TABLE IF NOT EXISTS activity_feed (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL DEFAULT '',
			repo_id       TEXT NOT NULL DEFAULT '',
			activity_type TEXT NOT NULL,
			title         TEXT NOT NULL DEFAULT '',
			description   TEXT NOT NULL DEFAULT '',
			metadata      TEXT NOT NULL DEFAULT '{}',
			is_public     INTEGER NOT NULL DEFAULT 1,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite formats these as "constraint failed: UNIQUE constraint
// failed: <table>.<column>", so string matching is the practical check.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
