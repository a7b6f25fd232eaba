package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migrations are structural changes applied on top of schema.sql,
// in order. PRAGMA user_version records how many have run, so each
// step executes exactly once per database regardless of restarts.
var migrations = []struct {
	version int
	name    string
	stmts   []string
}{
	{
		version: 1,
		name:    "add username to users",
		stmts: []string{
			`ALTER TABLE users ADD COLUMN username TEXT NOT NULL DEFAULT ''`,
			// Backfill from the email local part for accounts created
			// before usernames existed.
			`UPDATE users SET username = substr(email, 1, instr(email, '@') - 1) WHERE username = ''`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		},
	},
	{
		version: 2,
		name:    "add avatar_path to users",
		stmts: []string{
			`ALTER TABLE users ADD COLUMN avatar_path TEXT NOT NULL DEFAULT ''`,
		},
	},
}

// migrate brings the database up to the latest schema version.
func migrate(db *sql.DB, logger *slog.Logger) error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		logger.Info("applying migration", "version", m.version, "name", m.name)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}

		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
		}

		// PRAGMA doesn't accept bind parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("set user_version %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}

		current = m.version
	}

	return nil
}
