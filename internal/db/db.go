// Package db stores normalized race results, the runner registry and the
// rating history in SQLite. Schema changes are managed by embedded
// golang-migrate migrations; OpenDB never touches the schema itself.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// OpenDB opens (or creates) the SQLite database at path. The schema is
// managed by migrations, so callers that need tables must run MigrateUp
// first; EnsureSchema does both in one step.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{sqlDB}, nil
}

// EnsureSchema opens the database and brings the schema up to the latest
// migration version.
func EnsureSchema(path string) (*DB, error) {
	database, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := database.MigrateUp(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
