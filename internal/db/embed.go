package db

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// migrationsFS returns the embedded migrations as a filesystem rooted at the
// migrations directory.
func migrationsFS() (fs.FS, error) {
	return fs.Sub(embeddedMigrations, "migrations")
}
