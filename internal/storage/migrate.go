package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// kvMigrations holds the schema of the kv table (000001_create_kv).
//
//go:embed migrations/*.sql
var kvMigrations embed.FS

// RunMigrations brings the kv schema at dbPath up to date. It opens its own
// connection because closing the migrator closes the database it was given.
func RunMigrations(dbPath string) error {
	schemaDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open %s for migration: %w", dbPath, err)
	}
	defer schemaDB.Close()

	target, err := sqlite.WithInstance(schemaDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("kv migration target: %w", err)
	}

	scripts, err := iofs.New(kvMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("kv migration scripts: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", scripts, "sqlite", target)
	if err != nil {
		return fmt.Errorf("kv migrator: %w", err)
	}
	defer migrator.Close()

	// ErrNoChange means the kv table already exists at the latest version.
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply kv migrations: %w", err)
	}
	return nil
}
