package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/noah-isme/bidportal-archiver/pkg/config"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationResult reports the schema version after a run.
type MigrationResult struct {
	Version uint
	Dirty   bool
	Changed bool
}

// Migrate applies every pending up migration. An empty MigrationsPath uses the embedded set.
func Migrate(cfg config.DatabaseConfig) (*MigrationResult, error) {
	m, err := newMigrator(cfg)
	if err != nil {
		return nil, err
	}
	defer m.Close() //nolint:errcheck

	changed := true
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		changed = false
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("read migration version: %w", err)
	}
	return &MigrationResult{Version: version, Dirty: dirty, Changed: changed}, nil
}

func newMigrator(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	if path := strings.TrimSpace(cfg.MigrationsPath); path != "" {
		if !strings.Contains(path, "://") {
			path = "file://" + path
		}
		m, err := migrate.New(path, URL(cfg))
		if err != nil {
			return nil, fmt.Errorf("open migrations %s: %w", path, err)
		}
		return m, nil
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, URL(cfg))
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	return m, nil
}
