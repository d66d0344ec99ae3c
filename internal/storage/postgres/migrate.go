package postgres

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrator builds a Migrate over the storage's own connection. Callers never
// Close it: that would close the shared *sql.DB along with the driver.
func (s *Storage) migrator() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	driver, err := pgmigrate.WithInstance(s.db.DB, &pgmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migration instance: %w", err)
	}

	return m, nil
}

// MigrateUp applies every pending migration.
func (s *Storage) MigrateUp(log *slog.Logger) error {
	const op = "storage.postgres.MigrateUp"

	m, err := s.migrator()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}

	logVersion(log, m)

	return nil
}

// MigrateDown rolls back every migration, dropping all tables.
func (s *Storage) MigrateDown(log *slog.Logger) error {
	const op = "storage.postgres.MigrateDown"

	m, err := s.migrator()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("Migrations rolled back")

	return nil
}

func logVersion(log *slog.Logger, m *migrate.Migrate) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info("No migrations applied")
	case err != nil:
		log.Warn("Failed to read migration version", slog.String("error", err.Error()))
	case dirty:
		log.Warn("Migration state is dirty", slog.Uint64("version", uint64(version)))
	default:
		log.Info("Migrations applied", slog.Uint64("version", uint64(version)))
	}
}
