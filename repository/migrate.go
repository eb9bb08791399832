package repository

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	auth "github.com/goliatone/go-retail-auth"
)

const (
	migrationsTable      = "retail_auth_migrations"
	migrationsLocksTable = "retail_auth_migration_locks"
)

// NewMigrator registers the embedded SQL migrations for driver with a bun
// migrator. Statements inside a file are separated by --bun:split.
func NewMigrator(db *bun.DB, driver string) (*migrate.Migrator, error) {
	fsys, err := auth.MigrationsFor(driver)
	if err != nil {
		return nil, err
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(fsys); err != nil {
		return nil, fmt.Errorf("discover %s migrations: %w", driver, err)
	}

	return migrate.NewMigrator(db, migrations,
		migrate.WithTableName(migrationsTable),
		migrate.WithLocksTableName(migrationsLocksTable),
	), nil
}

// Migrate applies the pending migrations for driver and returns the names
// of the ones it applied, in order.
func Migrate(ctx context.Context, db *bun.DB, driver string) ([]string, error) {
	migrator, err := NewMigrator(db, driver)
	if err != nil {
		return nil, err
	}

	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	var applied []string
	for _, m := range group.Migrations {
		applied = append(applied, m.String())
	}
	return applied, nil
}
