package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"ghg_inventory_backend/internals/helpers/logger"
)

//go:embed migrations/*.sql
var dbMigrations embed.FS

// RunMigrations applies every pending migration in migrations/.
func RunMigrations(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	src, err := iofs.New(dbMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	dst, err := postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: "schema_migrations"})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", src, "postgres", dst)
	if err != nil {
		return err
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Sugar.Info("migrations: up to date")
	case err != nil:
		return fmt.Errorf("migrate up: %w", err)
	default:
		v, _, _ := migrator.Version()
		logger.Sugar.Infof("migrations: applied up to version %d", v)
	}
	return nil
}
