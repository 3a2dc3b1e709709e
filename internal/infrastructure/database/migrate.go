package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	iofs "github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/janhq/chat-engine/internal/infrastructure/logger"
	"github.com/janhq/chat-engine/migrations"
)

const migrationsTable = "schema_migrations"

// AutoMigrate applies all pending SQL migrations bundled with the service.
func AutoMigrate(gormDB *gorm.DB) (err error) {
	log := logger.GetLogger()

	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("retrieve sql db: %w", err)
	}

	conn, err := sqlDB.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("acquire dedicated connection: %w", err)
	}

	driver, err := postgres.WithConnection(context.Background(), conn, &postgres.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("initialize postgres driver: %w", err)
	}
	defer func() {
		if closeErr := driver.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close migration connection: %w", closeErr)
		}
	}()

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	defer func() {
		if closeErr := source.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close migration source: %w", closeErr)
		}
	}()

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	version, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Msg("No migrations have been applied yet")
	case err != nil:
		log.Warn().Err(err).Msg("Error getting migration version")
	default:
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current migration state")
	}

	if dirty {
		log.Warn().Uint("version", version).Msg("Database is in dirty state, forcing version...")
		if forceErr := migrator.Force(int(version)); forceErr != nil {
			return fmt.Errorf("force version %d to clear dirty state: %w", version, forceErr)
		}
	}

	if err := migrator.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			log.Error().Err(err).Msg("Failed to apply migrations")
			return fmt.Errorf("apply migrations: %w", err)
		}
		log.Info().Msg("No new migrations to apply")
		return nil
	}

	if finalVersion, _, versionErr := migrator.Version(); versionErr == nil {
		log.Info().Uint("version", finalVersion).Msg("Migrations applied successfully")
	}
	return nil
}
