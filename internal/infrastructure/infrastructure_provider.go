package infrastructure

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/janhq/chat-engine/internal/config"
	"github.com/janhq/chat-engine/internal/infrastructure/crontab"
	"github.com/janhq/chat-engine/internal/infrastructure/database"
	"github.com/janhq/chat-engine/internal/infrastructure/database/repository"
	"github.com/janhq/chat-engine/internal/infrastructure/inference"
	"github.com/janhq/chat-engine/internal/infrastructure/logger"
)

// ProvideConfig loads and provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideLogger builds the service logger from LOG_LEVEL and LOG_FORMAT and installs it globally.
func ProvideLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}

// ProvideDatabase provides a database connection
func ProvideDatabase(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.NewDB(cfg.DatabaseURL, cfg.DBMaxIdle, cfg.DBMaxOpen, cfg.DBLogQueries)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		log.Info().Msg("Running database migrations...")
		if err := database.AutoMigrate(db); err != nil {
			log.Error().Err(err).Msg("Failed to run database migrations")
			return nil, err
		}
		log.Info().Msg("Database migrations completed successfully")
	}

	return db, nil
}

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	ProvideConfig,
	ProvideLogger,

	ProvideDatabase,
	repository.RepositoryProvider,

	// Completion gateway
	inference.NewInferenceProvider,

	// Idle session eviction
	crontab.NewCrontab,
)
