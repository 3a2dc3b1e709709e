package database

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/janhq/chat-engine/internal/infrastructure/logger"
)

// Config holds database configuration
type Config struct {
	DatabaseURL string
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
	LogLevel    gormlogger.LogLevel
}

// Connect creates a new database connection with the given configuration. The target database is created
// first when the DSN is a URL naming a database that does not exist yet.
func Connect(cfg Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}

	log := logger.GetLogger()
	if err := ensureDatabaseExists(cfg.DatabaseURL); err != nil {
		log.Warn().Err(err).Msg("unable to ensure database exists")
	}

	if cfg.LogLevel == 0 {
		cfg.LogLevel = gormlogger.Silent
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		log.Error().
			Str("error_code", "5c16fb53-d98c-4fc6-8bb4-9abd3c0b9e88").
			Err(err).
			Msg("unable to connect to database")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("retrieve sql db: %w", err)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	log.Info().Msg("Successfully connected to database")
	return db, nil
}

// NewDB creates a new database connection using DSN
func NewDB(dsn string, maxIdle, maxOpen int, logQueries bool) (*gorm.DB, error) {
	level := gormlogger.Silent
	if logQueries {
		level = gormlogger.Info
	}
	return Connect(Config{
		DatabaseURL: dsn,
		MaxIdle:     maxIdle,
		MaxOpen:     maxOpen,
		MaxLifetime: 1 * time.Hour,
		LogLevel:    level,
	})
}

func ensureDatabaseExists(dsn string) error {
	dbName, adminDSN, ok := adminDSNFor(dsn)
	if !ok {
		return nil
	}

	sqlDB, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var exists bool
	err = sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}

// adminDSNFor rewrites a postgres URL to point at the maintenance database. Key/value DSNs are left alone.
func adminDSNFor(dsn string) (string, string, bool) {
	u, err := url.Parse(dsn)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return "", "", false
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" || dbName == "postgres" {
		return "", "", false
	}

	adminURL := *u
	adminURL.Path = "/postgres"
	return dbName, adminURL.String(), true
}
