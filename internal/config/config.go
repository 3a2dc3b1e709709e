package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Global singleton for code paths that are not wired through dependency injection
var globalConfig *Config

const (
	GatewayProviderOpenAI = "openai"
	GatewayProviderMock   = "mock"
)

// Config holds all environment backed configuration for the chat engine service.
type Config struct {
	// HTTP Server
	HTTPPort    int           `env:"HTTP_PORT" envDefault:"8080"`
	PprofPort   int           `env:"PPROF_PORT" envDefault:"6060"`
	CORSOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"60s"`

	// PostgreSQL
	DatabaseURL  string `env:"DATABASE_URL,notEmpty"`
	AutoMigrate  bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	DBMaxIdle    int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpen    int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	DBLogQueries bool   `env:"DB_LOG_QUERIES" envDefault:"false"`

	// Completion gateway
	GatewayProvider string `env:"GATEWAY_PROVIDER" envDefault:"openai"`
	GatewayBaseURL  string `env:"GATEWAY_BASE_URL" envDefault:"https://api.openai.com/v1"`
	GatewayAPIKey   string `env:"GATEWAY_API_KEY"`

	// Session defaults
	DefaultModel        string           `env:"DEFAULT_MODEL" envDefault:"gpt-3.5-turbo"`
	DefaultSystemPrompt string           `env:"DEFAULT_SYSTEM_PROMPT"`
	DefaultMaxTokens    *int             `env:"DEFAULT_MAX_TOKENS"`
	DefaultTemperature  *float64         `env:"DEFAULT_TEMPERATURE"`
	SessionIdleTTL      time.Duration    `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	SessionEvictionCron string           `env:"SESSION_EVICTION_CRON" envDefault:"* * * * *"`
	ObserverPresetsFile string           `env:"OBSERVER_PRESETS_FILE" envDefault:"config/observers.yml"`
	ObserverPresets     *ObserverPresets `env:"-"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"chat-engine"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"jan"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`

	// Message content on spans and debug logs: none, hashed or full
	PromptTelemetryLevel string `env:"TELEMETRY_PROMPT_LEVEL" envDefault:"none"`
}

// LoadEnvFiles loads .env files into the process environment. Later files override earlier ones and
// missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if err := godotenv.Overload(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return nil
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.GatewayProvider = strings.ToLower(strings.TrimSpace(cfg.GatewayProvider))
	switch cfg.GatewayProvider {
	case GatewayProviderOpenAI:
		if _, err := url.ParseRequestURI(cfg.GatewayBaseURL); err != nil {
			return nil, fmt.Errorf("invalid GATEWAY_BASE_URL: %w", err)
		}
	case GatewayProviderMock:
	default:
		return nil, fmt.Errorf("unsupported GATEWAY_PROVIDER %q", cfg.GatewayProvider)
	}

	if cfg.DefaultMaxTokens != nil && *cfg.DefaultMaxTokens <= 0 {
		return nil, errors.New("DEFAULT_MAX_TOKENS must be positive")
	}
	if cfg.DefaultTemperature != nil && (*cfg.DefaultTemperature < 0 || *cfg.DefaultTemperature > 2) {
		return nil, errors.New("DEFAULT_TEMPERATURE must be between 0 and 2")
	}

	presets, err := LoadObserverPresets(cfg.ObserverPresetsFile)
	if err != nil {
		return nil, fmt.Errorf("load observer presets: %w", err)
	}
	cfg.ObserverPresets = presets

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	globalConfig = cfg

	return cfg, nil
}

// GetGlobal returns the most recently loaded config.
// Deprecated: Use dependency injection with Load() instead.
func GetGlobal() *Config {
	return globalConfig
}

var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}
