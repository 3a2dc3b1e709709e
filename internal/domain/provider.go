package domain

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/janhq/chat-engine/internal/config"
	"github.com/janhq/chat-engine/internal/domain/collection"
	"github.com/janhq/chat-engine/internal/domain/conversation"
	"github.com/janhq/chat-engine/internal/domain/session"
)

// ServiceProvider provides all domain services
var ServiceProvider = wire.NewSet(
	// Sessions
	ProvideSessionConfig,
	ProvideSessionService,

	// Collections
	collection.NewCollectionService,
)

func ProvideSessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		Model:        cfg.DefaultModel,
		SystemPrompt: cfg.DefaultSystemPrompt,
		MaxTokens:    cfg.DefaultMaxTokens,
		Temperature:  cfg.DefaultTemperature,
		IdleTTL:      cfg.SessionIdleTTL,
	}
}

func ProvideSessionService(gateway conversation.Gateway, cfg session.Config, log zerolog.Logger) *session.Service {
	return session.NewService(gateway, cfg, log)
}
