package inference

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/janhq/chat-engine/internal/config"
	"github.com/janhq/chat-engine/internal/domain/conversation"
	"github.com/janhq/chat-engine/internal/infrastructure/observability"
	"github.com/janhq/chat-engine/internal/utils/httpclients"
	"github.com/janhq/chat-engine/internal/utils/httpclients/chat"
)

// NewInferenceProvider builds the completion gateway selected by GATEWAY_PROVIDER.
func NewInferenceProvider(cfg *config.Config, log zerolog.Logger) (conversation.Gateway, error) {
	switch cfg.GatewayProvider {
	case config.GatewayProviderMock:
		log.Warn().Msg("using mock completion gateway")
		return NewMockGateway(), nil
	case config.GatewayProviderOpenAI:
		client := chat.NewChatCompletionClient(
			httpclients.NewClient("ChatCompletionClient", cfg.HTTPTimeout),
			providerOpenAI,
			cfg.GatewayBaseURL,
		)
		sanitizer := observability.NewPromptSanitizer(cfg.PromptTelemetryLevel, cfg.ServiceName)
		return NewOpenAIGateway(client, cfg.GatewayAPIKey, sanitizer, log.With().Str("component", "gateway").Logger()), nil
	default:
		return nil, fmt.Errorf("unsupported gateway provider %q", cfg.GatewayProvider)
	}
}
