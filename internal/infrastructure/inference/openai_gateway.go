package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/janhq/chat-engine/internal/domain/conversation"
	"github.com/janhq/chat-engine/internal/infrastructure/metrics"
	"github.com/janhq/chat-engine/internal/infrastructure/observability"
	"github.com/janhq/chat-engine/internal/utils/httpclients/chat"
)

const (
	tracerName     = "chat-engine/inference"
	providerOpenAI = "openai"
)

// OpenAIGateway calls any OpenAI-compatible /chat/completions endpoint, one attempt per call.
type OpenAIGateway struct {
	client    *chat.ChatCompletionClient
	apiKey    string
	sanitizer *observability.PromptSanitizer
	logger    zerolog.Logger
}

var _ conversation.Gateway = (*OpenAIGateway)(nil)

// NewOpenAIGateway creates a gateway. The API key is held by the gateway and never read from the environment.
// A nil sanitizer records no message content.
func NewOpenAIGateway(client *chat.ChatCompletionClient, apiKey string, sanitizer *observability.PromptSanitizer, logger zerolog.Logger) *OpenAIGateway {
	return &OpenAIGateway{
		client:    client,
		apiKey:    apiKey,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

func (g *OpenAIGateway) Complete(ctx context.Context, messages []conversation.Message, params conversation.GenerationParams) (*conversation.CompletionResult, error) {
	ctx, span := observability.StartSpan(ctx, tracerName, "gateway.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.model", params.Model),
			attribute.Int("llm.messages", len(messages)),
		),
	)
	defer span.End()

	if preview := g.sanitizer.Preview(lastContent(messages)); preview != "" {
		span.SetAttributes(attribute.String("llm.prompt.preview", preview))
		g.logger.Debug().Str("model", params.Model).Str("prompt_preview", preview).Msg("completion request")
	}

	request := chat.ChatCompletionRequest{
		Model:       params.Model,
		Messages:    toOpenAIMessages(messages),
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, g.apiKey, request)
	metrics.RecordGatewayDuration(params.Model, providerOpenAI, time.Since(start).Seconds())
	if err != nil {
		mapped, kind := mapError(ctx, err)
		metrics.RecordGatewayError(providerOpenAI, kind)
		observability.RecordError(ctx, mapped)
		g.logger.Warn().Err(err).Str("model", params.Model).Str("error_kind", kind).Msg("completion request failed")
		return nil, mapped
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%w: response carried no choices", conversation.ErrGatewayUnavailable)
		metrics.RecordGatewayError(providerOpenAI, "empty_response")
		observability.RecordError(ctx, err)
		return nil, err
	}

	result := fromOpenAIResponse(resp)
	metrics.RecordTokens(result.Model, providerOpenAI, result.Usage.PromptTokens, result.Usage.CompletionTokens)
	metrics.RecordFinishReason(result.Model, string(result.FinishReason))
	observability.AddSpanAttributes(ctx,
		attribute.Int("llm.usage.total_tokens", result.Usage.TotalTokens),
		attribute.String("llm.finish_reason", string(result.FinishReason)),
	)
	if result.FinishReason == conversation.FinishReasonLength {
		observability.AddSpanEvent(ctx, "llm.reply.truncated",
			attribute.Int("llm.completion_tokens", result.Usage.CompletionTokens))
	}

	return result, nil
}

func lastContent(messages []conversation.Message) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1].Content
}

func toOpenAIMessages(messages []conversation.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return out
}

func fromOpenAIResponse(resp *openai.ChatCompletionResponse) *conversation.CompletionResult {
	choice := resp.Choices[0]
	return &conversation.CompletionResult{
		ID:    resp.ID,
		Model: resp.Model,
		Reply: conversation.AssistantMessage(choice.Message.Content),
		Usage: conversation.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		FinishReason: conversation.FinishReason(choice.FinishReason),
	}
}
