package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/janhq/chat-engine/internal/config"
	"github.com/janhq/chat-engine/internal/domain/conversation"
	"github.com/janhq/chat-engine/internal/utils/httpclients"
	"github.com/janhq/chat-engine/internal/utils/httpclients/chat"
	"github.com/janhq/chat-engine/internal/utils/platformerrors"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *OpenAIGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := chat.NewChatCompletionClient(httpclients.NewClient("test", time.Second), "test", srv.URL)
	return NewOpenAIGateway(client, "sk-test", nil, zerolog.Nop())
}

func TestOpenAIGateway_Complete(t *testing.T) {
	var received openai.ChatCompletionRequest
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-9",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: "Paris."},
				FinishReason: openai.FinishReasonLength,
			}},
			Usage: openai.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
		})
	})

	maxTokens := 3
	result, err := gw.Complete(context.Background(), []conversation.Message{
		conversation.SystemMessage("You are terse."),
		conversation.UserMessage("Capital of France?"),
	}, conversation.GenerationParams{Model: "gpt-4o-mini", MaxTokens: &maxTokens})
	require.NoError(t, err)

	assert.Equal(t, "chatcmpl-9", result.ID)
	assert.Equal(t, conversation.AssistantMessage("Paris."), result.Reply)
	assert.Equal(t, conversation.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15}, result.Usage)
	assert.Equal(t, conversation.FinishReasonLength, result.FinishReason)

	require.Len(t, received.Messages, 2)
	assert.Equal(t, "system", received.Messages[0].Role)
	assert.Equal(t, "Capital of France?", received.Messages[1].Content)
	assert.Equal(t, 3, received.MaxTokens)
}

func TestOpenAIGateway_TruncatedReplyEvent(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: "cut"},
				FinishReason: openai.FinishReasonLength,
			}},
			Usage: openai.Usage{CompletionTokens: 1, TotalTokens: 2},
		})
	})

	_, err := gw.Complete(context.Background(), []conversation.Message{conversation.UserMessage("hi")},
		conversation.GenerationParams{Model: "m"})
	require.NoError(t, err)

	var names []string
	for _, span := range recorder.Ended() {
		if span.Name() != "gateway.complete" {
			continue
		}
		for _, event := range span.Events() {
			names = append(names, event.Name)
		}
	}
	assert.Contains(t, names, "llm.reply.truncated")
}

func TestOpenAIGateway_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		sentinel  error
		errorType platformerrors.ErrorType
	}{
		{"rate limited", http.StatusTooManyRequests, conversation.ErrGatewayRateLimited, platformerrors.ErrorTypeRateLimited},
		{"server error", http.StatusBadGateway, conversation.ErrGatewayUnavailable, platformerrors.ErrorTypeExternal},
		{"request timeout", http.StatusRequestTimeout, conversation.ErrGatewayUnavailable, platformerrors.ErrorTypeExternal},
		{"bad request", http.StatusBadRequest, conversation.ErrGatewayInvalidRequest, platformerrors.ErrorTypeExternal},
		{"unauthorized", http.StatusUnauthorized, conversation.ErrGatewayInvalidRequest, platformerrors.ErrorTypeExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"test"}}`))
			})

			result, err := gw.Complete(context.Background(), []conversation.Message{conversation.UserMessage("hi")},
				conversation.GenerationParams{Model: "m"})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, platformerrors.IsErrorType(err, tt.errorType))
		})
	}
}

func TestOpenAIGateway_EmptyChoices(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	})

	_, err := gw.Complete(context.Background(), []conversation.Message{conversation.UserMessage("hi")},
		conversation.GenerationParams{Model: "m"})
	assert.ErrorIs(t, err, conversation.ErrGatewayUnavailable)
}

func TestOpenAIGateway_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := chat.NewChatCompletionClient(httpclients.NewClient("test", time.Second), "test", url)
	gw := NewOpenAIGateway(client, "", nil, zerolog.Nop())

	_, err := gw.Complete(context.Background(), []conversation.Message{conversation.UserMessage("hi")},
		conversation.GenerationParams{Model: "m"})
	assert.ErrorIs(t, err, conversation.ErrGatewayUnavailable)
}

func TestOpenAIGateway_CancelledContext(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Complete(ctx, []conversation.Message{conversation.UserMessage("hi")},
		conversation.GenerationParams{Model: "m"})
	assert.ErrorIs(t, err, conversation.ErrGatewayUnavailable)
}

func TestMockGateway(t *testing.T) {
	gw := NewMockGateway()

	result, err := gw.Complete(context.Background(), []conversation.Message{
		conversation.SystemMessage("be brief"),
		conversation.UserMessage("hello there"),
	}, conversation.GenerationParams{Model: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hello there", result.Reply.Content)
	assert.Equal(t, conversation.FinishReasonStop, result.FinishReason)
	assert.Equal(t, conversation.Usage{PromptTokens: 4, CompletionTokens: 3, TotalTokens: 7}, result.Usage)
	assert.Equal(t, "mock-1", result.ID)

	limit := 2
	result, err = gw.Complete(context.Background(), []conversation.Message{conversation.UserMessage("one two three")},
		conversation.GenerationParams{Model: "mock", MaxTokens: &limit})
	require.NoError(t, err)
	assert.Equal(t, "echo: one", result.Reply.Content)
	assert.Equal(t, conversation.FinishReasonLength, result.FinishReason)

	_, err = gw.Complete(context.Background(), nil, conversation.GenerationParams{})
	assert.ErrorIs(t, err, conversation.ErrGatewayInvalidRequest)
}

func TestNewInferenceProvider(t *testing.T) {
	gw, err := NewInferenceProvider(&config.Config{GatewayProvider: config.GatewayProviderMock}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &MockGateway{}, gw)

	gw, err = NewInferenceProvider(&config.Config{
		GatewayProvider: config.GatewayProviderOpenAI,
		GatewayBaseURL:  "http://localhost:1",
		HTTPTimeout:     time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &OpenAIGateway{}, gw)

	_, err = NewInferenceProvider(&config.Config{GatewayProvider: "bogus"}, zerolog.Nop())
	assert.Error(t, err)
}
