package inference

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/janhq/chat-engine/internal/domain/conversation"
)

// MockGateway answers without a network. The reply echoes the last user message and token counts are
// whitespace-separated words, which keeps local runs and end-to-end tests deterministic.
type MockGateway struct {
	calls atomic.Int64
}

var _ conversation.Gateway = (*MockGateway)(nil)

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Complete(ctx context.Context, messages []conversation.Message, params conversation.GenerationParams) (*conversation.CompletionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", conversation.ErrGatewayUnavailable, err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no messages", conversation.ErrGatewayInvalidRequest)
	}

	last := ""
	prompt := 0
	for _, m := range messages {
		prompt += countWords(m.Content)
		if m.Role == conversation.RoleUser {
			last = m.Content
		}
	}

	words := strings.Fields("echo: " + last)
	finish := conversation.FinishReasonStop
	if params.MaxTokens != nil && len(words) > *params.MaxTokens {
		words = words[:*params.MaxTokens]
		finish = conversation.FinishReasonLength
	}

	n := g.calls.Add(1)
	return &conversation.CompletionResult{
		ID:    fmt.Sprintf("mock-%d", n),
		Model: params.Model,
		Reply: conversation.AssistantMessage(strings.Join(words, " ")),
		Usage: conversation.Usage{
			PromptTokens:     prompt,
			CompletionTokens: len(words),
			TotalTokens:      prompt + len(words),
		},
		FinishReason: finish,
	}, nil
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
