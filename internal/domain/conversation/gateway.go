package conversation

import "context"

// FinishReason is the termination reason reported by the completion provider.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// GenerationParams are the generation settings passed to the gateway on every call.
type GenerationParams struct {
	Model       string
	Temperature *float64
	MaxTokens   *int
}

// Usage is the token accounting of a single completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResult is what the gateway returns for one completion.
type CompletionResult struct {
	ID           string       `json:"id"`
	Model        string       `json:"model"`
	Reply        Message      `json:"reply"`
	Usage        Usage        `json:"usage"`
	FinishReason FinishReason `json:"finish_reason"`
}

// Gateway is the remote text-completion capability.
// Implementations make a single attempt per call and report failures wrapping
// ErrGatewayUnavailable, ErrGatewayRateLimited or ErrGatewayInvalidRequest.
type Gateway interface {
	Complete(ctx context.Context, messages []Message, params GenerationParams) (*CompletionResult, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, messages []Message, params GenerationParams) (*CompletionResult, error)

func (f GatewayFunc) Complete(ctx context.Context, messages []Message, params GenerationParams) (*CompletionResult, error) {
	return f(ctx, messages, params)
}
