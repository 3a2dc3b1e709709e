package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const DefaultModel = "gpt-3.5-turbo"

// Config holds the construction-time settings of an Engine.
type Config struct {
	Model        string
	SystemPrompt string
	MaxTokens    *int
	Temperature  *float64
}

// EngineOption customises an Engine at construction.
type EngineOption func(*Engine)

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine owns one conversation: its retained history, its generation parameters and its token usage.
// An Engine is not safe for concurrent use; callers serialise access (see the session registry).
type Engine struct {
	gateway      Gateway
	params       GenerationParams
	systemPrompt string
	history      []Message
	usage        UsageCounter
	logger       zerolog.Logger
}

// Reply is the result of Send, filled according to Shape.
type Reply struct {
	Shape      ResponseShape     `json:"shape"`
	Message    *Message          `json:"message,omitempty"`
	Messages   []Message         `json:"messages,omitempty"`
	Completion *CompletionResult `json:"completion,omitempty"`
}

// NewEngine creates an engine whose history is seeded with the system prompt.
func NewEngine(gateway Gateway, cfg Config, opts ...EngineOption) (*Engine, error) {
	if gateway == nil {
		return nil, errors.New("conversation: gateway is required")
	}
	if cfg.MaxTokens != nil && *cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("conversation: max tokens must be positive, got %d", *cfg.MaxTokens)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	e := &Engine{
		gateway: gateway,
		params: GenerationParams{
			Model:       model,
			Temperature: copyFloat(cfg.Temperature),
			MaxTokens:   copyInt(cfg.MaxTokens),
		},
		systemPrompt: cfg.SystemPrompt,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.history = e.seedHistory()
	return e, nil
}

// Send runs one completion.
//
// The input is normalised, optionally merged after the retained history, and the system instruction is
// overridden when requested. When the token budget is reached or the reply is cut by length, the exchange
// is still accounted for and recorded, and a *TokenLimitError carrying the reply is returned.
func (e *Engine) Send(ctx context.Context, input Input, opts ...SendOption) (*Reply, error) {
	o := buildSendOptions(opts)
	shape, err := ParseResponseShape(string(o.shape))
	if err != nil {
		return nil, err
	}

	incoming, err := Normalize(input)
	if err != nil {
		return nil, err
	}

	sequence := incoming
	if o.useHistory {
		sequence = mergeHistory(e.history, incoming)
	}
	if o.systemOverride != nil {
		sequence = applySystemOverride(sequence, *o.systemOverride)
	}

	params := e.effectiveParams(o.temperature)

	e.logger.Debug().
		Str("model", params.Model).
		Int("messages", len(sequence)).
		Bool("use_history", o.useHistory).
		Str("response_shape", string(shape)).
		Msg("sending completion")

	start := time.Now()
	result, err := e.gateway.Complete(ctx, cloneMessages(sequence), params)
	if err != nil {
		e.logger.Debug().Err(err).Dur("duration", time.Since(start)).Msg("completion failed")
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: empty completion result", ErrGatewayUnavailable)
	}

	reply := AssistantMessage(result.Reply.Content)
	e.usage.Add(result.Usage)

	sequence = append(sequence, reply)
	if o.useHistory {
		e.history = sequence
	}

	e.logger.Debug().
		Int("total_tokens", e.usage.TotalTokens).
		Str("finish_reason", string(result.FinishReason)).
		Dur("duration", time.Since(start)).
		Msg("completion received")

	if e.usage.Exhausted(e.params.MaxTokens) || result.FinishReason == FinishReasonLength {
		completion := *result
		limitErr := &TokenLimitError{
			Reply:        reply,
			Messages:     cloneMessages(sequence),
			Completion:   &completion,
			TotalTokens:  e.usage.TotalTokens,
			MaxTokens:    copyInt(e.params.MaxTokens),
			FinishReason: result.FinishReason,
		}
		e.logger.Warn().
			Int("total_tokens", e.usage.TotalTokens).
			Str("finish_reason", string(result.FinishReason)).
			Msg("token limit reached")
		return nil, limitErr
	}

	out := &Reply{Shape: shape}
	switch shape {
	case ResponseMessage:
		out.Message = &reply
	case ResponseMessageList:
		out.Messages = cloneMessages(sequence)
	case ResponseCompletion:
		completion := *result
		out.Completion = &completion
	}
	return out, nil
}

// History returns a copy of the retained history.
func (e *Engine) History() []Message {
	return cloneMessages(e.history)
}

// Usage returns the running token totals.
func (e *Engine) Usage() UsageCounter {
	return e.usage
}

// Params returns the construction-time generation parameters.
func (e *Engine) Params() GenerationParams {
	return GenerationParams{
		Model:       e.params.Model,
		Temperature: copyFloat(e.params.Temperature),
		MaxTokens:   copyInt(e.params.MaxTokens),
	}
}

// SystemPrompt returns the prompt the history was seeded with.
func (e *Engine) SystemPrompt() string {
	return e.systemPrompt
}

// Reset drops the retained history back to the seeded system message. Usage is kept.
func (e *Engine) Reset() {
	e.history = e.seedHistory()
}

func (e *Engine) seedHistory() []Message {
	return []Message{SystemMessage(e.systemPrompt)}
}

func (e *Engine) effectiveParams(temperature *float64) GenerationParams {
	params := e.Params()
	if temperature != nil {
		params.Temperature = copyFloat(temperature)
	}
	return params
}

// mergeHistory returns history followed by incoming. A leading system message in incoming replaces the
// system message of history so that only index 0 ever holds one.
func mergeHistory(history, incoming []Message) []Message {
	merged := make([]Message, 0, len(history)+len(incoming)+1)
	if len(incoming) > 0 && incoming[0].Role == RoleSystem {
		merged = append(merged, incoming[0])
		if len(history) > 0 && history[0].Role == RoleSystem {
			history = history[1:]
		}
		merged = append(merged, history...)
		return append(merged, incoming[1:]...)
	}
	merged = append(merged, history...)
	return append(merged, incoming...)
}

func applySystemOverride(sequence []Message, instruction string) []Message {
	if len(sequence) > 0 && sequence[0].Role == RoleSystem {
		out := cloneMessages(sequence)
		out[0] = SystemMessage(instruction)
		return out
	}
	out := make([]Message, 0, len(sequence)+1)
	out = append(out, SystemMessage(instruction))
	return append(out, sequence...)
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
