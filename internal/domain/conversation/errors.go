package conversation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInputShape    = errors.New("invalid input shape")
	ErrInvalidResponseShape = errors.New("invalid response shape")
	ErrInvalidRole          = errors.New("invalid role")
	ErrNoMatchingUnit       = errors.New("no message matches the requested role")
	ErrTokenLimitExceeded   = errors.New("token limit exceeded")

	ErrGatewayUnavailable    = errors.New("completion gateway unavailable")
	ErrGatewayRateLimited    = errors.New("completion gateway rate limited")
	ErrGatewayInvalidRequest = errors.New("completion gateway rejected the request")
)

// TokenLimitError is returned by Send when the session budget was reached or the reply was cut off by length.
// The exchange that hit the limit has already been accounted for and, when history reuse was requested,
// recorded in the engine history.
type TokenLimitError struct {
	Reply        Message
	Messages     []Message
	Completion   *CompletionResult
	TotalTokens  int
	MaxTokens    *int
	FinishReason FinishReason
}

func (e *TokenLimitError) Error() string {
	if e.FinishReason == FinishReasonLength {
		return fmt.Sprintf("%s: reply truncated by length after %d tokens", ErrTokenLimitExceeded, e.TotalTokens)
	}
	if e.MaxTokens != nil {
		return fmt.Sprintf("%s: %d of %d tokens used", ErrTokenLimitExceeded, e.TotalTokens, *e.MaxTokens)
	}
	return ErrTokenLimitExceeded.Error()
}

// Unwrap makes errors.Is(err, ErrTokenLimitExceeded) hold.
func (e *TokenLimitError) Unwrap() error {
	return ErrTokenLimitExceeded
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInputShape, fmt.Sprintf(format, args...))
}
