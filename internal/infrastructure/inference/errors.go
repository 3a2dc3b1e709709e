package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/janhq/chat-engine/internal/domain/conversation"
	"github.com/janhq/chat-engine/internal/utils/httpclients/chat"
	"github.com/janhq/chat-engine/internal/utils/platformerrors"
)

// mapError translates transport and HTTP failures into gateway errors. The returned error matches one of
// the conversation gateway sentinels and still wraps the original cause.
func mapError(ctx context.Context, err error) (*platformerrors.PlatformError, string) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return gatewayError(ctx, platformerrors.ErrorTypeExternal, conversation.ErrGatewayUnavailable,
			"completion request timed out or was cancelled", err), "timeout"
	}

	var statusErr *chat.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return gatewayError(ctx, platformerrors.ErrorTypeRateLimited, conversation.ErrGatewayRateLimited,
				statusErr.Message, err), "rate_limited"
		case statusErr.StatusCode == http.StatusRequestTimeout || statusErr.StatusCode >= 500:
			return gatewayError(ctx, platformerrors.ErrorTypeExternal, conversation.ErrGatewayUnavailable,
				statusErr.Message, err), "server_error"
		case statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden:
			return gatewayError(ctx, platformerrors.ErrorTypeExternal, conversation.ErrGatewayInvalidRequest,
				"completion provider rejected the credentials", err), "authentication"
		default:
			return gatewayError(ctx, platformerrors.ErrorTypeExternal, conversation.ErrGatewayInvalidRequest,
				statusErr.Message, err), "invalid_request"
		}
	}

	return gatewayError(ctx, platformerrors.ErrorTypeExternal, conversation.ErrGatewayUnavailable,
		"completion provider unreachable", err), "unreachable"
}

func gatewayError(ctx context.Context, errorType platformerrors.ErrorType, sentinel error, message string, cause error) *platformerrors.PlatformError {
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, errorType, message,
		fmt.Errorf("%w: %w", sentinel, cause), "")
}
