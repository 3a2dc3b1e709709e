package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janhq/chat-engine/internal/domain/conversation"
	"github.com/janhq/chat-engine/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details
type ErrorResponse struct {
	Code          string `json:"code"` // UUID from PlatformError
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	ErrorInstance error  `json:"-"`
	RequestID     string `json:"request_id,omitempty"`

	// Set only when a token limit stopped the call.
	TokenLimit *TokenLimitDetail `json:"token_limit,omitempty"`
}

// TokenLimitDetail carries the reply that was produced before the limit was hit.
type TokenLimitDetail struct {
	Reply        conversation.Message      `json:"reply"`
	TotalTokens  int                       `json:"total_tokens"`
	MaxTokens    *int                      `json:"max_tokens,omitempty"`
	FinishReason conversation.FinishReason `json:"finish_reason,omitempty"`
}

// HandleError handles domain errors and returns appropriate HTTP responses
func HandleError(reqCtx *gin.Context, err error, message string) {
	_ = reqCtx.Error(err)

	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())

		errorMessage := domainErr.Message
		if errorMessage == "" {
			errorMessage = message
		}

		errResp := ErrorResponse{
			Code:          domainErr.GetUUID(),
			Error:         errorMessage,
			Message:       errorMessage,
			ErrorInstance: domainErr,
			RequestID:     domainErr.GetRequestID(),
			TokenLimit:    tokenLimitDetail(err),
		}

		reqCtx.AbortWithStatusJSON(statusCode, errResp)
		return
	}

	errResp := ErrorResponse{
		Error:         message,
		Message:       message,
		ErrorInstance: err,
	}
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
}

// HandleNewError creates a new typed error at the route layer and handles it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, cause error) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerRoute, errorType, message, cause, "")
	HandleError(reqCtx, err, message)
}

func tokenLimitDetail(err error) *TokenLimitDetail {
	var limitErr *conversation.TokenLimitError
	if !errors.As(err, &limitErr) {
		return nil
	}
	return &TokenLimitDetail{
		Reply:        limitErr.Reply,
		TotalTokens:  limitErr.TotalTokens,
		MaxTokens:    limitErr.MaxTokens,
		FinishReason: limitErr.FinishReason,
	}
}
