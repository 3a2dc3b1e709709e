package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/janhq/chat-engine/internal/utils/httpclients"
	"github.com/janhq/chat-engine/internal/utils/platformerrors"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// RequestID injects an X-Request-Id header when missing and makes it available via gin context.
// The id is also attached to the request context so platform errors and outbound calls carry it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
			c.Request.Header.Set(requestIDHeader, requestID)
		}
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Set(requestIDKey, requestID)

		ctx := platformerrors.WithRequestID(c.Request.Context(), requestID)
		ctx = httpclients.ContextWithRequestID(ctx, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestIDFromContext returns the request id stored in the gin context.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
