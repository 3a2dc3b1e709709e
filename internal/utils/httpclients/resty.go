package httpclients

import (
	"context"
	"time"

	"github.com/janhq/chat-engine/internal/infrastructure/logger"

	"resty.dev/v3"
)

type RequestID struct{}
type HTTPClientStartsAt struct{}

// ContextWithRequestID tags outgoing client calls made with ctx with the inbound request id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, RequestID{}, requestID)
}

// RequestIDFromContext returns the request id stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestID{}).(string)
	return id
}

// NewClient returns a resty client that logs every exchange at debug level.
// Bodies are not logged; prompts may carry user data.
func NewClient(clientName string, timeout time.Duration) *resty.Client {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	client.AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
		ctx := context.WithValue(r.Context(), HTTPClientStartsAt{}, time.Now())
		r.SetContext(ctx)
		return nil
	})
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		log := logger.GetLogger()
		startTime, _ := r.Request.Context().Value(HTTPClientStartsAt{}).(time.Time)

		event := log.Debug().
			Str("request_id", RequestIDFromContext(r.Request.Context())).
			Str("client", clientName).
			Int("status", r.StatusCode()).
			Dur("latency", time.Since(startTime))
		if raw := r.Request.RawRequest; raw != nil {
			event = event.
				Str("method", raw.Method).
				Str("path", raw.URL.Path)
		}
		event.Msg("HTTP client request")
		return nil
	})
	return client
}
