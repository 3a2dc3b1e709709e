package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "jan"
	subsystem = "chat_engine"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	TokensPromptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tokens_prompt_total",
			Help:      "Total prompt tokens consumed",
		},
		[]string{"model", "provider"},
	)

	TokensCompletionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tokens_completion_total",
			Help:      "Total completion tokens generated",
		},
		[]string{"model", "provider"},
	)

	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gateway_duration_seconds",
			Help:      "Completion gateway call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"model", "provider"},
	)

	GatewayErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gateway_errors_total",
			Help:      "Total completion gateway failures",
		},
		[]string{"provider", "error_type"},
	)

	FinishReasonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "finish_reasons_total",
			Help:      "Completions by finish reason",
		},
		[]string{"model", "reason"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory",
		},
	)

	SessionsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_evicted_total",
			Help:      "Sessions dropped for being idle",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordTokens records token usage for a completion
func RecordTokens(model, provider string, promptTokens, completionTokens int) {
	TokensPromptTotal.WithLabelValues(model, provider).Add(float64(promptTokens))
	TokensCompletionTotal.WithLabelValues(model, provider).Add(float64(completionTokens))
}

func RecordGatewayDuration(model, provider string, durationSec float64) {
	GatewayDuration.WithLabelValues(model, provider).Observe(durationSec)
}

func RecordGatewayError(provider, errorType string) {
	GatewayErrorsTotal.WithLabelValues(provider, errorType).Inc()
}

func RecordFinishReason(model, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	FinishReasonsTotal.WithLabelValues(model, reason).Inc()
}

func SetActiveSessions(count int) {
	ActiveSessions.Set(float64(count))
}

func RecordSessionsEvicted(count int) {
	SessionsEvictedTotal.Add(float64(count))
}
