package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTokens(t *testing.T) {
	before := testutil.ToFloat64(TokensPromptTotal.WithLabelValues("test-model", "mock"))
	RecordTokens("test-model", "mock", 12, 3)
	assert.Equal(t, before+12, testutil.ToFloat64(TokensPromptTotal.WithLabelValues("test-model", "mock")))
}

func TestRecordFinishReason_Unknown(t *testing.T) {
	before := testutil.ToFloat64(FinishReasonsTotal.WithLabelValues("test-model", "unknown"))
	RecordFinishReason("test-model", "")
	assert.Equal(t, before+1, testutil.ToFloat64(FinishReasonsTotal.WithLabelValues("test-model", "unknown")))
}

func TestSessionGauges(t *testing.T) {
	SetActiveSessions(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(ActiveSessions))

	before := testutil.ToFloat64(SessionsEvictedTotal)
	RecordSessionsEvicted(2)
	assert.Equal(t, before+2, testutil.ToFloat64(SessionsEvictedTotal))
}
