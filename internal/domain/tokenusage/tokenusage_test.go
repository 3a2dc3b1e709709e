package tokenusage

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		model      string
		prompt     int
		completion int
		want       string
	}{
		{"gpt-3.5-turbo", 1000, 1000, "0.002"},
		{"gpt-4", 100, 50, "0.006"},
		{"unknown-model", 1000, 0, "0.003"},
		{"gpt-4o", 0, 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got := CalculateCost(tt.model, tt.prompt, tt.completion)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestNewSummary_FillsTotal(t *testing.T) {
	s := NewSummary("gpt-4", 10, 5, 0, 2)
	assert.Equal(t, int64(15), s.TotalTokens)
	assert.Equal(t, int64(2), s.RequestCount)
}

func TestAggregate(t *testing.T) {
	report := Aggregate([]Summary{
		NewSummary("gpt-4", 100, 50, 150, 1),
		NewSummary("gpt-3.5-turbo", 1000, 1000, 2000, 3),
		NewSummary("gpt-4", 100, 50, 150, 2),
	})

	assert.Equal(t, int64(2300), report.TotalUsage.TotalTokens)
	assert.Equal(t, int64(6), report.TotalUsage.RequestCount)
	assert.True(t, decimal.RequireFromString("0.014").Equal(report.TotalUsage.EstimatedCostUSD))

	require.Len(t, report.ByModel, 2)
	assert.Equal(t, "gpt-3.5-turbo", report.ByModel[0].Model)
	assert.Equal(t, "gpt-4", report.ByModel[1].Model)
	assert.Equal(t, int64(300), report.ByModel[1].TotalTokens)
	assert.Equal(t, int64(3), report.ByModel[1].RequestCount)
}

func TestAggregate_Empty(t *testing.T) {
	report := Aggregate(nil)
	assert.NotNil(t, report.ByModel)
	assert.True(t, report.TotalUsage.EstimatedCostUSD.IsZero())
}
