package tokenusage

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Price is the USD cost per token of a model.
type Price struct {
	PromptPrice     decimal.Decimal
	CompletionPrice decimal.Decimal
}

// ModelPricing holds USD per token prices. Unknown models fall back to DefaultPrice.
var ModelPricing = map[string]Price{
	"gpt-4":         {decimal.NewFromFloat(0.00003), decimal.NewFromFloat(0.00006)},
	"gpt-4-turbo":   {decimal.NewFromFloat(0.00001), decimal.NewFromFloat(0.00003)},
	"gpt-4o":        {decimal.NewFromFloat(0.000005), decimal.NewFromFloat(0.000015)},
	"gpt-4o-mini":   {decimal.NewFromFloat(0.00000015), decimal.NewFromFloat(0.0000006)},
	"gpt-3.5-turbo": {decimal.NewFromFloat(0.0000005), decimal.NewFromFloat(0.0000015)},
}

var DefaultPrice = Price{
	PromptPrice:     decimal.NewFromFloat(0.000003),
	CompletionPrice: decimal.NewFromFloat(0.000006),
}

// CalculateCost estimates the cost of prompt and completion tokens for model.
func CalculateCost(model string, promptTokens, completionTokens int) decimal.Decimal {
	pricing, exists := ModelPricing[model]
	if !exists {
		pricing = DefaultPrice
	}

	promptCost := pricing.PromptPrice.Mul(decimal.NewFromInt(int64(promptTokens)))
	completionCost := pricing.CompletionPrice.Mul(decimal.NewFromInt(int64(completionTokens)))

	return promptCost.Add(completionCost)
}

// Summary is the usage of one session or the aggregate of several.
type Summary struct {
	Model            string          `json:"model,omitempty"`
	PromptTokens     int64           `json:"prompt_tokens"`
	CompletionTokens int64           `json:"completion_tokens"`
	TotalTokens      int64           `json:"total_tokens"`
	RequestCount     int64           `json:"request_count"`
	EstimatedCostUSD decimal.Decimal `json:"estimated_cost_usd"`
}

// NewSummary builds the summary of a single session.
func NewSummary(model string, promptTokens, completionTokens, totalTokens, calls int) Summary {
	if totalTokens == 0 {
		totalTokens = promptTokens + completionTokens
	}
	return Summary{
		Model:            model,
		PromptTokens:     int64(promptTokens),
		CompletionTokens: int64(completionTokens),
		TotalTokens:      int64(totalTokens),
		RequestCount:     int64(calls),
		EstimatedCostUSD: CalculateCost(model, promptTokens, completionTokens),
	}
}

// Report aggregates session summaries overall and per model.
type Report struct {
	TotalUsage Summary   `json:"total_usage"`
	ByModel    []Summary `json:"by_model"`
}

// Aggregate folds summaries into a report. ByModel is sorted by model name.
func Aggregate(summaries []Summary) Report {
	report := Report{
		TotalUsage: Summary{EstimatedCostUSD: decimal.Zero},
		ByModel:    make([]Summary, 0),
	}

	modelMap := make(map[string]*Summary)
	for _, summary := range summaries {
		report.TotalUsage.add(summary)

		if existing, ok := modelMap[summary.Model]; ok {
			existing.add(summary)
		} else {
			modelSummary := summary
			modelMap[summary.Model] = &modelSummary
		}
	}

	for _, v := range modelMap {
		report.ByModel = append(report.ByModel, *v)
	}
	sort.Slice(report.ByModel, func(i, j int) bool {
		return report.ByModel[i].Model < report.ByModel[j].Model
	})

	return report
}

func (s *Summary) add(other Summary) {
	s.PromptTokens += other.PromptTokens
	s.CompletionTokens += other.CompletionTokens
	s.TotalTokens += other.TotalTokens
	s.RequestCount += other.RequestCount
	s.EstimatedCostUSD = s.EstimatedCostUSD.Add(other.EstimatedCostUSD)
}
