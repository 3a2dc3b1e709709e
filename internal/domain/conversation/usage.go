package conversation

// UsageCounter keeps running token totals for one engine. Totals only grow.
type UsageCounter struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	Calls            int `json:"calls"`
}

// Add records the usage of one completion. Negative values reported by a provider are ignored.
func (c *UsageCounter) Add(u Usage) {
	c.PromptTokens += nonNegative(u.PromptTokens)
	c.CompletionTokens += nonNegative(u.CompletionTokens)
	total := u.TotalTokens
	if total <= 0 {
		total = u.PromptTokens + u.CompletionTokens
	}
	c.TotalTokens += nonNegative(total)
	c.Calls++
}

// Exhausted reports whether the running total has reached budget. A nil budget is never exhausted.
func (c UsageCounter) Exhausted(budget *int) bool {
	return budget != nil && c.TotalTokens >= *budget
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
