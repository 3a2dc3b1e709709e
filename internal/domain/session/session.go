package session

import (
	"sync"
	"time"

	"github.com/janhq/chat-engine/internal/domain/conversation"
	"github.com/janhq/chat-engine/internal/domain/tokenusage"
)

// Config holds the defaults applied to new sessions.
type Config struct {
	Model        string
	SystemPrompt string
	MaxTokens    *int
	Temperature  *float64
	IdleTTL      time.Duration
}

// CreateParams override the defaults for one session. Zero values keep the default.
type CreateParams struct {
	SystemPrompt *string
	Model        string
	MaxTokens    *int
	Temperature  *float64
}

// Session is one conversation engine with its bookkeeping. All engine access goes through mu.
// Readers never take mu; they get the snapshot published at the end of the last call.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	engine       *conversation.Engine
	lastActiveAt time.Time

	snapMu sync.RWMutex
	snap   Snapshot
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID           string                    `json:"id"`
	Model        string                    `json:"model"`
	SystemPrompt string                    `json:"system_prompt"`
	MaxTokens    *int                      `json:"max_tokens,omitempty"`
	Temperature  *float64                  `json:"temperature,omitempty"`
	History      []conversation.Message    `json:"history"`
	Usage        conversation.UsageCounter `json:"usage"`
	Cost         tokenusage.Summary        `json:"cost"`
	CreatedAt    time.Time                 `json:"created_at"`
	LastActiveAt time.Time                 `json:"last_active_at"`
}

func (s *Session) snapshot() Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	snap := s.snap
	snap.History = append([]conversation.Message(nil), s.snap.History...)
	return snap
}

// refresh publishes the engine state for readers. Callers hold mu.
func (s *Session) refresh() Snapshot {
	params := s.engine.Params()
	usage := s.engine.Usage()
	snap := Snapshot{
		ID:           s.ID,
		Model:        params.Model,
		SystemPrompt: s.engine.SystemPrompt(),
		MaxTokens:    params.MaxTokens,
		Temperature:  params.Temperature,
		History:      s.engine.History(),
		Usage:        usage,
		Cost:         tokenusage.NewSummary(params.Model, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens, usage.Calls),
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.lastActiveAt,
	}

	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
	return snap
}
