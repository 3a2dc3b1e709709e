package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/janhq/chat-engine/internal/domain/conversation"
	"github.com/janhq/chat-engine/internal/domain/tokenusage"
	"github.com/janhq/chat-engine/internal/utils/platformerrors"
)

var ErrSessionNotFound = errors.New("session not found")

// Service is the in-memory registry of conversation sessions.
// Calls on one session are serialised; distinct sessions never share mutable state.
type Service struct {
	gateway conversation.Gateway
	cfg     Config
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a session registry that builds engines on gateway.
func NewService(gateway conversation.Gateway, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		gateway:  gateway,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session from the configured defaults overridden by params.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Snapshot, error) {
	cfg := conversation.Config{
		Model:        s.cfg.Model,
		SystemPrompt: s.cfg.SystemPrompt,
		MaxTokens:    s.cfg.MaxTokens,
		Temperature:  s.cfg.Temperature,
	}
	if params.Model != "" {
		cfg.Model = params.Model
	}
	if params.SystemPrompt != nil {
		cfg.SystemPrompt = *params.SystemPrompt
	}
	if params.MaxTokens != nil {
		cfg.MaxTokens = params.MaxTokens
	}
	if params.Temperature != nil {
		cfg.Temperature = params.Temperature
	}

	id := uuid.NewString()
	engine, err := conversation.NewEngine(s.gateway, cfg,
		conversation.WithLogger(s.logger.With().Str("session_id", id).Logger()))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid session parameters", err, "")
	}

	now := s.now()
	sess := &Session{
		ID:           id,
		CreatedAt:    now,
		engine:       engine,
		lastActiveAt: now,
	}
	sess.refresh()

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Info().Str("session_id", id).Str("model", engine.Params().Model).Msg("session created")

	snapshot := sess.snapshot()
	return &snapshot, nil
}

// Get returns a snapshot of one session.
func (s *Service) Get(ctx context.Context, id string) (*Snapshot, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := sess.snapshot()
	return &snapshot, nil
}

// List returns snapshots of every session, oldest first.
func (s *Service) List(ctx context.Context) []Snapshot {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	snapshots := make([]Snapshot, 0, len(sessions))
	for _, sess := range sessions {
		snapshots = append(snapshots, sess.snapshot())
	}
	return snapshots
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return notFound(ctx, id)
	}
	s.logger.Info().Str("session_id", id).Msg("session deleted")
	return nil
}

// Send forwards input to the session's engine.
func (s *Service) Send(ctx context.Context, id string, input conversation.Input, opts ...conversation.SendOption) (*conversation.Reply, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	defer sess.refresh()
	sess.lastActiveAt = s.now()

	reply, err := sess.engine.Send(ctx, input, opts...)
	if err != nil {
		return nil, wrapEngineError(ctx, err, "send failed")
	}
	return reply, nil
}

// Observe runs an observer extraction on the session's engine.
func (s *Service) Observe(ctx context.Context, id string, input conversation.Input, instruction string, opts ...conversation.ObserveOption) (*conversation.Message, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	defer sess.refresh()
	sess.lastActiveAt = s.now()

	reply, err := sess.engine.Observe(ctx, input, instruction, opts...)
	if err != nil {
		return nil, wrapEngineError(ctx, err, "observe failed")
	}
	return reply, nil
}

// Reset drops a session's history back to its system prompt. Usage is kept.
func (s *Service) Reset(ctx context.Context, id string) (*Snapshot, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.engine.Reset()
	sess.lastActiveAt = s.now()

	snapshot := sess.refresh()
	return &snapshot, nil
}

// Usage aggregates the usage of every live session.
func (s *Service) Usage(ctx context.Context) tokenusage.Report {
	snapshots := s.List(ctx)
	summaries := make([]tokenusage.Summary, 0, len(snapshots))
	for _, snap := range snapshots {
		summaries = append(summaries, snap.Cost)
	}
	return tokenusage.Aggregate(summaries)
}

// EvictIdle drops sessions idle for longer than the configured TTL and returns how many were removed.
// Sessions with a call in flight are never evicted.
func (s *Service) EvictIdle(now time.Time) int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		idle := now.Sub(sess.lastActiveAt)
		sess.mu.Unlock()

		if idle > s.cfg.IdleTTL {
			delete(s.sessions, id)
			evicted++
			s.logger.Info().Str("session_id", id).Dur("idle", idle).Msg("session evicted")
		}
	}
	return evicted
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) lookup(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(ctx, id)
	}
	return sess, nil
}

func notFound(ctx context.Context, id string) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
		"session not found", ErrSessionNotFound, "", map[string]any{"session_id": id})
}

// wrapEngineError classifies conversation errors into platform error types.
func wrapEngineError(ctx context.Context, err error, message string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, ErrorType(err), message, err, "")
}

// ErrorType maps a conversation error onto a platform error type.
func ErrorType(err error) platformerrors.ErrorType {
	switch {
	case errors.Is(err, conversation.ErrInvalidInputShape),
		errors.Is(err, conversation.ErrInvalidResponseShape),
		errors.Is(err, conversation.ErrInvalidRole):
		return platformerrors.ErrorTypeValidation
	case errors.Is(err, conversation.ErrNoMatchingUnit),
		errors.Is(err, conversation.ErrTokenLimitExceeded):
		return platformerrors.ErrorTypeUnprocessable
	case errors.Is(err, conversation.ErrGatewayRateLimited):
		return platformerrors.ErrorTypeRateLimited
	case errors.Is(err, conversation.ErrGatewayUnavailable),
		errors.Is(err, conversation.ErrGatewayInvalidRequest):
		return platformerrors.ErrorTypeExternal
	default:
		return platformerrors.ErrorTypeInternal
	}
}
