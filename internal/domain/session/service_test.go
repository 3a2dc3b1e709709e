package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/chat-engine/internal/domain/conversation"
	"github.com/janhq/chat-engine/internal/utils/platformerrors"
)

func echoGateway(usage conversation.Usage) conversation.Gateway {
	return conversation.GatewayFunc(func(_ context.Context, messages []conversation.Message, params conversation.GenerationParams) (*conversation.CompletionResult, error) {
		last := messages[len(messages)-1]
		return &conversation.CompletionResult{
			Model:        params.Model,
			Reply:        conversation.AssistantMessage("echo: " + last.Content),
			Usage:        usage,
			FinishReason: conversation.FinishReasonStop,
		}, nil
	})
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(gw conversation.Gateway, cfg Config) (*Service, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(gw, cfg, zerolog.Nop())
	svc.now = clock.Now
	return svc, clock
}

func TestService_CreateAppliesDefaultsAndOverrides(t *testing.T) {
	budget := 500
	svc, _ := newTestService(echoGateway(conversation.Usage{}), Config{Model: "gpt-4o", SystemPrompt: "default", MaxTokens: &budget})
	ctx := context.Background()

	snap, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "gpt-4o", snap.Model)
	assert.Equal(t, "default", snap.SystemPrompt)
	assert.Equal(t, 500, *snap.MaxTokens)
	assert.Equal(t, []conversation.Message{conversation.SystemMessage("default")}, snap.History)

	custom := "custom"
	temp := 0.2
	snap, err = svc.Create(ctx, CreateParams{SystemPrompt: &custom, Model: "gpt-4", Temperature: &temp})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", snap.Model)
	assert.Equal(t, "custom", snap.SystemPrompt)
	assert.Equal(t, 0.2, *snap.Temperature)

	assert.Equal(t, 2, svc.Count())
}

func TestService_CreateRejectsBadBudget(t *testing.T) {
	svc, _ := newTestService(echoGateway(conversation.Usage{}), Config{})
	zero := 0
	_, err := svc.Create(context.Background(), CreateParams{MaxTokens: &zero})
	assert.True(t, platformerrors.IsValidationError(err))
	assert.Zero(t, svc.Count())
}

func TestService_UnknownSession(t *testing.T) {
	svc, _ := newTestService(echoGateway(conversation.Usage{}), Config{})
	ctx := context.Background()

	_, err := svc.Get(ctx, "missing")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Send(ctx, "missing", conversation.TextInput("hi"))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Observe(ctx, "missing", conversation.TextInput("hi"), "i")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Reset(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrSessionNotFound)
}

func TestService_SendKeepsHistoryPerSession(t *testing.T) {
	svc, _ := newTestService(echoGateway(conversation.Usage{PromptTokens: 2, CompletionTokens: 1, TotalTokens: 3}), Config{})
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)
	b, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)

	reply, err := svc.Send(ctx, a.ID, conversation.TextInput("hello"), conversation.WithHistory(true))
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", reply.Message.Content)

	snapA, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, snapA.History, 3)
	assert.Equal(t, 3, snapA.Usage.TotalTokens)
	assert.Equal(t, int64(1), snapA.Cost.RequestCount)

	snapB, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, snapB.History, 1)
	assert.Zero(t, snapB.Usage.Calls)
}

func TestService_ErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want platformerrors.ErrorType
	}{
		{"input", fmt.Errorf("%w: x", conversation.ErrInvalidInputShape), platformerrors.ErrorTypeValidation},
		{"shape", conversation.ErrInvalidResponseShape, platformerrors.ErrorTypeValidation},
		{"role", conversation.ErrInvalidRole, platformerrors.ErrorTypeValidation},
		{"no match", conversation.ErrNoMatchingUnit, platformerrors.ErrorTypeUnprocessable},
		{"token limit", &conversation.TokenLimitError{}, platformerrors.ErrorTypeUnprocessable},
		{"rate limited", conversation.ErrGatewayRateLimited, platformerrors.ErrorTypeRateLimited},
		{"unavailable", conversation.ErrGatewayUnavailable, platformerrors.ErrorTypeExternal},
		{"invalid request", conversation.ErrGatewayInvalidRequest, platformerrors.ErrorTypeExternal},
		{"other", errors.New("boom"), platformerrors.ErrorTypeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorType(tt.err))
		})
	}
}

func TestService_SendWrapsGatewayErrors(t *testing.T) {
	gw := conversation.GatewayFunc(func(context.Context, []conversation.Message, conversation.GenerationParams) (*conversation.CompletionResult, error) {
		return nil, fmt.Errorf("%w: slow down", conversation.ErrGatewayRateLimited)
	})
	svc, _ := newTestService(gw, Config{})
	ctx := context.Background()
	snap, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)

	_, err = svc.Send(ctx, snap.ID, conversation.TextInput("hi"))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeRateLimited))
	assert.ErrorIs(t, err, conversation.ErrGatewayRateLimited)
}

func TestService_TokenLimitKeepsReplyReachable(t *testing.T) {
	budget := 5
	svc, _ := newTestService(echoGateway(conversation.Usage{TotalTokens: 10}), Config{MaxTokens: &budget})
	ctx := context.Background()
	snap, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)

	_, err = svc.Send(ctx, snap.ID, conversation.TextInput("hi"), conversation.WithHistory(true))
	var limitErr *conversation.TokenLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, "echo: hi", limitErr.Reply.Content)

	after, err := svc.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", after.History[len(after.History)-1].Content)
}

func TestService_ObserveDoesNotTouchHistory(t *testing.T) {
	svc, _ := newTestService(echoGateway(conversation.Usage{}), Config{})
	ctx := context.Background()
	snap, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)

	reply, err := svc.Observe(ctx, snap.ID, conversation.MessagesInput(conversation.UserMessages("a", "b")...), "summarize")
	require.NoError(t, err)
	assert.Equal(t, "echo: b", reply.Content)

	_, err = svc.Observe(ctx, snap.ID, conversation.TextInput("a"), "i", conversation.WithTargetRole(conversation.RoleSystem))
	assert.True(t, platformerrors.IsValidationError(err))

	after, err := svc.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Len(t, after.History, 1)
}

func TestService_ResetKeepsUsage(t *testing.T) {
	svc, _ := newTestService(echoGateway(conversation.Usage{TotalTokens: 7}), Config{SystemPrompt: "sys"})
	ctx := context.Background()
	snap, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)
	_, err = svc.Send(ctx, snap.ID, conversation.TextInput("hi"), conversation.WithHistory(true))
	require.NoError(t, err)

	reset, err := svc.Reset(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, []conversation.Message{conversation.SystemMessage("sys")}, reset.History)
	assert.Equal(t, 7, reset.Usage.TotalTokens)
}

func TestService_ListAndDelete(t *testing.T) {
	svc, clock := newTestService(echoGateway(conversation.Usage{}), Config{})
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)
	clock.Advance(time.Second)
	second, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)

	list := svc.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	require.NoError(t, svc.Delete(ctx, first.ID))
	list = svc.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestService_Usage(t *testing.T) {
	svc, _ := newTestService(echoGateway(conversation.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}), Config{Model: "gpt-4"})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		snap, err := svc.Create(ctx, CreateParams{})
		require.NoError(t, err)
		_, err = svc.Send(ctx, snap.ID, conversation.TextInput("hi"))
		require.NoError(t, err)
	}

	report := svc.Usage(ctx)
	assert.Equal(t, int64(30), report.TotalUsage.TotalTokens)
	assert.Equal(t, int64(2), report.TotalUsage.RequestCount)
	require.Len(t, report.ByModel, 1)
	assert.Equal(t, "gpt-4", report.ByModel[0].Model)
}

func TestService_EvictIdle(t *testing.T) {
	svc, clock := newTestService(echoGateway(conversation.Usage{}), Config{IdleTTL: time.Minute})
	ctx := context.Background()

	stale, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)
	fresh, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)

	clock.Advance(50 * time.Second)
	_, err = svc.Send(ctx, fresh.ID, conversation.TextInput("ping"))
	require.NoError(t, err)
	clock.Advance(20 * time.Second)

	assert.Equal(t, 1, svc.EvictIdle(clock.Now()))
	_, err = svc.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestService_EvictIdleDisabled(t *testing.T) {
	svc, clock := newTestService(echoGateway(conversation.Usage{}), Config{})
	_, err := svc.Create(context.Background(), CreateParams{})
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)
	assert.Zero(t, svc.EvictIdle(clock.Now()))
}

func TestService_EvictIdleSkipsBusySession(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := conversation.GatewayFunc(func(context.Context, []conversation.Message, conversation.GenerationParams) (*conversation.CompletionResult, error) {
		close(started)
		<-release
		return &conversation.CompletionResult{Reply: conversation.AssistantMessage("done")}, nil
	})
	svc, clock := newTestService(gw, Config{IdleTTL: time.Second})
	ctx := context.Background()
	snap, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Send(ctx, snap.ID, conversation.TextInput("slow"))
		done <- err
	}()
	<-started

	clock.Advance(time.Hour)
	assert.Zero(t, svc.EvictIdle(clock.Now()))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, svc.Count())
}

func TestService_ReadsDoNotWaitForInFlightCall(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := conversation.GatewayFunc(func(context.Context, []conversation.Message, conversation.GenerationParams) (*conversation.CompletionResult, error) {
		close(started)
		<-release
		return &conversation.CompletionResult{
			Reply: conversation.AssistantMessage("done"),
			Usage: conversation.Usage{PromptTokens: 2, CompletionTokens: 1, TotalTokens: 3},
		}, nil
	})
	svc, _ := newTestService(gw, Config{})
	ctx := context.Background()
	snap, err := svc.Create(ctx, CreateParams{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Send(ctx, snap.ID, conversation.TextInput("slow"), conversation.WithHistory(true))
		done <- err
	}()
	<-started

	reads := make(chan []Snapshot, 1)
	go func() {
		list := svc.List(ctx)
		_ = svc.Usage(ctx)
		got, err := svc.Get(ctx, snap.ID)
		assert.NoError(t, err)
		reads <- append(list, *got)
	}()

	select {
	case got := <-reads:
		require.Len(t, got, 2)
		assert.Len(t, got[0].History, 1)
		assert.Zero(t, got[1].Usage.TotalTokens)
	case <-time.After(2 * time.Second):
		t.Fatal("reads waited for the in-flight gateway call")
	}

	close(release)
	require.NoError(t, <-done)

	after, err := svc.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Len(t, after.History, 3)
	assert.Equal(t, 3, after.Usage.TotalTokens)
}

func TestService_ConcurrentSessions(t *testing.T) {
	svc, _ := newTestService(echoGateway(conversation.Usage{TotalTokens: 1}), Config{})
	ctx := context.Background()

	const sessions, turns = 8, 5
	ids := make([]string, sessions)
	for i := range ids {
		snap, err := svc.Create(ctx, CreateParams{})
		require.NoError(t, err)
		ids[i] = snap.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		for turn := 0; turn < turns; turn++ {
			wg.Add(1)
			go func(id string, turn int) {
				defer wg.Done()
				_, err := svc.Send(ctx, id, conversation.TextInput(fmt.Sprintf("turn %d", turn)), conversation.WithHistory(true))
				assert.NoError(t, err)
			}(id, turn)
		}
	}
	wg.Wait()

	for _, id := range ids {
		snap, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Len(t, snap.History, 1+2*turns)
		assert.Equal(t, turns, snap.Usage.Calls)
	}
}
