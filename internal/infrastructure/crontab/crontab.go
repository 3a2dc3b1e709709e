package crontab

import (
	"context"
	"time"

	"github.com/mileusna/crontab"

	"github.com/janhq/chat-engine/internal/config"
	"github.com/janhq/chat-engine/internal/domain/session"
	"github.com/janhq/chat-engine/internal/infrastructure/logger"
	"github.com/janhq/chat-engine/internal/infrastructure/metrics"
	"github.com/janhq/chat-engine/internal/utils/platformerrors"
)

const DefaultEvictionSchedule = "* * * * *"

type sessionStore interface {
	EvictIdle(now time.Time) int
	Count() int
}

type Crontab struct {
	ctab     *crontab.Crontab
	sessions sessionStore
	schedule string
	now      func() time.Time
}

func NewCrontab(cfg *config.Config, sessions *session.Service) *Crontab {
	schedule := cfg.SessionEvictionCron
	if schedule == "" {
		schedule = DefaultEvictionSchedule
	}
	return &Crontab{
		ctab:     crontab.New(),
		sessions: sessions,
		schedule: schedule,
		now:      time.Now,
	}
}

// Run schedules idle-session eviction and blocks until ctx is done.
func (c *Crontab) Run(ctx context.Context) error {
	log := logger.GetLogger()

	if err := c.ctab.AddJob(c.schedule, c.evictIdleSessions); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add session eviction job")
	}
	log.Info().Str("schedule", c.schedule).Msg("session eviction scheduled")

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) evictIdleSessions() {
	evicted := c.sessions.EvictIdle(c.now())
	metrics.RecordSessionsEvicted(evicted)
	metrics.SetActiveSessions(c.sessions.Count())
	if evicted > 0 {
		log := logger.GetLogger()
		log.Info().Int("evicted", evicted).Msg("idle sessions evicted")
	}
}
