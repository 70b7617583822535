package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-ai-relay/internal/domain/ports/repository"
	"telegram-ai-relay/internal/infra/logging"
	"telegram-ai-relay/internal/infra/metrics"
)

// SessionSweeper periodically drops sessions that were idle for longer than ttl.
type SessionSweeper struct {
	interval time.Duration
	ttl      time.Duration
	store    repository.IdleSessionEvictor
	now      func() time.Time
	log      *zerolog.Logger
}

func NewSessionSweeper(interval, ttl time.Duration, store repository.IdleSessionEvictor, logger *zerolog.Logger) *SessionSweeper {
	if logger == nil {
		logger = logging.Nop()
	}
	sweepLog := logger.With().Str("component", "SessionSweeper").Logger()
	return &SessionSweeper{
		interval: interval,
		ttl:      ttl,
		store:    store,
		now:      time.Now,
		log:      &sweepLog,
	}
}

func (w *SessionSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("ttl", w.ttl).Msg("Starting session sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping session sweeper")
			return ctx.Err()
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one eviction pass and returns the number of dropped sessions.
func (w *SessionSweeper) Sweep(ctx context.Context) int {
	n, err := w.store.EvictIdle(ctx, w.now().Add(-w.ttl))
	if err != nil {
		w.log.Error().Err(err).Msg("session sweep error")
		return 0
	}
	if n > 0 {
		metrics.AddSessionsEvicted(n)
		w.log.Info().Int("count", n).Msg("idle sessions evicted")
	}
	return n
}
