package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"police-security-bot/internal/domain/ports/repository"
	"police-security-bot/internal/infra/metrics"
)

// PoolStatsFunc reports total, idle and in-use connections.
type PoolStatsFunc func() (total, idle, inUse int32)

// StatsSampler refreshes the pool and stored-message gauges on a ticker.
type StatsSampler struct {
	interval time.Duration
	messages repository.MessageRepository
	pool     PoolStatsFunc
	log      *zerolog.Logger
}

func NewStatsSampler(interval time.Duration, messages repository.MessageRepository, pool PoolStatsFunc, logger *zerolog.Logger) *StatsSampler {
	if interval <= 0 {
		interval = time.Minute
	}
	compLog := logger.With().Str("component", "StatsSampler").Logger()
	return &StatsSampler{
		interval: interval,
		messages: messages,
		pool:     pool,
		log:      &compLog,
	}
}

func (s *StatsSampler) Run(ctx context.Context) error {
	s.log.Info().Dur("interval", s.interval).Msg("Starting stats sampler")
	// Run once on startup, then on every tick
	s.sample(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Stopping stats sampler")
			return ctx.Err()
		case <-ticker.C:
			s.sample(ctx)
		}
	}
}

func (s *StatsSampler) sample(ctx context.Context) {
	if s.pool != nil {
		metrics.SetDBPoolStats(s.pool())
	}

	stats, err := s.messages.Stats(ctx, repository.NoTX)
	if err != nil {
		s.log.Error().Err(err).Msg("message stats sample failed")
		return
	}
	metrics.SetMessagesStored(stats.Safe, stats.Suspicious)
}
