// Package pruner enforces event retention: a recurring sweep deleting rows
// older than the configured TTL. It runs on its own schedule, independent of
// the request path; a storage fault is transient and retried on the next
// tick rather than crashing the process.
package pruner

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/pulse/internal/domain"
)

type Pruner struct {
	events   domain.EventRepository
	ttl      time.Duration
	interval time.Duration
}

func New(events domain.EventRepository, ttl, interval time.Duration) *Pruner {
	return &Pruner{events: events, ttl: ttl, interval: interval}
}

// Sweep deletes events older than now - ttl and returns the deleted count.
func (p *Pruner) Sweep(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-p.ttl).UnixMilli()
	return p.events.DeleteOlderThan(ctx, cutoff)
}

// Run sweeps once immediately, then on every interval tick until the context
// is cancelled.
func (p *Pruner) Run(ctx context.Context) {
	p.sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *Pruner) sweep(ctx context.Context) {
	deleted, err := p.Sweep(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("prune sweep failed; will retry next tick")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Dur("ttl", p.ttl).Msg("pruned expired events")
	}
}
