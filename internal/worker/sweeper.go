package worker

import (
	"context"
	"log/slog"
	"time"

	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/usecase/shared"
)

// Sweeper runs a cleanup function on a fixed interval.
type Sweeper struct {
	name     string
	interval time.Duration
	sweep    func(ctx context.Context) (int64, error)
}

func NewHoldSweeper(holds shared.HoldLedger, interval time.Duration) *Sweeper {
	return &Sweeper{
		name:     "holds",
		interval: interval,
		sweep: func(ctx context.Context) (int64, error) {
			n, err := holds.ReleaseExpired(ctx)
			return int64(n), err
		},
	}
}

func NewIdempotencySweeper(repo shared.IdempotencyRepository, clk clock.Clock, interval time.Duration) *Sweeper {
	return &Sweeper{
		name:     "idempotency_keys",
		interval: interval,
		sweep: func(ctx context.Context) (int64, error) {
			return repo.DeleteExpired(ctx, clk.Now())
		},
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.sweep(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("sweeper released expired entries", "sweeper", s.name, "count", n)
	}
	return n, nil
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped", "sweeper", s.name)
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("sweep failed", "sweeper", s.name, "error", err.Error())
			}
		}
	}
}
