package worker

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"bot-for-order/internal/domain/outbox"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/pkg/config"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/usecase/shared"

	"golang.org/x/sync/errgroup"
)

const maxErrorLength = 1000

type Handler interface {
	Handle(ctx context.Context, msg *outbox.Message) error
}

type HandlerFunc func(ctx context.Context, msg *outbox.Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *outbox.Message) error {
	return f(ctx, msg)
}

// Processor delivers outbox messages. Claiming a batch leases its messages
// until now+ProcessingTTL; a worker that dies mid-batch leaves them to be
// reclaimed after the lease.
type Processor struct {
	repo     shared.OutboxRepository
	handlers map[string]Handler
	clock    clock.Clock
	cfg      config.OutboxConfig
	jitter   func() float64
}

func NewProcessor(repo shared.OutboxRepository, clk clock.Clock, cfg config.OutboxConfig) *Processor {
	return &Processor{
		repo:     repo,
		handlers: make(map[string]Handler),
		clock:    clk,
		cfg:      cfg,
		jitter:   func() float64 { return rand.Float64()*2 - 1 },
	}
}

// Register must be called before Run.
func (p *Processor) Register(msgType string, h Handler) {
	p.handlers[msgType] = h
}

// RunOnce processes one batch and returns its size. Handler failures are
// recorded on the messages, never returned.
func (p *Processor) RunOnce(ctx context.Context) (int, error) {
	now := p.clock.Now()
	leaseUntil := now.Add(p.cfg.ProcessingTTL)

	msgs, err := p.repo.FetchDueBatch(ctx, p.cfg.BatchSize, now, leaseUntil)
	if err != nil {
		return 0, err
	}

	var g errgroup.Group
	g.SetLimit(max(p.cfg.Workers, 1))
	for _, msg := range msgs {
		g.Go(func() error {
			p.process(ctx, msg, leaseUntil)
			return nil
		})
	}
	_ = g.Wait()

	return len(msgs), nil
}

func (p *Processor) process(ctx context.Context, msg *outbox.Message, leaseUntil time.Time) {
	h, ok := p.handlers[msg.Type]
	if !ok {
		p.finish(ctx, msg, "failed", func(ctx context.Context) (bool, error) {
			return p.repo.MarkFailed(ctx, msg.ID, msg.Attempts, "no handler for "+msg.Type, p.clock.Now())
		})
		return
	}

	hctx, cancel := context.WithDeadline(ctx, leaseUntil)
	err := invoke(hctx, h, msg)
	cancel()

	now := p.clock.Now()
	switch {
	case err == nil:
		p.finish(ctx, msg, "done", func(ctx context.Context) (bool, error) {
			return p.repo.MarkDone(ctx, msg.ID, msg.Attempts, now)
		})
	case msg.Attempts >= p.cfg.MaxAttempts:
		slog.Error("outbox message exhausted retries", "id", msg.ID.String(), "type", msg.Type, "attempts", msg.Attempts, "error", err.Error())
		p.finish(ctx, msg, "failed", func(ctx context.Context) (bool, error) {
			return p.repo.MarkFailed(ctx, msg.ID, msg.Attempts, truncate(err.Error()), now)
		})
	default:
		next := now.Add(outbox.Backoff(msg.Attempts, p.cfg.BaseBackoff, p.cfg.MaxBackoff, p.jitter()))
		slog.Warn("outbox handler failed, rescheduling", "id", msg.ID.String(), "type", msg.Type, "attempts", msg.Attempts, "next_attempt_at", next, "error", err.Error())
		p.finish(ctx, msg, "rescheduled", func(ctx context.Context) (bool, error) {
			return p.repo.Reschedule(ctx, msg.ID, msg.Attempts, next, truncate(err.Error()))
		})
	}
}

// finish runs a conditional finalizer. A false result means another worker
// reclaimed the message after our lease ran out.
func (p *Processor) finish(ctx context.Context, msg *outbox.Message, action string, fn func(ctx context.Context) (bool, error)) {
	ok, err := fn(context.WithoutCancel(ctx))
	if err != nil {
		slog.Error("failed to finalize outbox message", "id", msg.ID.String(), "action", action, "error", err.Error())
		return
	}
	if !ok {
		slog.Warn("stale outbox finalize skipped", "id", msg.ID.String(), "action", action, "attempts", msg.Attempts)
	}
}

func invoke(ctx context.Context, h Handler, msg *outbox.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.Newf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, msg)
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// the next one.
func (p *Processor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()
	lastBacklog := time.Time{}

	for {
		n, err := p.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			slog.Error("outbox batch failed", "error", err.Error())
		}

		if now := p.clock.Now(); p.cfg.BacklogLogEvery > 0 && now.Sub(lastBacklog) >= p.cfg.BacklogLogEvery {
			lastBacklog = now
			p.logBacklog(ctx, now)
		}

		if n >= p.cfg.BatchSize && err == nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("outbox processor stopped")
			return
		case <-ticker.C:
		}
	}
}

func (p *Processor) logBacklog(ctx context.Context, now time.Time) {
	backlog, err := p.repo.CountBacklog(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("failed to count outbox backlog", "error", err.Error())
		}
		return
	}
	slog.Info("outbox backlog", "due", backlog)
}

func truncate(s string) string {
	if len(s) <= maxErrorLength {
		return s
	}
	return s[:maxErrorLength]
}
