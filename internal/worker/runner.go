package worker

import (
	"context"
	"log/slog"
	"sync"
)

// Runner owns the background loops: they share one context that is cancelled
// on Stop, and Stop waits for them to return.
type Runner struct {
	loops  []func(ctx context.Context)
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(processor *Processor, sweepers ...*Sweeper) *Runner {
	r := &Runner{}
	r.loops = append(r.loops, processor.Run)
	for _, s := range sweepers {
		r.loops = append(r.loops, s.Run)
	}
	return r
}

func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	for _, loop := range r.loops {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			loop(ctx)
		}()
	}
	slog.Info("background workers started", "count", len(r.loops))
}

func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
