package storeutil

import (
	"context"
	"time"

	"bot-for-order/internal/pkg/errs"
)

const (
	minPollInterval = 10 * time.Millisecond
	maxPollInterval = 100 * time.Millisecond
)

// PollAcquire calls try until it succeeds, fails, or wait elapses. Timing out
// yields errs.ErrLockTimeout.
func PollAcquire(ctx context.Context, key string, wait time.Duration, try func(ctx context.Context) (bool, error)) error {
	deadline := time.Now().Add(wait)
	interval := minPollInterval

	for {
		ok, err := try(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return errs.Wrapf(errs.ErrLockTimeout, "lock %s not acquired within %s", key, wait)
		}

		sleep := min(interval, remaining)
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errs.Wrapf(errs.ErrLockTimeout, "lock %s: %v", key, ctx.Err())
		case <-timer.C:
		}
		interval = min(interval*2, maxPollInterval)
	}
}
