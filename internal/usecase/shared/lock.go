package shared

import (
	"context"
	"log/slog"
	"time"
)

const releaseTimeout = 2 * time.Second

// WithLock runs fn while holding key. The lease is released on every exit path,
// including panics and cancellation of ctx.
func WithLock[T any](ctx context.Context, locks LockManager, key string, wait, lease time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	held, err := locks.Acquire(ctx, key, wait, lease)
	if err != nil {
		return zero, err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if releaseErr := held.Release(releaseCtx); releaseErr != nil {
			slog.Warn("failed to release lock", "key", key, "error", releaseErr.Error())
		}
	}()

	return fn(ctx)
}
