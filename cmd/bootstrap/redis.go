package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"bot-for-order/internal/pkg/config"
	"bot-for-order/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const (
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedisClient,
	),
)

// NewRedisClient returns nil when the memory backend is selected.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) (redis.UniversalClient, error) {
	switch cfg.Redis.StoreBackend {
	case StoreBackendMemory:
		slog.Warn("using in-memory coordination stores, run a single instance only")
		return nil, nil
	case StoreBackendRedis:
	default:
		return nil, errs.Newf("unknown STORE_BACKEND %q", cfg.Redis.StoreBackend)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := client.Ping(pingCtx).Err(); err != nil {
				return errs.Wrap(err, "failed to ping redis")
			}
			slog.Info("redis connected", "addr", cfg.Redis.Addr)
			return nil
		},
		OnStop: func(_ context.Context) error {
			slog.Info("closing redis client")
			return client.Close()
		},
	})

	return client, nil
}
