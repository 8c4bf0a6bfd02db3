package redisstore

import (
	"context"
	"log/slog"
	"time"

	"bot-for-order/internal/infra/storeutil"
	"bot-for-order/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "lock:"

var releaseLockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// LockManager implements leases with SET NX PX and a compare-and-delete release.
type LockManager struct {
	client redis.UniversalClient
}

func NewLockManager(client redis.UniversalClient) *LockManager {
	return &LockManager{client: client}
}

func (m *LockManager) Acquire(ctx context.Context, key string, wait, lease time.Duration) (shared.Lease, error) {
	token := uuid.NewString()
	err := storeutil.PollAcquire(ctx, key, wait, func(ctx context.Context) (bool, error) {
		ok, err := m.client.SetNX(ctx, lockPrefix+key, token, lease).Result()
		if err != nil {
			return false, storeErr(err, "failed to acquire lock")
		}
		return ok, nil
	})
	if err != nil {
		return nil, err
	}
	return &redisLease{client: m.client, key: key, token: token}, nil
}

type redisLease struct {
	client redis.UniversalClient
	key    string
	token  string
}

func (l *redisLease) Key() string {
	return l.key
}

func (l *redisLease) Release(ctx context.Context) error {
	n, err := releaseLockScript.Run(ctx, l.client, []string{lockPrefix + l.key}, l.token).Int()
	if err != nil {
		return storeErr(err, "failed to release lock")
	}
	if n == 0 {
		slog.Debug("lock lease already expired", "key", l.key)
	}
	return nil
}
