package memstore

import (
	"context"
	"sync"
	"time"

	"bot-for-order/internal/infra/storeutil"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/usecase/shared"

	"github.com/google/uuid"
)

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// LockManager is a single-process lock table.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]lockEntry
	clock clock.Clock
}

func NewLockManager(clk clock.Clock) *LockManager {
	return &LockManager{
		locks: make(map[string]lockEntry),
		clock: clk,
	}
}

func (m *LockManager) Acquire(ctx context.Context, key string, wait, lease time.Duration) (shared.Lease, error) {
	token := uuid.NewString()
	err := storeutil.PollAcquire(ctx, key, wait, func(context.Context) (bool, error) {
		return m.tryLock(key, token, lease), nil
	})
	if err != nil {
		return nil, err
	}
	return &memLease{manager: m, key: key, token: token}, nil
}

func (m *LockManager) tryLock(key, token string, lease time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if cur, ok := m.locks[key]; ok && now.Before(cur.expiresAt) {
		return false
	}
	m.locks[key] = lockEntry{token: token, expiresAt: now.Add(lease)}
	return true
}

func (m *LockManager) unlock(key, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A lapsed lease may already belong to someone else.
	if cur, ok := m.locks[key]; ok && cur.token == token {
		delete(m.locks, key)
	}
}

type memLease struct {
	manager *LockManager
	key     string
	token   string
}

func (l *memLease) Key() string {
	return l.key
}

func (l *memLease) Release(context.Context) error {
	l.manager.unlock(l.key, l.token)
	return nil
}
