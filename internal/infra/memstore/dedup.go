package memstore

import (
	"context"
	"sync"
	"time"

	"bot-for-order/internal/pkg/clock"
)

type dedupEntry struct {
	value     string
	expiresAt time.Time
}

type DedupStore struct {
	mu      sync.Mutex
	entries map[string]dedupEntry
	clock   clock.Clock
}

func NewDedupStore(clk clock.Clock) *DedupStore {
	return &DedupStore{
		entries: make(map[string]dedupEntry),
		clock:   clk,
	}
}

func (s *DedupStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !s.clock.Now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *DedupStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = dedupEntry{value: value, expiresAt: s.clock.Now().Add(ttl)}
	return nil
}
