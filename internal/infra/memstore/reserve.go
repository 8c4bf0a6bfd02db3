package memstore

import (
	"context"
	"sync"
	"time"

	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/pkg/clock"
)

type reserveEntry struct {
	payload   hold.Reserve
	expiresAt time.Time
}

type ReserveStore struct {
	mu      sync.Mutex
	byKey   map[string]reserveEntry
	byOrder map[string]string
	clock   clock.Clock
}

func NewReserveStore(clk clock.Clock) *ReserveStore {
	return &ReserveStore{
		byKey:   make(map[string]reserveEntry),
		byOrder: make(map[string]string),
		clock:   clk,
	}
}

func (s *ReserveStore) PutIfAbsent(_ context.Context, key string, payload hold.Reserve, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if cur, ok := s.byKey[key]; ok {
		if now.Before(cur.expiresAt) {
			return false, nil
		}
		delete(s.byOrder, cur.payload.OrderID)
	}
	s.byKey[key] = reserveEntry{payload: payload, expiresAt: now.Add(hold.ClampTTL(ttl))}
	s.byOrder[payload.OrderID] = key
	return true, nil
}

func (s *ReserveStore) HasOrderReserve(_ context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byOrder[orderID]
	if !ok {
		return false, nil
	}
	cur, ok := s.byKey[key]
	return ok && cur.payload.OrderID == orderID && s.clock.Now().Before(cur.expiresAt), nil
}

func (s *ReserveStore) ExtendByOrder(_ context.Context, orderID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byOrder[orderID]
	if !ok {
		return nil
	}
	now := s.clock.Now()
	cur, ok := s.byKey[key]
	if !ok || cur.payload.OrderID != orderID || !now.Before(cur.expiresAt) {
		return nil
	}
	cur.expiresAt = now.Add(hold.ClampTTL(ttl))
	s.byKey[key] = cur
	return nil
}

func (s *ReserveStore) DeleteReserveByOrder(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byOrder[orderID]
	if !ok {
		return nil
	}
	delete(s.byOrder, orderID)
	if cur, ok := s.byKey[key]; ok && cur.payload.OrderID == orderID {
		delete(s.byKey, key)
	}
	return nil
}
