package memstore

import (
	"context"
	"sync"
	"time"

	"bot-for-order/internal/domain/catalog"
	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/usecase/shared"
)

type holdOwner struct {
	items     []hold.Item
	expiresAt time.Time
}

// HoldLedger keeps every owner's holds behind one mutex, so each call is atomic
// with respect to the others.
type HoldLedger struct {
	mu     sync.Mutex
	owners map[string]*holdOwner
	byItem map[string]map[string]int
	stock  shared.StockReader
	clock  clock.Clock
}

func NewHoldLedger(stock shared.StockReader, clk clock.Clock) *HoldLedger {
	return &HoldLedger{
		owners: make(map[string]*holdOwner),
		byItem: make(map[string]map[string]int),
		stock:  stock,
		clock:  clk,
	}
}

func (h *HoldLedger) capacity(ctx context.Context, items []hold.Item) (map[string]int, error) {
	snapshot, err := h.stock.StockSnapshot(ctx, items)
	if err != nil {
		return nil, err
	}
	return catalog.Capacity(snapshot), nil
}

func (h *HoldLedger) TryAcquire(ctx context.Context, ownerID string, reqs []hold.Request, ttl time.Duration) (bool, error) {
	items, err := hold.Group(reqs)
	if err != nil {
		return false, err
	}
	capacity, err := h.capacity(ctx, items)
	if err != nil {
		return false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.clock.Now()
	h.purgeLocked(items, now)

	if cur, ok := h.owners[ownerID]; ok {
		if now.Before(cur.expiresAt) {
			return hold.SameItems(cur.items, items), nil
		}
		h.dropOwnerLocked(ownerID, nil)
	}
	if !h.fitsLocked(ownerID, items, capacity) {
		return false, nil
	}
	h.placeLocked(ownerID, items, now.Add(hold.ClampTTL(ttl)))
	return true, nil
}

func (h *HoldLedger) Extend(ctx context.Context, ownerID string, reqs []hold.Request, ttl time.Duration) error {
	items, err := hold.Group(reqs)
	if err != nil {
		return err
	}
	capacity, err := h.capacity(ctx, items)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.clock.Now()
	expiresAt := now.Add(hold.ClampTTL(ttl))
	if cur, ok := h.owners[ownerID]; ok && now.Before(cur.expiresAt) {
		cur.expiresAt = expiresAt
		return nil
	}

	h.purgeLocked(items, now)
	h.dropOwnerLocked(ownerID, items)
	if !h.fitsLocked(ownerID, items, capacity) {
		return errs.Wrapf(hold.ErrHoldConflict, "owner %s lapsed and cannot be re-held", ownerID)
	}
	h.placeLocked(ownerID, items, expiresAt)
	return nil
}

func (h *HoldLedger) Release(_ context.Context, ownerID string, reqs []hold.Request) error {
	items, err := hold.Group(reqs)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropOwnerLocked(ownerID, items)
	return nil
}

func (h *HoldLedger) ReleaseExpired(context.Context) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.clock.Now()
	released := 0
	for ownerID, o := range h.owners {
		if now.Before(o.expiresAt) {
			continue
		}
		h.dropOwnerLocked(ownerID, nil)
		released++
	}
	return released, nil
}

// purgeLocked removes expired owners touching any of items.
func (h *HoldLedger) purgeLocked(items []hold.Item, now time.Time) {
	for _, it := range items {
		for ownerID := range h.byItem[it.Key] {
			if o, ok := h.owners[ownerID]; !ok || !now.Before(o.expiresAt) {
				h.dropOwnerLocked(ownerID, items)
			}
		}
	}
}

func (h *HoldLedger) fitsLocked(ownerID string, items []hold.Item, capacity map[string]int) bool {
	for _, it := range items {
		held := 0
		for other, qty := range h.byItem[it.Key] {
			if other != ownerID {
				held += qty
			}
		}
		if held+it.Qty > capacity[it.Key] {
			return false
		}
	}
	return true
}

func (h *HoldLedger) placeLocked(ownerID string, items []hold.Item, expiresAt time.Time) {
	h.owners[ownerID] = &holdOwner{items: items, expiresAt: expiresAt}
	for _, it := range items {
		owners, ok := h.byItem[it.Key]
		if !ok {
			owners = make(map[string]int)
			h.byItem[it.Key] = owners
		}
		owners[ownerID] = it.Qty
	}
}

// dropOwnerLocked removes the owner's recorded items plus any extra keys given.
func (h *HoldLedger) dropOwnerLocked(ownerID string, extra []hold.Item) {
	var keys []string
	if o, ok := h.owners[ownerID]; ok {
		for _, it := range o.items {
			keys = append(keys, it.Key)
		}
		delete(h.owners, ownerID)
	}
	for _, it := range extra {
		keys = append(keys, it.Key)
	}
	for _, key := range keys {
		owners := h.byItem[key]
		delete(owners, ownerID)
		if len(owners) == 0 {
			delete(h.byItem, key)
		}
	}
}
