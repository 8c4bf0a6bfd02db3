package hold

import (
	"sort"
	"time"

	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/ptr"
)

var (
	ErrHoldConflict    = errs.Conflict("HOLD_CONFLICT", "requested quantity is held by other orders")
	ErrHoldUnavailable = errs.Validation("HOLD_UNAVAILABLE", "merchant claim window does not allow holds")
	ErrInvalidRequest  = errs.Validation("HOLD_INVALID_REQUEST", "hold request quantity must be positive")
)

// MinTTL is the floor applied to every hold lifetime.
const MinTTL = time.Second

// Request asks for qty units of a listing, or of a specific variant of it.
type Request struct {
	ListingID string
	VariantID *string
	Qty       int
}

// Item is a grouped request: all requests sharing a key are summed.
type Item struct {
	Key       string
	ListingID string
	VariantID *string
	Qty       int
}

func (i Item) IsVariant() bool {
	return i.VariantID != nil
}

// KeyOf groups by variant when present, otherwise by listing.
func KeyOf(listingID string, variantID *string) string {
	if variantID != nil && *variantID != "" {
		return "v:" + *variantID
	}
	return "l:" + listingID
}

// Group sums quantities per variant (or listing) and returns items sorted by key
// so that every store touches keys in the same order.
func Group(reqs []Request) ([]Item, error) {
	byKey := make(map[string]*Item, len(reqs))
	for _, r := range reqs {
		if r.Qty <= 0 {
			return nil, errs.Wrapf(ErrInvalidRequest, "listing %s qty %d", r.ListingID, r.Qty)
		}
		key := KeyOf(r.ListingID, r.VariantID)
		if existing, ok := byKey[key]; ok {
			existing.Qty += r.Qty
			continue
		}
		byKey[key] = &Item{Key: key, ListingID: r.ListingID, VariantID: ptr.NonEmpty(ptr.Deref(r.VariantID)), Qty: r.Qty}
	}

	items := make([]Item, 0, len(byKey))
	for _, it := range byKey {
		items = append(items, *it)
	}
	sort.Slice(items, func(a, b int) bool { return items[a].Key < items[b].Key })
	return items, nil
}

// ClampTTL applies MinTTL.
func ClampTTL(ttl time.Duration) time.Duration {
	if ttl < MinTTL {
		return MinTTL
	}
	return ttl
}

// TTLUntil returns the lifetime remaining until deadline, never below MinTTL.
func TTLUntil(deadline, now time.Time) time.Duration {
	return ClampTTL(deadline.Sub(now))
}

// SameItems reports whether two grouped sets hold the same quantities.
func SameItems(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || a[i].Qty != b[i].Qty {
			return false
		}
	}
	return true
}
