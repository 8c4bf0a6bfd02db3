package catalog

import (
	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/pkg/errs"
)

var (
	ErrVariantUnavailable = errs.Conflict("VARIANT_UNAVAILABLE", "item is inactive or out of stock")
	ErrStockMismatch      = errs.Conflict("STOCK_MISMATCH", "stock changed and no longer covers the order")
)

// Stock is the current availability of a hold item (variant or listing).
type Stock struct {
	Key       string
	Available int
	Active    bool
}

// CheckAvailable is a best-effort pre-check; the decrement at payment
// confirmation is the source of truth.
func CheckAvailable(items []hold.Item, stock map[string]Stock) error {
	for _, it := range items {
		s, ok := stock[it.Key]
		if !ok || !s.Active || s.Available < it.Qty {
			return errs.Wrapf(ErrVariantUnavailable, "item %s", it.Key)
		}
	}
	return nil
}

// Capacity extracts available quantities keyed by hold item key.
func Capacity(stock map[string]Stock) map[string]int {
	out := make(map[string]int, len(stock))
	for k, s := range stock {
		if s.Active {
			out[k] = s.Available
		} else {
			out[k] = 0
		}
	}
	return out
}
