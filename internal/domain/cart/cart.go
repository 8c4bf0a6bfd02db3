package cart

import (
	"time"

	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/pkg/errs"
)

var (
	ErrCartEmpty           = errs.Validation("CART_EMPTY", "cart is empty")
	ErrInvalidCartCurrency = errs.Validation("INVALID_CART_CURRENCY", "cart mixes currencies")
	ErrMixedMerchants      = errs.Validation("CART_MIXED_MERCHANTS", "cart mixes items of different merchants")
)

// Cart is the header row; UpdatedAt only moves when items are added or edited.
type Cart struct {
	ID        string
	BuyerID   int64
	UpdatedAt time.Time
}

type Item struct {
	ListingID    string
	VariantID    *string
	MerchantID   string
	Qty          int
	PriceMinor   int64
	Currency     string
	StorefrontID *string
	ChannelID    *int64
	PostID       *int64
}

func (i Item) HoldRequest() hold.Request {
	return hold.Request{ListingID: i.ListingID, VariantID: i.VariantID, Qty: i.Qty}
}

// CheckConsistency verifies the items can form a single order and returns its
// merchant and currency.
func CheckConsistency(items []Item) (merchantID, currency string, err error) {
	if len(items) == 0 {
		return "", "", ErrCartEmpty
	}
	merchantID, currency = items[0].MerchantID, items[0].Currency
	for _, it := range items[1:] {
		if it.Currency != currency {
			return "", "", ErrInvalidCartCurrency
		}
		if it.MerchantID != merchantID {
			return "", "", ErrMixedMerchants
		}
	}
	return merchantID, currency, nil
}
