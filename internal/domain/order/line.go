package order

import (
	"time"

	"bot-for-order/internal/domain/hold"
)

type Provenance struct {
	StorefrontID *string
	ChannelID    *int64
	PostID       *int64
}

// Line is immutable once the order is created.
type Line struct {
	OrderID    string
	ListingID  string
	VariantID  *string
	Qty        int
	PriceMinor int64
	Currency   string
	Provenance Provenance
	CreatedAt  time.Time
}

func (l Line) HoldRequest() hold.Request {
	return hold.Request{ListingID: l.ListingID, VariantID: l.VariantID, Qty: l.Qty}
}

func (l Line) SubtotalMinor() int64 {
	return l.PriceMinor * int64(l.Qty)
}

type WithLines struct {
	Order *Order
	Lines []Line
}
