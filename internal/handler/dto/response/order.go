package response

import (
	"time"

	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/pkg/money"
	"bot-for-order/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

// unixConverter renders timestamps the way every response does: unix seconds.
var unixConverter = copier.TypeConverter{
	SrcType: time.Time{},
	DstType: int64(0),
	Fn: func(src any) (any, error) {
		return src.(time.Time).Unix(), nil
	},
}

var copyOpts = copier.Option{Converters: []copier.TypeConverter{unixConverter}}

type OrderResponse struct {
	ID               string  `json:"id"`
	MerchantID       string  `json:"merchant_id"`
	BuyerID          int64   `json:"buyer_id"`
	AmountMinor      int64   `json:"amount_minor"`
	Amount           string  `json:"amount" copier:"-"`
	Currency         string  `json:"currency"`
	PaymentMethod    *string `json:"payment_method,omitempty" copier:"-"`
	Status           string  `json:"status"`
	CreatedAt        int64   `json:"created_at"`
	UpdatedAt        int64   `json:"updated_at"`
	PaymentClaimedAt *int64  `json:"payment_claimed_at,omitempty" copier:"-"`
	PaymentDecidedAt *int64  `json:"payment_decided_at,omitempty" copier:"-"`
}

type OrderLineResponse struct {
	ListingID  string  `json:"listing_id"`
	VariantID  *string `json:"variant_id,omitempty"`
	Qty        int     `json:"qty"`
	PriceMinor int64   `json:"price_minor"`
	Currency   string  `json:"currency"`
}

type CheckoutResponse struct {
	Order *OrderResponse       `json:"order"`
	Lines []*OrderLineResponse `json:"lines"`
}

func FromOrder(o *order.Order) (*OrderResponse, error) {
	res := &OrderResponse{}
	if err := copier.CopyWithOption(res, o, copyOpts); err != nil {
		return nil, err
	}
	res.Amount = money.Format(o.AmountMinor, o.Currency)
	if o.PaymentMethod != nil {
		method := string(*o.PaymentMethod)
		res.PaymentMethod = &method
	}
	res.PaymentClaimedAt = unixOrNil(o.PaymentClaimedAt)
	res.PaymentDecidedAt = unixOrNil(o.PaymentDecidedAt)
	return res, nil
}

func FromOrderWithLines(w *order.WithLines) (*CheckoutResponse, error) {
	o, err := FromOrder(w.Order)
	if err != nil {
		return nil, err
	}
	lines := make([]*OrderLineResponse, 0, len(w.Lines))
	if err := copier.Copy(&lines, w.Lines); err != nil {
		return nil, err
	}
	return &CheckoutResponse{Order: o, Lines: lines}, nil
}

func unixOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.Unix()
	return &v
}

// ================================================================================
// Read side
// ================================================================================

type OfferItemResponse struct {
	ListingID string  `json:"listing_id"`
	VariantID *string `json:"variant_id,omitempty"`
	Qty       int     `json:"qty"`
}

type OrderDetailResponse struct {
	Order     *OrderResponse       `json:"order"`
	Lines     []*OrderLineResponse `json:"lines"`
	OfferItem *OfferItemResponse   `json:"offer_item,omitempty"`
}

type HistoryEntryResponse struct {
	From    *string `json:"from,omitempty"`
	To      string  `json:"to"`
	ActorID int64   `json:"actor_id"`
	Comment string  `json:"comment,omitempty"`
	At      int64   `json:"at"`
}

type OrderListItemResponse struct {
	ID          string `json:"id"`
	BuyerID     int64  `json:"buyer_id"`
	AmountMinor int64  `json:"amount_minor"`
	Amount      string `json:"amount" copier:"-"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"created_at"`
}

type OrderListResponse struct {
	Items      []*OrderListItemResponse `json:"items"`
	NextCursor *string                  `json:"next_cursor,omitempty"`
}

func FromOrderDetail(d *queries.OrderDetail) (*OrderDetailResponse, error) {
	o := &OrderResponse{}
	if err := copier.CopyWithOption(o, d.Order, copyOpts); err != nil {
		return nil, err
	}
	o.Amount = money.Format(d.Order.AmountMinor, d.Order.Currency)
	o.PaymentMethod = d.Order.PaymentMethod
	o.PaymentClaimedAt = unixOrNil(d.Order.PaymentClaimedAt)
	o.PaymentDecidedAt = unixOrNil(d.Order.PaymentDecidedAt)

	res := &OrderDetailResponse{Order: o, Lines: make([]*OrderLineResponse, 0, len(d.Lines))}
	if err := copier.Copy(&res.Lines, d.Lines); err != nil {
		return nil, err
	}
	if d.Order.OfferItem != nil {
		res.OfferItem = &OfferItemResponse{}
		if err := copier.Copy(res.OfferItem, d.Order.OfferItem); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func FromHistory(entries []*queries.HistoryView) ([]*HistoryEntryResponse, error) {
	res := make([]*HistoryEntryResponse, 0, len(entries))
	if err := copier.CopyWithOption(&res, entries, copyOpts); err != nil {
		return nil, err
	}
	return res, nil
}

func FromOrderList(items []*queries.OrderListItem, next *queries.Cursor) (*OrderListResponse, error) {
	res := &OrderListResponse{Items: make([]*OrderListItemResponse, 0, len(items))}
	if err := copier.CopyWithOption(&res.Items, items, copyOpts); err != nil {
		return nil, err
	}
	for i, it := range items {
		res.Items[i].Amount = money.Format(it.AmountMinor, it.Currency)
	}
	if next != nil {
		res.NextCursor = &next.After
	}
	return res, nil
}
