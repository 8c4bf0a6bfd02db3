package order

import (
	"time"

	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/domain/payment"
	"bot-for-order/internal/pkg/errs"
)

var (
	ErrOrderNotFound         = errs.NotFound("ORDER_NOT_FOUND", "order not found")
	ErrOrderStatusChanged    = errs.Conflict("ORDER_STATUS_CHANGED", "order status changed concurrently")
	ErrPaymentStateConflict  = errs.Conflict("PAYMENT_STATE_CONFLICT", "order is not in a state that allows this payment operation")
	ErrPaymentMethodRequired = errs.Conflict("PAYMENT_METHOD_NOT_SELECTED", "payment method has not been selected")
)

// LegacyItem is the single reserved item of orders created without lines
// (accepted offers).
type LegacyItem struct {
	ListingID string
	VariantID *string
	Qty       int
}

type Order struct {
	ID               string
	MerchantID       string
	BuyerID          int64
	AmountMinor      int64
	Currency         string
	PaymentMethod    *payment.MethodType
	Status           Status
	Legacy           *LegacyItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PaymentClaimedAt *time.Time
	PaymentDecidedAt *time.Time
}

// TransitionTo is the only way status changes.
func (o *Order) TransitionTo(to Status, at time.Time) error {
	if err := RequireAllowed(o.Status, to); err != nil {
		return err
	}
	o.Status = to
	o.UpdatedAt = at
	return nil
}

func (o *Order) SelectPaymentMethod(method payment.MethodType, at time.Time) {
	o.PaymentMethod = &method
	o.UpdatedAt = at
}

func (o *Order) HasPaymentMethod(method payment.MethodType) bool {
	return o.PaymentMethod != nil && *o.PaymentMethod == method
}

func (o *Order) MarkClaimed(at time.Time) {
	claimedAt := at
	o.PaymentClaimedAt = &claimedAt
	o.UpdatedAt = at
}

func (o *Order) ClearClaim(at time.Time) {
	o.PaymentClaimedAt = nil
	o.UpdatedAt = at
}

func (o *Order) MarkDecided(at time.Time) {
	decidedAt := at
	o.PaymentDecidedAt = &decidedAt
	o.UpdatedAt = at
}

func (o *Order) IsBoughtBy(buyerID int64) bool {
	return o.BuyerID == buyerID
}

func (o *Order) IsSoldBy(merchantID string) bool {
	return o.MerchantID == merchantID
}

// ClaimDeadline is the last instant a buyer may submit proof of payment.
func (o *Order) ClaimDeadline(claimWindow time.Duration) time.Time {
	return o.CreatedAt.Add(claimWindow)
}

// ReviewDeadline is claimed-at plus the merchant review window; zero when unclaimed.
func (o *Order) ReviewDeadline(reviewWindow time.Duration) time.Time {
	if o.PaymentClaimedAt == nil {
		return time.Time{}
	}
	return o.PaymentClaimedAt.Add(reviewWindow)
}

// HoldRequests derives the hold requests for this order: one per line, or the
// legacy item for orders created without lines.
func (o *Order) HoldRequests(lines []Line) []hold.Request {
	if len(lines) == 0 {
		if o.Legacy == nil {
			return nil
		}
		return []hold.Request{{ListingID: o.Legacy.ListingID, VariantID: o.Legacy.VariantID, Qty: o.Legacy.Qty}}
	}
	reqs := make([]hold.Request, 0, len(lines))
	for _, l := range lines {
		reqs = append(reqs, l.HoldRequest())
	}
	return reqs
}
