package merchant

import (
	"time"

	"bot-for-order/internal/pkg/errs"
)

var ErrMerchantNotFound = errs.NotFound("MERCHANT_NOT_FOUND", "merchant not found")

type Merchant struct {
	ID           string
	Name         string
	ClaimWindow  time.Duration
	ReviewWindow time.Duration
	AdminChatID  *int64
}

// CanHold reports whether orders of this merchant may reserve stock at all.
func (m *Merchant) CanHold() bool {
	return m.ClaimWindow > 0
}
