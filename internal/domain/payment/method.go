package payment

import (
	"time"

	"bot-for-order/internal/pkg/errs"
)

var (
	ErrMethodNotFound         = errs.NotFound("PAYMENT_METHOD_NOT_FOUND", "payment method not available for this merchant")
	ErrInstructionsUnreadable = errs.Internal("INSTRUCTIONS_UNREADABLE", "stored payment instructions cannot be read")
)

type MethodType string

const (
	MethodCardTransfer MethodType = "CARD_TRANSFER"
	MethodBankTransfer MethodType = "BANK_TRANSFER"
	MethodCrypto       MethodType = "CRYPTO"
	MethodOther        MethodType = "OTHER"
)

func (t MethodType) IsValid() bool {
	switch t {
	case MethodCardTransfer, MethodBankTransfer, MethodCrypto, MethodOther:
		return true
	default:
		return false
	}
}

// Mode decides where payment instructions come from.
type Mode string

const (
	// ModeAuto renders an encrypted static template configured by the merchant.
	ModeAuto Mode = "AUTO"
	// ModeManualSend waits for an admin to provide per-order details.
	ModeManualSend Mode = "MANUAL_SEND"
)

type Method struct {
	MerchantID        string
	Type              MethodType
	Mode              Mode
	EncryptedTemplate *string
	Enabled           bool
}

// RequiresOrderDetails reports whether the order must wait for admin-provided details.
func (m Method) RequiresOrderDetails(details *OrderDetails) bool {
	return m.Mode == ModeManualSend && details == nil
}

// OrderDetails are manual-send instructions written by an admin for one order.
type OrderDetails struct {
	OrderID    string
	Text       string
	ProvidedBy int64
	UpdatedAt  time.Time
}
