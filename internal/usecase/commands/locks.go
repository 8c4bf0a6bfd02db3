package commands

import "fmt"

// Lock operations on a single order.
const (
	opPaymentMethod = "payment-method"
	opClaim         = "claim"
	opConfirm       = "confirm"
	opReject        = "reject"
	opDetails       = "details"
	opClarify       = "clarify"
)

func orderLockKey(orderID, op string) string {
	return "order:" + orderID + ":" + op
}

func checkoutLockKey(buyerID int64) string {
	return fmt.Sprintf("cart:%d:checkout", buyerID)
}

func offerLockKey(buyerID int64, listingID string, variantID *string) string {
	variant := "-"
	if variantID != nil {
		variant = *variantID
	}
	return fmt.Sprintf("offer:new:%d:%s:%s", buyerID, listingID, variant)
}

func checkoutDedupKey(buyerID int64, cartID string, updatedAtNano int64) string {
	return fmt.Sprintf("checkout:%d:%s:%d", buyerID, cartID, updatedAtNano)
}
