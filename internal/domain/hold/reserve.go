package hold

import "time"

// Reserve is the payload of a single-key reservation (e.g. an accepted offer).
type Reserve struct {
	OrderID   string    `json:"order_id"`
	Qty       int       `json:"qty"`
	BuyerID   int64     `json:"buyer_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReserveKey identifies the reserved resource of a single-line owner.
func ReserveKey(listingID string, variantID *string) string {
	return KeyOf(listingID, variantID)
}
