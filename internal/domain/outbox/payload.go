package outbox

type AdminClaimSubmitted struct {
	OrderID         string   `json:"order_id"`
	MerchantID      string   `json:"merchant_id"`
	BuyerID         int64    `json:"buyer_id"`
	ClaimID         string   `json:"claim_id"`
	MethodType      string   `json:"method_type"`
	Mode            string   `json:"mode"`
	AmountMinor     int64    `json:"amount_minor"`
	Currency        string   `json:"currency"`
	TxID            *string  `json:"txid,omitempty"`
	Comment         *string  `json:"comment,omitempty"`
	AttachmentCount int      `json:"attachment_count"`
	AttachmentKeys  []string `json:"attachment_keys,omitempty"`
}

type BuyerClarificationRequested struct {
	OrderID    string  `json:"order_id"`
	MerchantID string  `json:"merchant_id"`
	BuyerID    int64   `json:"buyer_id"`
	Message    *string `json:"message,omitempty"`
}

type OrderStatusChanged struct {
	OrderID    string  `json:"order_id"`
	MerchantID string  `json:"merchant_id"`
	BuyerID    int64   `json:"buyer_id"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Reason     *string `json:"reason,omitempty"`
}
