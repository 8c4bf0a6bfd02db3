package response

import (
	"bot-for-order/internal/domain/payment"
	"bot-for-order/internal/pkg/money"
	"bot-for-order/internal/usecase/commands"

	"github.com/jinzhu/copier"
)

type ClaimResponse struct {
	ID           string  `json:"id" copier:"-"`
	OrderID      string  `json:"order_id"`
	MethodType   string  `json:"method_type"`
	TxID         *string `json:"tx_id,omitempty"`
	Comment      *string `json:"comment,omitempty"`
	Status       string  `json:"status"`
	RejectReason *string `json:"reject_reason,omitempty"`
	CreatedAt    int64   `json:"created_at"`
}

type InstructionsResponse struct {
	OrderID     string `json:"order_id"`
	MethodType  string `json:"method_type"`
	Mode        string `json:"mode"`
	Text        string `json:"text"`
	AmountMinor int64  `json:"amount_minor"`
	Amount      string `json:"amount" copier:"-"`
	Currency    string `json:"currency"`
}

type RejectResponse struct {
	OrderID string `json:"order_id"`
	Outcome string `json:"outcome"`
}

func FromClaim(c *payment.Claim) (*ClaimResponse, error) {
	res := &ClaimResponse{}
	if err := copier.CopyWithOption(res, c, copyOpts); err != nil {
		return nil, err
	}
	res.ID = c.ID.String()
	return res, nil
}

func FromInstructions(in *commands.PaymentInstructions) (*InstructionsResponse, error) {
	res := &InstructionsResponse{}
	if err := copier.Copy(res, in); err != nil {
		return nil, err
	}
	res.Amount = money.Format(in.AmountMinor, in.Currency)
	return res, nil
}

func FromRejectOutcome(orderID string, outcome payment.RejectOutcome) *RejectResponse {
	return &RejectResponse{OrderID: orderID, Outcome: outcome.String()}
}
