package request

import (
	"bot-for-order/internal/usecase/commands"

	"github.com/jinzhu/copier"
)

type AcceptOfferRequest struct {
	BuyerID     int64   `json:"buyer_id" binding:"required"`
	ListingID   string  `json:"listing_id" binding:"required"`
	VariantID   *string `json:"variant_id"`
	Qty         int     `json:"qty" binding:"required,min=1"`
	AmountMinor int64   `json:"amount_minor" binding:"required,min=1"`
	Currency    string  `json:"currency" binding:"required,len=3"`
}

func (r *AcceptOfferRequest) ToCommand() (commands.AcceptOfferRequest, error) {
	var cmd commands.AcceptOfferRequest
	if err := copier.Copy(&cmd, r); err != nil {
		return commands.AcceptOfferRequest{}, err
	}
	return cmd, nil
}
