package notify

import (
	"context"

	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/domain/outbox"
	"bot-for-order/internal/domain/payment"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/usecase/shared"
)

// OutboxNotifier turns notifications into outbox messages; delivery happens in
// the outbox processor.
type OutboxNotifier struct {
	outbox shared.OutboxRepository
	clock  clock.Clock
}

func NewOutboxNotifier(repo shared.OutboxRepository, clk clock.Clock) *OutboxNotifier {
	return &OutboxNotifier{outbox: repo, clock: clk}
}

func (n *OutboxNotifier) NotifyAdminClaim(ctx context.Context, o *order.Order, claim *payment.Claim, attachments []payment.Attachment, mode payment.Mode) error {
	keys := make([]string, 0, len(attachments))
	for _, a := range attachments {
		keys = append(keys, a.StorageKey)
	}
	return n.enqueue(ctx, outbox.TypeAdminClaimSubmitted, outbox.AdminClaimSubmitted{
		OrderID:         o.ID,
		MerchantID:      o.MerchantID,
		BuyerID:         o.BuyerID,
		ClaimID:         claim.ID.String(),
		MethodType:      string(claim.MethodType),
		Mode:            string(mode),
		AmountMinor:     o.AmountMinor,
		Currency:        o.Currency,
		TxID:            claim.TxID,
		Comment:         claim.Comment,
		AttachmentCount: len(attachments),
		AttachmentKeys:  keys,
	})
}

func (n *OutboxNotifier) NotifyBuyerClarification(ctx context.Context, o *order.Order, message *string) error {
	return n.enqueue(ctx, outbox.TypeBuyerClarificationRequested, outbox.BuyerClarificationRequested{
		OrderID:    o.ID,
		MerchantID: o.MerchantID,
		BuyerID:    o.BuyerID,
		Message:    message,
	})
}

func (n *OutboxNotifier) enqueue(ctx context.Context, msgType string, payload any) error {
	msg, err := outbox.NewMessage(msgType, payload, n.clock.Now())
	if err != nil {
		return errs.Wrapf(err, "failed to encode %s", msgType)
	}
	return n.outbox.Insert(ctx, msg)
}
