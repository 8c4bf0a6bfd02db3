package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bot-for-order/internal/domain/outbox"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/money"
	"bot-for-order/internal/usecase/shared"
)

type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Handlers render outbox messages as chat messages. Buyers are addressed by
// their user id, admins through the merchant's admin chat.
type Handlers struct {
	uow     shared.UnitOfWork
	sender  MessageSender
	storage shared.ObjectStorage
	linkTTL time.Duration
}

func NewHandlers(uow shared.UnitOfWork, sender MessageSender, storage shared.ObjectStorage, linkTTL time.Duration) *Handlers {
	return &Handlers{uow: uow, sender: sender, storage: storage, linkTTL: linkTTL}
}

func (h *Handlers) RegisterAll(p *Processor) {
	p.Register(outbox.TypeAdminClaimSubmitted, HandlerFunc(h.AdminClaimSubmitted))
	p.Register(outbox.TypeBuyerClarificationRequested, HandlerFunc(h.BuyerClarificationRequested))
	p.Register(outbox.TypeOrderStatusChanged, HandlerFunc(h.OrderStatusChanged))
}

func (h *Handlers) AdminClaimSubmitted(ctx context.Context, msg *outbox.Message) error {
	var p outbox.AdminClaimSubmitted
	if err := msg.Decode(&p); err != nil {
		return errs.Wrap(err, "decode admin.claim_submitted")
	}

	m, err := h.uow.Reads().Merchants().FindByID(ctx, p.MerchantID)
	if err != nil {
		return err
	}
	if m.AdminChatID == nil {
		slog.Warn("merchant has no admin chat, dropping claim notification", "merchant_id", p.MerchantID, "order_id", p.OrderID)
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Payment claim for order %s\n", p.OrderID)
	fmt.Fprintf(&b, "Amount: %s\nMethod: %s (%s)\n", money.Format(p.AmountMinor, p.Currency), p.MethodType, p.Mode)
	if p.TxID != nil {
		fmt.Fprintf(&b, "TxID: %s\n", *p.TxID)
	}
	if p.Comment != nil {
		fmt.Fprintf(&b, "Comment: %s\n", *p.Comment)
	}
	fmt.Fprintf(&b, "Attachments: %d\n", p.AttachmentCount)
	for i, key := range p.AttachmentKeys {
		link, err := h.storage.PresignGet(key, h.linkTTL)
		if err != nil {
			return errs.Wrapf(err, "presign attachment %d", i)
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, link)
	}

	return h.sender.SendMessage(ctx, *m.AdminChatID, b.String())
}

func (h *Handlers) BuyerClarificationRequested(ctx context.Context, msg *outbox.Message) error {
	var p outbox.BuyerClarificationRequested
	if err := msg.Decode(&p); err != nil {
		return errs.Wrap(err, "decode buyer.clarification_requested")
	}

	text := fmt.Sprintf("The seller needs more information about your payment for order %s.", p.OrderID)
	if p.Message != nil {
		text += "\n" + *p.Message
	}
	return h.sender.SendMessage(ctx, p.BuyerID, text)
}

func (h *Handlers) OrderStatusChanged(ctx context.Context, msg *outbox.Message) error {
	var p outbox.OrderStatusChanged
	if err := msg.Decode(&p); err != nil {
		return errs.Wrap(err, "decode order.status_changed")
	}

	text := fmt.Sprintf("Order %s: %s", p.OrderID, statusText(p.To))
	if p.Reason != nil {
		text += "\n" + *p.Reason
	}
	return h.sender.SendMessage(ctx, p.BuyerID, text)
}

func statusText(status string) string {
	switch status {
	case "PAID_CONFIRMED":
		return "payment confirmed"
	case "AWAITING_PAYMENT":
		return "awaiting payment"
	case "AWAITING_PAYMENT_DETAILS":
		return "waiting for payment details from the seller"
	case "canceled":
		return "canceled"
	default:
		return strings.ToLower(status)
	}
}
