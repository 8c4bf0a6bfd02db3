package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/domain/outbox"
	"bot-for-order/internal/domain/payment"
	"bot-for-order/internal/domain/user"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/pkg/config"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/money"
	"bot-for-order/internal/pkg/ptr"
	"bot-for-order/internal/usecase/shared"
)

type PaymentInstructions struct {
	OrderID     string
	MethodType  payment.MethodType
	Mode        payment.Mode
	Text        string
	AmountMinor int64
	Currency    string
}

type PaymentCommands interface {
	SelectPaymentMethod(ctx context.Context, buyer user.Actor, orderID string, method payment.MethodType) (*order.Order, error)
	SubmitClaim(ctx context.Context, buyer user.Actor, orderID string, in payment.ClaimInput) (*payment.Claim, error)
	ConfirmPayment(ctx context.Context, admin user.Actor, orderID string) (*order.Order, error)
	RejectPayment(ctx context.Context, admin user.Actor, orderID, reason string) (payment.RejectOutcome, error)
	SetPaymentDetails(ctx context.Context, admin user.Actor, orderID, text string) (*order.Order, error)
	GetPaymentInstructions(ctx context.Context, buyer user.Actor, orderID string) (*PaymentInstructions, error)
	RequestClarification(ctx context.Context, admin user.Actor, orderID string, message *string) error
}

type paymentUseCaseImpl struct {
	uow       shared.UnitOfWork
	locks     shared.LockManager
	holds     shared.HoldLedger
	reserves  shared.ReserveStore
	notifier  shared.Notifier
	storage   shared.ObjectStorage
	encryptor shared.Encryptor
	clock     clock.Clock
	lock      config.LockConfig
	payment   config.PaymentConfig
	limits    payment.Limits
}

func NewPaymentUseCase(
	uow shared.UnitOfWork,
	locks shared.LockManager,
	holds shared.HoldLedger,
	reserves shared.ReserveStore,
	notifier shared.Notifier,
	storage shared.ObjectStorage,
	encryptor shared.Encryptor,
	clk clock.Clock,
	cfg config.Config,
) PaymentCommands {
	return &paymentUseCaseImpl{
		uow:       uow,
		locks:     locks,
		holds:     holds,
		reserves:  reserves,
		notifier:  notifier,
		storage:   storage,
		encryptor: encryptor,
		clock:     clk,
		lock:      cfg.Lock,
		payment:   cfg.Payment,
		limits:    LimitsFromConfig(cfg.Payment),
	}
}

func LimitsFromConfig(cfg config.PaymentConfig) payment.Limits {
	return payment.Limits{
		MaxTxIDLength:      cfg.MaxTxIDLength,
		MaxCommentLength:   cfg.MaxCommentLength,
		MaxAttachments:     cfg.MaxAttachments,
		MaxAttachmentBytes: cfg.MaxAttachmentBytes,
		MaxRejectReason:    cfg.MaxRejectReason,
		MaxDetailsLength:   cfg.MaxDetailsLength,
	}
}

func withOrderLock[T any](ctx context.Context, uc *paymentUseCaseImpl, orderID, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	return shared.WithLock(ctx, uc.locks, orderLockKey(orderID, op), uc.lock.Wait, uc.lock.Lease, fn)
}

// ================================================================================
// Buyer operations
// ================================================================================

func (uc *paymentUseCaseImpl) SelectPaymentMethod(ctx context.Context, buyer user.Actor, orderID string, method payment.MethodType) (*order.Order, error) {
	if !method.IsValid() {
		return nil, errs.Wrapf(payment.ErrInvalidMethodType, "%q", method)
	}

	return withOrderLock(ctx, uc, orderID, opPaymentMethod, func(ctx context.Context) (*order.Order, error) {
		reads := uc.uow.Reads()
		o, err := uc.loadForBuyer(ctx, reads, orderID, buyer)
		if err != nil {
			return nil, err
		}
		if o.HasPaymentMethod(method) {
			return o, nil
		}

		switch o.Status {
		case order.StatusPending, order.StatusAwaitingPaymentDetails, order.StatusAwaitingPayment:
		default:
			return nil, errs.Wrapf(order.ErrPaymentStateConflict, "select method in %s", o.Status)
		}

		m, err := reads.PaymentMethods().FindEnabled(ctx, o.MerchantID, method)
		if err != nil {
			return nil, err
		}
		details, err := reads.PaymentMethods().FindOrderDetails(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		target := order.StatusAwaitingPayment
		if m.RequiresOrderDetails(details) {
			target = order.StatusAwaitingPaymentDetails
		}

		now := uc.clock.Now()
		from := o.Status
		var updated order.Order
		err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			updated = *o
			updated.SelectPaymentMethod(method, now)
			if from != target {
				if err := updated.TransitionTo(target, now); err != nil {
					return err
				}
			}
			if err := tx.Orders().Update(ctx, &updated, o); err != nil {
				return err
			}
			if from == target {
				return nil
			}
			return tx.History().Append(ctx, order.NewHistoryEntry(o.ID, order.StatusPtr(from), target, buyer.ID, "payment method "+string(method), now))
		})
		if err != nil {
			return nil, err
		}
		return &updated, nil
	})
}

// SubmitClaim records proof of payment. A repeated submission while the order
// is under review returns the claim already on file.
func (uc *paymentUseCaseImpl) SubmitClaim(ctx context.Context, buyer user.Actor, orderID string, in payment.ClaimInput) (*payment.Claim, error) {
	in = in.Normalize()
	validationErr := in.Validate(uc.limits)

	return withOrderLock(ctx, uc, orderID, opClaim, func(ctx context.Context) (*payment.Claim, error) {
		reads := uc.uow.Reads()
		o, err := uc.loadForBuyer(ctx, reads, orderID, buyer)
		if err != nil {
			return nil, err
		}

		if o.Status == order.StatusPaymentUnderReview {
			existing, err := reads.Claims().FindSubmitted(ctx, o.ID)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				return nil, errs.Wrapf(order.ErrPaymentStateConflict, "order %s under review without claim", o.ID)
			}
			return existing, nil
		}
		if validationErr != nil {
			return nil, validationErr
		}
		if o.Status != order.StatusAwaitingPayment {
			return nil, errs.Wrapf(order.ErrPaymentStateConflict, "submit claim in %s", o.Status)
		}
		if o.PaymentMethod == nil {
			return nil, order.ErrPaymentMethodRequired
		}

		m, err := reads.Merchants().FindByID(ctx, o.MerchantID)
		if err != nil {
			return nil, err
		}
		method, err := reads.PaymentMethods().FindEnabled(ctx, o.MerchantID, *o.PaymentMethod)
		if err != nil {
			return nil, err
		}
		lines, err := reads.OrderLines().ListByOrder(ctx, o.ID)
		if err != nil {
			return nil, err
		}

		now := uc.clock.Now()
		claim := payment.NewClaim(o.ID, *o.PaymentMethod, in.TxID, in.Comment, now)
		attachments, err := uc.uploadAttachments(ctx, claim, in.Attachments, now)
		if err != nil {
			return nil, err
		}

		from := o.Status
		var (
			updated  order.Order
			existing *payment.Claim
		)
		err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			existing = nil
			inserted, err := tx.Claims().TryInsert(ctx, claim)
			if err != nil {
				return err
			}
			if !inserted {
				existing, err = tx.Claims().FindSubmitted(ctx, o.ID)
				if err != nil {
					return err
				}
				if existing == nil {
					return errs.Wrapf(order.ErrPaymentStateConflict, "claim for %s lost", o.ID)
				}
				return nil
			}
			for _, a := range attachments {
				if err := tx.Attachments().Create(ctx, a); err != nil {
					return err
				}
			}

			updated = *o
			updated.MarkClaimed(now)
			if err := updated.TransitionTo(order.StatusPaymentUnderReview, now); err != nil {
				return err
			}
			if err := tx.Orders().Update(ctx, &updated, o); err != nil {
				return err
			}
			return tx.History().Append(ctx, order.NewHistoryEntry(o.ID, order.StatusPtr(from), updated.Status, buyer.ID, "payment claim submitted", now))
		})
		if err != nil {
			uc.discardAttachments(ctx, attachments)
			return nil, err
		}
		if existing != nil {
			uc.discardAttachments(ctx, attachments)
			return existing, nil
		}

		ttl := hold.TTLUntil(updated.ReviewDeadline(m.ReviewWindow), now)
		if err := uc.holds.Extend(ctx, o.ID, updated.HoldRequests(lines), ttl); err != nil {
			slog.Warn("failed to extend hold for review", "order_id", o.ID, "ttl", ttl.String(), "error", err.Error())
		}
		if err := uc.reserves.ExtendByOrder(ctx, o.ID, ttl); err != nil {
			slog.Warn("failed to extend reserve for review", "order_id", o.ID, "ttl", ttl.String(), "error", err.Error())
		}
		if err := uc.notifier.NotifyAdminClaim(ctx, &updated, claim, attachments, method.Mode); err != nil {
			slog.Warn("failed to notify admin about claim", "order_id", o.ID, "error", err.Error())
		}

		slog.Info("payment claim submitted", "order_id", o.ID, "claim_id", claim.ID.String(), "attachments", len(attachments))
		return claim, nil
	})
}

func (uc *paymentUseCaseImpl) uploadAttachments(ctx context.Context, claim *payment.Claim, inputs []payment.AttachmentInput, now time.Time) ([]payment.Attachment, error) {
	out := make([]payment.Attachment, 0, len(inputs))
	for i, in := range inputs {
		a := payment.NewAttachment(claim.ID, attachmentKey(claim, i, in.Filename), in, now)
		if err := uc.storage.Put(ctx, a.StorageKey, in.Data, a.ContentType, a.Size); err != nil {
			uc.discardAttachments(ctx, out)
			return nil, errs.Wrapf(err, "upload attachment %d", i)
		}
		out = append(out, a)
	}
	return out, nil
}

// discardAttachments removes uploads no stored claim refers to.
func (uc *paymentUseCaseImpl) discardAttachments(ctx context.Context, attachments []payment.Attachment) {
	ctx = context.WithoutCancel(ctx)
	for _, a := range attachments {
		if err := uc.storage.Delete(ctx, a.StorageKey); err != nil {
			slog.Warn("failed to delete orphaned attachment", "key", a.StorageKey, "error", err.Error())
		}
	}
}

func attachmentKey(claim *payment.Claim, index int, filename string) string {
	return fmt.Sprintf("claims/%s/%s/%d-%s", claim.OrderID, claim.ID, index, sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	name = strings.Trim(name, ".")
	if name == "" {
		return "file"
	}
	return name
}

func (uc *paymentUseCaseImpl) GetPaymentInstructions(ctx context.Context, buyer user.Actor, orderID string) (*PaymentInstructions, error) {
	reads := uc.uow.Reads()
	o, err := uc.loadForBuyer(ctx, reads, orderID, buyer)
	if err != nil {
		return nil, err
	}
	if o.PaymentMethod == nil {
		return nil, order.ErrPaymentMethodRequired
	}
	m, err := reads.PaymentMethods().FindEnabled(ctx, o.MerchantID, *o.PaymentMethod)
	if err != nil {
		return nil, err
	}

	var text string
	switch m.Mode {
	case payment.ModeAuto:
		if m.EncryptedTemplate == nil {
			return nil, errs.Wrapf(payment.ErrInstructionsUnreadable, "merchant %s has no template", o.MerchantID)
		}
		template, err := uc.encryptor.Decrypt(*m.EncryptedTemplate)
		if err != nil {
			return nil, errs.Mark(errs.Wrapf(err, "decrypt template of %s", o.MerchantID), payment.ErrInstructionsUnreadable)
		}
		text = strings.NewReplacer(
			"{amount}", money.Format(o.AmountMinor, o.Currency),
			"{order}", o.ID,
		).Replace(template)
	case payment.ModeManualSend:
		details, err := reads.PaymentMethods().FindOrderDetails(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if details != nil {
			text = details.Text
		} else {
			text = uc.payment.DefaultInstructions
		}
	default:
		return nil, errs.Wrapf(payment.ErrInstructionsUnreadable, "unknown mode %q", m.Mode)
	}

	return &PaymentInstructions{
		OrderID:     o.ID,
		MethodType:  m.Type,
		Mode:        m.Mode,
		Text:        text,
		AmountMinor: o.AmountMinor,
		Currency:    o.Currency,
	}, nil
}

// ================================================================================
// Admin operations
// ================================================================================

func (uc *paymentUseCaseImpl) ConfirmPayment(ctx context.Context, admin user.Actor, orderID string) (*order.Order, error) {
	return withOrderLock(ctx, uc, orderID, opConfirm, func(ctx context.Context) (*order.Order, error) {
		reads := uc.uow.Reads()
		o, err := uc.loadForAdmin(ctx, reads, orderID, admin)
		if err != nil {
			return nil, err
		}
		if o.Status.IsPaidOrLater() {
			return o, nil
		}
		if o.Status != order.StatusPaymentUnderReview {
			return nil, errs.Wrapf(order.ErrPaymentStateConflict, "confirm in %s", o.Status)
		}

		lines, err := reads.OrderLines().ListByOrder(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		reqs := o.HoldRequests(lines)
		items, err := hold.Group(reqs)
		if err != nil {
			return nil, err
		}

		now := uc.clock.Now()
		from := o.Status
		var updated order.Order
		err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			if err := decideClaim(ctx, tx, o.ID, payment.DecisionAccept, nil, now); err != nil {
				return err
			}
			if err := tx.Catalog().DecrementStockBatch(ctx, items); err != nil {
				return err
			}

			updated = *o
			updated.MarkDecided(now)
			if err := updated.TransitionTo(order.StatusPaidConfirmed, now); err != nil {
				return err
			}
			if err := tx.Orders().Update(ctx, &updated, o); err != nil {
				return err
			}
			if err := tx.History().Append(ctx, order.NewHistoryEntry(o.ID, order.StatusPtr(from), updated.Status, admin.ID, "payment confirmed", now)); err != nil {
				return err
			}
			return enqueueStatusChanged(ctx, tx, &updated, from, nil, now)
		})
		if err != nil {
			return nil, err
		}

		uc.releaseReservations(ctx, o.ID, reqs)
		slog.Info("payment confirmed", "order_id", o.ID, "admin_id", admin.ID)
		return &updated, nil
	})
}

func (uc *paymentUseCaseImpl) RejectPayment(ctx context.Context, admin user.Actor, orderID, reason string) (payment.RejectOutcome, error) {
	reason = strings.TrimSpace(reason)
	if err := payment.ValidateRejectReason(reason, uc.limits); err != nil {
		return payment.RejectUnchanged, err
	}

	return withOrderLock(ctx, uc, orderID, opReject, func(ctx context.Context) (payment.RejectOutcome, error) {
		reads := uc.uow.Reads()
		o, err := uc.loadForAdmin(ctx, reads, orderID, admin)
		if err != nil {
			return payment.RejectUnchanged, err
		}
		if o.Status == order.StatusCanceled || o.Status.IsAwaitingPayment() {
			return payment.RejectUnchanged, nil
		}
		if o.Status != order.StatusPaymentUnderReview {
			return payment.RejectUnchanged, errs.Wrapf(order.ErrPaymentStateConflict, "reject in %s", o.Status)
		}

		m, err := reads.Merchants().FindByID(ctx, o.MerchantID)
		if err != nil {
			return payment.RejectUnchanged, err
		}
		lines, err := reads.OrderLines().ListByOrder(ctx, o.ID)
		if err != nil {
			return payment.RejectUnchanged, err
		}
		reopenTo, err := uc.awaitingStatus(ctx, reads, o)
		if err != nil {
			return payment.RejectUnchanged, err
		}

		now := uc.clock.Now()
		deadline := o.ClaimDeadline(m.ClaimWindow)
		outcome := payment.RejectReopened
		if now.After(deadline) {
			outcome = payment.RejectCanceled
		}

		reasonPtr := ptr.NonEmpty(reason)

		from := o.Status
		var updated order.Order
		err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			if err := decideClaim(ctx, tx, o.ID, payment.DecisionReject, reasonPtr, now); err != nil {
				return err
			}

			updated = *o
			switch outcome {
			case payment.RejectCanceled:
				updated.MarkDecided(now)
				if err := updated.TransitionTo(order.StatusCanceled, now); err != nil {
					return err
				}
			case payment.RejectReopened:
				updated.ClearClaim(now)
				if err := updated.TransitionTo(reopenTo, now); err != nil {
					return err
				}
			case payment.RejectUnchanged:
				return errs.New("unexpected reject outcome")
			}
			if err := tx.Orders().Update(ctx, &updated, o); err != nil {
				return err
			}
			if err := tx.History().Append(ctx, order.NewHistoryEntry(o.ID, order.StatusPtr(from), updated.Status, admin.ID, "payment rejected: "+reason, now)); err != nil {
				return err
			}
			return enqueueStatusChanged(ctx, tx, &updated, from, reasonPtr, now)
		})
		if err != nil {
			return payment.RejectUnchanged, err
		}

		reqs := o.HoldRequests(lines)
		switch outcome {
		case payment.RejectCanceled:
			uc.releaseReservations(ctx, o.ID, reqs)
		case payment.RejectReopened:
			ttl := hold.TTLUntil(deadline, now)
			if err := uc.holds.Extend(ctx, o.ID, reqs, ttl); err != nil {
				slog.Warn("failed to extend hold after rejection", "order_id", o.ID, "ttl", ttl.String(), "error", err.Error())
			}
			if err := uc.reserves.ExtendByOrder(ctx, o.ID, ttl); err != nil {
				slog.Warn("failed to extend reserve after rejection", "order_id", o.ID, "ttl", ttl.String(), "error", err.Error())
			}
		case payment.RejectUnchanged:
		}

		slog.Info("payment rejected", "order_id", o.ID, "outcome", outcome.String())
		return outcome, nil
	})
}

// awaitingStatus is where a reopened order waits: for details when its
// manual-send method has none yet, otherwise for payment.
func (uc *paymentUseCaseImpl) awaitingStatus(ctx context.Context, reads shared.Tx, o *order.Order) (order.Status, error) {
	if o.PaymentMethod == nil {
		return order.StatusAwaitingPayment, nil
	}
	m, err := reads.PaymentMethods().FindEnabled(ctx, o.MerchantID, *o.PaymentMethod)
	if err != nil {
		if errs.Is(err, payment.ErrMethodNotFound) {
			return order.StatusAwaitingPayment, nil
		}
		return "", err
	}
	details, err := reads.PaymentMethods().FindOrderDetails(ctx, o.ID)
	if err != nil {
		return "", err
	}
	if m.RequiresOrderDetails(details) {
		return order.StatusAwaitingPaymentDetails, nil
	}
	return order.StatusAwaitingPayment, nil
}

func (uc *paymentUseCaseImpl) SetPaymentDetails(ctx context.Context, admin user.Actor, orderID, text string) (*order.Order, error) {
	text = strings.TrimSpace(text)
	if err := payment.ValidateDetails(text, uc.limits); err != nil {
		return nil, err
	}

	return withOrderLock(ctx, uc, orderID, opDetails, func(ctx context.Context) (*order.Order, error) {
		reads := uc.uow.Reads()
		o, err := uc.loadForAdmin(ctx, reads, orderID, admin)
		if err != nil {
			return nil, err
		}
		if !o.Status.IsAwaitingPayment() {
			return nil, errs.Wrapf(order.ErrPaymentStateConflict, "set details in %s", o.Status)
		}

		now := uc.clock.Now()
		from := o.Status
		reason := "payment details provided"
		var updated order.Order
		err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			details := payment.OrderDetails{OrderID: o.ID, Text: text, ProvidedBy: admin.ID, UpdatedAt: now}
			if err := tx.PaymentMethods().SaveOrderDetails(ctx, details); err != nil {
				return err
			}

			updated = *o
			updated.UpdatedAt = now
			if from == order.StatusAwaitingPaymentDetails {
				if err := updated.TransitionTo(order.StatusAwaitingPayment, now); err != nil {
					return err
				}
				if err := tx.History().Append(ctx, order.NewHistoryEntry(o.ID, order.StatusPtr(from), updated.Status, admin.ID, reason, now)); err != nil {
					return err
				}
			}
			if err := tx.Orders().Update(ctx, &updated, o); err != nil {
				return err
			}
			if updated.Status == from {
				return nil
			}
			return enqueueStatusChanged(ctx, tx, &updated, from, &reason, now)
		})
		if err != nil {
			return nil, err
		}
		return &updated, nil
	})
}

func (uc *paymentUseCaseImpl) RequestClarification(ctx context.Context, admin user.Actor, orderID string, message *string) error {
	message = ptr.Trimmed(message)
	if message != nil && len([]rune(*message)) > uc.limits.MaxCommentLength {
		return payment.ErrCommentTooLong
	}

	_, err := withOrderLock(ctx, uc, orderID, opClarify, func(ctx context.Context) (struct{}, error) {
		reads := uc.uow.Reads()
		o, err := uc.loadForAdmin(ctx, reads, orderID, admin)
		if err != nil {
			return struct{}{}, err
		}
		if o.Status != order.StatusPaymentUnderReview {
			return struct{}{}, errs.Wrapf(order.ErrPaymentStateConflict, "clarify in %s", o.Status)
		}

		comment := "clarification requested"
		if message != nil {
			comment += ": " + *message
		}
		now := uc.clock.Now()
		err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.History().Append(ctx, order.NewHistoryEntry(o.ID, order.StatusPtr(o.Status), o.Status, admin.ID, comment, now))
		})
		if err != nil {
			return struct{}{}, err
		}

		if err := uc.notifier.NotifyBuyerClarification(ctx, o, message); err != nil {
			slog.Warn("failed to notify buyer about clarification", "order_id", o.ID, "error", err.Error())
		}
		return struct{}{}, nil
	})
	return err
}

// ================================================================================
// Helpers
// ================================================================================

func (uc *paymentUseCaseImpl) loadForBuyer(ctx context.Context, reads shared.Tx, orderID string, buyer user.Actor) (*order.Order, error) {
	o, err := reads.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsBoughtBy(buyer.ID) {
		return nil, errs.Wrapf(errs.ErrForbidden, "order %s not owned by %d", orderID, buyer.ID)
	}
	return o, nil
}

func (uc *paymentUseCaseImpl) loadForAdmin(ctx context.Context, reads shared.Tx, orderID string, admin user.Actor) (*order.Order, error) {
	o, err := reads.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() || !o.IsSoldBy(admin.MerchantID) {
		return nil, errs.Wrapf(errs.ErrForbidden, "order %s not managed by %d", orderID, admin.ID)
	}
	return o, nil
}

// releaseReservations drops every stock reservation of a decided order.
func (uc *paymentUseCaseImpl) releaseReservations(ctx context.Context, orderID string, reqs []hold.Request) {
	ctx = context.WithoutCancel(ctx)
	if err := uc.holds.Release(ctx, orderID, reqs); err != nil {
		slog.Warn("failed to release hold", "order_id", orderID, "error", err.Error())
	}
	if err := uc.reserves.DeleteReserveByOrder(ctx, orderID); err != nil {
		slog.Warn("failed to delete reserve", "order_id", orderID, "error", err.Error())
	}
}

func decideClaim(ctx context.Context, tx shared.Tx, orderID string, decision payment.Decision, reason *string, now time.Time) error {
	claim, err := tx.Claims().FindSubmitted(ctx, orderID)
	if err != nil {
		return err
	}
	if claim == nil {
		return errs.Wrapf(payment.ErrClaimNotFound, "order %s", orderID)
	}
	claim.Status = decision.ClaimStatus()
	claim.RejectReason = reason
	claim.DecidedAt = &now
	return tx.Claims().UpdateDecision(ctx, claim)
}

func enqueueStatusChanged(ctx context.Context, tx shared.Tx, o *order.Order, from order.Status, reason *string, now time.Time) error {
	msg, err := outbox.NewMessage(outbox.TypeOrderStatusChanged, outbox.OrderStatusChanged{
		OrderID:    o.ID,
		MerchantID: o.MerchantID,
		BuyerID:    o.BuyerID,
		From:       from.String(),
		To:         o.Status.String(),
		Reason:     reason,
	}, now)
	if err != nil {
		return errs.Wrap(err, "failed to encode status change")
	}
	return tx.Outbox().Insert(ctx, msg)
}
