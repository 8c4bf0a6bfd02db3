package commands

import (
	"context"
	"log/slog"

	"bot-for-order/internal/domain/catalog"
	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/domain/user"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/pkg/config"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/usecase/shared"
)

var ErrInvalidOffer = errs.Validation("INVALID_OFFER", "offer must have a positive quantity and price")

type AcceptOfferRequest struct {
	BuyerID     int64
	ListingID   string
	VariantID   *string
	Qty         int
	AmountMinor int64
	Currency    string
}

// OfferCommands turns a negotiated offer into a single-item order reserved
// under one key.
type OfferCommands interface {
	AcceptOffer(ctx context.Context, admin user.Actor, req AcceptOfferRequest) (*order.Order, error)
}

type offerUseCaseImpl struct {
	uow      shared.UnitOfWork
	locks    shared.LockManager
	reserves shared.ReserveStore
	ids      shared.IDGenerator
	clock    clock.Clock
	lock     config.LockConfig
}

func NewOfferUseCase(
	uow shared.UnitOfWork,
	locks shared.LockManager,
	reserves shared.ReserveStore,
	ids shared.IDGenerator,
	clk clock.Clock,
	cfg config.Config,
) OfferCommands {
	return &offerUseCaseImpl{
		uow:      uow,
		locks:    locks,
		reserves: reserves,
		ids:      ids,
		clock:    clk,
		lock:     cfg.Lock,
	}
}

func (uc *offerUseCaseImpl) AcceptOffer(ctx context.Context, admin user.Actor, req AcceptOfferRequest) (*order.Order, error) {
	if req.Qty <= 0 || req.AmountMinor <= 0 || req.Currency == "" {
		return nil, ErrInvalidOffer
	}
	if !admin.IsAdmin() {
		return nil, errs.ErrForbidden
	}

	key := offerLockKey(req.BuyerID, req.ListingID, req.VariantID)
	return shared.WithLock(ctx, uc.locks, key, uc.lock.Wait, uc.lock.Lease, func(ctx context.Context) (*order.Order, error) {
		reads := uc.uow.Reads()

		m, err := reads.Merchants().FindByID(ctx, admin.MerchantID)
		if err != nil {
			return nil, err
		}
		if !m.CanHold() {
			return nil, errs.Wrapf(hold.ErrHoldUnavailable, "merchant %s", m.ID)
		}

		items, err := hold.Group([]hold.Request{{ListingID: req.ListingID, VariantID: req.VariantID, Qty: req.Qty}})
		if err != nil {
			return nil, err
		}
		stock, err := reads.Catalog().StockSnapshot(ctx, items)
		if err != nil {
			return nil, err
		}
		if err := catalog.CheckAvailable(items, stock); err != nil {
			return nil, err
		}

		now := uc.clock.Now()
		o := &order.Order{
			ID:          uc.ids.NextOrderID(),
			MerchantID:  m.ID,
			BuyerID:     req.BuyerID,
			AmountMinor: req.AmountMinor,
			Currency:    req.Currency,
			Status:      order.StatusPending,
			Legacy:      &order.LegacyItem{ListingID: req.ListingID, VariantID: req.VariantID, Qty: req.Qty},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		reserveKey := hold.ReserveKey(req.ListingID, req.VariantID)
		reserved, err := uc.reserves.PutIfAbsent(ctx, reserveKey, hold.Reserve{
			OrderID:   o.ID,
			Qty:       req.Qty,
			BuyerID:   req.BuyerID,
			CreatedAt: now,
		}, m.ClaimWindow)
		if err != nil {
			return nil, err
		}
		if !reserved {
			return nil, errs.Wrapf(hold.ErrHoldConflict, "%s already reserved", reserveKey)
		}

		err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			if err := tx.Orders().Create(ctx, o); err != nil {
				return err
			}
			return tx.History().Append(ctx, order.NewHistoryEntry(o.ID, nil, o.Status, admin.ID, "offer accepted", now))
		})
		if err != nil {
			if derr := uc.reserves.DeleteReserveByOrder(context.WithoutCancel(ctx), o.ID); derr != nil {
				slog.Warn("failed to drop reserve after offer failure", "order_id", o.ID, "error", derr.Error())
			}
			return nil, err
		}

		slog.Info("offer accepted", "order_id", o.ID, "buyer_id", req.BuyerID, "reserve_key", reserveKey)
		return o, nil
	})
}
