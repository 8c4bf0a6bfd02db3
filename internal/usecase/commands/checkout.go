package commands

import (
	"context"
	"log/slog"
	"time"

	"bot-for-order/internal/domain/cart"
	"bot-for-order/internal/domain/catalog"
	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/pkg/config"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/usecase/shared"
)

type CheckoutCommands interface {
	CreateFromCart(ctx context.Context, buyerID int64) (*order.WithLines, error)
}

type checkoutUseCaseImpl struct {
	uow      shared.UnitOfWork
	locks    shared.LockManager
	holds    shared.HoldLedger
	dedup    shared.DedupStore
	ids      shared.IDGenerator
	clock    clock.Clock
	lock     config.LockConfig
	dedupTTL time.Duration
}

func NewCheckoutUseCase(
	uow shared.UnitOfWork,
	locks shared.LockManager,
	holds shared.HoldLedger,
	dedup shared.DedupStore,
	ids shared.IDGenerator,
	clk clock.Clock,
	cfg config.Config,
) CheckoutCommands {
	return &checkoutUseCaseImpl{
		uow:      uow,
		locks:    locks,
		holds:    holds,
		dedup:    dedup,
		ids:      ids,
		clock:    clk,
		lock:     cfg.Lock,
		dedupTTL: cfg.Checkout.DedupTTL,
	}
}

func (uc *checkoutUseCaseImpl) CreateFromCart(ctx context.Context, buyerID int64) (*order.WithLines, error) {
	return shared.WithLock(ctx, uc.locks, checkoutLockKey(buyerID), uc.lock.Wait, uc.lock.Lease,
		func(ctx context.Context) (*order.WithLines, error) {
			return uc.createLocked(ctx, buyerID)
		})
}

func (uc *checkoutUseCaseImpl) createLocked(ctx context.Context, buyerID int64) (*order.WithLines, error) {
	reads := uc.uow.Reads()

	c, err := reads.Carts().FindByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cart.ErrCartEmpty
	}

	dedupKey := checkoutDedupKey(buyerID, c.ID, c.UpdatedAt.UnixNano())
	if existing := uc.replay(ctx, reads, dedupKey); existing != nil {
		return existing, nil
	}

	items, err := reads.Carts().ListItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	merchantID, currency, err := cart.CheckConsistency(items)
	if err != nil {
		return nil, err
	}

	reqs := make([]hold.Request, 0, len(items))
	for _, it := range items {
		reqs = append(reqs, it.HoldRequest())
	}
	grouped, err := hold.Group(reqs)
	if err != nil {
		return nil, err
	}
	stock, err := reads.Catalog().StockSnapshot(ctx, grouped)
	if err != nil {
		return nil, err
	}
	if err := catalog.CheckAvailable(grouped, stock); err != nil {
		return nil, err
	}

	m, err := reads.Merchants().FindByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if !m.CanHold() {
		return nil, errs.Wrapf(hold.ErrHoldUnavailable, "merchant %s", m.ID)
	}

	now := uc.clock.Now()
	o, lines := buildOrder(uc.ids.NextOrderID(), buyerID, merchantID, currency, items, now)

	acquired, err := uc.holds.TryAcquire(ctx, o.ID, reqs, m.ClaimWindow)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, errs.Wrapf(hold.ErrHoldConflict, "order %s", o.ID)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		if err := tx.OrderLines().CreateBatch(ctx, lines); err != nil {
			return err
		}
		if err := tx.History().Append(ctx, order.NewHistoryEntry(o.ID, nil, o.Status, buyerID, "checkout", now)); err != nil {
			return err
		}
		return tx.Carts().ClearItems(ctx, c.ID)
	})
	if err != nil {
		uc.releaseHold(ctx, o.ID, reqs)
		return nil, err
	}

	if err := uc.dedup.Put(ctx, dedupKey, o.ID, uc.dedupTTL); err != nil {
		slog.Warn("failed to record checkout dedup entry", "order_id", o.ID, "error", err.Error())
	}

	slog.Info("order created from cart", "order_id", o.ID, "buyer_id", buyerID, "lines", len(lines))
	return &order.WithLines{Order: o, Lines: lines}, nil
}

// replay returns the order an earlier checkout of the same cart state created.
func (uc *checkoutUseCaseImpl) replay(ctx context.Context, reads shared.Tx, dedupKey string) *order.WithLines {
	orderID, ok, err := uc.dedup.Get(ctx, dedupKey)
	if err != nil {
		slog.Warn("checkout dedup lookup failed", "key", dedupKey, "error", err.Error())
		return nil
	}
	if !ok {
		return nil
	}

	o, err := reads.Orders().FindByID(ctx, orderID)
	if err != nil {
		if !errs.Is(err, order.ErrOrderNotFound) {
			slog.Warn("checkout dedup order lookup failed", "order_id", orderID, "error", err.Error())
		}
		return nil
	}
	lines, err := reads.OrderLines().ListByOrder(ctx, orderID)
	if err != nil {
		slog.Warn("checkout dedup lines lookup failed", "order_id", orderID, "error", err.Error())
		return nil
	}
	return &order.WithLines{Order: o, Lines: lines}
}

func (uc *checkoutUseCaseImpl) releaseHold(ctx context.Context, orderID string, reqs []hold.Request) {
	if err := uc.holds.Release(context.WithoutCancel(ctx), orderID, reqs); err != nil {
		slog.Warn("failed to release hold after checkout failure", "order_id", orderID, "error", err.Error())
	}
}

func buildOrder(orderID string, buyerID int64, merchantID, currency string, items []cart.Item, now time.Time) (*order.Order, []order.Line) {
	lines := make([]order.Line, 0, len(items))
	var total int64
	for _, it := range items {
		line := order.Line{
			OrderID:    orderID,
			ListingID:  it.ListingID,
			VariantID:  it.VariantID,
			Qty:        it.Qty,
			PriceMinor: it.PriceMinor,
			Currency:   it.Currency,
			Provenance: order.Provenance{
				StorefrontID: it.StorefrontID,
				ChannelID:    it.ChannelID,
				PostID:       it.PostID,
			},
			CreatedAt: now,
		}
		total += line.SubtotalMinor()
		lines = append(lines, line)
	}

	o := &order.Order{
		ID:          orderID,
		MerchantID:  merchantID,
		BuyerID:     buyerID,
		AmountMinor: total,
		Currency:    currency,
		Status:      order.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return o, lines
}
