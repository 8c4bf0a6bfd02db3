package repository

import (
	"context"
	"time"

	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/domain/payment"
	"bot-for-order/internal/infra"
	"bot-for-order/internal/infra/db"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(dbtx db.DBTX) *OrderRepository {
	return &OrderRepository{db: dbtx}
}

const orderColumns = `id, merchant_id, buyer_id, amount_minor, currency, payment_method_type, status,
	legacy_listing_id, legacy_variant_id, legacy_qty, created_at, updated_at, payment_claimed_at, payment_decided_at`

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	legacyListing, legacyVariant, legacyQty := legacyColumns(o.Legacy)

	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.ID, o.MerchantID, o.BuyerID, o.AmountMinor, o.Currency, methodColumn(o.PaymentMethod), string(o.Status),
		legacyListing, legacyVariant, legacyQty, o.CreatedAt, o.UpdatedAt,
		pgconv.TimePtrToPgtype(o.PaymentClaimedAt), pgconv.TimePtrToPgtype(o.PaymentDecidedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create order", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Mark(infra.WrapRepoErr("order not found", err), order.ErrOrderNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}
	return o, nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order, prev *order.Order) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET payment_method_type = $3,
		    status = $4,
		    updated_at = $5,
		    payment_claimed_at = $6,
		    payment_decided_at = $7
		WHERE id = $1 AND status = $2
		  AND payment_method_type IS NOT DISTINCT FROM $8`,
		o.ID, string(prev.Status), methodColumn(o.PaymentMethod), string(o.Status), o.UpdatedAt,
		pgconv.TimePtrToPgtype(o.PaymentClaimedAt), pgconv.TimePtrToPgtype(o.PaymentDecidedAt),
		methodColumn(prev.PaymentMethod),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update order", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Wrapf(order.ErrOrderStatusChanged, "order %s changed since read in %s", o.ID, prev.Status)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var (
		o             order.Order
		status        string
		method        pgtype.Text
		legacyListing pgtype.Text
		legacyVariant pgtype.Text
		legacyQty     pgtype.Int4
		claimedAt     pgtype.Timestamptz
		decidedAt     pgtype.Timestamptz
	)
	err := row.Scan(
		&o.ID, &o.MerchantID, &o.BuyerID, &o.AmountMinor, &o.Currency, &method, &status,
		&legacyListing, &legacyVariant, &legacyQty, &o.CreatedAt, &o.UpdatedAt, &claimedAt, &decidedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = order.Status(status)
	if method.Valid {
		mt := payment.MethodType(method.String)
		o.PaymentMethod = &mt
	}
	if legacyListing.Valid && legacyQty.Valid {
		o.Legacy = &order.LegacyItem{
			ListingID: legacyListing.String,
			VariantID: pgconv.StringPtrFromPgtype(legacyVariant),
			Qty:       int(legacyQty.Int32),
		}
	}
	o.PaymentClaimedAt = utcPtr(pgconv.TimePtrFromPgtype(claimedAt))
	o.PaymentDecidedAt = utcPtr(pgconv.TimePtrFromPgtype(decidedAt))
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return &o, nil
}

func methodColumn(m *payment.MethodType) pgtype.Text {
	if m == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: string(*m), Valid: true}
}

func legacyColumns(l *order.LegacyItem) (pgtype.Text, pgtype.Text, pgtype.Int4) {
	if l == nil {
		return pgtype.Text{}, pgtype.Text{}, pgtype.Int4{}
	}
	return pgtype.Text{String: l.ListingID, Valid: true},
		pgconv.StringPtrToPgtype(l.VariantID),
		pgtype.Int4{Int32: int32(l.Qty), Valid: true} // #nosec G115 -- qty is bounded by the cart
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
