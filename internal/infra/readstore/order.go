package readstore

import (
	"context"

	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/infra"
	"bot-for-order/internal/infra/db"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/pgconv"
	"bot-for-order/internal/usecase/queries"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(dbtx db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: dbtx}
}

func (r *OrderReadStore) FindByID(ctx context.Context, id string) (*queries.OrderView, error) {
	var (
		v                        queries.OrderView
		method                   pgtype.Text
		legacyListing, legacyVar pgtype.Text
		legacyQty                pgtype.Int4
		claimedAt, decidedAt     pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, merchant_id, buyer_id, amount_minor, currency, payment_method_type, status,
		       legacy_listing_id, legacy_variant_id, legacy_qty,
		       created_at, updated_at, payment_claimed_at, payment_decided_at
		FROM orders
		WHERE id = $1`, id,
	).Scan(&v.ID, &v.MerchantID, &v.BuyerID, &v.AmountMinor, &v.Currency, &method, &v.Status,
		&legacyListing, &legacyVar, &legacyQty,
		&v.CreatedAt, &v.UpdatedAt, &claimedAt, &decidedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Mark(infra.WrapRepoErr("order view not found", err, infra.KindNotFound), order.ErrOrderNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order view", err)
	}

	v.PaymentMethod = pgconv.StringPtrFromPgtype(method)
	v.PaymentClaimedAt = pgconv.TimePtrFromPgtype(claimedAt)
	v.PaymentDecidedAt = pgconv.TimePtrFromPgtype(decidedAt)
	if legacyListing.Valid && legacyQty.Valid {
		v.OfferItem = &queries.OfferItemView{
			ListingID: legacyListing.String,
			VariantID: pgconv.StringPtrFromPgtype(legacyVar),
			Qty:       int(legacyQty.Int32),
		}
	}
	return &v, nil
}

func (r *OrderReadStore) ListLines(ctx context.Context, orderID string) ([]*queries.OrderLineView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT listing_id, variant_id, qty, price_minor, currency
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id`, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list order line views", err)
	}
	return collect(rows, "order line view", func(row pgx.Rows) (*queries.OrderLineView, error) {
		var (
			l       queries.OrderLineView
			variant pgtype.Text
		)
		if err := row.Scan(&l.ListingID, &variant, &l.Qty, &l.PriceMinor, &l.Currency); err != nil {
			return nil, err
		}
		l.VariantID = pgconv.StringPtrFromPgtype(variant)
		return &l, nil
	})
}

func (r *OrderReadStore) ListHistory(ctx context.Context, orderID string) ([]*queries.HistoryView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT from_status, to_status, actor_id, comment, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list order history", err)
	}
	return collect(rows, "history entry", func(row pgx.Rows) (*queries.HistoryView, error) {
		var (
			h    queries.HistoryView
			from pgtype.Text
		)
		if err := row.Scan(&from, &h.To, &h.ActorID, &h.Comment, &h.At); err != nil {
			return nil, err
		}
		h.From = pgconv.StringPtrFromPgtype(from)
		return &h, nil
	})
}

// Keyset pages run newest first; after is exclusive.
const listColumns = `id, buyer_id, amount_minor, currency, status, created_at`

func (r *OrderReadStore) ListByMerchant(ctx context.Context, merchantID string, status *order.Status, after *queries.Position, limit int) ([]*queries.OrderListItem, error) {
	var statusArg pgtype.Text
	if status != nil {
		statusArg = pgtype.Text{String: string(*status), Valid: true}
	}
	afterAt, afterID := keyset(after)

	rows, err := r.db.Query(ctx, `
		SELECT `+listColumns+`
		FROM orders
		WHERE merchant_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::timestamptz IS NULL OR (created_at, id) < ($3, $4))
		ORDER BY created_at DESC, id DESC
		LIMIT $5`,
		merchantID, statusArg, afterAt, afterID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list merchant orders", err)
	}
	return collect(rows, "order list item", scanListItem)
}

func (r *OrderReadStore) ListByBuyer(ctx context.Context, buyerID int64, after *queries.Position, limit int) ([]*queries.OrderListItem, error) {
	afterAt, afterID := keyset(after)

	rows, err := r.db.Query(ctx, `
		SELECT `+listColumns+`
		FROM orders
		WHERE buyer_id = $1
		  AND ($2::timestamptz IS NULL OR (created_at, id) < ($2, $3))
		ORDER BY created_at DESC, id DESC
		LIMIT $4`,
		buyerID, afterAt, afterID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list buyer orders", err)
	}
	return collect(rows, "order list item", scanListItem)
}

func keyset(after *queries.Position) (pgtype.Timestamptz, string) {
	if after == nil {
		return pgtype.Timestamptz{}, ""
	}
	return pgtype.Timestamptz{Time: after.CreatedAt, Valid: true}, after.ID
}

func scanListItem(row pgx.Rows) (*queries.OrderListItem, error) {
	var it queries.OrderListItem
	if err := row.Scan(&it.ID, &it.BuyerID, &it.AmountMinor, &it.Currency, &it.Status, &it.CreatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func collect[T any](rows pgx.Rows, what string, scan func(pgx.Rows) (*T, error)) ([]*T, error) {
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan "+what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate "+what+"s", err)
	}
	return out, nil
}
