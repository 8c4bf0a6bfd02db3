package repository

import (
	"context"

	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/infra"
	"bot-for-order/internal/infra/db"
	"bot-for-order/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderLineRepository struct {
	db db.DBTX
}

func NewOrderLineRepository(dbtx db.DBTX) *OrderLineRepository {
	return &OrderLineRepository{db: dbtx}
}

func (r *OrderLineRepository) CreateBatch(ctx context.Context, lines []order.Line) error {
	if len(lines) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{
			l.OrderID, l.ListingID, pgconv.StringPtrToPgtype(l.VariantID), l.Qty, l.PriceMinor, l.Currency,
			pgconv.StringPtrToPgtype(l.Provenance.StorefrontID),
			pgconv.Int64PtrToPgtype(l.Provenance.ChannelID),
			pgconv.Int64PtrToPgtype(l.Provenance.PostID),
			l.CreatedAt,
		})
	}

	_, err := r.db.CopyFrom(ctx, pgx.Identifier{"order_lines"},
		[]string{"order_id", "listing_id", "variant_id", "qty", "price_minor", "currency", "storefront_id", "channel_id", "post_id", "created_at"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return infra.WrapRepoErr("failed to copy order lines", err)
	}
	return nil
}

func (r *OrderLineRepository) ListByOrder(ctx context.Context, orderID string) ([]order.Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT order_id, listing_id, variant_id, qty, price_minor, currency, storefront_id, channel_id, post_id, created_at
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id`, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list order lines", err)
	}
	defer rows.Close()

	var lines []order.Line
	for rows.Next() {
		var (
			l          order.Line
			variantID  pgtype.Text
			storefront pgtype.Text
			channelID  pgtype.Int8
			postID     pgtype.Int8
		)
		if err := rows.Scan(&l.OrderID, &l.ListingID, &variantID, &l.Qty, &l.PriceMinor, &l.Currency,
			&storefront, &channelID, &postID, &l.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order line", err)
		}
		l.VariantID = pgconv.StringPtrFromPgtype(variantID)
		l.Provenance = order.Provenance{
			StorefrontID: pgconv.StringPtrFromPgtype(storefront),
			ChannelID:    pgconv.Int64PtrFromPgtype(channelID),
			PostID:       pgconv.Int64PtrFromPgtype(postID),
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order lines", err)
	}
	return lines, nil
}
