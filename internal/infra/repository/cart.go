package repository

import (
	"context"

	"bot-for-order/internal/domain/cart"
	"bot-for-order/internal/infra"
	"bot-for-order/internal/infra/db"
	"bot-for-order/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type CartRepository struct {
	db db.DBTX
}

func NewCartRepository(dbtx db.DBTX) *CartRepository {
	return &CartRepository{db: dbtx}
}

func (r *CartRepository) FindByBuyer(ctx context.Context, buyerID int64) (*cart.Cart, error) {
	var c cart.Cart
	err := r.db.QueryRow(ctx, `SELECT id, buyer_id, updated_at FROM carts WHERE buyer_id = $1`, buyerID).
		Scan(&c.ID, &c.BuyerID, &c.UpdatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find cart", err)
	}
	return &c, nil
}

func (r *CartRepository) ListItems(ctx context.Context, cartID string) ([]cart.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT listing_id, variant_id, merchant_id, qty, price_minor, currency, storefront_id, channel_id, post_id
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id`, cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list cart items", err)
	}
	defer rows.Close()

	var items []cart.Item
	for rows.Next() {
		var (
			it         cart.Item
			variantID  pgtype.Text
			storefront pgtype.Text
			channelID  pgtype.Int8
			postID     pgtype.Int8
		)
		if err := rows.Scan(&it.ListingID, &variantID, &it.MerchantID, &it.Qty, &it.PriceMinor, &it.Currency,
			&storefront, &channelID, &postID); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart item", err)
		}
		it.VariantID = pgconv.StringPtrFromPgtype(variantID)
		it.StorefrontID = pgconv.StringPtrFromPgtype(storefront)
		it.ChannelID = pgconv.Int64PtrFromPgtype(channelID)
		it.PostID = pgconv.Int64PtrFromPgtype(postID)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart items", err)
	}
	return items, nil
}

func (r *CartRepository) ClearItems(ctx context.Context, cartID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return infra.WrapRepoErr("failed to clear cart", err)
	}
	return nil
}
