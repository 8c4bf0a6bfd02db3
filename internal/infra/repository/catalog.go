package repository

import (
	"context"

	"bot-for-order/internal/domain/catalog"
	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/infra"
	"bot-for-order/internal/infra/db"
	"bot-for-order/internal/pkg/errs"
)

type CatalogRepository struct {
	db db.DBTX
}

func NewCatalogRepository(dbtx db.DBTX) *CatalogRepository {
	return &CatalogRepository{db: dbtx}
}

func (r *CatalogRepository) StockSnapshot(ctx context.Context, items []hold.Item) (map[string]catalog.Stock, error) {
	var variantIDs, listingIDs []string
	for _, it := range items {
		if it.IsVariant() {
			variantIDs = append(variantIDs, *it.VariantID)
		} else {
			listingIDs = append(listingIDs, it.ListingID)
		}
	}

	out := make(map[string]catalog.Stock, len(items))
	if len(variantIDs) > 0 {
		if err := r.collect(ctx, out, `
			SELECT v.id, v.stock, v.active AND l.active
			FROM variants v
			JOIN listings l ON l.id = v.listing_id
			WHERE v.id = ANY($1)`, variantIDs, func(id string) string { return hold.KeyOf("", &id) }); err != nil {
			return nil, err
		}
	}
	if len(listingIDs) > 0 {
		if err := r.collect(ctx, out, `
			SELECT id, stock, active
			FROM listings
			WHERE id = ANY($1)`, listingIDs, func(id string) string { return hold.KeyOf(id, nil) }); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *CatalogRepository) collect(ctx context.Context, out map[string]catalog.Stock, query string, ids []string, keyOf func(string) string) error {
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return infra.WrapRepoErr("failed to read stock", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     string
			stock  int
			active bool
		)
		if err := rows.Scan(&id, &stock, &active); err != nil {
			return infra.WrapRepoErr("failed to scan stock", err)
		}
		key := keyOf(id)
		out[key] = catalog.Stock{Key: key, Available: stock, Active: active}
	}
	if err := rows.Err(); err != nil {
		return infra.WrapRepoErr("failed to iterate stock", err)
	}
	return nil
}

// DecrementStockBatch must run inside a transaction: the first item that cannot
// be covered aborts the batch and the caller's rollback discards earlier decrements.
// Items arrive sorted by key, which keeps row lock order stable across callers.
func (r *CatalogRepository) DecrementStockBatch(ctx context.Context, items []hold.Item) error {
	for _, it := range items {
		var (
			query string
			id    string
		)
		if it.IsVariant() {
			query = `UPDATE variants SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND active AND stock >= $2`
			id = *it.VariantID
		} else {
			query = `UPDATE listings SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND active AND stock >= $2`
			id = it.ListingID
		}

		tag, err := r.db.Exec(ctx, query, id, it.Qty)
		if err != nil {
			return infra.WrapRepoErr("failed to decrement stock", err)
		}
		if tag.RowsAffected() == 0 {
			return errs.Wrapf(catalog.ErrStockMismatch, "item %s qty %d", it.Key, it.Qty)
		}
	}
	return nil
}
