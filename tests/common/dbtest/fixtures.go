//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Conn is satisfied by the pool and by pgx.Tx.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	DefaultMerchantID = "m-1"
	DefaultListingID  = "l-1"
)

func CreateTestMerchant(t *testing.T, db Conn, id string, claimWindow, reviewWindow time.Duration) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		INSERT INTO merchants (id, name, claim_window_seconds, review_window_seconds, admin_chat_id)
		VALUES ($1, $2, $3, $4, -100500)
		ON CONFLICT (id) DO UPDATE SET claim_window_seconds = EXCLUDED.claim_window_seconds,
		                               review_window_seconds = EXCLUDED.review_window_seconds`,
		id, "Shop "+id, int(claimWindow.Seconds()), int(reviewWindow.Seconds()))
	require.NoError(t, err)
}

func CreateTestListing(t *testing.T, db Conn, id, merchantID string, stock int) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		"INSERT INTO listings (id, merchant_id, title, stock) VALUES ($1, $2, $3, $4)",
		id, merchantID, "Listing "+id, stock)
	require.NoError(t, err)
}

func CreateTestVariant(t *testing.T, db Conn, id, listingID string, stock int) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		"INSERT INTO variants (id, listing_id, title, stock) VALUES ($1, $2, $3, $4)",
		id, listingID, "Variant "+id, stock)
	require.NoError(t, err)
}

// CreateTestCart inserts a cart with one item per (variantID, qty) pair; variants must exist.
func CreateTestCart(t *testing.T, db Conn, cartID string, buyerID int64, merchantID string, priceMinor int64, variantQty map[string]int) {
	t.Helper()

	ctx := context.Background()
	_, err := db.Exec(ctx, "INSERT INTO carts (id, buyer_id) VALUES ($1, $2)", cartID, buyerID)
	require.NoError(t, err)

	for variantID, qty := range variantQty {
		_, err := db.Exec(ctx, `
			INSERT INTO cart_items (cart_id, listing_id, variant_id, merchant_id, qty, price_minor, currency)
			SELECT $1, v.listing_id, v.id, $3, $4, $5, 'USD' FROM variants v WHERE v.id = $2`,
			cartID, variantID, merchantID, qty, priceMinor)
		require.NoError(t, err)
	}
}

// CreateTestPaymentMethod enables a MANUAL_SEND method for the merchant.
func CreateTestPaymentMethod(t *testing.T, db Conn, merchantID, methodType string) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		INSERT INTO merchant_payment_methods (merchant_id, method_type, mode, enabled)
		VALUES ($1, $2, 'MANUAL_SEND', TRUE)`,
		merchantID, methodType)
	require.NoError(t, err)
}

func OrderStatus(t *testing.T, db Conn, orderID string) string {
	t.Helper()

	var status string
	err := db.QueryRow(context.Background(), "SELECT status FROM orders WHERE id = $1", orderID).Scan(&status)
	require.NoError(t, err)
	return status
}

func CountRows(t *testing.T, db Conn, table, where string, args ...any) int {
	t.Helper()

	var n int
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	err := db.QueryRow(context.Background(), query, args...).Scan(&n)
	require.NoError(t, err)
	return n
}

func VariantStock(t *testing.T, db Conn, id string) int {
	t.Helper()

	var stock int
	err := db.QueryRow(context.Background(), "SELECT stock FROM variants WHERE id = $1", id).Scan(&stock)
	require.NoError(t, err)
	return stock
}

// inserts the default merchant and listing every test builds on
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	if _, err := pool.Exec(ctx, `
		INSERT INTO merchants (id, name, claim_window_seconds, review_window_seconds, admin_chat_id)
		VALUES ($1, 'Default Shop', 3600, 7200, -100500)
		ON CONFLICT (id) DO NOTHING`, DefaultMerchantID); err != nil {
		return err
	}
	_, err := pool.Exec(ctx, `
		INSERT INTO listings (id, merchant_id, title, stock)
		VALUES ($1, $2, 'Default Listing', 100)
		ON CONFLICT (id) DO NOTHING`, DefaultListingID, DefaultMerchantID)
	return err
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
