//go:build unit

package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bot-for-order/internal/domain/cart"
	"bot-for-order/internal/domain/catalog"
	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/domain/merchant"
	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/ptr"
	"bot-for-order/internal/usecase/commands"
	"bot-for-order/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckout(env *testEnv) commands.CheckoutCommands {
	return commands.NewCheckoutUseCase(env.db, env.locks, env.holds, env.dedup, env.ids, env.clock, env.cfg)
}

func seedCatalog(env *testEnv, stock map[string]int) {
	env.db.PutMerchant(builder.NewMerchantBuilder().BuildDomain())
	env.db.PutListing(builder.DefaultListingID, 100, true)
	for variantID, qty := range stock {
		env.db.PutVariant(variantID, builder.DefaultListingID, qty, true)
	}
}

func otherCart(buyerID int64, cartID string) cart.Cart {
	return cart.Cart{ID: cartID, BuyerID: buyerID, UpdatedAt: builder.DefaultNow}
}

// ================================================================================
// CreateFromCart
// ================================================================================

func TestCheckout_CreateFromCart(t *testing.T) {
	ctx := context.Background()

	t.Run("success: creates order with lines and clears cart", func(t *testing.T) {
		env := newTestEnv(t)
		seedCatalog(env, map[string]int{"v-1": 5, "v-2": 5})
		c := builder.NewCart(builder.DefaultBuyerID)
		env.db.PutCart(c, builder.CartItem("v-1", 1, 1500), builder.CartItem("v-2", 2, 700))

		res, err := newCheckout(env).CreateFromCart(ctx, builder.DefaultBuyerID)
		require.NoError(t, err)

		assert.Equal(t, order.StatusPending, res.Order.Status)
		assert.Equal(t, builder.DefaultMerchantID, res.Order.MerchantID)
		assert.Equal(t, int64(2900), res.Order.AmountMinor)
		assert.Equal(t, "USD", res.Order.Currency)
		assert.Len(t, res.Lines, 2)
		for _, l := range res.Lines {
			assert.Equal(t, res.Order.ID, l.OrderID)
		}

		stored, ok := env.db.Order(res.Order.ID)
		require.True(t, ok)
		assert.Equal(t, order.StatusPending, stored.Status)
		assert.Zero(t, env.db.CartItemCount(c.ID))
		history := env.db.History(res.Order.ID)
		require.Len(t, history, 1)
		assert.Nil(t, history[0].From)
		assert.Equal(t, order.StatusPending, history[0].To)

		// only 3 units of v-2 remain unheld
		ok, err = env.holds.TryAcquire(ctx, "ord-other", []hold.Request{{ListingID: builder.DefaultListingID, VariantID: ptr.Of("v-2"), Qty: 4}}, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("success: repeated checkout of the same cart returns the first order", func(t *testing.T) {
		env := newTestEnv(t)
		seedCatalog(env, map[string]int{"v-1": 5})
		env.db.PutCart(builder.NewCart(builder.DefaultBuyerID), builder.CartItem("v-1", 1, 1000))
		uc := newCheckout(env)

		first, err := uc.CreateFromCart(ctx, builder.DefaultBuyerID)
		require.NoError(t, err)
		second, err := uc.CreateFromCart(ctx, builder.DefaultBuyerID)
		require.NoError(t, err)

		assert.Equal(t, first.Order.ID, second.Order.ID)
		assert.Len(t, second.Lines, 1)
		assert.Equal(t, 1, env.db.OrderCount())
	})

	t.Run("success: concurrent checkouts of one buyer create a single order", func(t *testing.T) {
		env := newTestEnv(t)
		seedCatalog(env, map[string]int{"v-1": 5})
		env.db.PutCart(builder.NewCart(builder.DefaultBuyerID), builder.CartItem("v-1", 1, 1000))
		uc := newCheckout(env)

		const callers = 5
		ids := make([]string, callers)
		var wg sync.WaitGroup
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := uc.CreateFromCart(ctx, builder.DefaultBuyerID)
				if err == nil {
					ids[i] = res.Order.ID
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, env.db.OrderCount())
		for _, id := range ids {
			if id != "" {
				assert.Equal(t, "ord-1", id)
			}
		}
	})

	t.Run("error: stock held by another order", func(t *testing.T) {
		env := newTestEnv(t)
		seedCatalog(env, map[string]int{"v-1": 2})
		env.db.PutCart(builder.NewCart(builder.DefaultBuyerID), builder.CartItem("v-1", 2, 1000))
		env.db.PutCart(otherCart(2002, "cart-2"), builder.CartItem("v-1", 1, 1000))
		uc := newCheckout(env)

		_, err := uc.CreateFromCart(ctx, builder.DefaultBuyerID)
		require.NoError(t, err)

		_, err = uc.CreateFromCart(ctx, 2002)
		require.Error(t, err)
		assert.True(t, errs.Is(err, hold.ErrHoldConflict))
		assert.Equal(t, 1, env.db.OrderCount())
		assert.Equal(t, 1, env.db.CartItemCount("cart-2"))
	})

	t.Run("success: a lapsed hold frees the stock", func(t *testing.T) {
		env := newTestEnv(t)
		seedCatalog(env, map[string]int{"v-1": 1})
		env.db.PutCart(builder.NewCart(builder.DefaultBuyerID), builder.CartItem("v-1", 1, 1000))
		env.db.PutCart(otherCart(2002, "cart-2"), builder.CartItem("v-1", 1, 1000))
		uc := newCheckout(env)

		_, err := uc.CreateFromCart(ctx, builder.DefaultBuyerID)
		require.NoError(t, err)

		env.clock.Set(builder.DefaultNow.Add(61 * time.Second))
		res, err := uc.CreateFromCart(ctx, 2002)
		require.NoError(t, err)
		assert.Equal(t, int64(2002), res.Order.BuyerID)
	})

	t.Run("error: cart validation", func(t *testing.T) {
		otherMerchant := builder.CartItem("v-2", 1, 1000)
		otherMerchant.MerchantID = "m-2"
		otherCurrency := builder.CartItem("v-2", 1, 1000)
		otherCurrency.Currency = "EUR"

		testCases := []struct {
			name   string
			items  []cart.Item
			noCart bool
			errIs  error
		}{
			{name: "no cart", noCart: true, errIs: cart.ErrCartEmpty},
			{name: "empty cart", errIs: cart.ErrCartEmpty},
			{name: "mixed merchants", items: []cart.Item{builder.CartItem("v-1", 1, 1000), otherMerchant}, errIs: cart.ErrMixedMerchants},
			{name: "mixed currencies", items: []cart.Item{builder.CartItem("v-1", 1, 1000), otherCurrency}, errIs: cart.ErrInvalidCartCurrency},
			{name: "insufficient stock", items: []cart.Item{builder.CartItem("v-1", 6, 1000)}, errIs: catalog.ErrVariantUnavailable},
			{name: "unknown variant", items: []cart.Item{builder.CartItem("v-404", 1, 1000)}, errIs: catalog.ErrVariantUnavailable},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				env := newTestEnv(t)
				seedCatalog(env, map[string]int{"v-1": 5, "v-2": 5})
				if !tc.noCart {
					env.db.PutCart(builder.NewCart(builder.DefaultBuyerID), tc.items...)
				}

				_, err := newCheckout(env).CreateFromCart(ctx, builder.DefaultBuyerID)
				require.Error(t, err)
				assert.True(t, errs.Is(err, tc.errIs), "got %v", err)
				assert.Zero(t, env.db.OrderCount())
			})
		}
	})

	t.Run("error: merchant without claim window cannot hold", func(t *testing.T) {
		env := newTestEnv(t)
		seedCatalog(env, map[string]int{"v-1": 5})
		env.db.PutMerchant(builder.NewMerchantBuilder().With(func(m *merchant.Merchant) { m.ClaimWindow = 0 }).BuildDomain())
		env.db.PutCart(builder.NewCart(builder.DefaultBuyerID), builder.CartItem("v-1", 1, 1000))

		_, err := newCheckout(env).CreateFromCart(ctx, builder.DefaultBuyerID)
		require.Error(t, err)
		assert.True(t, errs.Is(err, hold.ErrHoldUnavailable))
	})

	t.Run("error: failed transaction releases the hold and keeps the cart", func(t *testing.T) {
		env := newTestEnv(t)
		seedCatalog(env, map[string]int{"v-1": 1})
		c := builder.NewCart(builder.DefaultBuyerID)
		env.db.PutCart(c, builder.CartItem("v-1", 1, 1000))
		boom := errors.New("disk full")
		env.db.FailOn("OrderLines.CreateBatch", boom)

		_, err := newCheckout(env).CreateFromCart(ctx, builder.DefaultBuyerID)
		require.ErrorIs(t, err, boom)
		assert.Zero(t, env.db.OrderCount())
		assert.Equal(t, 1, env.db.CartItemCount(c.ID))

		ok, err := env.holds.TryAcquire(ctx, "ord-other", []hold.Request{{ListingID: builder.DefaultListingID, VariantID: ptr.Of("v-1"), Qty: 1}}, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
