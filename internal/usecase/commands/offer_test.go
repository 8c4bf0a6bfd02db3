//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bot-for-order/internal/domain/catalog"
	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/ptr"
	"bot-for-order/internal/usecase/commands"
	"bot-for-order/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOffer(env *testEnv) commands.OfferCommands {
	return commands.NewOfferUseCase(env.db, env.locks, env.reserves, env.ids, env.clock, env.cfg)
}

func offerRequest() commands.AcceptOfferRequest {
	return commands.AcceptOfferRequest{
		BuyerID:     builder.DefaultBuyerID,
		ListingID:   builder.DefaultListingID,
		VariantID:   ptr.Of(builder.DefaultVariantID),
		Qty:         1,
		AmountMinor: 4500,
		Currency:    "USD",
	}
}

// ================================================================================
// AcceptOffer
// ================================================================================

func TestOffer_AcceptOffer(t *testing.T) {
	ctx := context.Background()

	t.Run("success: creates a legacy order and reserves the variant", func(t *testing.T) {
		env := newTestEnv(t)
		seedCatalog(env, map[string]int{builder.DefaultVariantID: 3})

		o, err := newOffer(env).AcceptOffer(ctx, builder.Admin(), offerRequest())
		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, o.Status)
		assert.Equal(t, int64(4500), o.AmountMinor)
		require.NotNil(t, o.Legacy)
		assert.Equal(t, 1, o.Legacy.Qty)

		_, ok := env.db.Order(o.ID)
		assert.True(t, ok)
		assert.Len(t, env.db.History(o.ID), 1)

		reserved, err := env.reserves.HasOrderReserve(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, reserved)
	})

	t.Run("error: second offer on a reserved variant conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		seedCatalog(env, map[string]int{builder.DefaultVariantID: 3})
		uc := newOffer(env)

		_, err := uc.AcceptOffer(ctx, builder.Admin(), offerRequest())
		require.NoError(t, err)

		req := offerRequest()
		req.BuyerID = 2002
		_, err = uc.AcceptOffer(ctx, builder.Admin(), req)
		require.Error(t, err)
		assert.True(t, errs.Is(err, hold.ErrHoldConflict))
		assert.Equal(t, 1, env.db.OrderCount())
	})

	t.Run("success: reserve lapses after the claim window", func(t *testing.T) {
		env := newTestEnv(t)
		seedCatalog(env, map[string]int{builder.DefaultVariantID: 3})
		uc := newOffer(env)

		_, err := uc.AcceptOffer(ctx, builder.Admin(), offerRequest())
		require.NoError(t, err)

		env.clock.Set(builder.DefaultNow.Add(2 * time.Minute))
		_, err = uc.AcceptOffer(ctx, builder.Admin(), offerRequest())
		require.NoError(t, err)
		assert.Equal(t, 2, env.db.OrderCount())
	})

	t.Run("error: rejections", func(t *testing.T) {
		buyerAsAdmin := builder.Buyer()

		errCases := []struct {
			name   string
			mutate func(*commands.AcceptOfferRequest)
			stock  int
			errIs  error
		}{
			{name: "zero qty", mutate: func(r *commands.AcceptOfferRequest) { r.Qty = 0 }, stock: 3, errIs: commands.ErrInvalidOffer},
			{name: "zero amount", mutate: func(r *commands.AcceptOfferRequest) { r.AmountMinor = 0 }, stock: 3, errIs: commands.ErrInvalidOffer},
			{name: "no currency", mutate: func(r *commands.AcceptOfferRequest) { r.Currency = "" }, stock: 3, errIs: commands.ErrInvalidOffer},
			{name: "out of stock", mutate: func(r *commands.AcceptOfferRequest) {}, stock: 0, errIs: catalog.ErrVariantUnavailable},
		}

		for _, tc := range errCases {
			t.Run(tc.name, func(t *testing.T) {
				env := newTestEnv(t)
				seedCatalog(env, map[string]int{builder.DefaultVariantID: tc.stock})
				req := offerRequest()
				tc.mutate(&req)

				_, err := newOffer(env).AcceptOffer(ctx, builder.Admin(), req)
				require.Error(t, err)
				assert.True(t, errs.Is(err, tc.errIs), "got %v", err)
				assert.Zero(t, env.db.OrderCount())
			})
		}

		t.Run("not an admin", func(t *testing.T) {
			env := newTestEnv(t)
			seedCatalog(env, map[string]int{builder.DefaultVariantID: 3})

			_, err := newOffer(env).AcceptOffer(ctx, buyerAsAdmin, offerRequest())
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrForbidden))
		})
	})

	t.Run("error: failed transaction drops the reserve", func(t *testing.T) {
		env := newTestEnv(t)
		seedCatalog(env, map[string]int{builder.DefaultVariantID: 3})
		boom := errors.New("connection reset")
		env.db.FailOn("History.Append", boom)
		uc := newOffer(env)

		_, err := uc.AcceptOffer(ctx, builder.Admin(), offerRequest())
		require.ErrorIs(t, err, boom)
		assert.Zero(t, env.db.OrderCount())

		env.db.FailOn("History.Append", nil)
		_, err = uc.AcceptOffer(ctx, builder.Admin(), offerRequest())
		require.NoError(t, err)
	})
}
