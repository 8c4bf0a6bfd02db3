//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/domain/user"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/ptr"
	"bot-for-order/internal/usecase/queries"
	"bot-for-order/tests/common/builder"
	queriesmock "bot-for-order/tests/mock/queries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func orderView(buyerID int64, merchantID string) *queries.OrderView {
	return &queries.OrderView{
		ID:          builder.DefaultOrderID,
		MerchantID:  merchantID,
		BuyerID:     buyerID,
		AmountMinor: 2000,
		Currency:    "USD",
		Status:      string(order.StatusPending),
		CreatedAt:   builder.DefaultNow,
		UpdatedAt:   builder.DefaultNow,
	}
}

func listItems(n int) []*queries.OrderListItem {
	items := make([]*queries.OrderListItem, n)
	for i := range items {
		items[i] = &queries.OrderListItem{
			ID:        "ord-" + string(rune('a'+i)),
			CreatedAt: builder.DefaultNow.Add(-time.Duration(i) * time.Minute),
		}
	}
	return items
}

// ================================================================================
// GetByID / History
// ================================================================================

func TestOrderQueries_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		view  *queries.OrderView
		actor user.Actor
		errIs error
	}{
		{name: "success: buyer reads own order", view: orderView(builder.DefaultBuyerID, builder.DefaultMerchantID), actor: builder.Buyer()},
		{name: "success: admin reads merchant order", view: orderView(42, builder.DefaultMerchantID), actor: builder.Admin()},
		{name: "error: another buyer's order", view: orderView(42, builder.DefaultMerchantID), actor: builder.Buyer(), errIs: errs.ErrForbidden},
		{name: "error: another merchant's order", view: orderView(builder.DefaultBuyerID, "m-2"), actor: builder.Admin(), errIs: errs.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := queriesmock.NewMockOrderViewRepo(ctrl)
			repo.EXPECT().FindByID(gomock.Any(), builder.DefaultOrderID).Return(tt.view, nil)
			if tt.errIs == nil {
				repo.EXPECT().ListLines(gomock.Any(), builder.DefaultOrderID).Return([]*queries.OrderLineView{{ListingID: "l-1", Qty: 2}}, nil)
			}

			detail, err := queries.NewOrderQueries(repo).GetByID(ctx, tt.actor, builder.DefaultOrderID)
			if tt.errIs != nil {
				assert.True(t, errs.Is(err, tt.errIs), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.view, detail.Order)
			assert.Len(t, detail.Lines, 1)
		})
	}

	t.Run("error: unknown order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockOrderViewRepo(ctrl)
		repo.EXPECT().FindByID(gomock.Any(), "ord-x").Return(nil, errs.Wrap(order.ErrOrderNotFound, "ord-x"))

		_, err := queries.NewOrderQueries(repo).GetByID(ctx, builder.Buyer(), "ord-x")
		assert.True(t, errs.Is(err, order.ErrOrderNotFound))
	})
}

func TestOrderQueries_History(t *testing.T) {
	ctx := context.Background()

	t.Run("success: returns entries for the owner", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockOrderViewRepo(ctrl)
		repo.EXPECT().FindByID(gomock.Any(), builder.DefaultOrderID).Return(orderView(builder.DefaultBuyerID, builder.DefaultMerchantID), nil)
		repo.EXPECT().ListHistory(gomock.Any(), builder.DefaultOrderID).Return([]*queries.HistoryView{
			{To: string(order.StatusPending), ActorID: builder.DefaultBuyerID, At: builder.DefaultNow},
			{From: ptr.Of(string(order.StatusPending)), To: string(order.StatusAwaitingPayment), At: builder.DefaultNow},
		}, nil)

		entries, err := queries.NewOrderQueries(repo).History(ctx, builder.Buyer(), builder.DefaultOrderID)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("error: history is not read for foreign orders", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockOrderViewRepo(ctrl)
		repo.EXPECT().FindByID(gomock.Any(), builder.DefaultOrderID).Return(orderView(42, builder.DefaultMerchantID), nil)

		_, err := queries.NewOrderQueries(repo).History(ctx, builder.Buyer(), builder.DefaultOrderID)
		assert.True(t, errs.Is(err, errs.ErrForbidden))
	})
}

// ================================================================================
// List
// ================================================================================

func TestOrderQueries_List(t *testing.T) {
	ctx := context.Background()

	t.Run("success: buyer pages through own orders", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockOrderViewRepo(ctrl)
		repo.EXPECT().ListByBuyer(gomock.Any(), builder.DefaultBuyerID, (*queries.Position)(nil), 3).Return(listItems(3), nil)

		items, next, err := queries.NewOrderQueries(repo).List(ctx, builder.Buyer(), queries.ListFilter{}, nil, 2)
		require.NoError(t, err)
		require.Len(t, items, 2)
		require.NotNil(t, next)

		pos, err := next.Position()
		require.NoError(t, err)
		assert.Equal(t, items[1].ID, pos.ID)
		assert.True(t, items[1].CreatedAt.Equal(pos.CreatedAt))
	})

	t.Run("success: last page has no cursor", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockOrderViewRepo(ctrl)
		after := &queries.Cursor{After: queries.EncodeAfterCursor(queries.Position{CreatedAt: builder.DefaultNow, ID: "ord-z"})}
		repo.EXPECT().ListByBuyer(gomock.Any(), builder.DefaultBuyerID, gomock.Any(), 3).
			DoAndReturn(func(_ context.Context, _ int64, pos *queries.Position, _ int) ([]*queries.OrderListItem, error) {
				assert.Equal(t, "ord-z", pos.ID)
				return listItems(1), nil
			})

		items, next, err := queries.NewOrderQueries(repo).List(ctx, builder.Buyer(), queries.ListFilter{}, after, 2)
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Nil(t, next)
	})

	t.Run("success: admin lists merchant orders by status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockOrderViewRepo(ctrl)
		status := order.StatusPaymentUnderReview
		repo.EXPECT().ListByMerchant(gomock.Any(), builder.DefaultMerchantID, &status, (*queries.Position)(nil), queries.DefaultListLimit+1).Return(listItems(2), nil)

		items, next, err := queries.NewOrderQueries(repo).List(ctx, builder.Admin(), queries.ListFilter{Status: &status}, nil, 0)
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Nil(t, next)
	})

	t.Run("error: unknown status filter", func(t *testing.T) {
		repo := queriesmock.NewMockOrderViewRepo(gomock.NewController(t))
		status := order.Status("lost")

		_, _, err := queries.NewOrderQueries(repo).List(ctx, builder.Admin(), queries.ListFilter{Status: &status}, nil, 10)
		assert.True(t, errs.Is(err, order.ErrUnknownStatus))
	})

	t.Run("error: malformed cursor", func(t *testing.T) {
		repo := queriesmock.NewMockOrderViewRepo(gomock.NewController(t))

		_, _, err := queries.NewOrderQueries(repo).List(ctx, builder.Buyer(), queries.ListFilter{}, &queries.Cursor{After: "%%%"}, 10)
		assert.True(t, errs.Is(err, queries.ErrInvalidCursor))
	})
}
