//go:build unit

package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bot-for-order/internal/domain/merchant"
	"bot-for-order/internal/domain/outbox"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/worker"
	"bot-for-order/tests/common/builder"
	"bot-for-order/tests/common/memdb"
	sharedmock "bot-for-order/tests/mock/shared"
	workermock "bot-for-order/tests/mock/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const linkTTL = time.Hour

type handlersEnv struct {
	db       *memdb.DB
	sender   *workermock.MockMessageSender
	storage  *sharedmock.MockObjectStorage
	handlers *worker.Handlers
}

func newHandlersEnv(t *testing.T) *handlersEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	env := &handlersEnv{
		db:      memdb.New(),
		sender:  workermock.NewMockMessageSender(ctrl),
		storage: sharedmock.NewMockObjectStorage(ctrl),
	}
	env.handlers = worker.NewHandlers(env.db, env.sender, env.storage, linkTTL)
	return env
}

func encode(t *testing.T, msgType string, payload any) *outbox.Message {
	t.Helper()
	msg, err := outbox.NewMessage(msgType, payload, builder.DefaultNow)
	require.NoError(t, err)
	return msg
}

func TestHandlers_AdminClaimSubmitted(t *testing.T) {
	ctx := context.Background()
	txID := "tx-77"
	payload := outbox.AdminClaimSubmitted{
		OrderID:         "ord-1",
		MerchantID:      builder.DefaultMerchantID,
		BuyerID:         builder.DefaultBuyerID,
		MethodType:      "CARD_TRANSFER",
		Mode:            "MANUAL_SEND",
		AmountMinor:     12345,
		Currency:        "USD",
		TxID:            &txID,
		AttachmentCount: 1,
		AttachmentKeys:  []string{"claims/ord-1/c/0-a.png"},
	}

	t.Run("success: sends claim summary with signed links to the admin chat", func(t *testing.T) {
		env := newHandlersEnv(t)
		m := builder.NewMerchantBuilder().BuildDomain()
		env.db.PutMerchant(m)
		env.storage.EXPECT().PresignGet("claims/ord-1/c/0-a.png", linkTTL).Return("http://files/a.png?token=t", nil)
		env.sender.EXPECT().SendMessage(gomock.Any(), *m.AdminChatID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, text string) error {
				assert.Contains(t, text, "order ord-1")
				assert.Contains(t, text, "123.45 USD")
				assert.Contains(t, text, "TxID: tx-77")
				assert.Contains(t, text, "1. http://files/a.png?token=t")
				return nil
			})

		require.NoError(t, env.handlers.AdminClaimSubmitted(ctx, encode(t, outbox.TypeAdminClaimSubmitted, payload)))
	})

	t.Run("success: merchant without admin chat is skipped", func(t *testing.T) {
		env := newHandlersEnv(t)
		env.db.PutMerchant(builder.NewMerchantBuilder().With(func(m *merchant.Merchant) { m.AdminChatID = nil }).BuildDomain())

		require.NoError(t, env.handlers.AdminClaimSubmitted(ctx, encode(t, outbox.TypeAdminClaimSubmitted, payload)))
	})

	t.Run("error: send failure is returned for retry", func(t *testing.T) {
		env := newHandlersEnv(t)
		env.db.PutMerchant(builder.NewMerchantBuilder().BuildDomain())
		env.storage.EXPECT().PresignGet(gomock.Any(), gomock.Any()).Return("http://x", nil)
		env.sender.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("429"))

		assert.Error(t, env.handlers.AdminClaimSubmitted(ctx, encode(t, outbox.TypeAdminClaimSubmitted, payload)))
	})

	t.Run("error: unknown merchant", func(t *testing.T) {
		env := newHandlersEnv(t)

		err := env.handlers.AdminClaimSubmitted(ctx, encode(t, outbox.TypeAdminClaimSubmitted, payload))
		assert.True(t, errs.Is(err, merchant.ErrMerchantNotFound), "got %v", err)
	})

	t.Run("error: malformed payload", func(t *testing.T) {
		env := newHandlersEnv(t)
		msg := encode(t, outbox.TypeAdminClaimSubmitted, payload)
		msg.Payload = []byte(`{"order_id":`)

		assert.Error(t, env.handlers.AdminClaimSubmitted(ctx, msg))
	})
}

func TestHandlers_BuyerMessages(t *testing.T) {
	ctx := context.Background()
	reason := "amount does not match"
	question := "which card did you use?"

	testCases := []struct {
		name     string
		msg      func(t *testing.T) *outbox.Message
		handle   func(h *worker.Handlers) worker.HandlerFunc
		contains []string
	}{
		{
			name: "status change with reason",
			msg: func(t *testing.T) *outbox.Message {
				return encode(t, outbox.TypeOrderStatusChanged, outbox.OrderStatusChanged{
					OrderID: "ord-1", BuyerID: builder.DefaultBuyerID, From: "PAYMENT_UNDER_REVIEW", To: "canceled", Reason: &reason,
				})
			},
			handle:   func(h *worker.Handlers) worker.HandlerFunc { return h.OrderStatusChanged },
			contains: []string{"Order ord-1: canceled", reason},
		},
		{
			name: "payment confirmed",
			msg: func(t *testing.T) *outbox.Message {
				return encode(t, outbox.TypeOrderStatusChanged, outbox.OrderStatusChanged{
					OrderID: "ord-1", BuyerID: builder.DefaultBuyerID, From: "PAYMENT_UNDER_REVIEW", To: "PAID_CONFIRMED",
				})
			},
			handle:   func(h *worker.Handlers) worker.HandlerFunc { return h.OrderStatusChanged },
			contains: []string{"payment confirmed"},
		},
		{
			name: "clarification request",
			msg: func(t *testing.T) *outbox.Message {
				return encode(t, outbox.TypeBuyerClarificationRequested, outbox.BuyerClarificationRequested{
					OrderID: "ord-1", BuyerID: builder.DefaultBuyerID, Message: &question,
				})
			},
			handle:   func(h *worker.Handlers) worker.HandlerFunc { return h.BuyerClarificationRequested },
			contains: []string{"order ord-1", question},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newHandlersEnv(t)
			env.sender.EXPECT().SendMessage(gomock.Any(), builder.DefaultBuyerID, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ int64, text string) error {
					for _, want := range tc.contains {
						assert.Contains(t, text, want)
					}
					return nil
				})

			require.NoError(t, tc.handle(env.handlers)(ctx, tc.msg(t)))
		})
	}
}
