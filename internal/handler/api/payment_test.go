//go:build unit

package api_test

import (
	"context"
	"net/http"
	"testing"

	"bot-for-order/internal/domain/catalog"
	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/domain/payment"
	"bot-for-order/internal/domain/user"
	"bot-for-order/internal/handler/api"
	resdto "bot-for-order/internal/handler/dto/response"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/usecase/commands"
	"bot-for-order/tests/common/builder"
	"bot-for-order/tests/common/httptest"
	commandsmock "bot-for-order/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const (
	maxAttachments     = 2
	maxAttachmentBytes = 8
)

type PaymentHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockPaymentCommands
}

func (s *PaymentHandlerTestSuite) SetupTest() {
	s.router = newRouter()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockPaymentCommands(s.mockCtrl)

	h := api.NewPaymentHandler(s.mockCommands, maxAttachments, maxAttachmentBytes)
	s.router.PUT("/orders/:id/payment-method", fakeAuth, h.SelectMethod)
	s.router.GET("/orders/:id/payment-instructions", fakeAuth, h.Instructions)
	s.router.POST("/orders/:id/payment-claims", fakeAuth, h.SubmitClaim)
	s.router.POST("/admin/orders/:id/payment/confirm", fakeAuth, h.Confirm)
	s.router.POST("/admin/orders/:id/payment/reject", fakeAuth, h.Reject)
	s.router.PUT("/admin/orders/:id/payment-details", fakeAuth, h.SetDetails)
	s.router.POST("/admin/orders/:id/clarifications", fakeAuth, h.RequestClarification)
}

func (s *PaymentHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPaymentHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}

// ================================================================================
// Buyer endpoints
// ================================================================================

func (s *PaymentHandlerTestSuite) TestSelectMethod() {
	url := "/orders/ord-1/payment-method"

	s.Run("success: returns the updated order", func() {
		updated := domainOrder(builder.NewOrderBuilder().
			WithStatus(order.StatusAwaitingPayment).
			WithMethod(payment.MethodCardTransfer))
		s.mockCommands.EXPECT().SelectPaymentMethod(gomock.Any(), builder.Buyer(), "ord-1", payment.MethodCardTransfer).Return(updated, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"method": "CARD_TRANSFER"}, buyerToken)

		var body resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("AWAITING_PAYMENT", body.Status)
		s.Require().NotNil(body.PaymentMethod)
		s.Equal("CARD_TRANSFER", *body.PaymentMethod)
	})

	s.Run("error: 400 on unknown method", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"method": "CASH"}, buyerToken)
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "INVALID_METHOD_TYPE")
	})

	s.Run("error: 400 on missing method", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{}, buyerToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: 404 for an order of another buyer", func() {
		s.mockCommands.EXPECT().SelectPaymentMethod(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, order.ErrOrderNotFound)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"method": "CRYPTO"}, buyerToken)
		httptest.AssertErrorCode(s.T(), rec, http.StatusNotFound, "ORDER_NOT_FOUND")
	})
}

func (s *PaymentHandlerTestSuite) TestInstructions() {
	s.mockCommands.EXPECT().GetPaymentInstructions(gomock.Any(), builder.Buyer(), "ord-1").Return(&commands.PaymentInstructions{
		OrderID:     "ord-1",
		MethodType:  payment.MethodBankTransfer,
		Mode:        payment.ModeAuto,
		Text:        "IBAN DE00",
		AmountMinor: 2000,
		Currency:    "USD",
	}, nil)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/orders/ord-1/payment-instructions", nil, buyerToken)

	var body resdto.InstructionsResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Equal("BANK_TRANSFER", body.MethodType)
	s.Equal("AUTO", body.Mode)
	s.Equal("IBAN DE00", body.Text)
	s.Equal("20.00 USD", body.Amount)
}

func (s *PaymentHandlerTestSuite) TestSubmitClaim() {
	url := "/orders/ord-1/payment-claims"
	txID := "tx-1"
	claim := payment.NewClaim("ord-1", payment.MethodCardTransfer, &txID, nil, builder.DefaultNow)

	s.Run("success: binds text fields and attachments", func() {
		s.mockCommands.EXPECT().SubmitClaim(gomock.Any(), builder.Buyer(), "ord-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ user.Actor, _ string, in payment.ClaimInput) (*payment.Claim, error) {
				s.Require().NotNil(in.TxID)
				s.Equal("tx-1", *in.TxID)
				s.Nil(in.Comment)
				s.Require().Len(in.Attachments, 1)
				s.Equal("receipt.png", in.Attachments[0].Filename)
				s.Equal("image/png", in.Attachments[0].ContentType)
				s.Equal([]byte("png!"), in.Attachments[0].Data)
				return claim, nil
			})

		rec := httptest.PerformMultipart(s.T(), s.router, http.MethodPost, url,
			map[string]string{"tx_id": "tx-1"},
			[]httptest.FilePart{{Field: "attachments", Filename: "receipt.png", ContentType: "image/png", Data: []byte("png!")}},
			buyerToken, nil)

		var body resdto.ClaimResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(claim.ID.String(), body.ID)
		s.Equal("CARD_TRANSFER", body.MethodType)
		s.Equal(unix(builder.DefaultNow), body.CreatedAt)
	})

	s.Run("success: oversized attachment is cut after the limit for validation", func() {
		s.mockCommands.EXPECT().SubmitClaim(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ user.Actor, _ string, in payment.ClaimInput) (*payment.Claim, error) {
				s.Len(in.Attachments[0].Data, maxAttachmentBytes+1)
				return nil, payment.ErrAttachmentTooLarge
			})

		rec := httptest.PerformMultipart(s.T(), s.router, http.MethodPost, url, nil,
			[]httptest.FilePart{{Field: "attachments", Filename: "big.pdf", ContentType: "application/pdf", Data: make([]byte, 64)}},
			buyerToken, nil)
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "ATTACHMENT_TOO_LARGE")
	})

	s.Run("error: 400 for too many attachments without calling the use case", func() {
		part := httptest.FilePart{Field: "attachments", Filename: "r.png", ContentType: "image/png", Data: []byte("png!")}

		rec := httptest.PerformMultipart(s.T(), s.router, http.MethodPost, url, nil,
			[]httptest.FilePart{part, part, part}, buyerToken, nil)
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "TOO_MANY_ATTACHMENTS")
	})

	s.Run("error: 409 when the order is not awaiting payment", func() {
		s.mockCommands.EXPECT().SubmitClaim(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, order.ErrPaymentStateConflict)

		rec := httptest.PerformMultipart(s.T(), s.router, http.MethodPost, url, map[string]string{"comment": "paid"}, nil, buyerToken, nil)
		httptest.AssertErrorCode(s.T(), rec, http.StatusConflict, "PAYMENT_STATE_CONFLICT")
	})
}

// ================================================================================
// Admin endpoints
// ================================================================================

func (s *PaymentHandlerTestSuite) TestConfirm() {
	url := "/admin/orders/ord-1/payment/confirm"

	s.Run("success: returns the confirmed order", func() {
		confirmed := domainOrder(builder.NewOrderBuilder().WithStatus(order.StatusPaidConfirmed))
		s.mockCommands.EXPECT().ConfirmPayment(gomock.Any(), builder.Admin(), "ord-1").Return(confirmed, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, adminToken)

		var body resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("PAID_CONFIRMED", body.Status)
	})

	errCases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "stock mismatch", err: errs.Wrap(catalog.ErrStockMismatch, "v:v-1"), status: http.StatusConflict, code: "STOCK_MISMATCH"},
		{name: "forbidden", err: errs.ErrForbidden, status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "busy", err: errs.ErrLockTimeout, status: http.StatusServiceUnavailable, code: "LOCK_TIMEOUT"},
	}
	for _, tc := range errCases {
		s.Run("error: "+tc.name, func() {
			s.mockCommands.EXPECT().ConfirmPayment(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.err)

			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, adminToken)
			httptest.AssertErrorCode(s.T(), rec, tc.status, tc.code)
		})
	}
}

func (s *PaymentHandlerTestSuite) TestReject() {
	url := "/admin/orders/ord-1/payment/reject"

	testCases := []struct {
		outcome payment.RejectOutcome
		want    string
	}{
		{outcome: payment.RejectReopened, want: "REOPENED"},
		{outcome: payment.RejectCanceled, want: "CANCELED"},
		{outcome: payment.RejectUnchanged, want: "UNCHANGED"},
	}
	for _, tc := range testCases {
		s.Run("success: "+tc.want, func() {
			s.mockCommands.EXPECT().RejectPayment(gomock.Any(), builder.Admin(), "ord-1", "amount differs").Return(tc.outcome, nil)

			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"reason": "amount differs"}, adminToken)

			var body resdto.RejectResponse
			httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
			s.Equal("ord-1", body.OrderID)
			s.Equal(tc.want, body.Outcome)
		})
	}

	s.Run("error: 400 on a long reason", func() {
		s.mockCommands.EXPECT().RejectPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(payment.RejectUnchanged, payment.ErrRejectReasonTooLong)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"reason": "x"}, adminToken)
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "REJECT_REASON_TOO_LONG")
	})
}

func (s *PaymentHandlerTestSuite) TestSetDetails() {
	url := "/admin/orders/ord-1/payment-details"

	s.Run("success: moves the order to awaiting payment", func() {
		updated := domainOrder(builder.NewOrderBuilder().WithStatus(order.StatusAwaitingPayment))
		s.mockCommands.EXPECT().SetPaymentDetails(gomock.Any(), builder.Admin(), "ord-1", "IBAN DE00").Return(updated, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"text": "IBAN DE00"}, adminToken)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 without text", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{}, adminToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})
}

func (s *PaymentHandlerTestSuite) TestRequestClarification() {
	url := "/admin/orders/ord-1/clarifications"

	s.Run("success: 202 with a message", func() {
		s.mockCommands.EXPECT().RequestClarification(gomock.Any(), builder.Admin(), "ord-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ user.Actor, _ string, msg *string) error {
				s.Require().NotNil(msg)
				s.Equal("which card?", *msg)
				return nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"message": "which card?"}, adminToken)
		s.Equal(http.StatusAccepted, rec.Code)
	})

	s.Run("success: 202 without a message", func() {
		s.mockCommands.EXPECT().RequestClarification(gomock.Any(), gomock.Any(), "ord-1", (*string)(nil)).Return(nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{}, adminToken)
		s.Equal(http.StatusAccepted, rec.Code)
	})
}
