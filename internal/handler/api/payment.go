package api

import (
	"net/http"

	"bot-for-order/internal/domain/payment"
	reqdto "bot-for-order/internal/handler/dto/request"
	resdto "bot-for-order/internal/handler/dto/response"
	"bot-for-order/internal/handler/httperr"
	"bot-for-order/internal/handler/middleware"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	cmds               commands.PaymentCommands
	maxAttachments     int
	maxAttachmentBytes int64
}

func NewPaymentHandler(cmds commands.PaymentCommands, maxAttachments int, maxAttachmentBytes int64) *PaymentHandler {
	return &PaymentHandler{cmds: cmds, maxAttachments: maxAttachments, maxAttachmentBytes: maxAttachmentBytes}
}

func (h *PaymentHandler) SelectMethod(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}
	var req reqdto.SelectPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	method, err := req.ToDomain()
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}

	o, err := h.cmds.SelectPaymentMethod(c.Request.Context(), actor, c.Param("id"), method)
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	renderOrder(c, http.StatusOK, o)
}

func (h *PaymentHandler) Instructions(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}

	in, err := h.cmds.GetPaymentInstructions(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	res, err := resdto.FromInstructions(in)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render instructions", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PaymentHandler) SubmitClaim(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}
	var form reqdto.SubmitClaimForm
	if err := c.ShouldBind(&form); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	in, err := form.ToDomain(h.maxAttachments, h.maxAttachmentBytes)
	if errs.Is(err, payment.ErrTooManyAttachments) {
		httperr.AbortWithAppError(c, err)
		return
	}
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid attachment", nil)
		return
	}

	claim, err := h.cmds.SubmitClaim(c.Request.Context(), actor, c.Param("id"), in)
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	res, err := resdto.FromClaim(claim)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render claim", nil)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *PaymentHandler) Confirm(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}

	o, err := h.cmds.ConfirmPayment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	renderOrder(c, http.StatusOK, o)
}

func (h *PaymentHandler) Reject(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}
	var req reqdto.RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	orderID := c.Param("id")
	outcome, err := h.cmds.RejectPayment(c.Request.Context(), actor, orderID, req.Reason)
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRejectOutcome(orderID, outcome))
}

func (h *PaymentHandler) SetDetails(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}
	var req reqdto.SetPaymentDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	o, err := h.cmds.SetPaymentDetails(c.Request.Context(), actor, c.Param("id"), req.Text)
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	renderOrder(c, http.StatusOK, o)
}

func (h *PaymentHandler) RequestClarification(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}
	var req reqdto.RequestClarificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	if err := h.cmds.RequestClarification(c.Request.Context(), actor, c.Param("id"), req.Message); err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
