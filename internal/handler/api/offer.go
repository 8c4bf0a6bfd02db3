package api

import (
	"net/http"

	"bot-for-order/internal/domain/order"
	reqdto "bot-for-order/internal/handler/dto/request"
	resdto "bot-for-order/internal/handler/dto/response"
	"bot-for-order/internal/handler/httperr"
	"bot-for-order/internal/handler/middleware"
	"bot-for-order/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	cmds commands.OfferCommands
}

func NewOfferHandler(cmds commands.OfferCommands) *OfferHandler {
	return &OfferHandler{cmds: cmds}
}

func (h *OfferHandler) Accept(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}
	var req reqdto.AcceptOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	cmd, err := req.ToCommand()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	o, err := h.cmds.AcceptOffer(c.Request.Context(), actor, cmd)
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	renderOrder(c, http.StatusCreated, o)
}

func renderOrder(c *gin.Context, status int, o *order.Order) {
	res, err := resdto.FromOrder(o)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render order", nil)
		return
	}
	c.JSON(status, res)
}
