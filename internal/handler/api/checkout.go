package api

import (
	"net/http"

	resdto "bot-for-order/internal/handler/dto/response"
	"bot-for-order/internal/handler/httperr"
	"bot-for-order/internal/handler/middleware"
	"bot-for-order/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	cmds commands.CheckoutCommands
}

func NewCheckoutHandler(cmds commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{cmds: cmds}
}

// Create turns the caller's cart into an order. A retry within the dedup window
// returns the order the first call created.
func (h *CheckoutHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}

	result, err := h.cmds.CreateFromCart(c.Request.Context(), actor.ID)
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	res, err := resdto.FromOrderWithLines(result)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render order", nil)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
}
