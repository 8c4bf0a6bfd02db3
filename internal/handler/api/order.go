package api

import (
	"net/http"

	reqdto "bot-for-order/internal/handler/dto/request"
	resdto "bot-for-order/internal/handler/dto/response"
	"bot-for-order/internal/handler/httperr"
	"bot-for-order/internal/handler/middleware"
	"bot-for-order/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	queries queries.OrderQueries
}

func NewOrderHandler(q queries.OrderQueries) *OrderHandler {
	return &OrderHandler{queries: q}
}

func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}

	detail, err := h.queries.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	res, err := resdto.FromOrderDetail(detail)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render order", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *OrderHandler) History(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}

	entries, err := h.queries.History(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	res, err := resdto.FromHistory(entries)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render history", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res})
}

// List serves both the buyer's own orders and an admin's merchant orders.
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}
	var q reqdto.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	filter, cursor := q.ToQuery()

	items, next, err := h.queries.List(c.Request.Context(), actor, filter, cursor, q.Limit)
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	res, err := resdto.FromOrderList(items, next)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render orders", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}
