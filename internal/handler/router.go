package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bot-for-order/internal/handler/api"
	"bot-for-order/internal/handler/middleware"
	"bot-for-order/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Checkout *api.CheckoutHandler
	Orders   *api.OrderHandler
	Payment  *api.PaymentHandler
	Offer    *api.OfferHandler
	Files    *api.FileHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *slog.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware, idem *middleware.IdempotencyMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware, idem)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, idem *middleware.IdempotencyMiddleware) {
	engine.GET("/health", healthCheck)
	engine.GET("/files/*key", h.Files.Download)

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth())
	{
		addRoutes(apiGroup, []route{
			{Method: http.MethodPost, Path: "/checkout", Handler: h.Checkout.Create, Mw: mw(idem.Require("checkout.create"))},
			{Method: http.MethodGet, Path: "/orders", Handler: h.Orders.List},
		})

		orders := apiGroup.Group("/orders/:id")
		{
			addRoutes(orders, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Orders.Get},
				{Method: http.MethodGet, Path: "/history", Handler: h.Orders.History},
				{Method: http.MethodPut, Path: "/payment-method", Handler: h.Payment.SelectMethod, Mw: mw(idem.Require("payment.select_method"))},
				{Method: http.MethodGet, Path: "/payment-instructions", Handler: h.Payment.Instructions},
				{Method: http.MethodPost, Path: "/payment-claims", Handler: h.Payment.SubmitClaim, Mw: mw(idem.RequireUpload("payment.submit_claim"))},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/orders", Handler: h.Orders.List},
				{Method: http.MethodPost, Path: "/offers", Handler: h.Offer.Accept, Mw: mw(idem.Require("offer.accept"))},
				{Method: http.MethodPost, Path: "/orders/:id/payment/confirm", Handler: h.Payment.Confirm, Mw: mw(idem.Require("payment.confirm"))},
				{Method: http.MethodPost, Path: "/orders/:id/payment/reject", Handler: h.Payment.Reject, Mw: mw(idem.Require("payment.reject"))},
				{Method: http.MethodPut, Path: "/orders/:id/payment-details", Handler: h.Payment.SetDetails, Mw: mw(idem.Require("payment.set_details"))},
				{Method: http.MethodPost, Path: "/orders/:id/clarifications", Handler: h.Payment.RequestClarification, Mw: mw(idem.Require("payment.request_clarification"))},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func mw(hs ...gin.HandlerFunc) []gin.HandlerFunc {
	return hs
}

// addRoutes registers route middleware as part of the gin chain, so a middleware
// calling c.Next() wraps the handler.
func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		hs := append(append([]gin.HandlerFunc{}, r.Mw...), r.Handler)
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, hs...)
		case http.MethodPost:
			g.POST(r.Path, hs...)
		case http.MethodPut:
			g.PUT(r.Path, hs...)
		case http.MethodPatch:
			g.PATCH(r.Path, hs...)
		case http.MethodDelete:
			g.DELETE(r.Path, hs...)
		default:
			g.Any(r.Path, hs...)
		}
	}
}
