package components

import (
	"bot-for-order/internal/handler"
	"bot-for-order/internal/handler/api"
	"bot-for-order/internal/handler/middleware"
	"bot-for-order/internal/pkg/config"
	"bot-for-order/internal/pkg/jwt"
	"bot-for-order/internal/usecase/commands"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCheckoutHandler,
		api.NewOrderHandler,
		NewPaymentHandler,
		api.NewOfferHandler,
		api.NewFileHandler,
		NewHandlers,
		NewTokenValidator,
		middleware.NewAuthMiddleware,
		NewIdempotencyMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

func NewPaymentHandler(cmds commands.PaymentCommands, cfg config.Config) *api.PaymentHandler {
	return api.NewPaymentHandler(cmds, cfg.Payment.MaxAttachments, cfg.Payment.MaxAttachmentBytes)
}

// NewIdempotencyMiddleware sizes the upload limit for a claim carrying every
// allowed attachment at full size plus the multipart framing.
func NewIdempotencyMiddleware(svc commands.IdempotencyService, cfg config.Config) *middleware.IdempotencyMiddleware {
	return middleware.NewIdempotencyMiddleware(svc, middleware.BodyLimits{
		JSON:   cfg.Server.MaxJSONBodyBytes,
		Upload: int64(cfg.Payment.MaxAttachments)*cfg.Payment.MaxAttachmentBytes + cfg.Server.MaxFormOverheadBytes,
	})
}

func NewHandlers(
	checkout *api.CheckoutHandler,
	orders *api.OrderHandler,
	payment *api.PaymentHandler,
	offer *api.OfferHandler,
	files *api.FileHandler,
) handler.Handlers {
	return handler.Handlers{
		Checkout: checkout,
		Orders:   orders,
		Payment:  payment,
		Offer:    offer,
		Files:    files,
	}
}

func NewTokenValidator(s *jwt.Service) middleware.TokenValidator {
	return s
}
