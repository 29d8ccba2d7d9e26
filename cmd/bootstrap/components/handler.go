package components

import (
	"courier-escrow/internal/handler"
	"courier-escrow/internal/handler/api"
	"courier-escrow/internal/handler/middleware"
	"courier-escrow/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewReviewHandler,
		api.NewWebhookHandler,
		handler.NewHandlers,
		middleware.NewAuthMiddleware,
		func(cfg config.Config) *middleware.RateLimiter {
			return middleware.NewRateLimiter(cfg.RateLimit)
		},
	),
	fx.Invoke(handler.NewRouter),
)
