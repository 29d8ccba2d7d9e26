package bootstrap

import (
	"log/slog"

	"courier-escrow/internal/handler/middleware"
	"courier-escrow/internal/pkg/config"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		func(cfg config.Config) *middleware.Logger {
			return middleware.NewLogger(cfg.Log)
		},
		func(l *middleware.Logger) *slog.Logger {
			return l.Slog()
		},
	),
)
