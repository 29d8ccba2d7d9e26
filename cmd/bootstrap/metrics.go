package bootstrap

import (
	"courier-escrow/internal/pkg/metrics"

	"go.uber.org/fx"
)

var MetricsModule = fx.Module("metrics",
	fx.Provide(
		metrics.NewRecorder,
	),
)
