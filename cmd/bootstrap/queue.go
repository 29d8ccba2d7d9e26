package bootstrap

import (
	"context"

	"courier-escrow/internal/infra/queue"
	"courier-escrow/internal/pkg/config"
	"courier-escrow/internal/usecase/shared"

	"go.uber.org/fx"
)

var QueueModule = fx.Module("queue",
	fx.Provide(
		NewQueueClient,
		func(c *queue.Client) shared.TaskQueue { return c },
	),
)

func NewQueueClient(lc fx.Lifecycle, cfg config.Config) *queue.Client {
	client := queue.NewClient(cfg.Redis, cfg.Queue)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return client
}
