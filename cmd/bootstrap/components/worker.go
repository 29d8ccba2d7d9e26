package components

import (
	"context"

	"courier-escrow/internal/infra/queue"
	"courier-escrow/internal/pkg/config"
	"courier-escrow/internal/usecase/commands"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(NewWorker),
	fx.Invoke(startWorker),
)

func NewWorker(cfg config.Config, escrow *commands.EscrowCoordinator, ratings commands.RatingAggregator) *queue.Worker {
	return queue.NewWorker(cfg.Redis, cfg.Queue, escrow, escrow, ratings)
}

func startWorker(lc fx.Lifecycle, w *queue.Worker) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return w.Start()
		},
		OnStop: func(_ context.Context) error {
			w.Stop()
			return nil
		},
	})
}
