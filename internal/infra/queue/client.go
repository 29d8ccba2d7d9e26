package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"courier-escrow/internal/pkg/config"
	"courier-escrow/internal/pkg/errs"
	"courier-escrow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Client enqueues escrow background work on Redis.
type Client struct {
	client   *asynq.Client
	maxRetry int
}

func NewClient(redisCfg config.RedisConfig, queueCfg config.QueueConfig) *Client {
	return &Client{
		client:   asynq.NewClient(RedisOpt(redisCfg)),
		maxRetry: queueCfg.MaxRetry,
	}
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) EnqueueAuthorizationExpiry(ctx context.Context, bookingID uuid.UUID, after time.Duration) error {
	task, err := NewAuthorizationExpiryTask(bookingID)
	if err != nil {
		return errs.Wrap(err, "build authorization expiry task")
	}
	return c.enqueue(ctx, task,
		asynq.Queue(QueueEscrow),
		asynq.TaskID(expiryTaskID(bookingID)),
		asynq.ProcessIn(after),
		asynq.MaxRetry(c.maxRetry),
	)
}

func (c *Client) EnqueueRatingRecompute(ctx context.Context, reviewedID uuid.UUID) error {
	task, err := NewRatingRecomputeTask(reviewedID)
	if err != nil {
		return errs.Wrap(err, "build rating recompute task")
	}
	return c.enqueue(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(c.maxRetry))
}

func (c *Client) EnqueuePaymentRetry(ctx context.Context, retry shared.PaymentRetry) error {
	task, err := NewPaymentRetryTask(retry)
	if err != nil {
		return errs.Wrap(err, "build payment retry task")
	}
	return c.enqueue(ctx, task,
		asynq.Queue(QueueEscrow),
		asynq.TaskID(paymentRetryTaskID(retry)),
		asynq.MaxRetry(c.maxRetry),
	)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			slog.DebugContext(ctx, "task already enqueued", "type", task.Type())
			return nil
		}
		return errs.Wrapf(err, "enqueue %s", task.Type())
	}
	slog.DebugContext(ctx, "task enqueued", "type", task.Type(), "task_id", info.ID, "queue", info.Queue)
	return nil
}
