package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"courier-escrow/internal/domain/review"
	"courier-escrow/internal/pkg/config"
	"courier-escrow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type AuthorizationExpirer interface {
	ExpireAuthorization(ctx context.Context, bookingID uuid.UUID) error
}

type PaymentRetrier interface {
	RetryPaymentAction(ctx context.Context, retry shared.PaymentRetry) error
}

type RatingRecomputer interface {
	Recompute(ctx context.Context, reviewedID uuid.UUID) (review.Stats, error)
}

// Worker runs the handlers for every escrow task type.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewWorker(redisCfg config.RedisConfig, queueCfg config.QueueConfig, expirer AuthorizationExpirer, retrier PaymentRetrier, ratings RatingRecomputer) *Worker {
	server := asynq.NewServer(RedisOpt(redisCfg), asynq.Config{
		Concurrency: max(queueCfg.Concurrency, 1),
		Queues: map[string]int{
			QueueEscrow:  6,
			QueueDefault: 3,
		},
		Logger: slogLogger{},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			slog.ErrorContext(ctx, "task failed",
				"type", task.Type(),
				"retry", retried,
				"max_retry", maxRetry,
				"error", err.Error())
		}),
	})

	return &Worker{server: server, mux: NewServeMux(expirer, retrier, ratings)}
}

// NewServeMux routes task types to their handlers.
func NewServeMux(expirer AuthorizationExpirer, retrier PaymentRetrier, ratings RatingRecomputer) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAuthorizationExpiry, handleAuthorizationExpiry(expirer))
	mux.HandleFunc(TypePaymentRetry, handlePaymentRetry(retrier))
	mux.HandleFunc(TypeRatingRecompute, handleRatingRecompute(ratings))
	return mux
}

func (w *Worker) Start() error {
	return w.server.Start(w.mux)
}

func (w *Worker) Stop() {
	w.server.Shutdown()
}

func handleAuthorizationExpiry(expirer AuthorizationExpirer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p authorizationExpiryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil || p.BookingID == uuid.Nil {
			return fmt.Errorf("invalid authorization expiry payload: %w", asynq.SkipRetry)
		}
		return expirer.ExpireAuthorization(ctx, p.BookingID)
	}
}

func handlePaymentRetry(retrier PaymentRetrier) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p shared.PaymentRetry
		if err := json.Unmarshal(task.Payload(), &p); err != nil || p.BookingID == uuid.Nil {
			return fmt.Errorf("invalid payment retry payload: %w", asynq.SkipRetry)
		}
		switch p.Action {
		case shared.ActionCapture, shared.ActionRefund, shared.ActionRelease:
		default:
			return fmt.Errorf("unknown payment action %q: %w", p.Action, asynq.SkipRetry)
		}
		return retrier.RetryPaymentAction(ctx, p)
	}
}

func handleRatingRecompute(ratings RatingRecomputer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ratingRecomputePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil || p.ReviewedID == uuid.Nil {
			return fmt.Errorf("invalid rating recompute payload: %w", asynq.SkipRetry)
		}
		stats, err := ratings.Recompute(ctx, p.ReviewedID)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "rating recomputed",
			"reviewed_id", p.ReviewedID,
			"average", stats.Average,
			"count", stats.Count)
		return nil
	}
}

// slogLogger routes asynq's own logging through the default slog logger.
type slogLogger struct{}

func (slogLogger) Debug(args ...any) { slog.Debug(fmt.Sprint(args...), "component", "asynq") }
func (slogLogger) Info(args ...any)  { slog.Info(fmt.Sprint(args...), "component", "asynq") }
func (slogLogger) Warn(args ...any)  { slog.Warn(fmt.Sprint(args...), "component", "asynq") }
func (slogLogger) Error(args ...any) { slog.Error(fmt.Sprint(args...), "component", "asynq") }
func (slogLogger) Fatal(args ...any) {
	slog.Error(fmt.Sprint(args...), "component", "asynq")
	os.Exit(1)
}
