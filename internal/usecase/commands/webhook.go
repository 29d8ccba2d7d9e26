package commands

import (
	"context"
	"errors"
	"log/slog"

	"courier-escrow/internal/pkg/clock"
	"courier-escrow/internal/pkg/errs"
	"courier-escrow/internal/pkg/metrics"
	"courier-escrow/internal/usecase/shared"
)

var errConcurrentDelivery = errors.New("event recorded by a concurrent delivery")

type WebhookProcessor interface {
	HandlePaymentEvent(ctx context.Context, payload []byte, signature string) (WebhookOutcome, error)
}

type webhookProcessorImpl struct {
	uow     shared.UnitOfWork
	gateway shared.PaymentGateway
	escrow  *EscrowCoordinator
	clock   clock.Clock
	metrics *metrics.Recorder
}

func NewWebhookProcessor(
	uow shared.UnitOfWork,
	gateway shared.PaymentGateway,
	escrow *EscrowCoordinator,
	clk clock.Clock,
	recorder *metrics.Recorder,
) WebhookProcessor {
	return &webhookProcessorImpl{
		uow:     uow,
		gateway: gateway,
		escrow:  escrow,
		clock:   clk,
		metrics: recorder,
	}
}

// HandlePaymentEvent verifies and applies one gateway notification. The event
// id is recorded in the same transaction as its effect, so a redelivery after
// a failure is applied again and a redelivery after success is skipped.
func (p *webhookProcessorImpl) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) (WebhookOutcome, error) {
	ev, err := p.gateway.VerifyEvent(payload, signature)
	if err != nil {
		p.metrics.Webhook("rejected")
		return "", err
	}
	log := slog.With("event_id", ev.ID, "event_type", ev.Type)

	if ev.Kind == shared.EventUnknown || ev.PaymentReference == "" {
		log.InfoContext(ctx, "ignoring gateway event")
		p.metrics.Webhook(string(WebhookIgnored))
		return WebhookIgnored, nil
	}

	var outcome WebhookOutcome
	err = p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		seen, err := tx.WebhookEvents().Exists(ctx, ev.ID)
		if err != nil {
			return errs.Wrap(err, "check webhook event")
		}
		if seen {
			outcome = WebhookDuplicate
			return nil
		}

		applied, err := p.escrow.ApplyGatewayEvent(ctx, tx, ev)
		if err != nil {
			return err
		}

		inserted, err := tx.WebhookEvents().Record(ctx, shared.WebhookEventRecord{
			EventID:          ev.ID,
			EventType:        ev.Type,
			PaymentReference: ev.PaymentReference,
			ProcessedAt:      p.clock.Now(),
		})
		if err != nil {
			return errs.Wrap(err, "record webhook event")
		}
		if !inserted {
			return errConcurrentDelivery
		}
		// stale events are still recorded so redeliveries stay cheap
		outcome = WebhookIgnored
		if applied {
			outcome = WebhookApplied
		}
		return nil
	})
	if errors.Is(err, errConcurrentDelivery) {
		outcome, err = WebhookDuplicate, nil
	}
	if err != nil {
		log.WarnContext(ctx, "webhook processing failed", "error", err)
		p.metrics.Webhook("retryable")
		return "", errs.WithCause(ErrWebhookRetryable, err)
	}

	log.InfoContext(ctx, "gateway event processed", "outcome", outcome)
	p.metrics.Webhook(string(outcome))
	return outcome, nil
}
