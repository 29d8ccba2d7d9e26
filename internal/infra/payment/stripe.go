package payment

import (
	"context"
	"encoding/json"
	"time"

	"courier-escrow/internal/pkg/config"
	"courier-escrow/internal/pkg/errs"
	"courier-escrow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Gateway event types the escrow flow reacts to.
const (
	eventAmountCapturableUpdated = "payment_intent.amount_capturable_updated"
	eventPaymentFailed           = "payment_intent.payment_failed"
	eventPaymentSucceeded        = "payment_intent.succeeded"
	eventPaymentCanceled         = "payment_intent.canceled"
	eventChargeRefunded          = "charge.refunded"
)

const metadataBookingID = "booking_id"

// StripeGateway holds funds with manually captured payment intents.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	tolerance     time.Duration
}

func NewStripeGateway(cfg config.PaymentConfig) *StripeGateway {
	apiCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
	}
	if cfg.APIBaseURL != "" {
		apiCfg.URL = stripe.String(cfg.APIBaseURL)
	}
	defaultCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, apiCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, defaultCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, defaultCfg),
	})

	tolerance := cfg.WebhookTolerance
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}

	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		tolerance:     tolerance,
	}
}

func (g *StripeGateway) Authorize(ctx context.Context, req shared.AuthorizeRequest) (shared.Authorization, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.AmountCents),
		Currency:      stripe.String(req.Currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata(metadataBookingID, req.BookingID.String())

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return shared.Authorization{}, errs.Wrap(err, "stripe: create payment intent")
	}
	return shared.Authorization{Reference: pi.ID, ClientToken: pi.ClientSecret}, nil
}

// Capture takes amountCents from the hold. Stripe releases whatever is left.
func (g *StripeGateway) Capture(ctx context.Context, reference string, amountCents int64, idempotencyKey string) error {
	params := &stripe.PaymentIntentCaptureParams{
		AmountToCapture: stripe.Int64(amountCents),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	if _, err := g.api.PaymentIntents.Capture(reference, params); err != nil {
		return errs.Wrapf(err, "stripe: capture %s", reference)
	}
	return nil
}

func (g *StripeGateway) Refund(ctx context.Context, reference string, amountCents int64, idempotencyKey string) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(reference),
		Amount:        stripe.Int64(amountCents),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	rf, err := g.api.Refunds.New(params)
	if err != nil {
		return "", errs.Wrapf(err, "stripe: refund %s", reference)
	}
	return rf.ID, nil
}

// Release cancels an uncaptured intent, returning the hold to the customer.
func (g *StripeGateway) Release(ctx context.Context, reference, idempotencyKey string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	if _, err := g.api.PaymentIntents.Cancel(reference, params); err != nil {
		return errs.Wrapf(err, "stripe: cancel %s", reference)
	}
	return nil
}

// VerifyEvent checks the Stripe-Signature header before decoding anything.
func (g *StripeGateway) VerifyEvent(payload []byte, signature string) (*shared.GatewayEvent, error) {
	if err := webhook.ValidatePayloadWithTolerance(payload, signature, g.webhookSecret, g.tolerance); err != nil {
		return nil, errs.WithCause(shared.ErrInvalidSignature, err)
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, errs.WithCause(shared.ErrMalformedEvent, err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, shared.ErrMalformedEvent
	}

	out := &shared.GatewayEvent{
		ID:         event.ID,
		Type:       string(event.Type),
		Kind:       shared.EventUnknown,
		OccurredAt: time.Unix(event.Created, 0).UTC(),
	}
	if event.Data == nil {
		return out, nil
	}

	switch string(event.Type) {
	case eventAmountCapturableUpdated, eventPaymentFailed, eventPaymentSucceeded, eventPaymentCanceled:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, errs.WithCause(shared.ErrMalformedEvent, err)
		}
		out.PaymentReference = pi.ID
		out.BookingID = bookingTag(pi.Metadata)
		switch string(event.Type) {
		case eventAmountCapturableUpdated:
			out.Kind = shared.EventAuthorizationSucceeded
		case eventPaymentFailed:
			out.Kind = shared.EventAuthorizationFailed
			if pi.LastPaymentError != nil {
				out.FailureReason = pi.LastPaymentError.Msg
			}
		case eventPaymentSucceeded:
			out.Kind = shared.EventCaptureSucceeded
			out.AmountCents = pi.AmountReceived
		case eventPaymentCanceled:
			// a cancelled hold is a full release
			out.Kind = shared.EventRefundSucceeded
			out.AmountCents = pi.Amount
		}
	case eventChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, errs.WithCause(shared.ErrMalformedEvent, err)
		}
		if ch.PaymentIntent != nil {
			out.PaymentReference = ch.PaymentIntent.ID
		}
		out.BookingID = bookingTag(ch.Metadata)
		out.Kind = shared.EventRefundSucceeded
		out.AmountCents = ch.AmountRefunded
		// a partial capture already returned the uncaptured part of the hold
		if ch.AmountCaptured > 0 && ch.Amount > ch.AmountCaptured {
			out.AmountCents += ch.Amount - ch.AmountCaptured
		}
	}
	return out, nil
}

func bookingTag(metadata map[string]string) uuid.UUID {
	id, err := uuid.Parse(metadata[metadataBookingID])
	if err != nil {
		return uuid.Nil
	}
	return id
}
