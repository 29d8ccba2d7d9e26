//go:build unit

package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"courier-escrow/internal/infra/payment"
	"courier-escrow/internal/pkg/config"
	"courier-escrow/internal/usecase/shared"
	"courier-escrow/tests/common/stripetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "whsec_unit"

func newGateway(t *testing.T) (*payment.StripeGateway, *stripetest.Server) {
	t.Helper()
	srv := stripetest.NewServer(t)
	gw := payment.NewStripeGateway(config.PaymentConfig{
		SecretKey:         "sk_test_unit",
		WebhookSecret:     webhookSecret,
		APIBaseURL:        srv.URL,
		Currency:          "usd",
		MaxNetworkRetries: 0,
		WebhookTolerance:  5 * time.Minute,
	})
	return gw, srv
}

func TestStripeGateway_Authorize(t *testing.T) {
	gw, srv := newGateway(t)
	bookingID := uuid.New()
	key := shared.IdempotencyKey(bookingID, shared.OpAuthorize)

	auth, err := gw.Authorize(context.Background(), shared.AuthorizeRequest{
		BookingID:      bookingID,
		AmountCents:    4200,
		Currency:       "usd",
		IdempotencyKey: key,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, auth.Reference)
	assert.Equal(t, auth.Reference+"_secret_stub", auth.ClientToken)

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/v1/payment_intents", calls[0].Path)
	assert.Equal(t, key, calls[0].IdempotencyKey)
	assert.Equal(t, "4200", calls[0].Form["amount"])
	assert.Equal(t, "manual", calls[0].Form["capture_method"])
	assert.Equal(t, bookingID.String(), calls[0].Form["metadata[booking_id]"])
}

func TestStripeGateway_PaymentCalls(t *testing.T) {
	ctx := context.Background()
	bookingID := uuid.New()

	testCases := []struct {
		name     string
		call     func(*payment.StripeGateway) error
		wantPath string
		wantKey  string
	}{
		{
			name: "capture posts to the intent capture endpoint",
			call: func(gw *payment.StripeGateway) error {
				return gw.Capture(ctx, "pi_1", 4200, shared.IdempotencyKey(bookingID, shared.OpCapture))
			},
			wantPath: "/v1/payment_intents/pi_1/capture",
			wantKey:  shared.IdempotencyKey(bookingID, shared.OpCapture),
		},
		{
			name: "release cancels the intent",
			call: func(gw *payment.StripeGateway) error {
				return gw.Release(ctx, "pi_1", shared.IdempotencyKey(bookingID, shared.OpRelease))
			},
			wantPath: "/v1/payment_intents/pi_1/cancel",
			wantKey:  shared.IdempotencyKey(bookingID, shared.OpRelease),
		},
		{
			name: "refund creates a refund against the intent",
			call: func(gw *payment.StripeGateway) error {
				id, err := gw.Refund(ctx, "pi_1", 1500, shared.IdempotencyKey(bookingID, shared.OpRefund, 2))
				if err == nil && id == "" {
					return errors.New("empty refund id")
				}
				return err
			},
			wantPath: "/v1/refunds",
			wantKey:  shared.IdempotencyKey(bookingID, shared.OpRefund, 2),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gw, srv := newGateway(t)

			require.NoError(t, tc.call(gw))

			calls := srv.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tc.wantPath, calls[0].Path)
			assert.Equal(t, tc.wantKey, calls[0].IdempotencyKey)
		})
	}
}

func TestStripeGateway_RefundSendsAmount(t *testing.T) {
	gw, srv := newGateway(t)

	_, err := gw.Refund(context.Background(), "pi_9", 1500, "booking:x:refund-1")

	require.NoError(t, err)
	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "1500", calls[0].Form["amount"])
	assert.Equal(t, "pi_9", calls[0].Form["payment_intent"])
}

func TestStripeGateway_CaptureSendsAmount(t *testing.T) {
	gw, srv := newGateway(t)

	err := gw.Capture(context.Background(), "pi_9", 3200, "booking:x:capture")

	require.NoError(t, err)
	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "3200", calls[0].Form["amount_to_capture"])
}

func TestStripeGateway_GatewayError(t *testing.T) {
	gw, srv := newGateway(t)
	srv.FailNext("/capture", 1)

	err := gw.Capture(context.Background(), "pi_1", 4200, "booking:x:capture")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe: capture pi_1")
}

func TestStripeGateway_VerifyEvent(t *testing.T) {
	gw, _ := newGateway(t)
	now := time.Now()
	bookingID := uuid.New()

	testCases := []struct {
		name        string
		payload     []byte
		signature   func([]byte) string
		wantErr     error
		wantKind    shared.GatewayEventKind
		wantRef     string
		wantCents   int64
		wantBooking uuid.UUID
	}{
		{
			name:      "amount capturable means the hold is in place",
			payload:   stripetest.PaymentIntentEvent("evt_1", "payment_intent.amount_capturable_updated", "pi_1", 4200),
			signature: func(p []byte) string { return stripetest.Sign(webhookSecret, p, now) },
			wantKind:  shared.EventAuthorizationSucceeded,
			wantRef:   "pi_1",
		},
		{
			name:      "payment failed",
			payload:   stripetest.PaymentIntentEvent("evt_2", "payment_intent.payment_failed", "pi_2", 4200),
			signature: func(p []byte) string { return stripetest.Sign(webhookSecret, p, now) },
			wantKind:  shared.EventAuthorizationFailed,
			wantRef:   "pi_2",
		},
		{
			name:      "succeeded means captured",
			payload:   stripetest.PaymentIntentEvent("evt_3", "payment_intent.succeeded", "pi_3", 4200),
			signature: func(p []byte) string { return stripetest.Sign(webhookSecret, p, now) },
			wantKind:  shared.EventCaptureSucceeded,
			wantRef:   "pi_3",
			wantCents: 4200,
		},
		{
			name:        "booking tag is read from intent metadata",
			payload:     stripetest.BookingIntentEvent("evt_3b", "payment_intent.amount_capturable_updated", "pi_3b", bookingID.String(), 4200),
			signature:   func(p []byte) string { return stripetest.Sign(webhookSecret, p, now) },
			wantKind:    shared.EventAuthorizationSucceeded,
			wantRef:     "pi_3b",
			wantBooking: bookingID,
		},
		{
			name:      "malformed booking tag is treated as untagged",
			payload:   stripetest.BookingIntentEvent("evt_3c", "payment_intent.amount_capturable_updated", "pi_3c", "not-a-uuid", 4200),
			signature: func(p []byte) string { return stripetest.Sign(webhookSecret, p, now) },
			wantKind:  shared.EventAuthorizationSucceeded,
			wantRef:   "pi_3c",
		},
		{
			name:      "canceled intent releases the full amount",
			payload:   stripetest.PaymentIntentEvent("evt_4", "payment_intent.canceled", "pi_4", 4200),
			signature: func(p []byte) string { return stripetest.Sign(webhookSecret, p, now) },
			wantKind:  shared.EventRefundSucceeded,
			wantRef:   "pi_4",
			wantCents: 4200,
		},
		{
			name:      "charge refunded carries the cumulative amount",
			payload:   stripetest.ChargeRefundedEvent("evt_5", "pi_5", 1500),
			signature: func(p []byte) string { return stripetest.Sign(webhookSecret, p, now) },
			wantKind:  shared.EventRefundSucceeded,
			wantRef:   "pi_5",
			wantCents: 1500,
		},
		{
			name:      "refund after a partial capture counts the released part",
			payload:   stripetest.PartialChargeRefundedEvent("evt_5b", "pi_5b", 4200, 3200, 1000),
			signature: func(p []byte) string { return stripetest.Sign(webhookSecret, p, now) },
			wantKind:  shared.EventRefundSucceeded,
			wantRef:   "pi_5b",
			wantCents: 2000,
		},
		{
			name:      "unrelated event types are unknown",
			payload:   stripetest.PaymentIntentEvent("evt_6", "customer.created", "cus_1", 0),
			signature: func(p []byte) string { return stripetest.Sign(webhookSecret, p, now) },
			wantKind:  shared.EventUnknown,
		},
		{
			name:      "wrong secret",
			payload:   stripetest.PaymentIntentEvent("evt_7", "payment_intent.succeeded", "pi_7", 4200),
			signature: func(p []byte) string { return stripetest.Sign("whsec_other", p, now) },
			wantErr:   shared.ErrInvalidSignature,
		},
		{
			name:      "signature older than the tolerance",
			payload:   stripetest.PaymentIntentEvent("evt_8", "payment_intent.succeeded", "pi_8", 4200),
			signature: func(p []byte) string { return stripetest.Sign(webhookSecret, p, now.Add(-time.Hour)) },
			wantErr:   shared.ErrInvalidSignature,
		},
		{
			name:      "missing header",
			payload:   stripetest.PaymentIntentEvent("evt_9", "payment_intent.succeeded", "pi_9", 4200),
			signature: func([]byte) string { return "" },
			wantErr:   shared.ErrInvalidSignature,
		},
		{
			name:      "signed but not json",
			payload:   []byte("not json"),
			signature: func(p []byte) string { return stripetest.Sign(webhookSecret, p, now) },
			wantErr:   shared.ErrMalformedEvent,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := gw.VerifyEvent(tc.payload, tc.signature(tc.payload))

			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, ev.Kind)
			assert.Equal(t, tc.wantRef, ev.PaymentReference)
			assert.Equal(t, tc.wantCents, ev.AmountCents)
			assert.Equal(t, tc.wantBooking, ev.BookingID)
			assert.NotEmpty(t, ev.ID)
		})
	}
}
