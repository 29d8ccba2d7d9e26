package shared

import (
	"context"
	"fmt"
	"time"

	"courier-escrow/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidSignature = errs.Integrity("invalid webhook signature")
	ErrMalformedEvent   = errs.Integrity("malformed webhook event")
)

type PaymentOperation string

const (
	OpAuthorize PaymentOperation = "authorize"
	OpCapture   PaymentOperation = "capture"
	OpRelease   PaymentOperation = "release"
	OpRefund    PaymentOperation = "refund"
)

// IdempotencyKey derives the gateway key for an operation on a booking. Refunds
// pass their ledger sequence as suffix so each partial refund gets its own key.
func IdempotencyKey(bookingID uuid.UUID, op PaymentOperation, suffix ...int) string {
	if len(suffix) > 0 {
		return fmt.Sprintf("booking:%s:%s-%d", bookingID, op, suffix[0])
	}
	return fmt.Sprintf("booking:%s:%s", bookingID, op)
}

type AuthorizeRequest struct {
	BookingID      uuid.UUID
	AmountCents    int64
	Currency       string
	IdempotencyKey string
}

type Authorization struct {
	Reference   string
	ClientToken string
}

type GatewayEventKind string

const (
	EventAuthorizationSucceeded GatewayEventKind = "authorization_succeeded"
	EventAuthorizationFailed    GatewayEventKind = "authorization_failed"
	EventCaptureSucceeded       GatewayEventKind = "capture_succeeded"
	EventRefundSucceeded        GatewayEventKind = "refund_succeeded"
	EventUnknown                GatewayEventKind = "unknown"
)

// GatewayEvent is a verified gateway notification. AmountCents carries the
// captured amount for capture events and the cumulative amount returned to
// the customer for refund events. BookingID is the booking the payment was
// created for, or uuid.Nil when the payment carries no such tag.
type GatewayEvent struct {
	ID               string
	Type             string
	Kind             GatewayEventKind
	PaymentReference string
	BookingID        uuid.UUID
	AmountCents      int64
	FailureReason    string
	OccurredAt       time.Time
}

type PaymentGateway interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (Authorization, error)
	Capture(ctx context.Context, reference string, amountCents int64, idempotencyKey string) error
	Refund(ctx context.Context, reference string, amountCents int64, idempotencyKey string) (string, error)
	Release(ctx context.Context, reference, idempotencyKey string) error
	VerifyEvent(payload []byte, signature string) (*GatewayEvent, error)
}

type PaymentAction string

const (
	ActionCapture PaymentAction = "capture"
	ActionRefund  PaymentAction = "refund"
	ActionRelease PaymentAction = "release"
)

type PaymentRetry struct {
	BookingID uuid.UUID     `json:"booking_id"`
	Action    PaymentAction `json:"action"`
	RefundID  uuid.UUID     `json:"refund_id,omitempty"`
}

type TaskQueue interface {
	EnqueueAuthorizationExpiry(ctx context.Context, bookingID uuid.UUID, after time.Duration) error
	EnqueueRatingRecompute(ctx context.Context, reviewedID uuid.UUID) error
	EnqueuePaymentRetry(ctx context.Context, retry PaymentRetry) error
}

type RatingCacheInvalidator interface {
	Invalidate(ctx context.Context, reviewedID uuid.UUID) error
}
