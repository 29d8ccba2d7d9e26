package shared

import (
	"context"
	"time"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/domain/review"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within runs fn in a read-committed transaction, retrying on serialization failures
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads gives validation reads outside a transaction
	CommandReads() CommandReads
}

// Tx exposes repositories bound to one transaction.
type Tx interface {
	Bookings() BookingRepository
	BookingEvents() BookingEventRepository
	Refunds() RefundRepository
	Reviews() ReviewRepository
	RatingStats() RatingStatsRepository
	WebhookEvents() WebhookEventRepository
	Reads() CommandReads
}

type CommandReads interface {
	ListingByID(ctx context.Context, id uuid.UUID) (*ListingSnapshot, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	FindByPaymentReference(ctx context.Context, ref string) (*booking.Booking, error)
	// UpdateState writes b only if the stored status, payment status and version still
	// equal expected. A lost race is reported as infra.KindConflict.
	UpdateState(ctx context.Context, b *booking.Booking, expected booking.State) error
}

type BookingEventRepository interface {
	Append(ctx context.Context, ev booking.Event) error
}

type RefundRepository interface {
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]RefundRecord, error)
	Create(ctx context.Context, rec RefundRecord) error
	AttachGatewayID(ctx context.Context, id uuid.UUID, gatewayRefundID string) error
	MarkSucceeded(ctx context.Context, id uuid.UUID, at time.Time) error
}

type ReviewRepository interface {
	Create(ctx context.Context, rev *review.Review) error
	RatingsFor(ctx context.Context, reviewedID uuid.UUID) ([]review.Rating, error)
}

type RatingStatsRepository interface {
	Upsert(ctx context.Context, stats review.Stats) error
}

type WebhookEventRepository interface {
	Exists(ctx context.Context, eventID string) (bool, error)
	// Record reports false when the event id was already stored
	Record(ctx context.Context, rec WebhookEventRecord) (bool, error)
}
