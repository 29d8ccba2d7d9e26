package shared

import (
	"time"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/domain/pricing"

	"github.com/google/uuid"
)

// ListingSnapshot is the write-side view of a catalogue listing.
type ListingSnapshot struct {
	ID             uuid.UUID
	ProviderID     uuid.UUID
	Title          string
	RateCard       pricing.RateCard
	RequiresPickup bool
	Active         bool
}

func (l *ListingSnapshot) Terms() booking.ListingTerms {
	return booking.ListingTerms{
		ID:             l.ID,
		ProviderID:     l.ProviderID,
		RateCard:       l.RateCard,
		RequiresPickup: l.RequiresPickup,
		Active:         l.Active,
	}
}

type RefundStatus string

const (
	RefundRequested RefundStatus = "requested"
	RefundSucceeded RefundStatus = "succeeded"
)

type RefundRecord struct {
	ID              uuid.UUID
	BookingID       uuid.UUID
	Sequence        int
	AmountCents     int64
	Release         bool
	IdempotencyKey  string
	GatewayRefundID string
	Status          RefundStatus
	RequestedBy     *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RequestedTotal sums every refund asked of the gateway, confirmed or not.
func RequestedTotal(rows []RefundRecord) int64 {
	var total int64
	for _, r := range rows {
		total += r.AmountCents
	}
	return total
}

type WebhookEventRecord struct {
	EventID          string
	EventType        string
	PaymentReference string
	ProcessedAt      time.Time
}
