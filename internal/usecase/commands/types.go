package commands

import (
	"time"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/usecase/shared"

	"github.com/google/uuid"
)

// Options carries the deployment settings the command side depends on.
type Options struct {
	Currency             string
	AuthorizationTimeout time.Duration
	AsyncRating          bool
}

type LocationInput struct {
	Lat     float64
	Lng     float64
	Address string
}

type CreateBookingRequest struct {
	ListingID           uuid.UUID
	ScheduledAt         time.Time
	Pickup              *LocationInput
	Dropoff             *LocationInput
	SpecialInstructions string
}

type CreateBookingResult struct {
	BookingID          uuid.UUID
	PaymentClientToken string
	Booking            BookingSummary
}

type CancelRequest struct {
	Reason            string
	RefundAmountCents *int64
}

type CreateReviewRequest struct {
	BookingID uuid.UUID
	Rating    int
	Comment   string
}

type CreateReviewResult struct {
	ReviewID   uuid.UUID
	ReviewedID uuid.UUID
}

type BookingSummary struct {
	ID                 uuid.UUID
	Status             booking.Status
	PaymentStatus      booking.PaymentStatus
	PriceTotalCents    int64
	RefundedTotalCents int64
	Currency           string
	Version            int64
	UpdatedAt          time.Time
}

func summarize(b *booking.Booking) BookingSummary {
	return BookingSummary{
		ID:                 b.ID(),
		Status:             b.Status(),
		PaymentStatus:      b.PaymentStatus(),
		PriceTotalCents:    b.Price().Total.Cents(),
		RefundedTotalCents: b.RefundedTotal().Cents(),
		Currency:           b.Currency(),
		Version:            b.Version(),
		UpdatedAt:          b.UpdatedAt(),
	}
}

type PaymentOutcome string

const (
	OutcomeRequested      PaymentOutcome = "requested"
	OutcomeRetryScheduled PaymentOutcome = "retry_scheduled"
	OutcomeFailed         PaymentOutcome = "failed"
)

// PaymentEffect reports the gateway side effect of a transition separately
// from the transition itself.
type PaymentEffect struct {
	Action      shared.PaymentAction
	AmountCents int64
	Outcome     PaymentOutcome
	Detail      string
}

type TransitionResult struct {
	Booking BookingSummary
	Payment *PaymentEffect
}

type WebhookOutcome string

const (
	WebhookApplied   WebhookOutcome = "applied"
	WebhookDuplicate WebhookOutcome = "duplicate"
	WebhookIgnored   WebhookOutcome = "ignored"
)
