//go:build unit || e2e

package builder

import (
	"time"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/domain/pricing"
	"courier-escrow/internal/pkg/clock"
	"courier-escrow/internal/usecase/shared"

	"github.com/google/uuid"
)

var BaseTime = time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

type BookingBuilder struct {
	ConsumerID     uuid.UUID
	ProviderID     uuid.UUID
	ListingID      uuid.UUID
	RateCard       pricing.RateCard
	RequiresPickup bool
	Active         bool
	Now            time.Time
	ScheduledAt    time.Time
	Pickup         *booking.Location
	Dropoff        *booking.Location
	Instructions   string
	Currency       string
	Reference      string
}

func NewBookingBuilder() *BookingBuilder {
	pickup, _ := booking.NewLocation(35.6812, 139.7671, "1-9-1 Marunouchi, Chiyoda")
	dropoff, _ := booking.NewLocation(35.6586, 139.7454, "4-2-8 Shibakoen, Minato")
	return &BookingBuilder{
		ConsumerID: uuid.New(),
		ProviderID: uuid.New(),
		ListingID:  uuid.New(),
		RateCard: pricing.RateCard{
			BaseCents:        1500,
			PerKmCents:       120,
			PerMinuteCents:   25,
			EstimatedMinutes: 30,
		},
		RequiresPickup: true,
		Active:         true,
		Now:            BaseTime,
		ScheduledAt:    BaseTime.Add(2 * time.Hour),
		Pickup:         &pickup,
		Dropoff:        &dropoff,
		Instructions:   "Leave at the front desk",
		Currency:       "usd",
		Reference:      "pi_" + uuid.NewString()[:8],
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) Consumer() identity.Actor {
	return identity.Actor{ID: b.ConsumerID, Role: identity.RoleConsumer}
}

func (b *BookingBuilder) Provider() identity.Actor {
	return identity.Actor{ID: b.ProviderID, Role: identity.RoleProvider}
}

func (b *BookingBuilder) Terms() booking.ListingTerms {
	return booking.ListingTerms{
		ID:             b.ListingID,
		ProviderID:     b.ProviderID,
		RateCard:       b.RateCard,
		RequiresPickup: b.RequiresPickup,
		Active:         b.Active,
	}
}

// Listing is the catalogue row the booking is made against.
func (b *BookingBuilder) Listing() shared.ListingSnapshot {
	return shared.ListingSnapshot{
		ID:             b.ListingID,
		ProviderID:     b.ProviderID,
		Title:          "Same-day courier",
		RateCard:       b.RateCard,
		RequiresPickup: b.RequiresPickup,
		Active:         b.Active,
	}
}

// Build methods
func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	instructions, err := booking.NewInstructions(b.Instructions)
	if err != nil {
		return nil, err
	}
	services := &booking.Services{
		Clock:   clock.NewMockClock(b.Now),
		Pricing: pricing.NewDefaultCalculator(),
	}
	return booking.NewBooking(services, booking.NewBookingParams{
		ConsumerID:   b.ConsumerID,
		Listing:      b.Terms(),
		ScheduledAt:  b.ScheduledAt,
		Pickup:       b.Pickup,
		Dropoff:      b.Dropoff,
		Instructions: instructions,
		Currency:     b.Currency,
	})
}

// BuildInState returns a persisted booking with the given status pair, bypassing transitions.
func (b *BookingBuilder) BuildInState(status booking.Status, payment booking.PaymentStatus) *booking.Booking {
	created, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	rec := created.Snapshot()
	rec.Status = status
	rec.PaymentStatus = payment
	rec.PaymentReference = b.Reference
	rec.Version = 1
	if payment == booking.PaymentRefunded {
		rec.RefundedTotal = rec.Price.Total
	}
	return booking.Reconstruct(rec)
}

// Fluent builder methods
func (b *BookingBuilder) WithConsumerID(id uuid.UUID) *BookingBuilder {
	b.ConsumerID = id
	return b
}

func (b *BookingBuilder) WithProviderID(id uuid.UUID) *BookingBuilder {
	b.ProviderID = id
	return b
}

func (b *BookingBuilder) WithListingID(id uuid.UUID) *BookingBuilder {
	b.ListingID = id
	return b
}

func (b *BookingBuilder) WithRateCard(card pricing.RateCard) *BookingBuilder {
	b.RateCard = card
	return b
}

func (b *BookingBuilder) WithScheduledAt(at time.Time) *BookingBuilder {
	b.ScheduledAt = at
	return b
}

func (b *BookingBuilder) WithoutPickup() *BookingBuilder {
	b.Pickup = nil
	return b
}

func (b *BookingBuilder) WithoutDropoff() *BookingBuilder {
	b.Dropoff = nil
	return b
}

func (b *BookingBuilder) WithRequiresPickup(v bool) *BookingBuilder {
	b.RequiresPickup = v
	return b
}

func (b *BookingBuilder) WithActive(v bool) *BookingBuilder {
	b.Active = v
	return b
}

func (b *BookingBuilder) WithInstructions(s string) *BookingBuilder {
	b.Instructions = s
	return b
}

func (b *BookingBuilder) WithReference(ref string) *BookingBuilder {
	b.Reference = ref
	return b
}

// WithFlatPrice makes the total equal to cents regardless of distance and duration.
func (b *BookingBuilder) WithFlatPrice(cents int64) *BookingBuilder {
	b.RateCard = pricing.RateCard{BaseCents: cents}
	return b
}
