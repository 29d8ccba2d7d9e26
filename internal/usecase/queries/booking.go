package queries

import (
	"context"
	"time"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/infra"
	"courier-escrow/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errs.NotFound("booking not found")
	ErrBookingAccess   = errs.Forbidden("booking is not accessible")
	ErrInvalidFilter   = errs.Validation("invalid filter")
)

type LocationView struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type BookingView struct {
	ID                  uuid.UUID     `json:"id"`
	ConsumerID          uuid.UUID     `json:"consumer_id"`
	ProviderID          uuid.UUID     `json:"provider_id"`
	ListingID           uuid.UUID     `json:"listing_id"`
	Status              string        `json:"status"`
	PaymentStatus       string        `json:"payment_status"`
	ScheduledAt         time.Time     `json:"scheduled_at"`
	Pickup              *LocationView `json:"pickup,omitempty"`
	Dropoff             LocationView  `json:"dropoff"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
	PriceBaseCents      int64         `json:"price_base_cents"`
	PriceDistanceCents  int64         `json:"price_distance_cents"`
	PriceDurationCents  int64         `json:"price_duration_cents"`
	PriceTotalCents     int64         `json:"price_total_cents"`
	RefundedTotalCents  int64         `json:"refunded_total_cents"`
	Currency            string        `json:"currency"`
	PaymentReference    string        `json:"payment_reference,omitempty"`
	Version             int64         `json:"version"`
	CancelledBy         *uuid.UUID    `json:"cancelled_by,omitempty"`
	CancelReason        string        `json:"cancel_reason,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

type BookingListItem struct {
	ID              uuid.UUID `json:"id"`
	ListingID       uuid.UUID `json:"listing_id"`
	ConsumerID      uuid.UUID `json:"consumer_id"`
	ProviderID      uuid.UUID `json:"provider_id"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	PriceTotalCents int64     `json:"price_total_cents"`
	CreatedAt       time.Time `json:"created_at"`
}

type BookingEventView struct {
	ID                string     `json:"id"`
	FromStatus        string     `json:"from_status,omitempty"`
	ToStatus          string     `json:"to_status"`
	FromPaymentStatus string     `json:"from_payment_status,omitempty"`
	ToPaymentStatus   string     `json:"to_payment_status"`
	ActorID           *uuid.UUID `json:"actor_id,omitempty"`
	Reason            string     `json:"reason,omitempty"`
	OccurredAt        time.Time  `json:"occurred_at"`
}

// BookingListFilter narrows a listing. ParticipantID is uuid.Nil for an unrestricted admin listing.
type BookingListFilter struct {
	ParticipantID uuid.UUID
	Role          string
	Status        string
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	List(ctx context.Context, filter BookingListFilter, after *Keyset, limit int) ([]*BookingListItem, error)
	Events(ctx context.Context, bookingID uuid.UUID) ([]*BookingEventView, error)
}

type ListBookingsRequest struct {
	Role   string
	Status string
}

type BookingQueries interface {
	GetByID(ctx context.Context, id uuid.UUID, actor identity.Actor) (*BookingView, error)
	List(ctx context.Context, req ListBookingsRequest, actor identity.Actor, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
	Events(ctx context.Context, id uuid.UUID, actor identity.Actor) ([]*BookingEventView, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, id uuid.UUID, actor identity.Actor) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != view.ConsumerID && actor.ID != view.ProviderID {
		return nil, ErrBookingAccess
	}
	return view, nil
}

// List returns the caller's bookings newest first. Admins see every booking
// unless they ask for a role.
func (q *bookingQueriesImpl) List(ctx context.Context, req ListBookingsRequest, actor identity.Actor, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	switch req.Role {
	case "", string(identity.RoleConsumer), string(identity.RoleProvider):
	default:
		return nil, nil, ErrInvalidFilter
	}
	if req.Status != "" {
		if _, err := booking.ParseStatus(req.Status); err != nil {
			return nil, nil, ErrInvalidFilter
		}
	}
	after, err := decodeKeyset(cursor)
	if err != nil {
		return nil, nil, err
	}

	filter := BookingListFilter{ParticipantID: actor.ID, Role: req.Role, Status: req.Status}
	if actor.IsAdmin() && req.Role == "" {
		filter.ParticipantID = uuid.Nil
	}

	limit = ValidateLimit(limit)
	rows, err := q.store.List(ctx, filter, after, limit+1)
	if err != nil {
		return nil, nil, err
	}
	items, next := paginate(rows, limit, func(b *BookingListItem) (time.Time, uuid.UUID) { return b.CreatedAt, b.ID })
	return items, next, nil
}

func (q *bookingQueriesImpl) Events(ctx context.Context, id uuid.UUID, actor identity.Actor) ([]*BookingEventView, error) {
	if _, err := q.GetByID(ctx, id, actor); err != nil {
		return nil, err
	}
	return q.store.Events(ctx, id)
}
