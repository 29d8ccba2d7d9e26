package readstore

import (
	"context"
	"time"

	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/infra"
	"courier-escrow/internal/infra/db"
	"courier-escrow/internal/usecase/queries"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

func (s *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	query, args, err := psql.Select(
		"id", "consumer_id", "provider_id", "listing_id", "status", "payment_status", "scheduled_at",
		"pickup_lat", "pickup_lng", "pickup_address", "dropoff_lat", "dropoff_lng", "dropoff_address",
		"special_instructions", "price_base_cents", "price_distance_cents", "price_duration_cents", "price_total_cents",
		"refunded_total_cents", "currency", "COALESCE(payment_reference, '')", "version",
		"cancelled_by", "cancel_reason", "created_at", "updated_at",
	).From("bookings").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking view query", err)
	}

	var (
		v                    queries.BookingView
		pickupLat, pickupLng *float64
		pickupAddress        *string
	)
	err = s.db.QueryRow(ctx, query, args...).Scan(
		&v.ID, &v.ConsumerID, &v.ProviderID, &v.ListingID, &v.Status, &v.PaymentStatus, &v.ScheduledAt,
		&pickupLat, &pickupLng, &pickupAddress, &v.Dropoff.Lat, &v.Dropoff.Lng, &v.Dropoff.Address,
		&v.SpecialInstructions, &v.PriceBaseCents, &v.PriceDistanceCents, &v.PriceDurationCents, &v.PriceTotalCents,
		&v.RefundedTotalCents, &v.Currency, &v.PaymentReference, &v.Version,
		&v.CancelledBy, &v.CancelReason, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get booking view", err)
	}
	if pickupLat != nil && pickupLng != nil {
		v.Pickup = &queries.LocationView{Lat: *pickupLat, Lng: *pickupLng}
		if pickupAddress != nil {
			v.Pickup.Address = *pickupAddress
		}
	}
	return &v, nil
}

// List pages through bookings newest first using a (created_at, id) keyset.
func (s *BookingReadStore) List(ctx context.Context, filter queries.BookingListFilter, after *queries.Keyset, limit int) ([]*queries.BookingListItem, error) {
	b := psql.Select("id", "listing_id", "consumer_id", "provider_id", "status", "payment_status",
		"scheduled_at", "price_total_cents", "created_at").
		From("bookings").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(max(limit, 1)))

	if filter.ParticipantID != uuid.Nil {
		switch filter.Role {
		case string(identity.RoleConsumer):
			b = b.Where(sq.Eq{"consumer_id": filter.ParticipantID})
		case string(identity.RoleProvider):
			b = b.Where(sq.Eq{"provider_id": filter.ParticipantID})
		default:
			b = b.Where(sq.Or{
				sq.Eq{"consumer_id": filter.ParticipantID},
				sq.Eq{"provider_id": filter.ParticipantID},
			})
		}
	}
	if filter.Status != "" {
		b = b.Where(sq.Eq{"status": filter.Status})
	}
	if after != nil {
		b = b.Where(sq.Expr("(created_at, id) < (?, ?)", after.CreatedAt, after.ID))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking list query", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	var items []*queries.BookingListItem
	for rows.Next() {
		var it queries.BookingListItem
		if err := rows.Scan(&it.ID, &it.ListingID, &it.ConsumerID, &it.ProviderID, &it.Status, &it.PaymentStatus,
			&it.ScheduledAt, &it.PriceTotalCents, &it.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list row", err)
		}
		it.CreatedAt = truncateMicro(it.CreatedAt)
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate bookings", err)
	}
	return items, nil
}

func (s *BookingReadStore) Events(ctx context.Context, bookingID uuid.UUID) ([]*queries.BookingEventView, error) {
	query, args, err := psql.Select("id", "from_status", "to_status", "from_payment_status", "to_payment_status",
		"actor_id", "reason", "occurred_at").
		From("booking_events").
		Where(sq.Eq{"booking_id": bookingID}).
		OrderBy("occurred_at", "id").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking events query", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list booking events", err)
	}
	defer rows.Close()

	var events []*queries.BookingEventView
	for rows.Next() {
		var (
			ev queries.BookingEventView
			id uuid.UUID
		)
		if err := rows.Scan(&id, &ev.FromStatus, &ev.ToStatus, &ev.FromPaymentStatus, &ev.ToPaymentStatus,
			&ev.ActorID, &ev.Reason, &ev.OccurredAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking event", err)
		}
		ev.ID = id.String()
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking events", err)
	}
	return events, nil
}

// cursors carry microseconds, matching the column precision
func truncateMicro(t time.Time) time.Time {
	return t.Truncate(time.Microsecond).UTC()
}
