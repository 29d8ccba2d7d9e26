package repository

import (
	"context"
	"time"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/infra"
	"courier-escrow/internal/infra/db"
	"courier-escrow/internal/pkg/errs"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var bookingColumns = []string{
	"id", "consumer_id", "provider_id", "listing_id",
	"status", "payment_status", "scheduled_at",
	"pickup_lat", "pickup_lng", "pickup_address",
	"dropoff_lat", "dropoff_lng", "dropoff_address",
	"special_instructions",
	"price_base_cents", "price_distance_cents", "price_duration_cents", "price_total_cents",
	"currency", "payment_reference", "refunded_total_cents", "version",
	"cancelled_by", "cancel_reason", "created_at", "updated_at",
}

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	rec := b.Snapshot()

	var pickupLat, pickupLng *float64
	var pickupAddress *string
	if rec.Pickup != nil {
		lat, lng, addr := rec.Pickup.Lat(), rec.Pickup.Lng(), rec.Pickup.Address()
		pickupLat, pickupLng, pickupAddress = &lat, &lng, &addr
	}
	var reference *string
	if rec.PaymentReference != "" {
		reference = &rec.PaymentReference
	}
	if rec.Version == 0 {
		rec.Version = 1
	}

	query, args, err := psql.Insert("bookings").
		Columns(bookingColumns...).
		Values(
			rec.ID, rec.ConsumerID, rec.ProviderID, rec.ListingID,
			rec.Status.String(), rec.PaymentStatus.String(), rec.ScheduledAt,
			pickupLat, pickupLng, pickupAddress,
			rec.Dropoff.Lat(), rec.Dropoff.Lng(), rec.Dropoff.Address(),
			rec.Instructions.String(),
			rec.Price.Base.Cents(), rec.Price.Distance.Cents(), rec.Price.Duration.Cents(), rec.Price.Total.Cents(),
			rec.Currency, reference, rec.RefundedTotal.Cents(), rec.Version,
			rec.CancelledBy, rec.CancelReason, rec.CreatedAt, rec.UpdatedAt,
		).ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build booking insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	b.MarkPersisted(rec.Version)
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return r.findOne(ctx, sq.Eq{"id": id}, "failed to find booking")
}

func (r *BookingRepository) FindByPaymentReference(ctx context.Context, ref string) (*booking.Booking, error) {
	return r.findOne(ctx, sq.Eq{"payment_reference": ref}, "failed to find booking by payment reference")
}

// UpdateState is the check-and-set every booking mutation goes through.
func (r *BookingRepository) UpdateState(ctx context.Context, b *booking.Booking, expected booking.State) error {
	rec := b.Snapshot()
	next := expected.Version + 1

	query, args, err := psql.Update("bookings").
		Set("status", rec.Status.String()).
		Set("payment_status", rec.PaymentStatus.String()).
		Set("refunded_total_cents", rec.RefundedTotal.Cents()).
		Set("cancelled_by", rec.CancelledBy).
		Set("cancel_reason", rec.CancelReason).
		Set("updated_at", rec.UpdatedAt).
		Set("version", next).
		Where(sq.Eq{
			"id":             rec.ID,
			"status":         expected.Status.String(),
			"payment_status": expected.PaymentStatus.String(),
			"version":        expected.Version,
		}).ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build booking update", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking state", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindConflict, "booking was modified concurrently")
	}
	b.MarkPersisted(next)
	return nil
}

func (r *BookingRepository) findOne(ctx context.Context, where sq.Sqlizer, msg string) (*booking.Booking, error) {
	query, args, err := psql.Select(bookingColumns...).From("bookings").Where(where).ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr(msg, err)
	}
	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, infra.WrapRepoErr(msg, err)
	}
	return b, nil
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		rec                                     booking.Record
		status, paymentStatus                   string
		pickupLat, pickupLng                    *float64
		pickupAddress, reference                *string
		dropoffLat, dropoffLng                  float64
		dropoffAddress, instructions            string
		baseCents, distanceCents, durationCents int64
		totalCents, refundedCents               int64
		scheduledAt, createdAt, updatedAt       time.Time
	)
	err := row.Scan(
		&rec.ID, &rec.ConsumerID, &rec.ProviderID, &rec.ListingID,
		&status, &paymentStatus, &scheduledAt,
		&pickupLat, &pickupLng, &pickupAddress,
		&dropoffLat, &dropoffLng, &dropoffAddress,
		&instructions,
		&baseCents, &distanceCents, &durationCents, &totalCents,
		&rec.Currency, &reference, &refundedCents, &rec.Version,
		&rec.CancelledBy, &rec.CancelReason, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rec.Status, err = booking.ParseStatus(status); err != nil {
		return nil, errs.Wrapf(err, "stored status %q", status)
	}
	if rec.PaymentStatus, err = booking.ParsePaymentStatus(paymentStatus); err != nil {
		return nil, errs.Wrapf(err, "stored payment status %q", paymentStatus)
	}
	if pickupLat != nil && pickupLng != nil && pickupAddress != nil {
		loc, err := booking.NewLocation(*pickupLat, *pickupLng, *pickupAddress)
		if err != nil {
			return nil, errs.Wrap(err, "stored pickup")
		}
		rec.Pickup = &loc
	}
	if rec.Dropoff, err = booking.NewLocation(dropoffLat, dropoffLng, dropoffAddress); err != nil {
		return nil, errs.Wrap(err, "stored dropoff")
	}
	if rec.Instructions, err = booking.NewInstructions(instructions); err != nil {
		return nil, errs.Wrap(err, "stored instructions")
	}
	if reference != nil {
		rec.PaymentReference = *reference
	}

	rec.Price = booking.Price{
		Base:     booking.MoneyFromCents(baseCents),
		Distance: booking.MoneyFromCents(distanceCents),
		Duration: booking.MoneyFromCents(durationCents),
		Total:    booking.MoneyFromCents(totalCents),
	}
	rec.RefundedTotal = booking.MoneyFromCents(refundedCents)
	rec.ScheduledAt = scheduledAt.UTC()
	rec.CreatedAt = createdAt.UTC()
	rec.UpdatedAt = updatedAt.UTC()

	return booking.Reconstruct(rec), nil
}
