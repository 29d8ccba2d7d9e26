package repository

import (
	"context"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/infra"
	"courier-escrow/internal/infra/db"
)

type BookingEventRepository struct {
	db db.DBTX
}

func NewBookingEventRepository(dbtx db.DBTX) *BookingEventRepository {
	return &BookingEventRepository{db: dbtx}
}

func (r *BookingEventRepository) Append(ctx context.Context, ev booking.Event) error {
	query, args, err := psql.Insert("booking_events").
		Columns("id", "booking_id", "from_status", "to_status", "from_payment_status", "to_payment_status",
			"actor_id", "reason", "occurred_at").
		Values(ev.ID, ev.BookingID, string(ev.FromStatus), string(ev.ToStatus), string(ev.FromPayment), string(ev.ToPayment),
			ev.ActorID, ev.Reason, ev.OccurredAt).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build booking event insert", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to append booking event", err)
	}
	return nil
}
