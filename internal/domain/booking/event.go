package booking

import (
	"time"

	"courier-escrow/internal/domain/identity"

	"github.com/google/uuid"
)

// Event is one row of a booking's audit trail.
type Event struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	FromStatus  Status
	ToStatus    Status
	FromPayment PaymentStatus
	ToPayment   PaymentStatus
	ActorID     *uuid.UUID
	Reason      string
	OccurredAt  time.Time
}

// EventSince describes the change from before to the booking's current state.
// A zero before marks creation.
func (b *Booking) EventSince(before State, actor identity.Actor, reason string) Event {
	var actorID *uuid.UUID
	if !actor.IsSystem() {
		id := actor.ID
		actorID = &id
	}
	return Event{
		ID:          uuid.New(),
		BookingID:   b.rec.ID,
		FromStatus:  before.Status,
		ToStatus:    b.rec.Status,
		FromPayment: before.PaymentStatus,
		ToPayment:   b.rec.PaymentStatus,
		ActorID:     actorID,
		Reason:      reason,
		OccurredAt:  b.rec.UpdatedAt,
	}
}
