package booking

import (
	"time"

	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/domain/pricing"
	"courier-escrow/internal/pkg/clock"
	"courier-escrow/internal/pkg/errs"

	"github.com/google/uuid"
)

type Services struct {
	Clock   clock.Clock
	Pricing pricing.Calculator
}

// ListingTerms is what a booking needs to know about the listing it is made against.
type ListingTerms struct {
	ID             uuid.UUID
	ProviderID     uuid.UUID
	RateCard       pricing.RateCard
	RequiresPickup bool
	Active         bool
}

type NewBookingParams struct {
	ConsumerID   uuid.UUID
	Listing      ListingTerms
	ScheduledAt  time.Time
	Pickup       *Location
	Dropoff      *Location
	Instructions Instructions
	Currency     string
}

// Record is the persisted shape of a booking.
type Record struct {
	ID               uuid.UUID
	ConsumerID       uuid.UUID
	ProviderID       uuid.UUID
	ListingID        uuid.UUID
	Status           Status
	PaymentStatus    PaymentStatus
	ScheduledAt      time.Time
	Pickup           *Location
	Dropoff          Location
	Instructions     Instructions
	Price            Price
	Currency         string
	PaymentReference string
	RefundedTotal    Money
	Version          int64
	CancelledBy      *uuid.UUID
	CancelReason     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Booking struct {
	rec Record
}

func ValidateSchedule(now, scheduledAt time.Time) error {
	if !scheduledAt.After(now) {
		return ErrInvalidSchedule
	}
	return nil
}

func NewBooking(services *Services, p NewBookingParams) (*Booking, error) {
	now := services.Clock.Now()
	if err := ValidateSchedule(now, p.ScheduledAt); err != nil {
		return nil, err
	}
	if !p.Listing.Active {
		return nil, ErrListingUnavailable
	}
	if p.Dropoff == nil {
		return nil, ErrInvalidLocation
	}
	if p.Listing.RequiresPickup && p.Pickup == nil {
		return nil, ErrInvalidLocation
	}

	var pickup *pricing.Point
	if p.Pickup != nil {
		pt := p.Pickup.Point()
		pickup = &pt
	}
	trip := pricing.NewTrip(pickup, p.Dropoff.Point(), p.Listing.RateCard.EstimatedMinutes)
	quote, err := services.Pricing.Quote(p.Listing.RateCard, trip)
	if err != nil {
		return nil, err
	}
	price, err := PriceFromQuote(quote)
	if err != nil {
		return nil, err
	}

	return &Booking{rec: Record{
		ID:            uuid.New(),
		ConsumerID:    p.ConsumerID,
		ProviderID:    p.Listing.ProviderID,
		ListingID:     p.Listing.ID,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		ScheduledAt:   p.ScheduledAt,
		Pickup:        p.Pickup,
		Dropoff:       *p.Dropoff,
		Instructions:  p.Instructions,
		Price:         price,
		Currency:      p.Currency,
		CreatedAt:     now,
		UpdatedAt:     now,
	}}, nil
}

func Reconstruct(r Record) *Booking {
	return &Booking{rec: r}
}

func (b *Booking) Snapshot() Record { return b.rec }

func (b *Booking) ID() uuid.UUID                { return b.rec.ID }
func (b *Booking) ConsumerID() uuid.UUID        { return b.rec.ConsumerID }
func (b *Booking) ProviderID() uuid.UUID        { return b.rec.ProviderID }
func (b *Booking) ListingID() uuid.UUID         { return b.rec.ListingID }
func (b *Booking) Status() Status               { return b.rec.Status }
func (b *Booking) PaymentStatus() PaymentStatus { return b.rec.PaymentStatus }
func (b *Booking) ScheduledAt() time.Time       { return b.rec.ScheduledAt }
func (b *Booking) Price() Price                 { return b.rec.Price }
func (b *Booking) Currency() string             { return b.rec.Currency }
func (b *Booking) PaymentReference() string     { return b.rec.PaymentReference }
func (b *Booking) RefundedTotal() Money         { return b.rec.RefundedTotal }
func (b *Booking) Version() int64               { return b.rec.Version }
func (b *Booking) UpdatedAt() time.Time         { return b.rec.UpdatedAt }

func (b *Booking) State() State {
	return State{Status: b.rec.Status, PaymentStatus: b.rec.PaymentStatus, Version: b.rec.Version}
}

// MarkPersisted records the version written by a successful conditional update.
func (b *Booking) MarkPersisted(version int64) {
	b.rec.Version = version
}

func (b *Booking) IsParticipant(userID uuid.UUID) bool {
	return userID == b.rec.ConsumerID || userID == b.rec.ProviderID
}

func (b *Booking) CanView(actor identity.Actor) bool {
	return actor.IsAdmin() || b.IsParticipant(actor.ID)
}

// AttachPaymentReference sets the gateway reference once.
func (b *Booking) AttachPaymentReference(ref string) error {
	if ref == "" {
		return ErrInvalidPaymentReference
	}
	if b.rec.PaymentReference != "" && b.rec.PaymentReference != ref {
		return ErrPaymentReferenceImmutable
	}
	b.rec.PaymentReference = ref
	return nil
}

func (b *Booking) Accept(actor identity.Actor, now time.Time) error {
	if err := b.requireProvider(actor); err != nil {
		return err
	}
	return b.transition(StatusAccepted, b.rec.PaymentStatus, now)
}

func (b *Booking) Start(actor identity.Actor, now time.Time) error {
	if err := b.requireProvider(actor); err != nil {
		return err
	}
	return b.transition(StatusInProgress, b.rec.PaymentStatus, now)
}

func (b *Booking) Complete(actor identity.Actor, now time.Time) error {
	if err := b.requireProvider(actor); err != nil {
		return err
	}
	return b.transition(StatusCompleted, b.rec.PaymentStatus, now)
}

// NeedsCapture reports whether held funds are waiting to be captured.
func (b *Booking) NeedsCapture() bool {
	return b.rec.Status == StatusCompleted && b.rec.PaymentStatus == PaymentAuthorized
}

// Cancel moves a non-terminal booking to cancelled. An authorization that
// never completed is voided.
func (b *Booking) Cancel(actor identity.Actor, reason string, now time.Time) error {
	if !b.CanView(actor) {
		return ErrForbidden
	}
	pay := b.rec.PaymentStatus
	if pay == PaymentPending {
		pay = PaymentFailed
	}
	if err := b.transition(StatusCancelled, pay, now); err != nil {
		return err
	}
	if !actor.IsSystem() {
		id := actor.ID
		b.rec.CancelledBy = &id
	}
	b.rec.CancelReason = reason
	return nil
}

// HasRefundableFunds reports whether the gateway holds or has taken money for this booking.
func (b *Booking) HasRefundableFunds() bool {
	switch b.rec.PaymentStatus {
	case PaymentAuthorized, PaymentPaid, PaymentPartiallyRefunded:
		return true
	}
	return false
}

func (b *Booking) ConfirmAuthorization(now time.Time) bool {
	if b.rec.PaymentStatus != PaymentPending {
		return false
	}
	return b.set(b.rec.Status, PaymentAuthorized, now) == nil
}

// FailAuthorization marks the payment failed and cancels the booking. It is
// used both for gateway declines and for authorization timeouts.
func (b *Booking) FailAuthorization(reason string, now time.Time) bool {
	if b.rec.PaymentStatus != PaymentPending {
		return false
	}
	to := b.rec.Status
	if !to.IsTerminal() {
		to = StatusCancelled
	}
	if to != b.rec.Status && !b.rec.Status.CanTransitionTo(to) {
		return false
	}
	if err := b.set(to, PaymentFailed, now); err != nil {
		return false
	}
	b.rec.CancelledBy = nil
	b.rec.CancelReason = reason
	return true
}

// ConfirmCapture applies a capture confirmation. A completed booking becomes
// paid. On a cancelled booking only part of the hold was captured and the
// released rest counts as refunded.
func (b *Booking) ConfirmCapture(captured Money, now time.Time) bool {
	if b.rec.PaymentStatus != PaymentAuthorized {
		return false
	}
	switch b.rec.Status {
	case StatusCompleted:
		return b.set(StatusCompleted, PaymentPaid, now) == nil
	case StatusCancelled:
		total := b.rec.Price.Total
		if captured.Cents() <= 0 || captured.Cents() >= total.Cents() {
			return false
		}
		if err := b.set(StatusCancelled, PaymentPartiallyRefunded, now); err != nil {
			return false
		}
		b.rec.RefundedTotal = total.Sub(captured)
		return true
	}
	return false
}

// ConfirmRefund applies a gateway confirmation carrying the cumulative refunded
// amount. Confirmations that do not advance the refunded total are stale.
func (b *Booking) ConfirmRefund(cumulative Money, now time.Time) bool {
	total := b.rec.Price.Total
	switch b.rec.PaymentStatus {
	case PaymentAuthorized:
		// only a cancelled booking releases its hold
		if b.rec.Status != StatusCancelled {
			return false
		}
		cumulative = total
	case PaymentPaid, PaymentPartiallyRefunded:
		if cumulative.Cents() <= b.rec.RefundedTotal.Cents() {
			return false
		}
		if cumulative.Cents() > total.Cents() {
			cumulative = total
		}
	default:
		return false
	}

	next := PaymentPartiallyRefunded
	if cumulative.Cents() >= total.Cents() {
		next = PaymentRefunded
	}
	if err := b.set(b.rec.Status, next, now); err != nil {
		return false
	}
	b.rec.RefundedTotal = cumulative
	return true
}

// CheckCapturable guards an explicit capture request.
func (b *Booking) CheckCapturable(actor identity.Actor) error {
	if !actor.IsSystem() && actor.ID != b.rec.ProviderID {
		return ErrForbidden
	}
	if !b.NeedsCapture() {
		return ErrPaymentNotCapturable
	}
	return nil
}

func (b *Booking) AuthorizeRefund(actor identity.Actor) error {
	if actor.IsAdmin() || actor.ID == b.rec.ProviderID {
		return nil
	}
	return ErrForbidden
}

type RefundPlan struct {
	Amount Money
	// Release returns part or all of an uncaptured hold instead of refunding
	// a charge. Whatever is not released is captured.
	Release bool
	Capture Money
}

// PlanRefund decides what to ask the gateway for. requested is the sum of refunds
// already requested for this booking, confirmed or not.
func (b *Booking) PlanRefund(amount *Money, requested Money) (RefundPlan, error) {
	if !b.rec.Status.IsTerminal() {
		return RefundPlan{}, ErrPaymentNotRefundable
	}
	total := b.rec.Price.Total

	switch b.rec.PaymentStatus {
	case PaymentAuthorized:
		// a hold on a completed booking is settled by its capture
		if b.rec.Status != StatusCancelled || requested.Cents() > 0 {
			return RefundPlan{}, ErrPaymentNotRefundable
		}
		if amount == nil || amount.Cents() == total.Cents() {
			return RefundPlan{Amount: total, Release: true}, nil
		}
		if amount.Cents() <= 0 || amount.Cents() > total.Cents() {
			return RefundPlan{}, ErrInvalidAmount
		}
		return RefundPlan{Amount: *amount, Release: true, Capture: total.Sub(*amount)}, nil
	case PaymentPaid, PaymentPartiallyRefunded:
		remaining := total.Sub(requested)
		if remaining.Cents() <= 0 {
			return RefundPlan{}, ErrPaymentNotRefundable
		}
		if amount == nil {
			return RefundPlan{Amount: remaining}, nil
		}
		if amount.Cents() <= 0 || amount.Cents() > remaining.Cents() {
			return RefundPlan{}, ErrInvalidAmount
		}
		return RefundPlan{Amount: *amount}, nil
	default:
		return RefundPlan{}, ErrPaymentNotRefundable
	}
}

func (b *Booking) requireProvider(actor identity.Actor) error {
	if actor.ID != b.rec.ProviderID {
		return ErrForbidden
	}
	return nil
}

func (b *Booking) transition(to Status, pay PaymentStatus, now time.Time) error {
	if !b.rec.Status.CanTransitionTo(to) {
		return errs.Wrapf(ErrInvalidTransition, "%s -> %s", b.rec.Status, to)
	}
	return b.set(to, pay, now)
}

func (b *Booking) set(to Status, pay PaymentStatus, now time.Time) error {
	if pay != b.rec.PaymentStatus && !b.rec.PaymentStatus.CanTransitionTo(pay) {
		return errs.Wrapf(ErrInvalidTransition, "payment %s -> %s", b.rec.PaymentStatus, pay)
	}
	if !Compatible(to, pay) {
		return errs.Wrapf(ErrInvalidTransition, "%s is not allowed with payment %s", to, pay)
	}
	b.rec.Status = to
	b.rec.PaymentStatus = pay
	b.rec.UpdatedAt = now
	return nil
}
