package commands

import (
	"context"
	"log/slog"
	"time"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/domain/pricing"
	"courier-escrow/internal/infra"
	"courier-escrow/internal/pkg/clock"
	"courier-escrow/internal/pkg/errs"
	"courier-escrow/internal/pkg/metrics"
	"courier-escrow/internal/usecase/shared"

	"github.com/google/uuid"
)

type BookingCommands interface {
	Create(ctx context.Context, req CreateBookingRequest, actor identity.Actor) (*CreateBookingResult, error)
	Accept(ctx context.Context, bookingID uuid.UUID, actor identity.Actor) (*TransitionResult, error)
	Start(ctx context.Context, bookingID uuid.UUID, actor identity.Actor) (*TransitionResult, error)
	Complete(ctx context.Context, bookingID uuid.UUID, actor identity.Actor) (*TransitionResult, error)
	Cancel(ctx context.Context, bookingID uuid.UUID, req CancelRequest, actor identity.Actor) (*TransitionResult, error)
}

type bookingUseCaseImpl struct {
	uow      shared.UnitOfWork
	gateway  shared.PaymentGateway
	queue    shared.TaskQueue
	escrow   *EscrowCoordinator
	services *booking.Services
	clock    clock.Clock
	metrics  *metrics.Recorder
	opts     Options
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	gateway shared.PaymentGateway,
	queue shared.TaskQueue,
	escrow *EscrowCoordinator,
	calc pricing.Calculator,
	clk clock.Clock,
	recorder *metrics.Recorder,
	opts Options,
) BookingCommands {
	return &bookingUseCaseImpl{
		uow:      uow,
		gateway:  gateway,
		queue:    queue,
		escrow:   escrow,
		services: &booking.Services{Clock: clk, Pricing: calc},
		clock:    clk,
		metrics:  recorder,
		opts:     opts,
	}
}

// Create prices the booking, obtains a payment authorization and stores the
// booking as pending/pending. No booking is stored without an authorization
// and a scheduled expiry.
func (uc *bookingUseCaseImpl) Create(ctx context.Context, req CreateBookingRequest, actor identity.Actor) (*CreateBookingResult, error) {
	if actor.Role != identity.RoleConsumer {
		return nil, ErrConsumerOnly
	}
	if err := booking.ValidateSchedule(uc.clock.Now(), req.ScheduledAt); err != nil {
		return nil, err
	}
	params, err := uc.bookingParams(req, actor)
	if err != nil {
		return nil, err
	}

	listing, err := uc.uow.CommandReads().ListingByID(ctx, req.ListingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, errs.Wrap(err, "load listing")
	}
	params.Listing = listing.Terms()

	b, err := booking.NewBooking(uc.services, params)
	if err != nil {
		return nil, err
	}

	auth, err := uc.gateway.Authorize(ctx, shared.AuthorizeRequest{
		BookingID:      b.ID(),
		AmountCents:    b.Price().Total.Cents(),
		Currency:       b.Currency(),
		IdempotencyKey: shared.IdempotencyKey(b.ID(), shared.OpAuthorize),
	})
	uc.metrics.GatewayCall(string(shared.OpAuthorize), err)
	if err != nil {
		return nil, errs.WithCause(ErrGatewayUnavailable, err)
	}
	if err := b.AttachPaymentReference(auth.Reference); err != nil {
		return nil, errs.WithCause(ErrGatewayUnavailable, err)
	}

	// expiry is scheduled before the insert; a task for a booking that was
	// never stored finds nothing and does nothing
	if err := uc.queue.EnqueueAuthorizationExpiry(ctx, b.ID(), uc.opts.AuthorizationTimeout); err != nil {
		slog.ErrorContext(ctx, "failed to schedule authorization expiry", "booking_id", b.ID(), "error", err)
		uc.escrow.releaseVoidedHold(ctx, b)
		return nil, errs.WithCause(ErrSchedulingUnavailable, err)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Bookings().Create(ctx, b); err != nil {
			return errs.Wrap(err, "insert booking")
		}
		if err := tx.BookingEvents().Append(ctx, b.EventSince(booking.State{}, actor, "created")); err != nil {
			return errs.Wrap(err, "append booking event")
		}
		return nil
	})
	if err != nil {
		uc.escrow.releaseVoidedHold(ctx, b)
		return nil, err
	}

	uc.metrics.Transition(string(b.Status()), string(b.PaymentStatus()))
	slog.InfoContext(ctx, "booking created",
		"booking_id", b.ID(),
		"consumer_id", b.ConsumerID(),
		"provider_id", b.ProviderID(),
		"price_total", b.Price().Total.Cents(),
	)

	return &CreateBookingResult{
		BookingID:          b.ID(),
		PaymentClientToken: auth.ClientToken,
		Booking:            summarize(b),
	}, nil
}

func (uc *bookingUseCaseImpl) Accept(ctx context.Context, bookingID uuid.UUID, actor identity.Actor) (*TransitionResult, error) {
	b, err := uc.transition(ctx, bookingID, actor, "accepted", func(_ shared.Tx, b *booking.Booking, now time.Time) error {
		return b.Accept(actor, now)
	})
	if err != nil {
		return nil, err
	}
	return &TransitionResult{Booking: summarize(b)}, nil
}

func (uc *bookingUseCaseImpl) Start(ctx context.Context, bookingID uuid.UUID, actor identity.Actor) (*TransitionResult, error) {
	b, err := uc.transition(ctx, bookingID, actor, "started", func(_ shared.Tx, b *booking.Booking, now time.Time) error {
		return b.Start(actor, now)
	})
	if err != nil {
		return nil, err
	}
	return &TransitionResult{Booking: summarize(b)}, nil
}

// Complete finishes the booking and then requests capture of the held funds.
func (uc *bookingUseCaseImpl) Complete(ctx context.Context, bookingID uuid.UUID, actor identity.Actor) (*TransitionResult, error) {
	b, err := uc.transition(ctx, bookingID, actor, "completed", func(_ shared.Tx, b *booking.Booking, now time.Time) error {
		return b.Complete(actor, now)
	})
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Booking: summarize(b)}
	if b.NeedsCapture() {
		effect := uc.escrow.requestCapture(ctx, b)
		result.Payment = &effect
	}
	return result, nil
}

// Cancel cancels the booking. Held or captured funds are refunded in full
// unless a partial amount is given; a pending authorization is voided.
func (uc *bookingUseCaseImpl) Cancel(ctx context.Context, bookingID uuid.UUID, req CancelRequest, actor identity.Actor) (*TransitionResult, error) {
	amount, err := optionalMoney(req.RefundAmountCents)
	if err != nil {
		return nil, err
	}

	var (
		refund    shared.RefundRecord
		hasRefund bool
		voided    bool
	)
	b, err := uc.transition(ctx, bookingID, actor, "cancelled", func(tx shared.Tx, b *booking.Booking, now time.Time) error {
		refund, hasRefund, voided = shared.RefundRecord{}, false, false
		wasPending := b.PaymentStatus() == booking.PaymentPending
		if err := b.Cancel(actor, req.Reason, now); err != nil {
			return err
		}
		voided = wasPending
		if !b.HasRefundableFunds() {
			return nil
		}
		rec, err := uc.escrow.recordRefund(ctx, tx, b, amount, actor)
		if err != nil {
			return err
		}
		refund, hasRefund = rec, true
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Booking: summarize(b)}
	switch {
	case hasRefund:
		effect := uc.escrow.dispatchRefund(ctx, b, refund)
		result.Payment = &effect
	case voided:
		uc.escrow.releaseVoidedHold(ctx, b)
	}
	return result, nil
}

type mutation func(tx shared.Tx, b *booking.Booking, now time.Time) error

// transition loads the booking, applies fn and writes the result with a
// check-and-set on the state it was loaded in.
func (uc *bookingUseCaseImpl) transition(ctx context.Context, bookingID uuid.UUID, actor identity.Actor, reason string, fn mutation) (*booking.Booking, error) {
	var b *booking.Booking
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		before := b.State()
		if err := fn(tx, b, uc.clock.Now()); err != nil {
			return err
		}
		return persistTransition(ctx, tx, b, before, actor, reason)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.Transition(string(b.Status()), string(b.PaymentStatus()))
	slog.InfoContext(ctx, "booking transitioned",
		"booking_id", b.ID(),
		"status", b.Status(),
		"payment_status", b.PaymentStatus(),
		"actor_id", actor.ID,
		"actor_role", actor.Role,
	)
	return b, nil
}

func (uc *bookingUseCaseImpl) bookingParams(req CreateBookingRequest, actor identity.Actor) (booking.NewBookingParams, error) {
	if req.Dropoff == nil {
		return booking.NewBookingParams{}, booking.ErrInvalidLocation
	}
	dropoff, err := booking.NewLocation(req.Dropoff.Lat, req.Dropoff.Lng, req.Dropoff.Address)
	if err != nil {
		return booking.NewBookingParams{}, err
	}
	var pickup *booking.Location
	if req.Pickup != nil {
		loc, err := booking.NewLocation(req.Pickup.Lat, req.Pickup.Lng, req.Pickup.Address)
		if err != nil {
			return booking.NewBookingParams{}, err
		}
		pickup = &loc
	}
	instructions, err := booking.NewInstructions(req.SpecialInstructions)
	if err != nil {
		return booking.NewBookingParams{}, err
	}

	return booking.NewBookingParams{
		ConsumerID:   actor.ID,
		ScheduledAt:  req.ScheduledAt,
		Pickup:       pickup,
		Dropoff:      &dropoff,
		Instructions: instructions,
		Currency:     uc.opts.Currency,
	}, nil
}
