package commands

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/infra"
	"courier-escrow/internal/pkg/clock"
	"courier-escrow/internal/pkg/errs"
	"courier-escrow/internal/pkg/metrics"
	"courier-escrow/internal/pkg/ptr"
	"courier-escrow/internal/usecase/shared"

	"github.com/google/uuid"
)

type EscrowCommands interface {
	Capture(ctx context.Context, bookingID uuid.UUID, actor identity.Actor) (*TransitionResult, error)
	Refund(ctx context.Context, bookingID uuid.UUID, amountCents *int64, actor identity.Actor) (*TransitionResult, error)
}

// EscrowCoordinator keeps the booking's payment status in step with the gateway.
type EscrowCoordinator struct {
	uow     shared.UnitOfWork
	gateway shared.PaymentGateway
	queue   shared.TaskQueue
	clock   clock.Clock
	metrics *metrics.Recorder
}

func NewEscrowCoordinator(
	uow shared.UnitOfWork,
	gateway shared.PaymentGateway,
	queue shared.TaskQueue,
	clk clock.Clock,
	recorder *metrics.Recorder,
) *EscrowCoordinator {
	return &EscrowCoordinator{
		uow:     uow,
		gateway: gateway,
		queue:   queue,
		clock:   clk,
		metrics: recorder,
	}
}

// Capture requests capture of held funds on a completed booking. The payment
// becomes paid only when the gateway confirms.
func (e *EscrowCoordinator) Capture(ctx context.Context, bookingID uuid.UUID, actor identity.Actor) (*TransitionResult, error) {
	b, err := e.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.CheckCapturable(actor); err != nil {
		return nil, err
	}

	err = e.gateway.Capture(ctx, b.PaymentReference(), b.Price().Total.Cents(), shared.IdempotencyKey(b.ID(), shared.OpCapture))
	e.metrics.GatewayCall(string(shared.OpCapture), err)
	if err != nil {
		return nil, errs.WithCause(ErrGatewayUnavailable, err)
	}
	return &TransitionResult{
		Booking: summarize(b),
		Payment: &PaymentEffect{Action: shared.ActionCapture, AmountCents: b.Price().Total.Cents(), Outcome: OutcomeRequested},
	}, nil
}

// Refund records a refund in the ledger and asks the gateway for it. A nil
// amount refunds whatever has not been refunded yet.
func (e *EscrowCoordinator) Refund(ctx context.Context, bookingID uuid.UUID, amountCents *int64, actor identity.Actor) (*TransitionResult, error) {
	amount, err := optionalMoney(amountCents)
	if err != nil {
		return nil, err
	}

	var (
		b   *booking.Booking
		rec shared.RefundRecord
	)
	err = e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := b.AuthorizeRefund(actor); err != nil {
			return err
		}
		before := b.State()
		rec, err = e.recordRefund(ctx, tx, b, amount, actor)
		if err != nil {
			return err
		}
		// bump the version so concurrent refund requests cannot both pass the ledger check
		return updateState(ctx, tx, b, before)
	})
	if err != nil {
		return nil, err
	}

	effect := e.dispatchRefund(ctx, b, rec)
	return &TransitionResult{Booking: summarize(b), Payment: &effect}, nil
}

// ExpireAuthorization cancels a booking whose authorization never completed.
// It does nothing once the payment has left pending.
func (e *EscrowCoordinator) ExpireAuthorization(ctx context.Context, bookingID uuid.UUID) error {
	var (
		b       *booking.Booking
		applied bool
	)
	err := e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		before := b.State()
		if !b.FailAuthorization("authorization expired", e.clock.Now()) {
			return nil
		}
		applied = true
		return persistTransition(ctx, tx, b, before, identity.System, "authorization_expired")
	})
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			slog.WarnContext(ctx, "authorization expiry for unknown booking", "booking_id", bookingID)
			return nil
		}
		return err
	}
	if !applied {
		return nil
	}

	e.recordTransition(ctx, b, "authorization_expired")
	e.releaseVoidedHold(ctx, b)
	return nil
}

// RetryPaymentAction repeats a gateway call that failed after its transition
// committed. It re-checks the booking first so a retry never overtakes a confirmation.
func (e *EscrowCoordinator) RetryPaymentAction(ctx context.Context, retry shared.PaymentRetry) error {
	b, err := e.load(ctx, retry.BookingID)
	if err != nil {
		return err
	}

	switch retry.Action {
	case shared.ActionCapture:
		if !b.NeedsCapture() {
			return nil
		}
		err = e.gateway.Capture(ctx, b.PaymentReference(), b.Price().Total.Cents(), shared.IdempotencyKey(b.ID(), shared.OpCapture))
		e.metrics.GatewayCall(string(shared.OpCapture), err)
		return err
	case shared.ActionRelease, shared.ActionRefund:
		if retry.RefundID == uuid.Nil {
			if b.PaymentStatus() != booking.PaymentFailed {
				return nil
			}
			err = e.gateway.Release(ctx, b.PaymentReference(), shared.IdempotencyKey(b.ID(), shared.OpRelease))
			e.metrics.GatewayCall(string(shared.OpRelease), err)
			return err
		}
		rec, err := e.findRefund(ctx, b.ID(), retry.RefundID)
		if err != nil {
			return err
		}
		if rec.Status == shared.RefundSucceeded {
			return nil
		}
		return e.callRefund(ctx, b, rec)
	default:
		slog.WarnContext(ctx, "unknown payment retry action", "booking_id", retry.BookingID, "action", retry.Action)
		return nil
	}
}

// ApplyGatewayEvent applies a verified gateway notification inside tx. Events
// that no longer match the booking's state are stale and change nothing.
func (e *EscrowCoordinator) ApplyGatewayEvent(ctx context.Context, tx shared.Tx, ev *shared.GatewayEvent) (bool, error) {
	b, err := tx.Bookings().FindByPaymentReference(ctx, ev.PaymentReference)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			if ev.BookingID == uuid.Nil {
				slog.InfoContext(ctx, "gateway event for a payment without a booking",
					"event_id", ev.ID,
					"kind", ev.Kind,
					"payment_reference", ev.PaymentReference,
				)
				return false, nil
			}
			// the booking insert may not be visible yet
			return false, errs.Wrapf(ErrBookingNotFound, "payment reference %s", ev.PaymentReference)
		}
		return false, errs.Wrap(err, "find booking by payment reference")
	}

	now := e.clock.Now()
	before := b.State()
	refundedBefore := b.RefundedTotal()
	var applied bool
	switch ev.Kind {
	case shared.EventAuthorizationSucceeded:
		applied = b.ConfirmAuthorization(now)
	case shared.EventAuthorizationFailed:
		reason := ev.FailureReason
		if reason == "" {
			reason = "authorization failed"
		}
		applied = b.FailAuthorization(reason, now)
	case shared.EventCaptureSucceeded:
		applied = b.ConfirmCapture(booking.MoneyFromCents(ev.AmountCents), now)
	case shared.EventRefundSucceeded:
		applied = b.ConfirmRefund(booking.MoneyFromCents(ev.AmountCents), now)
	}
	if !applied {
		slog.InfoContext(ctx, "stale gateway event",
			"event_id", ev.ID,
			"kind", ev.Kind,
			"booking_id", b.ID(),
			"status", b.Status(),
			"payment_status", b.PaymentStatus(),
		)
		return false, nil
	}

	if b.RefundedTotal() != refundedBefore {
		if err := settleLedger(ctx, tx, b, now); err != nil {
			return false, err
		}
	}
	if err := persistTransition(ctx, tx, b, before, identity.System, string(ev.Kind)); err != nil {
		return false, err
	}
	e.recordTransition(ctx, b, string(ev.Kind))
	return true, nil
}

func (e *EscrowCoordinator) recordRefund(ctx context.Context, tx shared.Tx, b *booking.Booking, amount *booking.Money, actor identity.Actor) (shared.RefundRecord, error) {
	rows, err := tx.Refunds().ListByBooking(ctx, b.ID())
	if err != nil {
		return shared.RefundRecord{}, errs.Wrap(err, "list refunds")
	}
	plan, err := b.PlanRefund(amount, booking.MoneyFromCents(shared.RequestedTotal(rows)))
	if err != nil {
		return shared.RefundRecord{}, err
	}

	now := e.clock.Now()
	seq := len(rows) + 1
	key := shared.IdempotencyKey(b.ID(), shared.OpRefund, seq)
	switch {
	case plan.Release && !plan.Capture.IsZero():
		key = shared.IdempotencyKey(b.ID(), shared.OpCapture)
	case plan.Release:
		key = shared.IdempotencyKey(b.ID(), shared.OpRelease)
	}
	rec := shared.RefundRecord{
		ID:             uuid.New(),
		BookingID:      b.ID(),
		Sequence:       seq,
		AmountCents:    plan.Amount.Cents(),
		Release:        plan.Release,
		IdempotencyKey: key,
		Status:         shared.RefundRequested,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if !actor.IsSystem() {
		rec.RequestedBy = ptr.Of(actor.ID)
	}
	if err := tx.Refunds().Create(ctx, rec); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return shared.RefundRecord{}, ErrConflict
		}
		return shared.RefundRecord{}, errs.Wrap(err, "create refund")
	}
	return rec, nil
}

// dispatchRefund calls the gateway for a committed ledger row and falls back to the retry queue.
func (e *EscrowCoordinator) dispatchRefund(ctx context.Context, b *booking.Booking, rec shared.RefundRecord) PaymentEffect {
	action := shared.ActionRefund
	if rec.Release {
		action = shared.ActionRelease
	}
	effect := PaymentEffect{Action: action, AmountCents: rec.AmountCents, Outcome: OutcomeRequested}

	if err := e.callRefund(ctx, b, rec); err != nil {
		return e.scheduleRetry(ctx, effect, shared.PaymentRetry{BookingID: b.ID(), Action: action, RefundID: rec.ID}, err)
	}
	return effect
}

func (e *EscrowCoordinator) callRefund(ctx context.Context, b *booking.Booking, rec shared.RefundRecord) error {
	// a partial release captures the part of the hold that is kept
	if keep := b.Price().Total.Cents() - rec.AmountCents; rec.Release && keep > 0 {
		err := e.gateway.Capture(ctx, b.PaymentReference(), keep, rec.IdempotencyKey)
		e.metrics.GatewayCall(string(shared.OpCapture), err)
		return err
	}
	if rec.Release {
		err := e.gateway.Release(ctx, b.PaymentReference(), rec.IdempotencyKey)
		e.metrics.GatewayCall(string(shared.OpRelease), err)
		return err
	}

	gatewayID, err := e.gateway.Refund(ctx, b.PaymentReference(), rec.AmountCents, rec.IdempotencyKey)
	e.metrics.GatewayCall(string(shared.OpRefund), err)
	if err != nil {
		return err
	}
	if gatewayID == "" || gatewayID == rec.GatewayRefundID {
		return nil
	}
	err = e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Refunds().AttachGatewayID(ctx, rec.ID, gatewayID)
	})
	if err != nil {
		// the refund went through; only the reference is missing from the ledger
		slog.WarnContext(ctx, "failed to store gateway refund id", "refund_id", rec.ID, "error", err)
	}
	return nil
}

// requestCapture asks for capture after the completing transition committed.
func (e *EscrowCoordinator) requestCapture(ctx context.Context, b *booking.Booking) PaymentEffect {
	effect := PaymentEffect{Action: shared.ActionCapture, AmountCents: b.Price().Total.Cents(), Outcome: OutcomeRequested}
	err := e.gateway.Capture(ctx, b.PaymentReference(), b.Price().Total.Cents(), shared.IdempotencyKey(b.ID(), shared.OpCapture))
	e.metrics.GatewayCall(string(shared.OpCapture), err)
	if err != nil {
		return e.scheduleRetry(ctx, effect, shared.PaymentRetry{BookingID: b.ID(), Action: shared.ActionCapture}, err)
	}
	return effect
}

// releaseVoidedHold frees an authorization that will never be used. Failures
// only delay the release, so they are retried in the background.
func (e *EscrowCoordinator) releaseVoidedHold(ctx context.Context, b *booking.Booking) {
	if b.PaymentReference() == "" {
		return
	}
	err := e.gateway.Release(ctx, b.PaymentReference(), shared.IdempotencyKey(b.ID(), shared.OpRelease))
	e.metrics.GatewayCall(string(shared.OpRelease), err)
	if err != nil {
		e.scheduleRetry(ctx, PaymentEffect{Action: shared.ActionRelease}, shared.PaymentRetry{BookingID: b.ID(), Action: shared.ActionRelease}, err)
	}
}

func (e *EscrowCoordinator) scheduleRetry(ctx context.Context, effect PaymentEffect, retry shared.PaymentRetry, cause error) PaymentEffect {
	slog.WarnContext(ctx, "gateway call failed, scheduling retry",
		"booking_id", retry.BookingID,
		"action", retry.Action,
		"error", cause,
	)
	effect.Detail = cause.Error()
	if err := e.queue.EnqueuePaymentRetry(ctx, retry); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue payment retry",
			"booking_id", retry.BookingID,
			"action", retry.Action,
			"error", err,
		)
		effect.Outcome = OutcomeFailed
		return effect
	}
	effect.Outcome = OutcomeRetryScheduled
	return effect
}

func (e *EscrowCoordinator) load(ctx context.Context, bookingID uuid.UUID) (*booking.Booking, error) {
	var b *booking.Booking
	err := e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = loadBooking(ctx, tx, bookingID)
		return err
	})
	return b, err
}

func (e *EscrowCoordinator) findRefund(ctx context.Context, bookingID, refundID uuid.UUID) (shared.RefundRecord, error) {
	var found *shared.RefundRecord
	err := e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		rows, err := tx.Refunds().ListByBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		for i := range rows {
			if rows[i].ID == refundID {
				found = &rows[i]
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return shared.RefundRecord{}, err
	}
	if found == nil {
		return shared.RefundRecord{}, errs.NotFound("refund not found")
	}
	return *found, nil
}

func (e *EscrowCoordinator) recordTransition(ctx context.Context, b *booking.Booking, reason string) {
	e.metrics.Transition(string(b.Status()), string(b.PaymentStatus()))
	slog.InfoContext(ctx, "booking transitioned",
		"booking_id", b.ID(),
		"status", b.Status(),
		"payment_status", b.PaymentStatus(),
		"reason", reason,
	)
}

// settleLedger marks requested refunds as succeeded, oldest first, up to the
// cumulative amount the gateway confirmed.
func settleLedger(ctx context.Context, tx shared.Tx, b *booking.Booking, now time.Time) error {
	rows, err := tx.Refunds().ListByBooking(ctx, b.ID())
	if err != nil {
		return errs.Wrap(err, "list refunds")
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Sequence < rows[j].Sequence })

	confirmed := b.RefundedTotal().Cents()
	var running int64
	for _, r := range rows {
		running += r.AmountCents
		if running > confirmed {
			break
		}
		if r.Status == shared.RefundSucceeded {
			continue
		}
		if err := tx.Refunds().MarkSucceeded(ctx, r.ID, now); err != nil {
			return errs.Wrap(err, "mark refund succeeded")
		}
	}
	return nil
}

func loadBooking(ctx context.Context, tx shared.Tx, id uuid.UUID) (*booking.Booking, error) {
	b, err := tx.Bookings().FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Wrap(err, "find booking")
	}
	return b, nil
}

func updateState(ctx context.Context, tx shared.Tx, b *booking.Booking, before booking.State) error {
	if err := tx.Bookings().UpdateState(ctx, b, before); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return ErrConflict
		}
		return errs.Wrap(err, "update booking state")
	}
	return nil
}

// persistTransition writes the guarded update and its audit row in tx.
func persistTransition(ctx context.Context, tx shared.Tx, b *booking.Booking, before booking.State, actor identity.Actor, reason string) error {
	if err := updateState(ctx, tx, b, before); err != nil {
		return err
	}
	if err := tx.BookingEvents().Append(ctx, b.EventSince(before, actor, reason)); err != nil {
		return errs.Wrap(err, "append booking event")
	}
	return nil
}

func optionalMoney(cents *int64) (*booking.Money, error) {
	if cents == nil {
		return nil, nil
	}
	m, err := booking.NewMoney(*cents)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
