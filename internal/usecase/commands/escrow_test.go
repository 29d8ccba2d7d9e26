//go:build unit

package commands_test

import (
	"errors"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/usecase/commands"
	"courier-escrow/internal/usecase/shared"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

// ================================================================================
// End to end flows through the webhook processor
// ================================================================================

func (s *CommandsTestSuite) TestFlow_CreateAuthorizeCompleteCapture() {
	res := s.create("pi_flow")
	id := res.BookingID
	s.Equal(flatPrice, res.Booking.PriceTotalCents)

	outcome, err := s.deliver(gatewayEvent(shared.EventAuthorizationSucceeded, "pi_flow"))
	s.Require().NoError(err)
	s.Equal(commands.WebhookApplied, outcome)
	s.assertState(id, booking.StatusPending, booking.PaymentAuthorized)

	_, err = s.bookings.Accept(s.ctx, id, s.provider())
	s.Require().NoError(err)
	_, err = s.bookings.Start(s.ctx, id, s.provider())
	s.Require().NoError(err)

	s.gateway.EXPECT().Capture(gomock.Any(), "pi_flow", flatPrice, shared.IdempotencyKey(id, shared.OpCapture)).Return(nil)
	_, err = s.bookings.Complete(s.ctx, id, s.provider())
	s.Require().NoError(err)
	s.assertState(id, booking.StatusCompleted, booking.PaymentAuthorized)

	outcome, err = s.deliver(gatewayEvent(shared.EventCaptureSucceeded, "pi_flow"))
	s.Require().NoError(err)
	s.Equal(commands.WebhookApplied, outcome)
	s.assertState(id, booking.StatusCompleted, booking.PaymentPaid)

	events := s.store.Events(id)
	s.Require().Len(events, 6)
	last := events[len(events)-1]
	s.Equal(booking.PaymentAuthorized, last.FromPayment)
	s.Equal(booking.PaymentPaid, last.ToPayment)
	s.Nil(last.ActorID)
}

func (s *CommandsTestSuite) TestFlow_CancelAuthorizedRefundsInFull() {
	res := s.create("pi_cancel")
	id := res.BookingID

	_, err := s.deliver(gatewayEvent(shared.EventAuthorizationSucceeded, "pi_cancel"))
	s.Require().NoError(err)
	_, err = s.bookings.Accept(s.ctx, id, s.provider())
	s.Require().NoError(err)

	s.gateway.EXPECT().Release(gomock.Any(), "pi_cancel", shared.IdempotencyKey(id, shared.OpRelease)).Return(nil)
	out, err := s.bookings.Cancel(s.ctx, id, commands.CancelRequest{Reason: "no longer needed"}, s.consumer())
	s.Require().NoError(err)
	s.Equal(flatPrice, out.Payment.AmountCents)
	s.assertState(id, booking.StatusCancelled, booking.PaymentAuthorized)

	outcome, err := s.deliver(refundEvent("pi_cancel", flatPrice))
	s.Require().NoError(err)
	s.Equal(commands.WebhookApplied, outcome)
	s.assertState(id, booking.StatusCancelled, booking.PaymentRefunded)
	s.Equal(flatPrice, s.stored(id).RefundedTotal().Cents())

	rows := s.store.Refunds(id)
	s.Require().Len(rows, 1)
	s.Equal(shared.RefundSucceeded, rows[0].Status)
}

func (s *CommandsTestSuite) TestFlow_AuthorizationExpiry() {
	res := s.create("pi_expire")
	id := res.BookingID

	s.gateway.EXPECT().Release(gomock.Any(), "pi_expire", shared.IdempotencyKey(id, shared.OpRelease)).Return(nil)
	s.Require().NoError(s.escrow.ExpireAuthorization(s.ctx, id))
	s.assertState(id, booking.StatusCancelled, booking.PaymentFailed)
	s.Equal("authorization expired", s.stored(id).Snapshot().CancelReason)

	s.Run("late authorization is a no-op", func() {
		version := s.stored(id).Version()
		outcome, err := s.deliver(gatewayEvent(shared.EventAuthorizationSucceeded, "pi_expire"))
		s.Require().NoError(err)
		s.Equal(commands.WebhookIgnored, outcome)
		s.assertState(id, booking.StatusCancelled, booking.PaymentFailed)
		s.Equal(version, s.stored(id).Version())
	})

	s.Run("second expiry does nothing", func() {
		s.Require().NoError(s.escrow.ExpireAuthorization(s.ctx, id))
		s.assertState(id, booking.StatusCancelled, booking.PaymentFailed)
	})
}

func (s *CommandsTestSuite) TestExpireAuthorization() {
	s.Run("authorized booking is left alone", func() {
		b := s.put(booking.StatusAccepted, booking.PaymentAuthorized)
		s.Require().NoError(s.escrow.ExpireAuthorization(s.ctx, b.ID()))
		s.assertState(b.ID(), booking.StatusAccepted, booking.PaymentAuthorized)
		s.Empty(s.store.Events(b.ID()))
	})

	s.Run("unknown booking is dropped", func() {
		s.NoError(s.escrow.ExpireAuthorization(s.ctx, uuid.New()))
	})

	s.Run("release failure is retried in the background", func() {
		b := s.put(booking.StatusPending, booking.PaymentPending)
		s.gateway.EXPECT().Release(gomock.Any(), b.PaymentReference(), gomock.Any()).Return(errors.New("timeout"))
		s.queue.EXPECT().EnqueuePaymentRetry(gomock.Any(), shared.PaymentRetry{BookingID: b.ID(), Action: shared.ActionRelease}).Return(nil)

		s.Require().NoError(s.escrow.ExpireAuthorization(s.ctx, b.ID()))
		s.assertState(b.ID(), booking.StatusCancelled, booking.PaymentFailed)
	})
}

// ================================================================================
// Capture
// ================================================================================

func (s *CommandsTestSuite) TestCapture() {
	s.Run("success: requests capture without changing state", func() {
		b := s.put(booking.StatusCompleted, booking.PaymentAuthorized)
		s.gateway.EXPECT().Capture(gomock.Any(), b.PaymentReference(), flatPrice, shared.IdempotencyKey(b.ID(), shared.OpCapture)).Return(nil)

		res, err := s.escrow.Capture(s.ctx, b.ID(), s.provider())
		s.Require().NoError(err)
		s.Equal(commands.OutcomeRequested, res.Payment.Outcome)
		s.assertState(b.ID(), booking.StatusCompleted, booking.PaymentAuthorized)
	})

	s.Run("error: gateway failure is reported", func() {
		b := s.put(booking.StatusCompleted, booking.PaymentAuthorized)
		s.gateway.EXPECT().Capture(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("503"))

		_, err := s.escrow.Capture(s.ctx, b.ID(), s.provider())
		s.ErrorIs(err, commands.ErrGatewayUnavailable)
	})

	s.Run("error: nothing to capture", func() {
		for _, pay := range []booking.PaymentStatus{booking.PaymentPaid, booking.PaymentRefunded} {
			b := s.put(booking.StatusCompleted, pay)
			_, err := s.escrow.Capture(s.ctx, b.ID(), s.provider())
			s.ErrorIs(err, booking.ErrPaymentNotCapturable)
		}
	})

	s.Run("error: consumer cannot capture", func() {
		b := s.put(booking.StatusCompleted, booking.PaymentAuthorized)
		_, err := s.escrow.Capture(s.ctx, b.ID(), s.consumer())
		s.ErrorIs(err, booking.ErrForbidden)
	})
}

// ================================================================================
// Refunds
// ================================================================================

func (s *CommandsTestSuite) TestRefund_PartialThenRemainder() {
	b := s.put(booking.StatusCompleted, booking.PaymentPaid)
	ref := b.PaymentReference()
	first := int64(1200)

	s.gateway.EXPECT().Refund(gomock.Any(), ref, first, shared.IdempotencyKey(b.ID(), shared.OpRefund, 1)).Return("re_1", nil)
	res, err := s.escrow.Refund(s.ctx, b.ID(), &first, s.provider())
	s.Require().NoError(err)
	s.Equal(shared.ActionRefund, res.Payment.Action)
	s.Equal(first, res.Payment.AmountCents)
	s.Equal(int64(2), s.stored(b.ID()).Version())

	rows := s.store.Refunds(b.ID())
	s.Require().Len(rows, 1)
	s.Equal("re_1", rows[0].GatewayRefundID)

	outcome, err := s.deliver(refundEvent(ref, first))
	s.Require().NoError(err)
	s.Equal(commands.WebhookApplied, outcome)
	s.assertState(b.ID(), booking.StatusCompleted, booking.PaymentPartiallyRefunded)

	s.Run("over-refund is rejected", func() {
		tooMuch := flatPrice
		_, err := s.escrow.Refund(s.ctx, b.ID(), &tooMuch, s.provider())
		s.ErrorIs(err, booking.ErrInvalidAmount)
		s.Len(s.store.Refunds(b.ID()), 1)
	})

	s.Run("nil amount refunds the remainder", func() {
		remaining := flatPrice - first
		s.gateway.EXPECT().Refund(gomock.Any(), ref, remaining, shared.IdempotencyKey(b.ID(), shared.OpRefund, 2)).Return("re_2", nil)

		res, err := s.escrow.Refund(s.ctx, b.ID(), nil, s.admin())
		s.Require().NoError(err)
		s.Equal(remaining, res.Payment.AmountCents)

		_, err = s.deliver(refundEvent(ref, flatPrice))
		s.Require().NoError(err)
		s.assertState(b.ID(), booking.StatusCompleted, booking.PaymentRefunded)
		for _, row := range s.store.Refunds(b.ID()) {
			s.Equal(shared.RefundSucceeded, row.Status)
		}
	})

	s.Run("fully refunded booking refuses more", func() {
		_, err := s.escrow.Refund(s.ctx, b.ID(), nil, s.provider())
		s.ErrorIs(err, booking.ErrPaymentNotRefundable)
	})
}

func (s *CommandsTestSuite) TestRefund_CompletedHoldWaitsForCapture() {
	b := s.put(booking.StatusCompleted, booking.PaymentAuthorized)
	ref := b.PaymentReference()

	_, err := s.escrow.Refund(s.ctx, b.ID(), nil, s.provider())
	s.ErrorIs(err, booking.ErrPaymentNotRefundable)
	s.Empty(s.store.Refunds(b.ID()))
	s.Equal(int64(1), s.stored(b.ID()).Version())

	outcome, err := s.deliver(captureEvent(ref, flatPrice))
	s.Require().NoError(err)
	s.Equal(commands.WebhookApplied, outcome)
	s.assertState(b.ID(), booking.StatusCompleted, booking.PaymentPaid)

	s.Run("captured payment refunds normally", func() {
		s.gateway.EXPECT().Refund(gomock.Any(), ref, flatPrice, shared.IdempotencyKey(b.ID(), shared.OpRefund, 1)).Return("re_after_capture", nil)

		res, err := s.escrow.Refund(s.ctx, b.ID(), nil, s.provider())
		s.Require().NoError(err)
		s.Equal(shared.ActionRefund, res.Payment.Action)

		rows := s.store.Refunds(b.ID())
		s.Require().Len(rows, 1)
		s.False(rows[0].Release)
	})

	s.Run("capture retry still runs", func() {
		other := s.put(booking.StatusCompleted, booking.PaymentAuthorized)
		_, err := s.escrow.Refund(s.ctx, other.ID(), nil, s.admin())
		s.Require().ErrorIs(err, booking.ErrPaymentNotRefundable)

		s.gateway.EXPECT().Capture(gomock.Any(), other.PaymentReference(), flatPrice, shared.IdempotencyKey(other.ID(), shared.OpCapture)).Return(nil)
		s.NoError(s.escrow.RetryPaymentAction(s.ctx, shared.PaymentRetry{BookingID: other.ID(), Action: shared.ActionCapture}))
	})
}

func (s *CommandsTestSuite) TestFlow_CancelWithPartialRefundOnHold() {
	b := s.put(booking.StatusAccepted, booking.PaymentAuthorized)
	ref := b.PaymentReference()
	back := int64(1000)
	kept := flatPrice - back

	s.gateway.EXPECT().Capture(gomock.Any(), ref, kept, shared.IdempotencyKey(b.ID(), shared.OpCapture)).Return(nil)
	res, err := s.bookings.Cancel(s.ctx, b.ID(), commands.CancelRequest{Reason: "late", RefundAmountCents: &back}, s.consumer())
	s.Require().NoError(err)
	s.Equal(booking.StatusCancelled, res.Booking.Status)
	s.Equal(commands.OutcomeRequested, res.Payment.Outcome)

	outcome, err := s.deliver(captureEvent(ref, kept))
	s.Require().NoError(err)
	s.Equal(commands.WebhookApplied, outcome)
	s.assertState(b.ID(), booking.StatusCancelled, booking.PaymentPartiallyRefunded)
	s.Equal(back, s.stored(b.ID()).RefundedTotal().Cents())

	rows := s.store.Refunds(b.ID())
	s.Require().Len(rows, 1)
	s.Equal(shared.RefundSucceeded, rows[0].Status)

	s.Run("captured part can still be refunded", func() {
		s.gateway.EXPECT().Refund(gomock.Any(), ref, kept, shared.IdempotencyKey(b.ID(), shared.OpRefund, 2)).Return("re_rest", nil)

		res, err := s.escrow.Refund(s.ctx, b.ID(), nil, s.admin())
		s.Require().NoError(err)
		s.Equal(kept, res.Payment.AmountCents)

		_, err = s.deliver(refundEvent(ref, flatPrice))
		s.Require().NoError(err)
		s.assertState(b.ID(), booking.StatusCancelled, booking.PaymentRefunded)
		for _, row := range s.store.Refunds(b.ID()) {
			s.Equal(shared.RefundSucceeded, row.Status)
		}
	})
}

func (s *CommandsTestSuite) TestRetryPaymentAction_PartialRelease() {
	b := s.put(booking.StatusAccepted, booking.PaymentAuthorized)
	back := int64(700)
	s.gateway.EXPECT().Capture(gomock.Any(), b.PaymentReference(), flatPrice-back, gomock.Any()).Return(errors.New("timeout"))

	var retry shared.PaymentRetry
	s.queue.EXPECT().EnqueuePaymentRetry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, r shared.PaymentRetry) error {
			retry = r
			return nil
		})

	res, err := s.bookings.Cancel(s.ctx, b.ID(), commands.CancelRequest{RefundAmountCents: &back}, s.provider())
	s.Require().NoError(err)
	s.Equal(commands.OutcomeRetryScheduled, res.Payment.Outcome)
	s.Equal(shared.ActionRelease, retry.Action)

	s.gateway.EXPECT().Capture(gomock.Any(), b.PaymentReference(), flatPrice-back, shared.IdempotencyKey(b.ID(), shared.OpCapture)).Return(nil)
	s.NoError(s.escrow.RetryPaymentAction(s.ctx, retry))
}

func (s *CommandsTestSuite) TestRefund_Guards() {
	cases := []struct {
		name    string
		status  booking.Status
		payment booking.PaymentStatus
		actor   func() identity.Actor
		errIs   error
	}{
		{"consumer cannot refund", booking.StatusCompleted, booking.PaymentPaid, s.consumer, booking.ErrForbidden},
		{"active booking", booking.StatusInProgress, booking.PaymentAuthorized, s.provider, booking.ErrPaymentNotRefundable},
		{"failed payment", booking.StatusCancelled, booking.PaymentFailed, s.provider, booking.ErrPaymentNotRefundable},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			b := s.put(tc.status, tc.payment)
			_, err := s.escrow.Refund(s.ctx, b.ID(), nil, tc.actor())
			s.ErrorIs(err, tc.errIs)
			s.Empty(s.store.Refunds(b.ID()))
			s.Equal(int64(1), s.stored(b.ID()).Version())
		})
	}
}

func (s *CommandsTestSuite) TestRefund_GatewayFailureEnqueuesRetry() {
	b := s.put(booking.StatusCompleted, booking.PaymentPaid)
	s.gateway.EXPECT().Refund(gomock.Any(), gomock.Any(), flatPrice, gomock.Any()).Return("", errors.New("timeout"))

	var retry shared.PaymentRetry
	s.queue.EXPECT().EnqueuePaymentRetry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, r shared.PaymentRetry) error {
			retry = r
			return nil
		})

	res, err := s.escrow.Refund(s.ctx, b.ID(), nil, s.provider())
	s.Require().NoError(err)
	s.Equal(commands.OutcomeRetryScheduled, res.Payment.Outcome)
	s.NotEmpty(res.Payment.Detail)

	rows := s.store.Refunds(b.ID())
	s.Require().Len(rows, 1)
	s.Equal(rows[0].ID, retry.RefundID)

	s.Run("retry reuses the ledger key", func() {
		s.gateway.EXPECT().Refund(gomock.Any(), b.PaymentReference(), flatPrice, rows[0].IdempotencyKey).Return("re_retry", nil)
		s.Require().NoError(s.escrow.RetryPaymentAction(s.ctx, retry))
		s.Equal("re_retry", s.store.Refunds(b.ID())[0].GatewayRefundID)
	})

	s.Run("retry after confirmation is skipped", func() {
		_, err := s.deliver(refundEvent(b.PaymentReference(), flatPrice))
		s.Require().NoError(err)
		s.NoError(s.escrow.RetryPaymentAction(s.ctx, retry))
	})
}

// ================================================================================
// RetryPaymentAction
// ================================================================================

func (s *CommandsTestSuite) TestRetryPaymentAction_Capture() {
	s.Run("captures while still needed", func() {
		b := s.put(booking.StatusCompleted, booking.PaymentAuthorized)
		s.gateway.EXPECT().Capture(gomock.Any(), b.PaymentReference(), flatPrice, shared.IdempotencyKey(b.ID(), shared.OpCapture)).Return(nil)
		s.NoError(s.escrow.RetryPaymentAction(s.ctx, shared.PaymentRetry{BookingID: b.ID(), Action: shared.ActionCapture}))
	})

	s.Run("skips once paid", func() {
		b := s.put(booking.StatusCompleted, booking.PaymentPaid)
		s.NoError(s.escrow.RetryPaymentAction(s.ctx, shared.PaymentRetry{BookingID: b.ID(), Action: shared.ActionCapture}))
	})

	s.Run("surfaces gateway errors for the queue to retry", func() {
		b := s.put(booking.StatusCompleted, booking.PaymentAuthorized)
		s.gateway.EXPECT().Capture(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("still down"))
		s.Error(s.escrow.RetryPaymentAction(s.ctx, shared.PaymentRetry{BookingID: b.ID(), Action: shared.ActionCapture}))
	})
}

func (s *CommandsTestSuite) TestComplete_CaptureFailureSchedulesRetry() {
	b := s.put(booking.StatusInProgress, booking.PaymentAuthorized)
	s.gateway.EXPECT().Capture(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("timeout"))
	s.queue.EXPECT().EnqueuePaymentRetry(gomock.Any(), shared.PaymentRetry{BookingID: b.ID(), Action: shared.ActionCapture}).Return(nil)

	res, err := s.bookings.Complete(s.ctx, b.ID(), s.provider())
	s.Require().NoError(err)
	s.Equal(booking.StatusCompleted, res.Booking.Status)
	s.Equal(commands.OutcomeRetryScheduled, res.Payment.Outcome)
	s.assertState(b.ID(), booking.StatusCompleted, booking.PaymentAuthorized)
}

func (s *CommandsTestSuite) TestComplete_EnqueueFailureReportsFailed() {
	b := s.put(booking.StatusInProgress, booking.PaymentAuthorized)
	s.gateway.EXPECT().Capture(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("timeout"))
	s.queue.EXPECT().EnqueuePaymentRetry(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	res, err := s.bookings.Complete(s.ctx, b.ID(), s.provider())
	s.Require().NoError(err)
	s.Equal(commands.OutcomeFailed, res.Payment.Outcome)
	s.assertState(b.ID(), booking.StatusCompleted, booking.PaymentAuthorized)
}
