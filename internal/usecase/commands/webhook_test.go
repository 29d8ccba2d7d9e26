//go:build unit

package commands_test

import (
	"errors"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/usecase/commands"
	"courier-escrow/internal/usecase/shared"
	"courier-escrow/tests/common/memstore"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

func (s *CommandsTestSuite) TestWebhook_ReplayAppliesOnce() {
	b := s.put(booking.StatusPending, booking.PaymentPending)
	ev := gatewayEvent(shared.EventAuthorizationSucceeded, b.PaymentReference())

	outcome, err := s.deliver(ev)
	s.Require().NoError(err)
	s.Equal(commands.WebhookApplied, outcome)

	outcome, err = s.deliver(ev)
	s.Require().NoError(err)
	s.Equal(commands.WebhookDuplicate, outcome)

	s.assertState(b.ID(), booking.StatusPending, booking.PaymentAuthorized)
	s.Len(s.store.Events(b.ID()), 1)
	s.Equal(1, s.store.WebhookCount())
}

func (s *CommandsTestSuite) TestWebhook_ReorderedEventsKeepPaymentMonotonic() {
	b := s.put(booking.StatusCompleted, booking.PaymentPaid)
	ref := b.PaymentReference()

	// an authorization notice arriving after capture changes nothing
	outcome, err := s.deliver(gatewayEvent(shared.EventAuthorizationSucceeded, ref))
	s.Require().NoError(err)
	s.Equal(commands.WebhookIgnored, outcome)

	outcome, err = s.deliver(gatewayEvent(shared.EventAuthorizationFailed, ref))
	s.Require().NoError(err)
	s.Equal(commands.WebhookIgnored, outcome)

	_, err = s.deliver(refundEvent(ref, flatPrice))
	s.Require().NoError(err)
	s.assertState(b.ID(), booking.StatusCompleted, booking.PaymentRefunded)

	for _, kind := range []shared.GatewayEventKind{
		shared.EventAuthorizationSucceeded,
		shared.EventCaptureSucceeded,
		shared.EventAuthorizationFailed,
	} {
		outcome, err := s.deliver(gatewayEvent(kind, ref))
		s.Require().NoError(err)
		s.Equal(commands.WebhookIgnored, outcome, string(kind))
	}
	s.assertState(b.ID(), booking.StatusCompleted, booking.PaymentRefunded)

	// a smaller cumulative refund is older news
	outcome, err = s.deliver(refundEvent(ref, 100))
	s.Require().NoError(err)
	s.Equal(commands.WebhookIgnored, outcome)
	s.Equal(flatPrice, s.stored(b.ID()).RefundedTotal().Cents())
}

func (s *CommandsTestSuite) TestWebhook_AuthorizationFailedCancels() {
	b := s.put(booking.StatusAccepted, booking.PaymentPending)
	ev := gatewayEvent(shared.EventAuthorizationFailed, b.PaymentReference())
	ev.FailureReason = "card declined"

	outcome, err := s.deliver(ev)
	s.Require().NoError(err)
	s.Equal(commands.WebhookApplied, outcome)
	s.assertState(b.ID(), booking.StatusCancelled, booking.PaymentFailed)
	s.Equal("card declined", s.stored(b.ID()).Snapshot().CancelReason)
}

func (s *CommandsTestSuite) TestWebhook_Ignored() {
	s.Run("unknown type", func() {
		outcome, err := s.deliver(gatewayEvent(shared.EventUnknown, "pi_whatever"))
		s.Require().NoError(err)
		s.Equal(commands.WebhookIgnored, outcome)
	})

	s.Run("no payment reference", func() {
		outcome, err := s.deliver(gatewayEvent(shared.EventCaptureSucceeded, ""))
		s.Require().NoError(err)
		s.Equal(commands.WebhookIgnored, outcome)
	})

	s.Zero(s.store.WebhookCount())
}

func (s *CommandsTestSuite) TestWebhook_UntaggedForeignPaymentIsRecordedAndIgnored() {
	ev := gatewayEvent(shared.EventCaptureSucceeded, "pi_from_another_service")

	outcome, err := s.deliver(ev)
	s.Require().NoError(err)
	s.Equal(commands.WebhookIgnored, outcome)
	s.Equal(1, s.store.WebhookCount())

	outcome, err = s.deliver(ev)
	s.Require().NoError(err)
	s.Equal(commands.WebhookDuplicate, outcome)
}

func (s *CommandsTestSuite) TestWebhook_Errors() {
	s.Run("bad signature is not retryable", func() {
		s.gateway.EXPECT().VerifyEvent(gomock.Any(), gomock.Any()).Return(nil, shared.ErrInvalidSignature)

		_, err := s.webhooks.HandlePaymentEvent(s.ctx, []byte(`{}`), "bogus")
		s.ErrorIs(err, shared.ErrInvalidSignature)
		s.NotErrorIs(err, commands.ErrWebhookRetryable)
	})

	s.Run("unknown payment reference of a tagged booking is retryable", func() {
		ev := gatewayEvent(shared.EventAuthorizationSucceeded, "pi_not_yet_visible")
		ev.BookingID = uuid.New()

		_, err := s.deliver(ev)
		s.ErrorIs(err, commands.ErrWebhookRetryable)
		s.Zero(s.store.WebhookCount())
	})

	s.Run("storage failure rolls back the effect", func() {
		b := s.put(booking.StatusPending, booking.PaymentPending)
		s.store.FailOn(memstore.OpWebhookRecord, errors.New("connection reset"))

		ev := gatewayEvent(shared.EventAuthorizationSucceeded, b.PaymentReference())
		_, err := s.deliver(ev)
		s.ErrorIs(err, commands.ErrWebhookRetryable)
		s.assertState(b.ID(), booking.StatusPending, booking.PaymentPending)
		s.Empty(s.store.Events(b.ID()))

		s.store.FailOn(memstore.OpWebhookRecord, nil)
		outcome, err := s.deliver(ev)
		s.Require().NoError(err)
		s.Equal(commands.WebhookApplied, outcome)
		s.assertState(b.ID(), booking.StatusPending, booking.PaymentAuthorized)
	})
}
