//go:build unit

package commands_test

import (
	"errors"
	"sync"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/usecase/commands"
	"courier-escrow/internal/usecase/shared"
	"courier-escrow/tests/common/memstore"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

// ================================================================================
// Create
// ================================================================================

func (s *CommandsTestSuite) TestCreate() {
	s.Run("success: authorizes the price and stores pending/pending", func() {
		var got shared.AuthorizeRequest
		s.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req shared.AuthorizeRequest) (shared.Authorization, error) {
				got = req
				return shared.Authorization{Reference: "pi_create", ClientToken: "pi_create_secret"}, nil
			})
		s.queue.EXPECT().EnqueueAuthorizationExpiry(gomock.Any(), gomock.Any(), authTimeout).Return(nil)

		res, err := s.bookings.Create(s.ctx, s.createRequest(), s.consumer())
		s.Require().NoError(err)

		s.Equal("pi_create_secret", res.PaymentClientToken)
		s.Equal(flatPrice, got.AmountCents)
		s.Equal("usd", got.Currency)
		s.Equal(shared.IdempotencyKey(res.BookingID, shared.OpAuthorize), got.IdempotencyKey)
		s.Equal(res.BookingID, got.BookingID)

		b := s.stored(res.BookingID)
		s.Equal(booking.StatusPending, b.Status())
		s.Equal(booking.PaymentPending, b.PaymentStatus())
		s.Equal("pi_create", b.PaymentReference())
		s.Equal(s.fixture.ProviderID, b.ProviderID())
		s.Equal(int64(1), b.Version())

		events := s.store.Events(res.BookingID)
		s.Require().Len(events, 1)
		s.Equal(booking.StatusPending, events[0].ToStatus)
		s.Equal("created", events[0].Reason)
	})

	s.Run("error: expiry scheduling failure releases the hold and stores nothing", func() {
		before := s.store.BookingCount()
		var bookingID uuid.UUID
		s.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req shared.AuthorizeRequest) (shared.Authorization, error) {
				bookingID = req.BookingID
				return shared.Authorization{Reference: "pi_noexpiry"}, nil
			})
		s.queue.EXPECT().EnqueueAuthorizationExpiry(gomock.Any(), gomock.Any(), authTimeout).
			Return(errors.New("redis down"))
		s.gateway.EXPECT().Release(gomock.Any(), "pi_noexpiry", gomock.Any()).
			DoAndReturn(func(_ any, _ string, key string) error {
				s.Equal(shared.IdempotencyKey(bookingID, shared.OpRelease), key)
				return nil
			})

		_, err := s.bookings.Create(s.ctx, s.createRequest(), s.consumer())
		s.ErrorIs(err, commands.ErrSchedulingUnavailable)
		s.Equal(before, s.store.BookingCount())
	})

	s.Run("error: gateway failure stores nothing", func() {
		before := s.store.BookingCount()
		s.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).
			Return(shared.Authorization{}, errors.New("card network timeout"))

		_, err := s.bookings.Create(s.ctx, s.createRequest(), s.consumer())
		s.ErrorIs(err, commands.ErrGatewayUnavailable)
		s.Equal(before, s.store.BookingCount())
	})

	s.Run("error: failed insert releases the hold", func() {
		before := s.store.BookingCount()
		s.store.FailOn(memstore.OpEventAppend, errors.New("disk full"))
		defer s.store.FailOn(memstore.OpEventAppend, nil)

		s.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).
			Return(shared.Authorization{Reference: "pi_orphan"}, nil)
		s.queue.EXPECT().EnqueueAuthorizationExpiry(gomock.Any(), gomock.Any(), authTimeout).Return(nil)
		s.gateway.EXPECT().Release(gomock.Any(), "pi_orphan", gomock.Any()).Return(nil)

		_, err := s.bookings.Create(s.ctx, s.createRequest(), s.consumer())
		s.Error(err)
		s.Equal(before, s.store.BookingCount())
	})

	s.Run("validation", func() {
		past := s.createRequest()
		past.ScheduledAt = s.clock.Now()

		noDropoff := s.createRequest()
		noDropoff.Dropoff = nil

		noPickup := s.createRequest()
		noPickup.Pickup = nil

		badLat := s.createRequest()
		badLat.Dropoff.Lat = 91

		unknownListing := s.createRequest()
		unknownListing.ListingID = uuid.New()

		cases := []struct {
			name  string
			req   commands.CreateBookingRequest
			actor identity.Actor
			errIs error
		}{
			{name: "schedule not in the future", req: past, actor: s.consumer(), errIs: booking.ErrInvalidSchedule},
			{name: "missing dropoff", req: noDropoff, actor: s.consumer(), errIs: booking.ErrInvalidLocation},
			{name: "listing requires pickup", req: noPickup, actor: s.consumer(), errIs: booking.ErrInvalidLocation},
			{name: "latitude out of range", req: badLat, actor: s.consumer(), errIs: booking.ErrInvalidLocation},
			{name: "unknown listing", req: unknownListing, actor: s.consumer(), errIs: commands.ErrListingNotFound},
			{name: "provider cannot book", req: s.createRequest(), actor: s.provider(), errIs: commands.ErrConsumerOnly},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				_, err := s.bookings.Create(s.ctx, tc.req, tc.actor)
				s.ErrorIs(err, tc.errIs)
			})
		}
	})
}

// ================================================================================
// Status transitions
// ================================================================================

func (s *CommandsTestSuite) TestTransitions_HappyPath() {
	b := s.put(booking.StatusPending, booking.PaymentAuthorized)

	res, err := s.bookings.Accept(s.ctx, b.ID(), s.provider())
	s.Require().NoError(err)
	s.Equal(booking.StatusAccepted, res.Booking.Status)
	s.Equal(int64(2), res.Booking.Version)
	s.Nil(res.Payment)

	res, err = s.bookings.Start(s.ctx, b.ID(), s.provider())
	s.Require().NoError(err)
	s.Equal(booking.StatusInProgress, res.Booking.Status)

	s.gateway.EXPECT().Capture(gomock.Any(), b.PaymentReference(), flatPrice, shared.IdempotencyKey(b.ID(), shared.OpCapture)).Return(nil)
	res, err = s.bookings.Complete(s.ctx, b.ID(), s.provider())
	s.Require().NoError(err)
	s.Equal(booking.StatusCompleted, res.Booking.Status)
	s.Equal(booking.PaymentAuthorized, res.Booking.PaymentStatus)
	s.Require().NotNil(res.Payment)
	s.Equal(shared.ActionCapture, res.Payment.Action)
	s.Equal(commands.OutcomeRequested, res.Payment.Outcome)

	s.Len(s.store.Events(b.ID()), 3)
}

func (s *CommandsTestSuite) TestTransitions_IllegalEdgesLeaveStateUnchanged() {
	type action func(id uuid.UUID) (*commands.TransitionResult, error)
	accept := func(id uuid.UUID) (*commands.TransitionResult, error) { return s.bookings.Accept(s.ctx, id, s.provider()) }
	start := func(id uuid.UUID) (*commands.TransitionResult, error) { return s.bookings.Start(s.ctx, id, s.provider()) }
	complete := func(id uuid.UUID) (*commands.TransitionResult, error) { return s.bookings.Complete(s.ctx, id, s.provider()) }
	cancel := func(id uuid.UUID) (*commands.TransitionResult, error) {
		return s.bookings.Cancel(s.ctx, id, commands.CancelRequest{}, s.consumer())
	}

	cases := []struct {
		name    string
		status  booking.Status
		payment booking.PaymentStatus
		do      action
	}{
		{"start from pending", booking.StatusPending, booking.PaymentAuthorized, start},
		{"complete from pending", booking.StatusPending, booking.PaymentAuthorized, complete},
		{"complete from accepted", booking.StatusAccepted, booking.PaymentAuthorized, complete},
		{"accept twice", booking.StatusAccepted, booking.PaymentAuthorized, accept},
		{"start without authorization", booking.StatusAccepted, booking.PaymentPending, start},
		{"accept completed", booking.StatusCompleted, booking.PaymentPaid, accept},
		{"cancel completed", booking.StatusCompleted, booking.PaymentAuthorized, cancel},
		{"accept cancelled", booking.StatusCancelled, booking.PaymentFailed, accept},
		{"cancel cancelled", booking.StatusCancelled, booking.PaymentFailed, cancel},
		{"start cancelled", booking.StatusCancelled, booking.PaymentRefunded, start},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			b := s.put(tc.status, tc.payment)

			_, err := tc.do(b.ID())
			s.ErrorIs(err, booking.ErrInvalidTransition)

			after := s.stored(b.ID())
			s.Equal(b.State(), after.State())
			s.Empty(s.store.Events(b.ID()))
		})
	}
}

func (s *CommandsTestSuite) TestTransitions_Authorization() {
	stranger := identity.Actor{ID: uuid.New(), Role: identity.RoleProvider}

	s.Run("only the booking's provider can accept", func() {
		b := s.put(booking.StatusPending, booking.PaymentAuthorized)
		for _, actor := range []identity.Actor{s.consumer(), stranger, s.admin()} {
			_, err := s.bookings.Accept(s.ctx, b.ID(), actor)
			s.ErrorIs(err, booking.ErrForbidden)
		}
		s.assertState(b.ID(), booking.StatusPending, booking.PaymentAuthorized)
	})

	s.Run("outsiders cannot cancel", func() {
		b := s.put(booking.StatusAccepted, booking.PaymentPending)
		_, err := s.bookings.Cancel(s.ctx, b.ID(), commands.CancelRequest{}, stranger)
		s.ErrorIs(err, booking.ErrForbidden)
	})

	s.Run("unknown booking", func() {
		_, err := s.bookings.Accept(s.ctx, uuid.New(), s.provider())
		s.ErrorIs(err, commands.ErrBookingNotFound)
	})
}

func (s *CommandsTestSuite) TestAccept_LostRaceIsConflict() {
	b := s.put(booking.StatusPending, booking.PaymentAuthorized)

	fired := false
	s.store.BeforeUpdateState = func(id uuid.UUID) {
		if fired {
			return
		}
		fired = true
		_, err := s.bookings.Accept(s.ctx, id, s.provider())
		s.Require().NoError(err)
	}
	defer func() { s.store.BeforeUpdateState = nil }()

	_, err := s.bookings.Accept(s.ctx, b.ID(), s.provider())
	s.ErrorIs(err, commands.ErrConflict)

	after := s.stored(b.ID())
	s.Equal(booking.StatusAccepted, after.Status())
	s.Equal(int64(2), after.Version())
	s.Len(s.store.Events(b.ID()), 1)
}

func (s *CommandsTestSuite) TestAccept_ConcurrentCallersOneWins() {
	b := s.put(booking.StatusPending, booking.PaymentAuthorized)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	start := make(chan struct{})
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.bookings.Accept(s.ctx, b.ID(), s.provider())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}()
	}
	close(start)
	wg.Wait()

	s.Equal(1, successes)
	for _, err := range failures {
		// late callers see the committed state and fail the edge check instead
		s.True(errors.Is(err, commands.ErrConflict) || errors.Is(err, booking.ErrInvalidTransition), "unexpected error: %v", err)
	}
	s.Len(s.store.Events(b.ID()), 1)
	s.Equal(int64(2), s.stored(b.ID()).Version())
}

// ================================================================================
// Cancel
// ================================================================================

func (s *CommandsTestSuite) TestCancel() {
	s.Run("pending authorization is voided and released", func() {
		b := s.put(booking.StatusPending, booking.PaymentPending)
		s.gateway.EXPECT().Release(gomock.Any(), b.PaymentReference(), shared.IdempotencyKey(b.ID(), shared.OpRelease)).Return(nil)

		res, err := s.bookings.Cancel(s.ctx, b.ID(), commands.CancelRequest{Reason: "changed plans"}, s.consumer())
		s.Require().NoError(err)
		s.Equal(booking.StatusCancelled, res.Booking.Status)
		s.Equal(booking.PaymentFailed, res.Booking.PaymentStatus)
		s.Nil(res.Payment)
		s.Empty(s.store.Refunds(b.ID()))

		after := s.stored(b.ID()).Snapshot()
		s.Equal("changed plans", after.CancelReason)
		s.Require().NotNil(after.CancelledBy)
		s.Equal(s.fixture.ConsumerID, *after.CancelledBy)
	})

	s.Run("held funds are released in full", func() {
		b := s.put(booking.StatusAccepted, booking.PaymentAuthorized)
		s.gateway.EXPECT().Release(gomock.Any(), b.PaymentReference(), shared.IdempotencyKey(b.ID(), shared.OpRelease)).Return(nil)

		res, err := s.bookings.Cancel(s.ctx, b.ID(), commands.CancelRequest{}, s.provider())
		s.Require().NoError(err)
		s.Equal(booking.StatusCancelled, res.Booking.Status)
		s.Equal(booking.PaymentAuthorized, res.Booking.PaymentStatus)
		s.Require().NotNil(res.Payment)
		s.Equal(shared.ActionRelease, res.Payment.Action)
		s.Equal(flatPrice, res.Payment.AmountCents)

		rows := s.store.Refunds(b.ID())
		s.Require().Len(rows, 1)
		s.True(rows[0].Release)
		s.Equal(shared.RefundRequested, rows[0].Status)
	})

	s.Run("partial amount on a hold captures the rest", func() {
		b := s.put(booking.StatusAccepted, booking.PaymentAuthorized)
		back := int64(1000)
		s.gateway.EXPECT().Capture(gomock.Any(), b.PaymentReference(), flatPrice-back, shared.IdempotencyKey(b.ID(), shared.OpCapture)).Return(nil)

		res, err := s.bookings.Cancel(s.ctx, b.ID(), commands.CancelRequest{RefundAmountCents: &back}, s.consumer())
		s.Require().NoError(err)
		s.Equal(booking.StatusCancelled, res.Booking.Status)
		s.Equal(booking.PaymentAuthorized, res.Booking.PaymentStatus)
		s.Require().NotNil(res.Payment)
		s.Equal(shared.ActionRelease, res.Payment.Action)
		s.Equal(back, res.Payment.AmountCents)

		rows := s.store.Refunds(b.ID())
		s.Require().Len(rows, 1)
		s.True(rows[0].Release)
		s.Equal(back, rows[0].AmountCents)
	})

	s.Run("amount above the hold is rejected", func() {
		b := s.put(booking.StatusAccepted, booking.PaymentAuthorized)
		tooMuch := flatPrice + 1

		_, err := s.bookings.Cancel(s.ctx, b.ID(), commands.CancelRequest{RefundAmountCents: &tooMuch}, s.consumer())
		s.ErrorIs(err, booking.ErrInvalidAmount)
		s.assertState(b.ID(), booking.StatusAccepted, booking.PaymentAuthorized)
		s.Empty(s.store.Refunds(b.ID()))
	})

	s.Run("gateway failure schedules a retry", func() {
		b := s.put(booking.StatusAccepted, booking.PaymentAuthorized)
		s.gateway.EXPECT().Release(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("timeout"))
		s.queue.EXPECT().EnqueuePaymentRetry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, retry shared.PaymentRetry) error {
				s.Equal(b.ID(), retry.BookingID)
				s.Equal(shared.ActionRelease, retry.Action)
				s.NotEqual(uuid.Nil, retry.RefundID)
				return nil
			})

		res, err := s.bookings.Cancel(s.ctx, b.ID(), commands.CancelRequest{}, s.consumer())
		s.Require().NoError(err)
		s.Equal(booking.StatusCancelled, res.Booking.Status)
		s.Equal(commands.OutcomeRetryScheduled, res.Payment.Outcome)
	})
}
