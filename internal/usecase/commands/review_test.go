//go:build unit

package commands_test

import (
	"errors"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/domain/identity"
	domreview "courier-escrow/internal/domain/review"
	"courier-escrow/internal/usecase/commands"
	"courier-escrow/tests/common/builder"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

func (s *CommandsTestSuite) TestCreateReview() {
	s.Run("success: consumer reviews the provider and stats are recomputed", func() {
		b := s.put(booking.StatusCompleted, booking.PaymentPaid)
		s.cache.EXPECT().Invalidate(gomock.Any(), s.fixture.ProviderID).Return(nil)

		res, err := s.reviews.CreateReview(s.ctx, commands.CreateReviewRequest{
			BookingID: b.ID(),
			Rating:    5,
			Comment:   "On time and careful",
		}, s.consumer())
		s.Require().NoError(err)
		s.NotEqual(uuid.Nil, res.ReviewID)
		s.Equal(s.fixture.ProviderID, res.ReviewedID)

		stats, ok := s.store.Stats(s.fixture.ProviderID)
		s.Require().True(ok)
		s.Equal(1, stats.Count)
		s.Equal(5.0, stats.Average)
	})

	s.Run("cache failure does not fail the review", func() {
		b := s.put(booking.StatusCompleted, booking.PaymentRefunded)
		s.cache.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		_, err := s.reviews.CreateReview(s.ctx, commands.CreateReviewRequest{BookingID: b.ID(), Rating: 4}, s.provider())
		s.NoError(err)
	})

	cases := []struct {
		name    string
		status  booking.Status
		payment booking.PaymentStatus
		actor   func() identity.Actor
		rating  int
		errIs   error
	}{
		{"booking not completed", booking.StatusInProgress, booking.PaymentAuthorized, s.consumer, 5, domreview.ErrBookingNotCompleted},
		{"cancelled booking", booking.StatusCancelled, booking.PaymentFailed, s.consumer, 5, domreview.ErrBookingNotCompleted},
		{"rating out of range", booking.StatusCompleted, booking.PaymentPaid, s.consumer, 6, domreview.ErrInvalidRating},
		{"outsider", booking.StatusCompleted, booking.PaymentPaid, s.admin, 3, domreview.ErrNotParticipant},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			b := s.put(tc.status, tc.payment)
			_, err := s.reviews.CreateReview(s.ctx, commands.CreateReviewRequest{BookingID: b.ID(), Rating: tc.rating}, tc.actor())
			s.ErrorIs(err, tc.errIs)
		})
	}

	s.Run("unknown booking", func() {
		_, err := s.reviews.CreateReview(s.ctx, commands.CreateReviewRequest{BookingID: uuid.New(), Rating: 5}, s.consumer())
		s.ErrorIs(err, commands.ErrBookingNotFound)
	})
}

func (s *CommandsTestSuite) TestCreateReview_SecondReviewIsDuplicate() {
	b := s.put(booking.StatusCompleted, booking.PaymentPaid)
	s.cache.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.reviews.CreateReview(s.ctx, commands.CreateReviewRequest{BookingID: b.ID(), Rating: 5}, s.consumer())
	s.Require().NoError(err)

	_, err = s.reviews.CreateReview(s.ctx, commands.CreateReviewRequest{BookingID: b.ID(), Rating: 1}, s.provider())
	s.ErrorIs(err, domreview.ErrDuplicateReview)
	s.Equal(1, s.store.ReviewCount())

	stats, _ := s.store.Stats(s.fixture.ProviderID)
	s.Equal(1, stats.Count)
}

func (s *CommandsTestSuite) TestRatingAggregation() {
	s.cache.EXPECT().Invalidate(gomock.Any(), s.fixture.ProviderID).Return(nil).Times(3)

	for _, rating := range []int{5, 4, 3} {
		b := s.put(booking.StatusCompleted, booking.PaymentPaid)
		_, err := s.reviews.CreateReview(s.ctx, commands.CreateReviewRequest{BookingID: b.ID(), Rating: rating}, s.consumer())
		s.Require().NoError(err)
	}

	stats, ok := s.store.Stats(s.fixture.ProviderID)
	s.Require().True(ok)
	s.Equal(3, stats.Count)
	s.Equal(4.0, stats.Average)
	s.Equal([5]int{0, 0, 1, 1, 1}, stats.Distribution)
	s.Equal(builder.BaseTime, stats.UpdatedAt)
}

func (s *CommandsTestSuite) TestCreateReview_Async() {
	s.build(commands.Options{Currency: "usd", AuthorizationTimeout: authTimeout, AsyncRating: true})

	s.Run("recompute is queued, not run inline", func() {
		b := s.put(booking.StatusCompleted, booking.PaymentPaid)
		s.queue.EXPECT().EnqueueRatingRecompute(gomock.Any(), s.fixture.ProviderID).Return(nil)

		_, err := s.reviews.CreateReview(s.ctx, commands.CreateReviewRequest{BookingID: b.ID(), Rating: 2}, s.consumer())
		s.Require().NoError(err)
		_, ok := s.store.Stats(s.fixture.ProviderID)
		s.False(ok)

		s.cache.EXPECT().Invalidate(gomock.Any(), s.fixture.ProviderID).Return(nil)
		stats, err := s.ratings.Recompute(s.ctx, s.fixture.ProviderID)
		s.Require().NoError(err)
		s.Equal(1, stats.Count)
		s.Equal(2.0, stats.Average)
	})

	s.Run("falls back to inline recompute when the queue is down", func() {
		b := s.put(booking.StatusCompleted, booking.PaymentPaid)
		s.queue.EXPECT().EnqueueRatingRecompute(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
		s.cache.EXPECT().Invalidate(gomock.Any(), s.fixture.ProviderID).Return(nil)

		_, err := s.reviews.CreateReview(s.ctx, commands.CreateReviewRequest{BookingID: b.ID(), Rating: 4}, s.consumer())
		s.Require().NoError(err)

		stats, ok := s.store.Stats(s.fixture.ProviderID)
		s.Require().True(ok)
		s.Equal(2, stats.Count)
		s.Equal(3.0, stats.Average)
	})
}
