package commands

import (
	"context"
	"log/slog"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/domain/identity"
	domreview "courier-escrow/internal/domain/review"
	"courier-escrow/internal/infra"
	"courier-escrow/internal/pkg/clock"
	"courier-escrow/internal/pkg/errs"
	"courier-escrow/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReviewCommands interface {
	CreateReview(ctx context.Context, req CreateReviewRequest, actor identity.Actor) (*CreateReviewResult, error)
}

// RatingAggregator recomputes an identity's rating projection from all of its reviews.
type RatingAggregator interface {
	Recompute(ctx context.Context, reviewedID uuid.UUID) (domreview.Stats, error)
}

type reviewUseCaseImpl struct {
	uow        shared.UnitOfWork
	aggregator *ratingAggregatorImpl
	queue      shared.TaskQueue
	clock      clock.Clock
	async      bool
}

func NewReviewUseCase(
	uow shared.UnitOfWork,
	cache shared.RatingCacheInvalidator,
	queue shared.TaskQueue,
	clk clock.Clock,
	opts Options,
) ReviewCommands {
	return &reviewUseCaseImpl{
		uow:        uow,
		aggregator: &ratingAggregatorImpl{uow: uow, cache: cache, clock: clk},
		queue:      queue,
		clock:      clk,
		async:      opts.AsyncRating,
	}
}

// CreateReview stores a review of the other participant of a completed booking
// and refreshes the reviewed identity's rating.
func (uc *reviewUseCaseImpl) CreateReview(ctx context.Context, req CreateReviewRequest, actor identity.Actor) (*CreateReviewResult, error) {
	var rev *domreview.Review
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := loadBooking(ctx, tx, req.BookingID)
		if err != nil {
			return err
		}
		facts := domreview.BookingFacts{
			ID:         b.ID(),
			ConsumerID: b.ConsumerID(),
			ProviderID: b.ProviderID(),
			Completed:  b.Status() == booking.StatusCompleted,
		}
		rev, err = domreview.NewReview(uc.clock, facts, actor.ID, req.Rating, req.Comment)
		if err != nil {
			return err
		}

		if err := tx.Reviews().Create(ctx, rev); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return domreview.ErrDuplicateReview
			}
			return errs.Wrap(err, "insert review")
		}
		if uc.async {
			return nil
		}
		_, err = uc.aggregator.recomputeIn(ctx, tx, rev.ReviewedID())
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.async {
		if err := uc.queue.EnqueueRatingRecompute(ctx, rev.ReviewedID()); err != nil {
			slog.WarnContext(ctx, "failed to enqueue rating recompute, running inline", "reviewed_id", rev.ReviewedID(), "error", err)
			if _, err := uc.aggregator.Recompute(ctx, rev.ReviewedID()); err != nil {
				slog.ErrorContext(ctx, "rating recompute failed", "reviewed_id", rev.ReviewedID(), "error", err)
			}
		}
	} else {
		uc.aggregator.invalidate(ctx, rev.ReviewedID())
	}

	return &CreateReviewResult{ReviewID: rev.ID(), ReviewedID: rev.ReviewedID()}, nil
}

type ratingAggregatorImpl struct {
	uow   shared.UnitOfWork
	cache shared.RatingCacheInvalidator
	clock clock.Clock
}

func NewRatingAggregator(uow shared.UnitOfWork, cache shared.RatingCacheInvalidator, clk clock.Clock) RatingAggregator {
	return &ratingAggregatorImpl{uow: uow, cache: cache, clock: clk}
}

func (a *ratingAggregatorImpl) Recompute(ctx context.Context, reviewedID uuid.UUID) (domreview.Stats, error) {
	var stats domreview.Stats
	err := a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		stats, err = a.recomputeIn(ctx, tx, reviewedID)
		return err
	})
	if err != nil {
		return domreview.Stats{}, err
	}
	a.invalidate(ctx, reviewedID)
	return stats, nil
}

func (a *ratingAggregatorImpl) recomputeIn(ctx context.Context, tx shared.Tx, reviewedID uuid.UUID) (domreview.Stats, error) {
	ratings, err := tx.Reviews().RatingsFor(ctx, reviewedID)
	if err != nil {
		return domreview.Stats{}, errs.Wrap(err, "load ratings")
	}
	stats := domreview.Summarize(reviewedID, ratings, a.clock.Now())
	if err := tx.RatingStats().Upsert(ctx, stats); err != nil {
		return domreview.Stats{}, errs.Wrap(err, "upsert rating stats")
	}
	return stats, nil
}

// invalidate runs only after the recomputed stats are committed.
func (a *ratingAggregatorImpl) invalidate(ctx context.Context, reviewedID uuid.UUID) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Invalidate(ctx, reviewedID); err != nil {
		slog.WarnContext(ctx, "failed to invalidate rating cache", "reviewed_id", reviewedID, "error", err)
	}
}
