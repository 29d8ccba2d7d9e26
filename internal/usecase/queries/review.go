package queries

import (
	"context"
	"log/slog"
	"time"

	"courier-escrow/internal/infra"

	"github.com/google/uuid"
)

type ReviewListItem struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type RatingStatsView struct {
	ReviewedID    uuid.UUID `json:"reviewed_id"`
	TotalReviews  int       `json:"total_reviews"`
	AverageRating float64   `json:"average_rating"`
	Rating1Count  int       `json:"rating_1_count"`
	Rating2Count  int       `json:"rating_2_count"`
	Rating3Count  int       `json:"rating_3_count"`
	Rating4Count  int       `json:"rating_4_count"`
	Rating5Count  int       `json:"rating_5_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ReviewReadStore interface {
	ListByReviewed(ctx context.Context, reviewedID uuid.UUID, after *Keyset, limit int) ([]*ReviewListItem, error)
	GetRatingStats(ctx context.Context, reviewedID uuid.UUID) (*RatingStatsView, error)
}

// RatingCache is a read-through cache in front of the rating projection.
type RatingCache interface {
	Get(ctx context.Context, reviewedID uuid.UUID) (*RatingStatsView, bool, error)
	Set(ctx context.Context, stats *RatingStatsView) error
}

type ReviewQueries interface {
	ListByReviewed(ctx context.Context, reviewedID uuid.UUID, cursor *Cursor, limit int) ([]*ReviewListItem, *Cursor, error)
	GetRatingStats(ctx context.Context, reviewedID uuid.UUID) (*RatingStatsView, error)
}

type reviewQueriesImpl struct {
	store ReviewReadStore
	cache RatingCache
}

func NewReviewQueries(store ReviewReadStore, cache RatingCache) ReviewQueries {
	return &reviewQueriesImpl{store: store, cache: cache}
}

func (q *reviewQueriesImpl) ListByReviewed(ctx context.Context, reviewedID uuid.UUID, cursor *Cursor, limit int) ([]*ReviewListItem, *Cursor, error) {
	after, err := decodeKeyset(cursor)
	if err != nil {
		return nil, nil, err
	}
	limit = ValidateLimit(limit)
	rows, err := q.store.ListByReviewed(ctx, reviewedID, after, limit+1)
	if err != nil {
		return nil, nil, err
	}
	items, next := paginate(rows, limit, func(r *ReviewListItem) (time.Time, uuid.UUID) { return r.CreatedAt, r.ID })
	return items, next, nil
}

// GetRatingStats serves from cache when possible. Cache failures fall back to the store.
func (q *reviewQueriesImpl) GetRatingStats(ctx context.Context, reviewedID uuid.UUID) (*RatingStatsView, error) {
	if q.cache != nil {
		cached, ok, err := q.cache.Get(ctx, reviewedID)
		if err != nil {
			slog.WarnContext(ctx, "rating cache read failed", "reviewed_id", reviewedID, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	stats, err := q.store.GetRatingStats(ctx, reviewedID)
	if err != nil {
		if !infra.IsKind(err, infra.KindNotFound) {
			return nil, err
		}
		stats = &RatingStatsView{ReviewedID: reviewedID}
	}

	if q.cache != nil {
		if err := q.cache.Set(ctx, stats); err != nil {
			slog.WarnContext(ctx, "rating cache write failed", "reviewed_id", reviewedID, "error", err)
		}
	}
	return stats, nil
}
