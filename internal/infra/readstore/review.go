package readstore

import (
	"context"

	"courier-escrow/internal/infra"
	"courier-escrow/internal/infra/db"
	"courier-escrow/internal/pkg/pgconv"
	"courier-escrow/internal/usecase/queries"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ReviewReadStore struct {
	db db.DBTX
}

func NewReviewReadStore(dbtx db.DBTX) *ReviewReadStore {
	return &ReviewReadStore{db: dbtx}
}

func (s *ReviewReadStore) ListByReviewed(ctx context.Context, reviewedID uuid.UUID, after *queries.Keyset, limit int) ([]*queries.ReviewListItem, error) {
	b := psql.Select("id", "booking_id", "reviewer_id", "rating", "comment", "created_at").
		From("reviews").
		Where(sq.Eq{"reviewed_id": reviewedID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(max(limit, 1)))
	if after != nil {
		b = b.Where(sq.Expr("(created_at, id) < (?, ?)", after.CreatedAt, after.ID))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build review list query", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reviews", err)
	}
	defer rows.Close()

	var items []*queries.ReviewListItem
	for rows.Next() {
		var (
			it      queries.ReviewListItem
			rating  int16
			comment pgtype.Text
		)
		if err := rows.Scan(&it.ID, &it.BookingID, &it.ReviewerID, &rating, &comment, &it.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan review row", err)
		}
		it.Rating = int(rating)
		if c := pgconv.TextToStringPtr(comment); c != nil {
			it.Comment = *c
		}
		it.CreatedAt = truncateMicro(it.CreatedAt)
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reviews", err)
	}
	return items, nil
}

func (s *ReviewReadStore) GetRatingStats(ctx context.Context, reviewedID uuid.UUID) (*queries.RatingStatsView, error) {
	query, args, err := psql.Select("reviewed_id", "total_reviews", "average_rating",
		"rating_1_count", "rating_2_count", "rating_3_count", "rating_4_count", "rating_5_count", "updated_at").
		From("rating_stats").
		Where(sq.Eq{"reviewed_id": reviewedID}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build rating stats query", err)
	}

	var (
		v       queries.RatingStatsView
		average pgtype.Numeric
	)
	err = s.db.QueryRow(ctx, query, args...).Scan(&v.ReviewedID, &v.TotalReviews, &average,
		&v.Rating1Count, &v.Rating2Count, &v.Rating3Count, &v.Rating4Count, &v.Rating5Count, &v.UpdatedAt)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get rating stats", err)
	}
	if v.AverageRating, err = pgconv.Float64FromNumeric(average); err != nil {
		return nil, infra.WrapRepoErr("failed to convert average rating", err)
	}
	return &v, nil
}
