package repository

import (
	"context"
	"strconv"

	"courier-escrow/internal/domain/review"
	"courier-escrow/internal/infra"
	"courier-escrow/internal/infra/db"
)

type RatingStatsRepository struct {
	db db.DBTX
}

func NewRatingStatsRepository(dbtx db.DBTX) *RatingStatsRepository {
	return &RatingStatsRepository{db: dbtx}
}

func (r *RatingStatsRepository) Upsert(ctx context.Context, stats review.Stats) error {
	// numeric(3,2) is written as text so the rounded value is stored exactly
	average := strconv.FormatFloat(stats.Average, 'f', 2, 64)

	query, args, err := psql.Insert("rating_stats").
		Columns("reviewed_id", "total_reviews", "average_rating",
			"rating_1_count", "rating_2_count", "rating_3_count", "rating_4_count", "rating_5_count", "updated_at").
		Values(stats.ReviewedID, stats.Count, average,
			stats.CountFor(1), stats.CountFor(2), stats.CountFor(3), stats.CountFor(4), stats.CountFor(5), stats.UpdatedAt).
		Suffix(`ON CONFLICT (reviewed_id) DO UPDATE SET
			total_reviews = EXCLUDED.total_reviews,
			average_rating = EXCLUDED.average_rating,
			rating_1_count = EXCLUDED.rating_1_count,
			rating_2_count = EXCLUDED.rating_2_count,
			rating_3_count = EXCLUDED.rating_3_count,
			rating_4_count = EXCLUDED.rating_4_count,
			rating_5_count = EXCLUDED.rating_5_count,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build rating stats upsert", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to upsert rating stats", err)
	}
	return nil
}
