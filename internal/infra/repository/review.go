package repository

import (
	"context"

	"courier-escrow/internal/domain/review"
	"courier-escrow/internal/infra"
	"courier-escrow/internal/infra/db"
	"courier-escrow/internal/pkg/pgconv"
	"courier-escrow/internal/pkg/ptr"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type ReviewRepository struct {
	db db.DBTX
}

func NewReviewRepository(dbtx db.DBTX) *ReviewRepository {
	return &ReviewRepository{db: dbtx}
}

// Create inserts the review. A second review for the same booking surfaces as KindDuplicateKey.
func (r *ReviewRepository) Create(ctx context.Context, rev *review.Review) error {
	var comment *string
	if !rev.Comment().IsEmpty() {
		comment = ptr.Of(rev.Comment().String())
	}

	query, args, err := psql.Insert("reviews").
		Columns("id", "booking_id", "reviewer_id", "reviewed_id", "rating", "comment", "created_at").
		Values(rev.ID(), rev.BookingID(), rev.ReviewerID(), rev.ReviewedID(), int16(rev.Rating().Value()), pgconv.StringPtrToText(comment), rev.CreatedAt()).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build review insert", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create review", err)
	}
	return nil
}

// RatingsFor loads every rating the identity has received. The projection is always
// recomputed from the full set.
func (r *ReviewRepository) RatingsFor(ctx context.Context, reviewedID uuid.UUID) ([]review.Rating, error) {
	query, args, err := psql.Select("rating").From("reviews").Where(sq.Eq{"reviewed_id": reviewedID}).ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build ratings query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load ratings", err)
	}
	defer rows.Close()

	var ratings []review.Rating
	for rows.Next() {
		var v int16
		if err := rows.Scan(&v); err != nil {
			return nil, infra.WrapRepoErr("failed to scan rating", err)
		}
		rating, err := review.NewRating(int(v))
		if err != nil {
			return nil, infra.WrapRepoErr("stored rating out of range", err, infra.KindDBFailure)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate ratings", err)
	}
	return ratings, nil
}
