//go:build unit || e2e

package builder

import (
	domreview "courier-escrow/internal/domain/review"
	"courier-escrow/internal/pkg/clock"

	"github.com/google/uuid"
)

type ReviewBuilder struct {
	BookingID  uuid.UUID
	ConsumerID uuid.UUID
	ProviderID uuid.UUID
	ReviewerID uuid.UUID
	Completed  bool
	Rating     int
	Comment    string
}

func NewReviewBuilder() *ReviewBuilder {
	consumer := uuid.New()
	return &ReviewBuilder{
		BookingID:  uuid.New(),
		ConsumerID: consumer,
		ProviderID: uuid.New(),
		ReviewerID: consumer,
		Completed:  true,
		Rating:     5,
		Comment:    "Excellent service!",
	}
}

func (r *ReviewBuilder) With(mutate func(*ReviewBuilder)) *ReviewBuilder {
	mutate(r)
	return r
}

func (r *ReviewBuilder) Facts() domreview.BookingFacts {
	return domreview.BookingFacts{
		ID:         r.BookingID,
		ConsumerID: r.ConsumerID,
		ProviderID: r.ProviderID,
		Completed:  r.Completed,
	}
}

// Build methods
func (r *ReviewBuilder) BuildDomain() (*domreview.Review, error) {
	return domreview.NewReview(clock.NewMockClock(BaseTime), r.Facts(), r.ReviewerID, r.Rating, r.Comment)
}

// Fluent builder methods
func (r *ReviewBuilder) WithRating(rating int) *ReviewBuilder {
	r.Rating = rating
	return r
}

func (r *ReviewBuilder) WithComment(comment string) *ReviewBuilder {
	r.Comment = comment
	return r
}

func (r *ReviewBuilder) WithReviewer(id uuid.UUID) *ReviewBuilder {
	r.ReviewerID = id
	return r
}

func (r *ReviewBuilder) AsProviderReview() *ReviewBuilder {
	r.ReviewerID = r.ProviderID
	return r
}

func (r *ReviewBuilder) NotCompleted() *ReviewBuilder {
	r.Completed = false
	return r
}
