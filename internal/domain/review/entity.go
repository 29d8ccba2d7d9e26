package review

import (
	"time"

	"courier-escrow/internal/pkg/clock"

	"github.com/google/uuid"
)

// BookingFacts is the part of a booking that decides who may review whom.
type BookingFacts struct {
	ID         uuid.UUID
	ConsumerID uuid.UUID
	ProviderID uuid.UUID
	Completed  bool
}

type Review struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	reviewerID uuid.UUID
	reviewedID uuid.UUID
	rating     Rating
	comment    Comment
	createdAt  time.Time
}

// NewReview lets either participant of a completed booking review the other one.
func NewReview(clk clock.Clock, booking BookingFacts, reviewerID uuid.UUID, ratingValue int, commentText string) (*Review, error) {
	var reviewedID uuid.UUID
	switch reviewerID {
	case booking.ConsumerID:
		reviewedID = booking.ProviderID
	case booking.ProviderID:
		reviewedID = booking.ConsumerID
	default:
		return nil, ErrNotParticipant
	}
	if reviewedID == reviewerID {
		return nil, ErrSelfReview
	}
	if !booking.Completed {
		return nil, ErrBookingNotCompleted
	}

	rating, err := NewRating(ratingValue)
	if err != nil {
		return nil, err
	}
	comment, err := NewComment(commentText)
	if err != nil {
		return nil, err
	}

	return &Review{
		id:         uuid.New(),
		bookingID:  booking.ID,
		reviewerID: reviewerID,
		reviewedID: reviewedID,
		rating:     rating,
		comment:    comment,
		createdAt:  clk.Now(),
	}, nil
}

func ReconstructReview(id, bookingID, reviewerID, reviewedID uuid.UUID, rating Rating, comment Comment, createdAt time.Time) *Review {
	return &Review{
		id:         id,
		bookingID:  bookingID,
		reviewerID: reviewerID,
		reviewedID: reviewedID,
		rating:     rating,
		comment:    comment,
		createdAt:  createdAt,
	}
}

func (r *Review) ID() uuid.UUID         { return r.id }
func (r *Review) BookingID() uuid.UUID  { return r.bookingID }
func (r *Review) ReviewerID() uuid.UUID { return r.reviewerID }
func (r *Review) ReviewedID() uuid.UUID { return r.reviewedID }
func (r *Review) Rating() Rating        { return r.rating }
func (r *Review) Comment() Comment      { return r.comment }
func (r *Review) CreatedAt() time.Time  { return r.createdAt }
