package response

import (
	"time"

	"courier-escrow/internal/usecase/commands"
	"courier-escrow/internal/usecase/queries"
)

type CreateReviewResponse struct {
	ReviewID   string `json:"reviewId"`
	ReviewedID string `json:"reviewedId"`
}

func FromCreateReviewResult(r *commands.CreateReviewResult) *CreateReviewResponse {
	return &CreateReviewResponse{
		ReviewID:   r.ReviewID.String(),
		ReviewedID: r.ReviewedID.String(),
	}
}

type ReviewListItemResponse struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"bookingId"`
	ReviewerID string    `json:"reviewerId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ReviewListResponse struct {
	Reviews    []*ReviewListItemResponse `json:"reviews"`
	NextCursor string                    `json:"nextCursor,omitempty"`
}

func FromReviewList(items []*queries.ReviewListItem, next *queries.Cursor) *ReviewListResponse {
	res := &ReviewListResponse{Reviews: make([]*ReviewListItemResponse, len(items))}
	for i, it := range items {
		res.Reviews[i] = &ReviewListItemResponse{
			ID:         it.ID.String(),
			BookingID:  it.BookingID.String(),
			ReviewerID: it.ReviewerID.String(),
			Rating:     it.Rating,
			Comment:    it.Comment,
			CreatedAt:  it.CreatedAt,
		}
	}
	if next != nil {
		res.NextCursor = next.After
	}
	return res
}

type RatingStatsResponse struct {
	ReviewedID    string    `json:"reviewedId"`
	TotalReviews  int       `json:"totalReviews"`
	AverageRating float64   `json:"averageRating"`
	Rating1Count  int       `json:"rating1Count"`
	Rating2Count  int       `json:"rating2Count"`
	Rating3Count  int       `json:"rating3Count"`
	Rating4Count  int       `json:"rating4Count"`
	Rating5Count  int       `json:"rating5Count"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func FromRatingStats(s *queries.RatingStatsView) *RatingStatsResponse {
	return &RatingStatsResponse{
		ReviewedID:    s.ReviewedID.String(),
		TotalReviews:  s.TotalReviews,
		AverageRating: s.AverageRating,
		Rating1Count:  s.Rating1Count,
		Rating2Count:  s.Rating2Count,
		Rating3Count:  s.Rating3Count,
		Rating4Count:  s.Rating4Count,
		Rating5Count:  s.Rating5Count,
		UpdatedAt:     s.UpdatedAt,
	}
}

type WebhookResponse struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome"`
}
