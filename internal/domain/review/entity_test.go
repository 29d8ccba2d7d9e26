//go:build unit

package review_test

import (
	"strings"
	"testing"
	"time"

	"courier-escrow/internal/domain/review"
	"courier-escrow/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.ReviewBuilder)
	errIs  error
}

func TestReview(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		b := builder.NewReviewBuilder()
		actual, err := b.BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, b.BookingID, actual.BookingID())
		assert.Equal(t, b.ConsumerID, actual.ReviewerID())
		assert.Equal(t, b.ProviderID, actual.ReviewedID())
		assert.Equal(t, builder.BaseTime, actual.CreatedAt())
		assert.Equal(t, 5, actual.Rating().Value())
		assert.Equal(t, "Excellent service!", actual.Comment().String())
	})

	t.Run("provider reviews consumer", func(t *testing.T) {
		b := builder.NewReviewBuilder().AsProviderReview()
		actual, err := b.BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, b.ConsumerID, actual.ReviewedID())
	})

	t.Run("eligibility", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "booking not completed",
				mutate: func(b *builder.ReviewBuilder) { b.NotCompleted() },
				errIs:  review.ErrBookingNotCompleted,
			},
			{
				name:   "outsider",
				mutate: func(b *builder.ReviewBuilder) { b.WithReviewer(uuid.New()) },
				errIs:  review.ErrNotParticipant,
			},
			{
				name: "consumer and provider are the same identity",
				mutate: func(b *builder.ReviewBuilder) {
					b.ProviderID = b.ConsumerID
				},
				errIs: review.ErrSelfReview,
			},
		})
	})

	t.Run("rating validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "below minimum rating",
				mutate: func(b *builder.ReviewBuilder) { b.WithRating(0) },
				errIs:  review.ErrInvalidRating,
			},
			{
				name:   "minimum valid rating",
				mutate: func(b *builder.ReviewBuilder) { b.WithRating(1) },
			},
			{
				name:   "maximum valid rating",
				mutate: func(b *builder.ReviewBuilder) { b.WithRating(5) },
			},
			{
				name:   "above maximum rating",
				mutate: func(b *builder.ReviewBuilder) { b.WithRating(6) },
				errIs:  review.ErrInvalidRating,
			},
		})
	})

	t.Run("comment validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "empty comment is allowed",
				mutate: func(b *builder.ReviewBuilder) { b.WithComment("") },
			},
			{
				name:   "maximum length comment",
				mutate: func(b *builder.ReviewBuilder) { b.WithComment(strings.Repeat("a", review.MaxCommentLength)) },
			},
			{
				name:   "comment exceeds maximum length",
				mutate: func(b *builder.ReviewBuilder) { b.WithComment(strings.Repeat("a", review.MaxCommentLength+1)) },
				errIs:  review.ErrCommentTooLong,
			},
		})
	})

	t.Run("comment trimming", func(t *testing.T) {
		actual, err := builder.NewReviewBuilder().WithComment("  Trimmed comment  ").BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, "Trimmed comment", actual.Comment().String())
	})
}

func TestSummarize(t *testing.T) {
	reviewed := uuid.New()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	ratings := func(vs ...int) []review.Rating {
		out := make([]review.Rating, 0, len(vs))
		for _, v := range vs {
			r, err := review.NewRating(v)
			require.NoError(t, err)
			out = append(out, r)
		}
		return out
	}

	t.Run("mean of 5, 4 and 3", func(t *testing.T) {
		stats := review.Summarize(reviewed, ratings(5, 4, 3), now)
		assert.Equal(t, 4.00, stats.Average)
		assert.Equal(t, 3, stats.Count)
		assert.Equal(t, [5]int{0, 0, 1, 1, 1}, stats.Distribution)
		assert.Equal(t, now, stats.UpdatedAt)
	})

	t.Run("rounded to two decimals", func(t *testing.T) {
		stats := review.Summarize(reviewed, ratings(5, 4, 4), now)
		assert.Equal(t, 4.33, stats.Average)

		stats = review.Summarize(reviewed, ratings(5, 5, 4), now)
		assert.Equal(t, 4.67, stats.Average)
		assert.Equal(t, 2, stats.CountFor(5))
		assert.Equal(t, 0, stats.CountFor(6))
	})

	t.Run("no reviews", func(t *testing.T) {
		stats := review.Summarize(reviewed, nil, now)
		assert.Zero(t, stats.Average)
		assert.Zero(t, stats.Count)
	})

	t.Run("recomputation is idempotent", func(t *testing.T) {
		rs := ratings(1, 2, 5, 5)
		assert.Equal(t, review.Summarize(reviewed, rs, now), review.Summarize(reviewed, rs, now))
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewReviewBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NoError(t, err)
				require.NotNil(t, actual)
			} else {
				require.Nil(t, actual)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
