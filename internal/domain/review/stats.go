package review

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Stats is the rating projection for one reviewed identity.
type Stats struct {
	ReviewedID   uuid.UUID
	Average      float64
	Count        int
	Distribution [5]int
	UpdatedAt    time.Time
}

// Summarize recomputes the projection from the full set of ratings.
func Summarize(reviewedID uuid.UUID, ratings []Rating, now time.Time) Stats {
	stats := Stats{ReviewedID: reviewedID, Count: len(ratings), UpdatedAt: now}
	if len(ratings) == 0 {
		return stats
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value()
		stats.Distribution[r.Value()-1]++
	}
	stats.Average = math.Round(float64(sum)/float64(len(ratings))*100) / 100
	return stats
}

func (s Stats) CountFor(star int) int {
	if star < 1 || star > 5 {
		return 0
	}
	return s.Distribution[star-1]
}
