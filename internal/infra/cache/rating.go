package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"courier-escrow/internal/pkg/errs"
	"courier-escrow/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const ratingKeyPrefix = "rating:"

// RatingCache keeps rating projections in Redis as JSON.
type RatingCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRatingCache(client redis.Cmdable, ttl time.Duration) *RatingCache {
	return &RatingCache{client: client, ttl: ttl}
}

func ratingKey(reviewedID uuid.UUID) string {
	return ratingKeyPrefix + reviewedID.String()
}

func (c *RatingCache) Get(ctx context.Context, reviewedID uuid.UUID) (*queries.RatingStatsView, bool, error) {
	data, err := c.client.Get(ctx, ratingKey(reviewedID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(err, "redis get rating")
	}

	var view queries.RatingStatsView
	if err := json.Unmarshal(data, &view); err != nil {
		// a corrupt entry is treated as a miss and overwritten on the next read
		return nil, false, nil
	}
	return &view, true, nil
}

func (c *RatingCache) Set(ctx context.Context, stats *queries.RatingStatsView) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return errs.Wrap(err, "encode rating")
	}
	if err := c.client.Set(ctx, ratingKey(stats.ReviewedID), data, c.ttl).Err(); err != nil {
		return errs.Wrap(err, "redis set rating")
	}
	return nil
}

func (c *RatingCache) Invalidate(ctx context.Context, reviewedID uuid.UUID) error {
	if err := c.client.Del(ctx, ratingKey(reviewedID)).Err(); err != nil {
		return errs.Wrap(err, "redis delete rating")
	}
	return nil
}
