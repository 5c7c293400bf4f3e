package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/redis/go-redis/v9"
)

const (
	ratingKeyPrefix = "rating_summary:"
	RatingTTL       = 5 * time.Minute
)

type cachedSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// RatingCache stores rating summaries. Writes invalidate it, the TTL bounds staleness.
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRatingCache(client *redis.Client) *RatingCache {
	return &RatingCache{client: client, ttl: RatingTTL}
}

func (c *RatingCache) GetSummary(ctx context.Context, listingID string) (*domain.RatingSummary, error) {
	data, err := c.client.Get(ctx, ratingKeyPrefix+listingID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Remote("cache get rating summary", err)
	}
	var cs cachedSummary
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("decode cached rating summary %s: %w", listingID, err)
	}
	return &domain.RatingSummary{Average: cs.Average, Count: cs.Count}, nil
}

func (c *RatingCache) SetSummary(ctx context.Context, listingID string, s domain.RatingSummary) error {
	data, err := json.Marshal(cachedSummary{Average: s.Average, Count: s.Count})
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, ratingKeyPrefix+listingID, data, c.ttl).Err(); err != nil {
		return domain.Remote("cache set rating summary", err)
	}
	return nil
}

func (c *RatingCache) DeleteSummary(ctx context.Context, listingID string) error {
	if err := c.client.Del(ctx, ratingKeyPrefix+listingID).Err(); err != nil {
		return domain.Remote("cache delete rating summary", err)
	}
	return nil
}
