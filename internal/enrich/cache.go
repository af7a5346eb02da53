package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"mspro-labs/hopmetrics/internal/models"
	"mspro-labs/hopmetrics/internal/observability"
)

const cacheKeyPrefix = "hopmetrics:rating:"

type cached struct {
	inner Rater
	rdb   *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

// Cached keeps found ratings in redis. Misses are not cached, since a miss may
// just be a transient failure upstream. Redis errors fall through to inner.
func Cached(r Rater, rdb *redis.Client, ttl time.Duration) Rater {
	return &cached{inner: r, rdb: rdb, ttl: ttl, log: observability.Component("rating-cache")}
}

func (c *cached) Lookup(ctx context.Context, name, brewery string) (*models.Rating, bool) {
	key := CacheKey(name, brewery)

	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rating models.Rating
		if err := json.Unmarshal(b, &rating); err == nil {
			observability.ObserveCache("redis", "hit")
			return &rating, true
		}
		c.log.Warn().Str("key", key).Msg("dropping unreadable cache entry")
	case errors.Is(err, redis.Nil):
		observability.ObserveCache("redis", "miss")
	default:
		observability.ObserveCache("redis", "error")
		c.log.Warn().Err(err).Msg("rating cache read failed")
	}

	rating, ok := c.inner.Lookup(ctx, name, brewery)
	if !ok {
		return nil, false
	}

	b, _ = json.Marshal(rating)
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		observability.ObserveCache("redis", "error")
		c.log.Warn().Err(err).Msg("rating cache write failed")
	} else {
		observability.ObserveCache("redis", "set")
	}
	return rating, true
}

// CacheKey is case- and whitespace-insensitive.
func CacheKey(name, brewery string) string {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return cacheKeyPrefix + norm(name) + "|" + norm(brewery)
}
