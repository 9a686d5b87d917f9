package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// New returns a Redis cache when redisURL is set and reachable, otherwise a memory cache.
func New(ctx context.Context, redisURL, prefix string, ttl time.Duration) Cache {
	if redisURL != "" {
		rc, err := NewRedisCache(ctx, redisURL, prefix, ttl)
		if err == nil {
			log.Info().Str("prefix", prefix).Msg("Using Redis cache")
			return rc
		}
		log.Warn().Err(err).Msg("Redis unavailable, falling back to memory cache")
	}
	return NewMemoryCache(ttl, time.Minute)
}
