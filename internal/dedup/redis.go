package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const redisPrefix = "dedup:update:"

// Redis backs the filter with a shared store so restarts do not replay
// recent updates. Lookups fail open: a Redis error reports not-seen.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Seen(ctx context.Context, id string) bool {
	n, err := r.client.Exists(ctx, redisPrefix+id).Result()
	if err != nil {
		log.Warn().Err(err).Str("id", id).Msg("dedup lookup failed")
		return false
	}
	return n > 0
}

func (r *Redis) Mark(ctx context.Context, id string) {
	if err := r.client.Set(ctx, redisPrefix+id, "1", r.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("dedup mark failed")
	}
}
