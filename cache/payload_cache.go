package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"glyphtone/logger"
)

// payloadTTL bounds how long a transformed payload stays cached. The
// pipeline is pure, so expiry only costs recomputation.
const payloadTTL = 24 * time.Hour

// PayloadCache stores transformed tag payloads in Redis keyed by the
// performance snapshot hash. It satisfies composer.PayloadCache.
type PayloadCache struct {
	client *redis.Client
}

// NewPayloadCache creates a PayloadCache over the given client.
func NewPayloadCache(client *redis.Client) *PayloadCache {
	return &PayloadCache{client: client}
}

// GetPayload returns the cached payload for the key, if present. Redis
// failures degrade to a miss.
func (c *PayloadCache) GetPayload(ctx context.Context, key string) (string, bool) {
	if c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logger.Warn("payload cache read failed", logger.String("key", key), logger.ErrorField(err))
		return "", false
	}
	return val, true
}

// SetPayload stores the payload under the key. Failures are logged and
// ignored; caching is best effort.
func (c *PayloadCache) SetPayload(ctx context.Context, key, payload string) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, payloadTTL).Err(); err != nil {
		logger.Warn("payload cache write failed", logger.String("key", key), logger.ErrorField(err))
	}
}
