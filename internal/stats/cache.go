package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/scentswap/tradepost/internal/models"
)

// Cache stores computed aggregates in Redis with a TTL. Misses and Redis
// errors both fall through to a fresh computation.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a new aggregate cache
func NewCache(redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &Cache{
		client: redis.NewClient(opts),
		ttl:    ttl,
	}, nil
}

// Close closes the underlying Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

func cacheKey(traderID uuid.UUID) string {
	return "stats:trader:" + traderID.String()
}

// Get returns the cached aggregate for a trader, if present
func (c *Cache) Get(ctx context.Context, traderID uuid.UUID) (*models.Aggregate, bool) {
	data, err := c.client.Get(ctx, cacheKey(traderID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("Stats cache read failed")
		}
		return nil, false
	}

	var agg models.Aggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		log.Warn().Err(err).Msg("Stats cache entry corrupt")
		return nil, false
	}
	return &agg, true
}

// Set stores the aggregate for a trader
func (c *Cache) Set(ctx context.Context, traderID uuid.UUID, agg *models.Aggregate) error {
	data, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("failed to marshal aggregate: %w", err)
	}
	return c.client.Set(ctx, cacheKey(traderID), data, c.ttl).Err()
}

// Invalidate drops the cached aggregate for a trader
func (c *Cache) Invalidate(ctx context.Context, traderID uuid.UUID) error {
	return c.client.Del(ctx, cacheKey(traderID)).Err()
}
