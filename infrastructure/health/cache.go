package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"payment-gateway/domain/payment"
	"payment-gateway/infrastructure/config"
)

// Cache is the shared processor health store. Snapshots live under
// health:<processor> with a freshness TTL; the probe permit lives
// under health_check_limit:<processor> with the rate-limit TTL and is
// claimed with an atomic set-if-absent, so exactly one worker across
// all instances probes per window.
type Cache struct {
	client    *redis.Client
	cacheTTL  time.Duration
	rateLimit time.Duration
}

func NewCache(client *redis.Client, cfg *config.Config) *Cache {
	return &Cache{
		client:    client,
		cacheTTL:  cfg.HealthCacheTTL,
		rateLimit: cfg.HealthRateLimit,
	}
}

func statusKey(processor payment.ProcessorType) string {
	return fmt.Sprintf("health:%s", processor)
}

func permitKey(processor payment.ProcessorType) string {
	return fmt.Sprintf("health_check_limit:%s", processor)
}

func (c *Cache) GetHealthStatus(ctx context.Context, processor payment.ProcessorType) (*payment.HealthStatus, error) {
	data, err := c.client.Get(ctx, statusKey(processor)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var status payment.HealthStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Cache) SetHealthStatus(ctx context.Context, processor payment.ProcessorType, status payment.HealthStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statusKey(processor), data, c.cacheTTL).Err()
}

func (c *Cache) CanCheckHealth(ctx context.Context, processor payment.ProcessorType) (bool, error) {
	marker := time.Now().UTC().UnixMilli()
	return c.client.SetNX(ctx, permitKey(processor), marker, c.rateLimit).Result()
}
