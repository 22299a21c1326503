package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/channelsync/backend/internal/application/webhook"
)

// RedisDeliveryDeduplicator implements DeliveryDeduplicator using Redis.
// Suitable for distributed deployments where multiple gateway instances
// must share delivery state.
type RedisDeliveryDeduplicator struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisDeliveryDeduplicator creates a Redis-backed delivery deduplicator
func NewRedisDeliveryDeduplicator(cfg RedisConfig) (*RedisDeliveryDeduplicator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDeliveryDeduplicator{
		client:    client,
		keyPrefix: "webhook:delivery:",
	}, nil
}

// NewRedisDeliveryDeduplicatorWithClient creates a deduplicator with an
// existing Redis client. Useful for testing or sharing a client.
func NewRedisDeliveryDeduplicatorWithClient(client *redis.Client, keyPrefix string) *RedisDeliveryDeduplicator {
	if keyPrefix == "" {
		keyPrefix = "webhook:delivery:"
	}
	return &RedisDeliveryDeduplicator{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed marks a delivery as seen with a TTL. Returns true if the
// delivery is fresh, false if it was already seen within the window.
// SETNX makes the check-and-set atomic across instances.
func (s *RedisDeliveryDeduplicator) MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	key := s.keyPrefix + deliveryID

	fresh, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark delivery as processed: %w", err)
	}
	return fresh, nil
}

// Close closes the Redis client
func (s *RedisDeliveryDeduplicator) Close() error {
	return s.client.Close()
}

// Ensure RedisDeliveryDeduplicator implements DeliveryDeduplicator
var _ webhook.DeliveryDeduplicator = (*RedisDeliveryDeduplicator)(nil)
