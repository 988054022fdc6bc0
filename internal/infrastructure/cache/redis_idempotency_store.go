// Package cache provides idempotency-key storage for payment webhooks.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "payment:idempotency:"

// RedisIdempotencyStore implements billing.IdempotencyStore using Redis.
// Suitable for distributed deployments where multiple instances must
// share idempotency state.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisIdempotencyStore creates a Redis-backed idempotency store
func NewRedisIdempotencyStore(cfg config.RedisConfig, ttl time.Duration) (*RedisIdempotencyStore, error) {
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

	return NewRedisIdempotencyStoreWithClient(client, defaultKeyPrefix, ttl), nil
}

// NewRedisIdempotencyStoreWithClient creates a store with an existing
// Redis client; useful for testing or sharing a client across components
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// MarkProcessed atomically claims a transaction ID. Returns true when the
// ID was fresh, false when a previous webhook already claimed it.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, transactionID string) (bool, error) {
	fresh, err := s.client.SetNX(ctx, s.keyPrefix+transactionID, "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark transaction as processed: %w", err)
	}
	return fresh, nil
}

// Release frees a claimed transaction ID so a retry after a failed
// reconciliation can succeed
func (s *RedisIdempotencyStore) Release(ctx context.Context, transactionID string) error {
	return s.client.Del(ctx, s.keyPrefix+transactionID).Err()
}

// Close closes the Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ billing.IdempotencyStore = (*RedisIdempotencyStore)(nil)
