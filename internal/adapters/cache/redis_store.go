package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homerank/internal/domain"

	"github.com/redis/go-redis/v9"
)

const RedisKeyPrefix = "homerank:cache:"

// RedisStore keeps entries as JSON documents. A zero TTL keeps them until
// evicted.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(fingerprint string) string {
	return RedisKeyPrefix + fingerprint
}

func (r *RedisStore) Get(ctx context.Context, fingerprint string) (*domain.CacheEntry, error) {
	data, err := r.client.Get(ctx, redisKey(fingerprint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal cache entry failed: %w", err)
	}

	return &entry, nil
}

func (r *RedisStore) Put(ctx context.Context, entry domain.CacheEntry) error {
	entry.CreatedAt = createdAt(entry)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry failed: %w", err)
	}

	if err := r.client.Set(ctx, redisKey(entry.Fingerprint), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}
