// Package cache keeps reference lists (companies, gyms, locations, grades...) in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type ReferenceCache interface {
	// Get decodes the value at key into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// Invalidate removes every key starting with entity.
	Invalidate(ctx context.Context, entity string) error
}

type redisReferenceCache struct {
	redisClient *redis.Client
	keyPrefix   string
	ttl         time.Duration
}

func NewRedisReferenceCache(redisClient *redis.Client, keyPrefix string, ttl time.Duration) ReferenceCache {
	return &redisReferenceCache{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
		ttl:         ttl,
	}
}

// Key joins an entity and its parameters into a cache key.
func Key(entity string, params ...string) string {
	if len(params) == 0 {
		return entity
	}
	return entity + ":" + strings.Join(params, "|")
}

func (c *redisReferenceCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.redisClient.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *redisReferenceCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s for cache: %w", key, err)
	}

	if err := c.redisClient.Set(ctx, c.keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}
	return nil
}

func (c *redisReferenceCache) Invalidate(ctx context.Context, entity string) error {
	iter := c.redisClient.Scan(ctx, 0, c.keyPrefix+entity+"*", 100).Iterator()
	removed := 0
	for iter.Next(ctx) {
		if err := c.redisClient.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate %s: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan %s keys: %w", entity, err)
	}

	log.Debugf("Invalidated %d cached %s keys", removed, entity)
	return nil
}

// Remember returns the cached value at key, or calls load and caches its result.
// Cache failures are logged and fall through to load.
func Remember[T any](ctx context.Context, c ReferenceCache, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if c != nil {
		hit, err := c.Get(ctx, key, &cached)
		if err != nil {
			log.Warnf("⚠️ Reference cache read failed: %v", err)
		} else if hit {
			return cached, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if c != nil {
		if err := c.Set(ctx, key, value); err != nil {
			log.Warnf("⚠️ Reference cache write failed: %v", err)
		}
	}
	return value, nil
}
