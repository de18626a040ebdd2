// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// fragment.go provides a Redis-backed cache for expensive sidebar
// fragments (popular tags, latest comments, the category tree). The
// queries behind them touch several tables on every page view, so the
// results are held briefly and rebuilt on miss.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// fragmentKeyPrefix is the Redis key prefix for cached fragments.
	fragmentKeyPrefix = "fragment:"

	// DefaultFragmentTTL is how long a cached fragment stays valid.
	DefaultFragmentTTL = 5 * time.Minute
)

// FragmentCache manages JSON-encoded fragment caching in Redis.
type FragmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFragmentCache creates a fragment cache backed by the given Redis client.
func NewFragmentCache(client *redis.Client, ttl time.Duration) *FragmentCache {
	if ttl == 0 {
		ttl = DefaultFragmentTTL
	}
	return &FragmentCache{client: client, ttl: ttl}
}

// Get decodes a cached fragment into dest. Returns false on miss; cache
// errors count as misses so pages render from the database instead.
func (fc *FragmentCache) Get(ctx context.Context, key string, dest any) bool {
	val, err := fc.client.Get(ctx, fragmentKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("fragment cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		slog.Warn("fragment cache decode error", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores a fragment value with the configured TTL.
func (fc *FragmentCache) Set(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		slog.Warn("fragment cache encode error", "key", key, "error", err)
		return
	}
	if err := fc.client.Set(ctx, fragmentKeyPrefix+key, payload, fc.ttl).Err(); err != nil {
		slog.Warn("fragment cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single fragment.
func (fc *FragmentCache) Invalidate(ctx context.Context, key string) {
	if err := fc.client.Del(ctx, fragmentKeyPrefix+key).Err(); err != nil {
		slog.Warn("fragment cache invalidate error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached fragment by scanning for the prefix.
func (fc *FragmentCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	for {
		keys, nextCursor, err := fc.client.Scan(ctx, cursor, fragmentKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("fragment cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := fc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("fragment cache bulk delete error", "error", err)
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
}
