// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testRedisClient returns a Redis client for tests.
// Skips if Redis is unavailable.
func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("REDIS_HOST", "localhost")
	port := envOr("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Redis not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"fragment:*", "seen:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnect(t *testing.T) {
	host := envOr("REDIS_HOST", "localhost")
	port := envOr("REDIS_PORT", "6379")

	client, err := Connect(host, port, os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		t.Skipf("skipping integration test: Redis not reachable: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Errorf("ping after connect: %v", err)
	}
}

func TestFragmentCacheRoundTrip(t *testing.T) {
	client := testRedisClient(t)
	ctx := context.Background()
	fc := NewFragmentCache(client, time.Minute)

	type sidebarEntry struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	// Miss before set.
	var out []sidebarEntry
	if fc.Get(ctx, "popular-tags", &out) {
		t.Error("expected miss before set")
	}

	in := []sidebarEntry{{Name: "golang", Count: 12}, {Name: "postgres", Count: 7}}
	fc.Set(ctx, "popular-tags", in)

	if !fc.Get(ctx, "popular-tags", &out) {
		t.Fatal("expected hit after set")
	}
	if len(out) != 2 || out[0].Name != "golang" || out[1].Count != 7 {
		t.Errorf("round trip: %+v", out)
	}

	fc.Invalidate(ctx, "popular-tags")
	if fc.Get(ctx, "popular-tags", &out) {
		t.Error("expected miss after invalidate")
	}
}

func TestFragmentCacheInvalidateAll(t *testing.T) {
	client := testRedisClient(t)
	ctx := context.Background()
	fc := NewFragmentCache(client, time.Minute)

	fc.Set(ctx, "one", "a")
	fc.Set(ctx, "two", "b")
	fc.InvalidateAll(ctx)

	var s string
	if fc.Get(ctx, "one", &s) || fc.Get(ctx, "two", &s) {
		t.Error("fragments survived InvalidateAll")
	}
}

func TestPresence(t *testing.T) {
	client := testRedisClient(t)
	ctx := context.Background()
	p := NewPresence(client)

	if p.IsOnline(ctx, 9001) {
		t.Error("untouched user reported online")
	}

	p.Touch(ctx, 9001)
	if !p.IsOnline(ctx, 9001) {
		t.Error("touched user not reported online")
	}

	seen := p.LastSeen(ctx, 9001)
	if seen.IsZero() {
		t.Fatal("LastSeen returned zero time after touch")
	}
	if time.Since(seen) > time.Minute {
		t.Errorf("LastSeen too old: %v", seen)
	}

	ttl, err := client.TTL(ctx, "seen:9001").Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > PresenceWindow {
		t.Errorf("presence TTL out of range: %v", ttl)
	}
}
