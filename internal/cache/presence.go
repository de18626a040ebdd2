// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// presence.go tracks which users are currently online. Every request
// from an authenticated user refreshes a short-lived Redis key; a user
// counts as online while the key has not expired.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	presenceKeyPrefix = "seen:"

	// PresenceWindow is how long after their last request a user still
	// shows as online.
	PresenceWindow = 300 * time.Second
)

// Presence records user activity in Redis.
type Presence struct {
	client *redis.Client
}

// NewPresence creates a presence tracker backed by the given Redis client.
func NewPresence(client *redis.Client) *Presence {
	return &Presence{client: client}
}

// Touch refreshes the user's last-seen marker. Failures are logged and
// swallowed: presence is cosmetic and must never fail a request.
func (p *Presence) Touch(ctx context.Context, userID int64) {
	key := presenceKeyPrefix + strconv.FormatInt(userID, 10)
	if err := p.client.Set(ctx, key, time.Now().Unix(), PresenceWindow).Err(); err != nil {
		slog.Warn("presence touch error", "user_id", userID, "error", err)
	}
}

// IsOnline reports whether the user was active within the presence window.
func (p *Presence) IsOnline(ctx context.Context, userID int64) bool {
	key := presenceKeyPrefix + strconv.FormatInt(userID, 10)
	_, err := p.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("presence check error", "user_id", userID, "error", err)
		return false
	}
	return true
}

// LastSeen returns when the user was last active, or the zero time if
// the marker expired.
func (p *Presence) LastSeen(ctx context.Context, userID int64) time.Time {
	key := presenceKeyPrefix + strconv.FormatInt(userID, 10)
	val, err := p.client.Get(ctx, key).Result()
	if err != nil {
		return time.Time{}
	}
	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}
