// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	// FlashCookieName carries the flash bucket id. It is separate from
	// the session cookie so guests can receive flashes too.
	FlashCookieName = "iw_flash"

	flashPrefix = "flash:"
	flashTTL    = 10 * time.Minute
)

// AddFlash queues a one-time message for the visitor. The bucket lives
// in Redis under a dedicated cookie, created on first use.
func (s *Store) AddFlash(ctx context.Context, w http.ResponseWriter, r *http.Request, message string) error {
	id := ""
	if cookie, err := r.Cookie(FlashCookieName); err == nil {
		id = cookie.Value
	}
	if id == "" {
		var err error
		id, err = generateID()
		if err != nil {
			return fmt.Errorf("flash id: %w", err)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     FlashCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(flashTTL.Seconds()),
		})
	}

	key := flashPrefix + id
	if err := s.client.RPush(ctx, key, message).Err(); err != nil {
		return fmt.Errorf("flash push: %w", err)
	}
	s.client.Expire(ctx, key, flashTTL)
	return nil
}

// PopFlashes returns and clears the visitor's queued messages, oldest
// first. Returns nil when there is nothing to show.
func (s *Store) PopFlashes(ctx context.Context, r *http.Request) []string {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	key := flashPrefix + cookie.Value
	pipe := s.client.TxPipeline()
	items := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil
	}
	messages, err := items.Result()
	if err != nil || len(messages) == 0 {
		return nil
	}
	return messages
}
