// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"
)

// Profile holds the public-facing half of an account: slug, avatar, bio
// and the follow graph. Exactly one Profile exists per User — both rows
// are created in the same transaction, so the pairing is never observed
// half-built.
type Profile struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Slug      string     `json:"slug"`
	Avatar    *string    `json:"avatar,omitempty"`
	Bio       string     `json:"bio"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	Username       string `json:"username,omitempty"`
	FollowerCount  int    `json:"follower_count,omitempty"`
	FollowingCount int    `json:"following_count,omitempty"`
}

// URL returns the canonical profile page path.
func (p *Profile) URL() string {
	return "/profile/" + p.Slug + "/"
}

// AvatarURL returns the stored avatar path, or a generated placeholder
// image keyed by the profile slug when no avatar has been uploaded.
func (p *Profile) AvatarURL() string {
	if p.Avatar != nil && *p.Avatar != "" {
		return *p.Avatar
	}
	return fmt.Sprintf("https://ui-avatars.com/api/?size=150&background=random&name=%s", p.Slug)
}
