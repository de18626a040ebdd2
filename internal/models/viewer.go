// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Viewer identifies a visitor for view counting: the user when
// authenticated, otherwise the bare IP address. One Viewer row may be
// linked to many articles, so a visitor contributes at most one view
// per article.
type Viewer struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	IPAddress string    `json:"ip_address"`
	ViewedOn  time.Time `json:"viewed_on"`
}
