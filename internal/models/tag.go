// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Tag is a free-form label attached to articles through a many-to-many
// join. Tags are created on first use and shared across articles.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	// Count is populated by popularity queries only.
	Count int `json:"count,omitempty"`
}

// URL returns the tag-filtered article listing path.
func (t *Tag) URL() string {
	return "/articles/tags/" + t.Slug + "/"
}
