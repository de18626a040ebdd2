// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ArticleStatus represents the publishing state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// Article is a blog post. Listings order pinned articles first, then
// newest-first. The category reference is delete-protected: a category
// cannot be removed while articles still point at it.
type Article struct {
	ID               int64         `json:"id"`
	Title            string        `json:"title"`
	Slug             string        `json:"slug"`
	AuthorID         int64         `json:"author_id"`
	UpdatedByID      *int64        `json:"updated_by_id,omitempty"`
	CategoryID       int64         `json:"category_id"`
	ShortDescription string        `json:"short_description"`
	FullDescription  string        `json:"full_description"`
	Thumbnail        *string       `json:"thumbnail,omitempty"`
	Status           ArticleStatus `json:"status"`
	Pinned           bool          `json:"pinned"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	// Virtual fields populated by store methods.
	AuthorUsername string   `json:"author_username,omitempty"`
	AuthorIsStaff  bool     `json:"author_is_staff,omitempty"`
	CategoryTitle  string   `json:"category_title,omitempty"`
	CategorySlug   string   `json:"category_slug,omitempty"`
	Tags           []Tag    `json:"tags,omitempty"`
	RatingSum      int      `json:"rating_sum"`
	ViewCount      int      `json:"view_count"`
}

// IsPublished returns true if the article is visible on the public site.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// URL returns the canonical article detail path.
func (a *Article) URL() string {
	return "/articles/" + a.Slug + "/"
}
