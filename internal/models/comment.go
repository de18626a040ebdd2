// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// CommentStatus represents the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusDraft     CommentStatus = "draft"
	CommentStatusPublished CommentStatus = "published"
)

// MaxCommentLength caps comment bodies.
const MaxCommentLength = 3000

// Comment is a threaded comment on an article. Replies reference their
// parent comment; the store assembles the per-article tree newest-first.
type Comment struct {
	ID        int64         `json:"id"`
	ArticleID int64         `json:"article_id"`
	AuthorID  int64         `json:"author_id"`
	Content   string        `json:"content"`
	Status    CommentStatus `json:"status"`
	ParentID  *int64        `json:"parent_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Virtual fields populated by store methods.
	AuthorUsername string    `json:"author_username,omitempty"`
	AuthorSlug     string    `json:"author_slug,omitempty"`
	AuthorAvatar   string    `json:"author_avatar,omitempty"`
	Depth          int       `json:"depth"`
	Children       []Comment `json:"children,omitempty"`
}

// IsChild returns true when the comment is a reply rather than a
// top-level thread starter.
func (c *Comment) IsChild() bool {
	return c.ParentID != nil
}
