// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Rating values.
const (
	RatingLike    = 1
	RatingDislike = -1
)

// Rating is a single vote on an article. Uniqueness is enforced on
// (article, ip_address): one vote per IP per article regardless of login
// state. The user reference is informational only.
type Rating struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Value     int       `json:"value"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingOutcome reports what a rating toggle did.
type RatingOutcome string

const (
	RatingCreated RatingOutcome = "created"
	RatingUpdated RatingOutcome = "updated"
	RatingDeleted RatingOutcome = "deleted"
)

// ValidRatingValue reports whether v is an accepted vote value.
func ValidRatingValue(v int) bool {
	return v == RatingLike || v == RatingDislike
}
