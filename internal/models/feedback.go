// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Feedback is a message submitted through the contact form. Rows are
// append-only; a copy is also mailed to the site administrator by a
// background task.
type Feedback struct {
	ID        int64     `json:"id"`
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	Content   string    `json:"content"`
	IPAddress *string   `json:"ip_address,omitempty"`
	UserID    *int64    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
