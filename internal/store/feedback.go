// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"inkwell/internal/models"
)

// FeedbackStore persists contact-form submissions.
type FeedbackStore struct {
	db *sql.DB
}

// NewFeedbackStore creates a new FeedbackStore with the given database connection.
func NewFeedbackStore(db *sql.DB) *FeedbackStore {
	return &FeedbackStore{db: db}
}

// Create inserts a feedback row and returns it with id and timestamp set.
func (s *FeedbackStore) Create(ctx context.Context, f *models.Feedback) (*models.Feedback, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO feedback (subject, email, content, ip_address, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, f.Subject, f.Email, f.Content, f.IPAddress, f.UserID).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return f, nil
}

// Recent returns the newest feedback messages, for the staff dashboard.
func (s *FeedbackStore) Recent(ctx context.Context, limit int) ([]models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject, email, content, ip_address, user_id, created_at
		FROM feedback
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent feedback: %w", err)
	}
	defer rows.Close()

	var items []models.Feedback
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.Subject, &f.Email, &f.Content,
			&f.IPAddress, &f.UserID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}
