// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inkwell/internal/models"
)

// ErrInvalidRating is returned for vote values other than 1 and -1.
var ErrInvalidRating = errors.New("rating value must be 1 or -1")

// RatingStore handles all rating-related database operations.
type RatingStore struct {
	db *sql.DB
}

// NewRatingStore creates a new RatingStore with the given database connection.
func NewRatingStore(db *sql.DB) *RatingStore {
	return &RatingStore{db: db}
}

// Toggle applies a vote from the given IP on an article:
//
//   - no existing vote: the vote is recorded (created)
//   - same value already recorded: the vote is withdrawn (deleted)
//   - opposite value recorded: the vote flips (updated)
//
// The insert races through the (article_id, ip_address) unique
// constraint, so two concurrent first votes from one IP leave exactly
// one row. Returns the outcome and the article's recomputed sum.
func (s *RatingStore) Toggle(ctx context.Context, articleID int64, userID *int64, value int, ip string) (models.RatingOutcome, int, error) {
	if !models.ValidRatingValue(value) {
		return "", 0, ErrInvalidRating
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ratings (article_id, user_id, value, ip_address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (article_id, ip_address) DO NOTHING
		RETURNING id
	`, articleID, userID, value, ip).Scan(&id)
	if err == nil {
		sum, err := s.Sum(ctx, articleID)
		return models.RatingCreated, sum, err
	}
	if err != sql.ErrNoRows {
		return "", 0, fmt.Errorf("insert rating: %w", err)
	}

	// A row already exists for this IP: same value withdraws the vote,
	// a different value flips it.
	var existing int
	err = s.db.QueryRowContext(ctx, `
		SELECT value FROM ratings WHERE article_id = $1 AND ip_address = $2
	`, articleID, ip).Scan(&existing)
	if err != nil {
		return "", 0, fmt.Errorf("read existing rating: %w", err)
	}

	outcome := models.RatingUpdated
	if existing == value {
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM ratings WHERE article_id = $1 AND ip_address = $2
		`, articleID, ip)
		outcome = models.RatingDeleted
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE ratings SET value = $3, user_id = $4
			WHERE article_id = $1 AND ip_address = $2
		`, articleID, ip, value, userID)
	}
	if err != nil {
		return "", 0, fmt.Errorf("toggle rating: %w", err)
	}

	sum, err := s.Sum(ctx, articleID)
	return outcome, sum, err
}

// Sum returns the article's live rating total: likes minus dislikes,
// zero when no votes exist.
func (s *RatingStore) Sum(ctx context.Context, articleID int64) (int, error) {
	var sum int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(value), 0) FROM ratings WHERE article_id = $1
	`, articleID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("rating sum: %w", err)
	}
	return sum, nil
}

// ForVisitor returns the vote this IP holds on the article, or nil.
func (s *RatingStore) ForVisitor(ctx context.Context, articleID int64, ip string) (*models.Rating, error) {
	var r models.Rating
	err := s.db.QueryRowContext(ctx, `
		SELECT id, article_id, user_id, value, ip_address, created_at
		FROM ratings WHERE article_id = $1 AND ip_address = $2
	`, articleID, ip).Scan(&r.ID, &r.ArticleID, &r.UserID, &r.Value, &r.IPAddress, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rating for visitor: %w", err)
	}
	return &r, nil
}
