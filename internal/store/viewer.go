// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ViewerStore handles view counting. A visitor is identified by user id
// when logged in, otherwise by IP address; revisits never add views.
type ViewerStore struct {
	db *sql.DB
}

// NewViewerStore creates a new ViewerStore with the given database connection.
func NewViewerStore(db *sql.DB) *ViewerStore {
	return &ViewerStore{db: db}
}

// Track records that a visitor viewed an article. The viewer row is
// resolved or created first, then linked to the article; the link's
// primary key makes repeat visits a no-op.
func (s *ViewerStore) Track(ctx context.Context, articleID int64, userID *int64, ip string) error {
	viewerID, err := s.resolve(ctx, userID, ip)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO article_viewers (article_id, viewer_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, articleID, viewerID)
	if err != nil {
		return fmt.Errorf("track view: %w", err)
	}
	return nil
}

// resolve inserts the viewer row for an identity, falling back to a
// select when the row already exists. The unique indexes on user id and
// anonymous IP make concurrent first views land on the same row.
func (s *ViewerStore) resolve(ctx context.Context, userID *int64, ip string) (int64, error) {
	var (
		id  int64
		err error
	)
	if userID != nil {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO viewers (user_id, ip_address) VALUES ($1, $2)
			ON CONFLICT (user_id) WHERE user_id IS NOT NULL DO NOTHING
			RETURNING id
		`, *userID, ip).Scan(&id)
	} else {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO viewers (user_id, ip_address) VALUES (NULL, $1)
			ON CONFLICT (ip_address) WHERE user_id IS NULL DO NOTHING
			RETURNING id
		`, ip).Scan(&id)
	}
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("create viewer: %w", err)
	}

	// Conflict: another request created the row first.
	if userID != nil {
		err = s.db.QueryRowContext(ctx,
			`SELECT id FROM viewers WHERE user_id = $1`, *userID).Scan(&id)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT id FROM viewers WHERE user_id IS NULL AND ip_address = $1`, ip).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve viewer: %w", err)
	}
	return id, nil
}

// CountForArticle returns how many distinct visitors viewed an article.
func (s *ViewerStore) CountForArticle(ctx context.Context, articleID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM article_viewers WHERE article_id = $1
	`, articleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	return count, nil
}
