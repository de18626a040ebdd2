// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/slug"
)

// TagStore handles all tag-related database operations.
type TagStore struct {
	db *sql.DB
}

// NewTagStore creates a new TagStore with the given database connection.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// FindBySlug retrieves a tag by slug. Returns nil if not found.
func (s *TagStore) FindBySlug(ctx context.Context, tagSlug string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug FROM tags WHERE slug = $1
	`, tagSlug).Scan(&t.ID, &t.Name, &t.Slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return &t, nil
}

// ForArticle returns the tags attached to an article, alphabetically.
func (s *TagStore) ForArticle(ctx context.Context, articleID int64) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug
		FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id = $1
		ORDER BY t.name ASC
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("tags for article: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// SetForArticle replaces an article's tag set with the given names,
// creating tags that do not exist yet. Names are trimmed, deduplicated
// case-insensitively, and blanks are dropped.
func (s *TagStore) SetForArticle(ctx context.Context, articleID int64, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set tags begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("set tags clear: %w", err)
	}

	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		var tagID int64
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM tags WHERE LOWER(name) = LOWER($1)
		`, name).Scan(&tagID)
		if err == sql.ErrNoRows {
			err = tx.QueryRowContext(ctx, `
				INSERT INTO tags (name, slug) VALUES ($1, $2) RETURNING id
			`, name, slug.Generate(name)).Scan(&tagID)
		}
		if err != nil {
			return fmt.Errorf("set tags upsert %q: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, articleID, tagID); err != nil {
			return fmt.Errorf("set tags link %q: %w", name, err)
		}
	}

	return tx.Commit()
}

// Popular returns up to limit tags ordered by how many published
// articles carry them. Used for the sidebar tag cloud.
func (s *TagStore) Popular(ctx context.Context, limit int) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, COUNT(a.id) AS uses
		FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		JOIN articles a ON a.id = at.article_id AND a.status = 'published'
		GROUP BY t.id
		ORDER BY uses DESC, t.name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("popular tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Count); err != nil {
			return nil, fmt.Errorf("scan popular tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
