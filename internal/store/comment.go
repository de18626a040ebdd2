// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/models"
)

// Comment validation errors surfaced to handlers as form feedback.
var (
	ErrCommentEmpty   = errors.New("comment content is required")
	ErrCommentTooLong = fmt.Errorf("comment exceeds %d characters", models.MaxCommentLength)
	ErrParentMismatch = errors.New("parent comment belongs to a different article")
)

// CommentStore handles all comment-related database operations.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `c.id, c.article_id, c.author_id, c.content, c.status,
	c.parent_id, c.created_at, c.updated_at, u.username, p.slug, p.avatar`

func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	var avatar sql.NullString
	err := scanner.Scan(
		&c.ID, &c.ArticleID, &c.AuthorID, &c.Content, &c.Status,
		&c.ParentID, &c.CreatedAt, &c.UpdatedAt, &c.AuthorUsername, &c.AuthorSlug, &avatar,
	)
	if err != nil {
		return nil, err
	}
	if avatar.Valid {
		c.AuthorAvatar = avatar.String
	}
	return &c, nil
}

// Create validates and inserts a comment. A non-nil parentID makes it a
// reply; the parent must belong to the same article.
func (s *CommentStore) Create(ctx context.Context, articleID, authorID int64, content string, parentID *int64) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentEmpty
	}
	if len([]rune(content)) > models.MaxCommentLength {
		return nil, ErrCommentTooLong
	}

	if parentID != nil {
		var parentArticle int64
		err := s.db.QueryRowContext(ctx,
			`SELECT article_id FROM comments WHERE id = $1`, *parentID,
		).Scan(&parentArticle)
		if err == sql.ErrNoRows {
			return nil, ErrParentMismatch
		}
		if err != nil {
			return nil, fmt.Errorf("check parent comment: %w", err)
		}
		if parentArticle != articleID {
			return nil, ErrParentMismatch
		}
	}

	row := s.db.QueryRowContext(ctx, `
		WITH inserted AS (
			INSERT INTO comments (article_id, author_id, content, parent_id)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT `+commentColumns+`
		FROM inserted c
		JOIN users u ON u.id = c.author_id
		JOIN profiles p ON p.user_id = c.author_id
	`, articleID, authorID, content, parentID)
	c, err := scanComment(row)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// TreeForArticle returns the article's published comments as a thread
// tree. Top-level comments come newest-first; replies nest under their
// parent, oldest-first, so conversations read top to bottom.
func (s *CommentStore) TreeForArticle(ctx context.Context, articleID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments c
		JOIN users u ON u.id = c.author_id
		JOIN profiles p ON p.user_id = c.author_id
		WHERE c.article_id = $1 AND c.status = 'published'
		ORDER BY c.created_at ASC
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("comments for article: %w", err)
	}
	defer rows.Close()

	var flat []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		flat = append(flat, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buildCommentTree(flat), nil
}

// buildCommentTree nests replies under their parents. Replies whose
// parent is unpublished attach at the top level rather than vanish.
func buildCommentTree(flat []*models.Comment) []models.Comment {
	byID := make(map[int64]*models.Comment, len(flat))
	for _, c := range flat {
		byID[c.ID] = c
	}

	children := make(map[int64][]*models.Comment)
	var roots []*models.Comment
	for _, c := range flat {
		if c.ParentID != nil {
			if _, ok := byID[*c.ParentID]; ok {
				children[*c.ParentID] = append(children[*c.ParentID], c)
				continue
			}
		}
		roots = append(roots, c)
	}

	var materialize func(c *models.Comment, depth int) models.Comment
	materialize = func(c *models.Comment, depth int) models.Comment {
		node := *c
		node.Depth = depth
		for _, child := range children[c.ID] {
			node.Children = append(node.Children, materialize(child, depth+1))
		}
		return node
	}

	// Top level is newest-first; the flat scan was oldest-first.
	out := make([]models.Comment, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		out = append(out, materialize(roots[i], 0))
	}
	return out
}

// CountForArticle returns the number of published comments on an article.
func (s *CommentStore) CountForArticle(ctx context.Context, articleID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM comments
		WHERE article_id = $1 AND status = 'published'
	`, articleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

// Latest returns the newest published comments across all articles.
// Used for the sidebar.
func (s *CommentStore) Latest(ctx context.Context, limit int) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments c
		JOIN users u ON u.id = c.author_id
		JOIN profiles p ON p.user_id = c.author_id
		WHERE c.status = 'published'
		ORDER BY c.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("latest comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Delete removes a comment and, through the cascade, its replies.
func (s *CommentStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
