// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/slug"
)

// articleColumns are the columns selected for every article query, joined
// with the author's username and the category title/slug.
const articleColumns = `a.id, a.title, a.slug, a.author_id, a.updated_by_id, a.category_id,
	a.short_description, a.full_description, a.thumbnail, a.status, a.pinned,
	a.created_at, a.updated_at, u.username, u.is_staff, c.title, c.slug`

const articleJoins = `
	FROM articles a
	JOIN users u ON u.id = a.author_id
	JOIN categories c ON c.id = a.category_id`

// Listings show pinned articles first, then newest-first.
const articleOrder = ` ORDER BY a.pinned DESC, a.created_at DESC`

// ArticleStore handles all article-related database operations.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	var a models.Article
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Slug, &a.AuthorID, &a.UpdatedByID, &a.CategoryID,
		&a.ShortDescription, &a.FullDescription, &a.Thumbnail, &a.Status, &a.Pinned,
		&a.CreatedAt, &a.UpdatedAt, &a.AuthorUsername, &a.AuthorIsStaff, &a.CategoryTitle, &a.CategorySlug,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *ArticleStore) queryArticles(ctx context.Context, query string, args ...any) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// ListPublished returns published articles for the home page, pinned
// first then newest-first, with limit/offset pagination.
func (s *ArticleStore) ListPublished(ctx context.Context, limit, offset int) ([]models.Article, error) {
	return s.queryArticles(ctx, `
		SELECT `+articleColumns+articleJoins+`
		WHERE a.status = 'published'`+articleOrder+`
		LIMIT $1 OFFSET $2
	`, limit, offset)
}

// CountPublished returns the number of published articles.
func (s *ArticleStore) CountPublished(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE status = 'published'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count published articles: %w", err)
	}
	return count, nil
}

// ListByCategories returns published articles in any of the given
// category ids (a category page includes its whole subtree).
func (s *ArticleStore) ListByCategories(ctx context.Context, categoryIDs []int64, limit, offset int) ([]models.Article, error) {
	return s.queryArticles(ctx, `
		SELECT `+articleColumns+articleJoins+`
		WHERE a.status = 'published' AND a.category_id = ANY($1)`+articleOrder+`
		LIMIT $2 OFFSET $3
	`, int64Array(categoryIDs), limit, offset)
}

// ListByTag returns published articles carrying the tag with the given slug.
func (s *ArticleStore) ListByTag(ctx context.Context, tagSlug string, limit, offset int) ([]models.Article, error) {
	return s.queryArticles(ctx, `
		SELECT `+articleColumns+articleJoins+`
		JOIN article_tags at ON at.article_id = a.id
		JOIN tags t ON t.id = at.tag_id
		WHERE a.status = 'published' AND t.slug = $1`+articleOrder+`
		LIMIT $2 OFFSET $3
	`, tagSlug, limit, offset)
}

// ListByAuthors returns published articles written by any of the given
// user ids. Used for the followed-authors feed.
func (s *ArticleStore) ListByAuthors(ctx context.Context, authorIDs []int64, limit, offset int) ([]models.Article, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	return s.queryArticles(ctx, `
		SELECT `+articleColumns+articleJoins+`
		WHERE a.status = 'published' AND a.author_id = ANY($1)`+articleOrder+`
		LIMIT $2 OFFSET $3
	`, int64Array(authorIDs), limit, offset)
}

// Search runs a weighted full-text query: the title carries weight A,
// the body weight B. Results below the 0.3 relevance floor are dropped;
// the rest come back ordered by descending rank. The query string is
// handed to the engine as-is — empty input is the engine's concern.
func (s *ArticleStore) Search(ctx context.Context, query string, limit, offset int) ([]models.Article, error) {
	return s.queryArticles(ctx, `
		SELECT `+articleColumns+articleJoins+`
		WHERE a.status = 'published'
		  AND ts_rank(a.search_vector, plainto_tsquery('english', $1)) >= 0.3
		ORDER BY ts_rank(a.search_vector, plainto_tsquery('english', $1)) DESC, a.created_at DESC
		LIMIT $2 OFFSET $3
	`, query, limit, offset)
}

// FindBySlug retrieves an article by slug regardless of status (authors
// can open their drafts). Returns nil if not found.
func (s *ArticleStore) FindBySlug(ctx context.Context, articleSlug string) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+articleColumns+articleJoins+`
		WHERE a.slug = $1
	`, articleSlug)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	return a, nil
}

// FindByID retrieves an article by id. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id int64) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+articleColumns+articleJoins+`
		WHERE a.id = $1
	`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// Create inserts a new article. An empty slug defaults from the title,
// suffixed until unique.
func (s *ArticleStore) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	if a.Slug == "" {
		a.Slug = slug.Generate(a.Title)
	}
	for {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)`, a.Slug,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("create article slug check: %w", err)
		}
		if !exists {
			break
		}
		a.Slug = slug.WithSuffix(slug.Generate(a.Title))
	}

	row := s.db.QueryRowContext(ctx, `
		WITH inserted AS (
			INSERT INTO articles (title, slug, author_id, category_id,
			                      short_description, full_description, thumbnail, status, pinned)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING *
		)
		SELECT `+articleColumns+`
		FROM inserted a
		JOIN users u ON u.id = a.author_id
		JOIN categories c ON c.id = a.category_id
	`, a.Title, a.Slug, a.AuthorID, a.CategoryID,
		a.ShortDescription, a.FullDescription, a.Thumbnail, a.Status, a.Pinned,
	)
	result, err := scanArticle(row)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return result, nil
}

// Update modifies an existing article, recording who edited it.
func (s *ArticleStore) Update(ctx context.Context, a *models.Article, editorID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE articles SET
			title = $1, category_id = $2, short_description = $3,
			full_description = $4, thumbnail = $5, status = $6, pinned = $7,
			updated_by_id = $8, updated_at = NOW()
		WHERE id = $9
	`, a.Title, a.CategoryID, a.ShortDescription,
		a.FullDescription, a.Thumbnail, a.Status, a.Pinned, editorID, a.ID)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

// Delete removes an article; comments, ratings and view links cascade.
func (s *ArticleStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// Similar returns up to limit published articles sharing the most tags
// with the given article.
func (s *ArticleStore) Similar(ctx context.Context, articleID int64, limit int) ([]models.Article, error) {
	return s.queryArticles(ctx, `
		SELECT `+articleColumns+articleJoins+`
		JOIN article_tags at ON at.article_id = a.id
		WHERE a.status = 'published'
		  AND a.id <> $1
		  AND at.tag_id IN (SELECT tag_id FROM article_tags WHERE article_id = $1)
		GROUP BY a.id, u.username, c.title, c.slug
		ORDER BY COUNT(at.tag_id) DESC, a.created_at DESC
		LIMIT $2
	`, articleID, limit)
}

// ListAllPublished returns every published article ordered newest-first.
// Used by the sitemap.
func (s *ArticleStore) ListAllPublished(ctx context.Context) ([]models.Article, error) {
	return s.queryArticles(ctx, `
		SELECT ` + articleColumns + articleJoins + `
		WHERE a.status = 'published'` + articleOrder)
}

// int64Array adapts a []int64 for a Postgres ANY($n) parameter through
// the pgx stdlib driver.
func int64Array(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
