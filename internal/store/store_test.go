// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. The cascade takes their
// profiles and comments with them. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanArticles removes test articles by slug. Call in t.Cleanup().
func cleanArticles(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM articles WHERE slug = $1", slug)
	}
}

// cleanCategories removes test categories by slug. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", slug)
	}
}

// cleanTags removes test tags by name. Call in t.Cleanup().
func cleanTags(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM tags WHERE name = $1", name)
	}
}

// seedUser registers and activates a user for tests that need an author.
func seedUser(t *testing.T, db *sql.DB, username, email string) *models.User {
	t.Helper()
	ctx := context.Background()
	s := NewUserStore(db)

	u, err := s.Register(ctx, RegisterInput{
		Username: username,
		Email:    email,
		Password: "testpass123",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	if _, err := s.Activate(ctx, u.ID); err != nil {
		t.Fatalf("activate seed user %s: %v", username, err)
	}
	u.IsActive = true
	return u
}

// seedCategory creates a category for tests that need one.
func seedCategory(t *testing.T, db *sql.DB, title, slug string) *models.Category {
	t.Helper()
	s := NewCategoryStore(db)
	c, err := s.Create(context.Background(), &models.Category{Title: title, Slug: slug})
	if err != nil {
		t.Fatalf("seed category %s: %v", slug, err)
	}
	return c
}

// seedArticle creates a published article for tests that need one.
func seedArticle(t *testing.T, db *sql.DB, authorID, categoryID int64, title, slug string) *models.Article {
	t.Helper()
	s := NewArticleStore(db)
	a, err := s.Create(context.Background(), &models.Article{
		Title:            title,
		Slug:             slug,
		AuthorID:         authorID,
		CategoryID:       categoryID,
		ShortDescription: "short text for " + title,
		FullDescription:  "full body text for " + title,
		Status:           models.ArticleStatusPublished,
	})
	if err != nil {
		t.Fatalf("seed article %s: %v", slug, err)
	}
	return a
}
