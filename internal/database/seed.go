package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a staff
// account (active, no email confirmation needed) with its profile, and a
// root "General" category so articles can be created immediately.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// User and profile go in together; a user without a profile must not
	// be observable even in seed data.
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	var userID int64
	err = tx.QueryRow(`
		INSERT INTO users (username, email, password_hash, is_active, is_staff)
		VALUES ($1, $2, $3, TRUE, TRUE)
		RETURNING id
	`, "admin", "admin@inkwell.local", string(hash)).Scan(&userID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO profiles (user_id, slug) VALUES ($1, $2)
	`, userID, "admin"); err != nil {
		return fmt.Errorf("seed insert admin profile: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO categories (title, slug, description)
		VALUES ('General', 'general', 'Default category')
	`); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default staff user",
		"username", "admin",
		"password", "admin",
	)

	return nil
}
