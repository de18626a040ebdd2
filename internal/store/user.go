// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all Inkwell
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
	"inkwell/internal/slug"
)

const userColumns = `id, username, email, password_hash, first_name, last_name,
	is_active, is_staff, last_login, created_at, updated_at`

// UserStore handles all user-related database operations. User and
// Profile rows are managed together: every create goes through one
// transaction so a user without a profile is never observable.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := scanner.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.IsStaff, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID retrieves a user by ID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// FindByUsername retrieves a user by exact username. Returns nil if not found.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

// FindByIdentifier resolves a login identifier against username OR email
// (email matched case-insensitively). When duplicate emails across
// distinct usernames produce more than one match, the lowest-id account
// with exact email equality wins — a documented tie-break, not an error.
func (s *UserStore) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1 OR LOWER(email) = LOWER($1)
		ORDER BY id ASC
	`, identifier)
	if err != nil {
		return nil, fmt.Errorf("find user by identifier: %w", err)
	}
	defer rows.Close()

	var matches []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		matches = append(matches, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find user by identifier: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	}

	// Ambiguous identifier: prefer the oldest account whose email is an
	// exact match. Rows are already ordered by id.
	for _, u := range matches {
		if u.Email == identifier {
			return u, nil
		}
	}
	return matches[0], nil
}

// Authenticate verifies an identifier/password pair. It returns
// (nil, nil) — no match, not an error — when the account is unknown, the
// password does not verify, or the account cannot authenticate, so the
// caller can render one generic invalid-credentials message.
func (s *UserStore) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	u, err := s.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	if !u.CanAuthenticate() {
		return nil, nil
	}
	return u, nil
}

// RegisterInput carries the fields collected by the registration form.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an inactive user together with its profile in a single
// transaction. The profile slug defaults to the username, suffixed when
// taken. The account stays inactive until email confirmation.
func (s *UserStore) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("register begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING `+userColumns,
		in.Username, in.Email, string(hash), in.FirstName, in.LastName,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("register insert user: %w", err)
	}

	profileSlug := slug.Generate(in.Username)
	for {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM profiles WHERE slug = $1)`, profileSlug,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("register check profile slug: %w", err)
		}
		if !exists {
			break
		}
		profileSlug = slug.WithSuffix(slug.Generate(in.Username))
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (user_id, slug) VALUES ($1, $2)`, u.ID, profileSlug,
	); err != nil {
		return nil, fmt.Errorf("register insert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("register commit: %w", err)
	}
	return u, nil
}

// EmailTaken reports whether another account (different username) already
// uses the email. Matches the registration form's uniqueness check.
func (s *UserStore) EmailTaken(ctx context.Context, email, username string) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND username <> $2)
	`, email, username).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("email taken check: %w", err)
	}
	return taken, nil
}

// Activate marks an account as active. Returns false when the user was
// already active, so the confirmation flow can reject reused links.
func (s *UserStore) Activate(ctx context.Context, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET is_active = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_active = FALSE
	`, userID)
	if err != nil {
		return false, fmt.Errorf("activate user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("activate user: %w", err)
	}
	return n == 1, nil
}

// SetPassword replaces the stored password hash.
func (s *UserStore) SetPassword(ctx context.Context, userID int64, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), userID)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

// RecordLogin stamps last_login after a successful authentication.
func (s *UserStore) RecordLogin(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = $1 WHERE id = $2`, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

// ProfileUpdateInput carries the two halves of the profile edit form.
// Both are written in one transaction; a failure on either half leaves
// neither persisted.
type ProfileUpdateInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string

	Slug      string
	Bio       string
	BirthDate *time.Time
	Avatar    *string
}

// UpdateWithProfile updates user fields and profile fields atomically.
func (s *UserStore) UpdateWithProfile(ctx context.Context, userID int64, in ProfileUpdateInput) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("profile update begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET username = $1, email = $2, first_name = $3, last_name = $4, updated_at = NOW()
		WHERE id = $5
	`, in.Username, in.Email, in.FirstName, in.LastName, userID); err != nil {
		return fmt.Errorf("profile update user half: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE profiles SET slug = $1, bio = $2, birth_date = $3, avatar = $4, updated_at = NOW()
		WHERE user_id = $5
	`, in.Slug, in.Bio, in.BirthDate, in.Avatar, userID); err != nil {
		return fmt.Errorf("profile update profile half: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("profile update commit: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
