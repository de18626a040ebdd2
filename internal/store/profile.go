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

const profileColumns = `p.id, p.user_id, p.slug, p.avatar, p.bio, p.birth_date,
	p.created_at, p.updated_at, u.username`

// ProfileStore handles profile lookups and the follow graph.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore creates a new ProfileStore with the given database connection.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(scanner interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	err := scanner.Scan(
		&p.ID, &p.UserID, &p.Slug, &p.Avatar, &p.Bio, &p.BirthDate,
		&p.CreatedAt, &p.UpdatedAt, &p.Username,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindBySlug retrieves a profile by its slug. Returns nil if not found.
func (s *ProfileStore) FindBySlug(ctx context.Context, slug string) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles p JOIN users u ON u.id = p.user_id
		WHERE p.slug = $1
	`, slug)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile by slug: %w", err)
	}
	return p, nil
}

// FindByUserID retrieves the profile belonging to a user. Returns nil if
// not found (which would mean the create-transaction invariant is broken).
func (s *ProfileStore) FindByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles p JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`, userID)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile by user id: %w", err)
	}
	return p, nil
}

// Counts fills FollowerCount and FollowingCount on the given profile.
func (s *ProfileStore) Counts(ctx context.Context, p *models.Profile) error {
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM profile_follows WHERE following_id = $1),
			(SELECT COUNT(*) FROM profile_follows WHERE follower_id = $1)
	`, p.ID).Scan(&p.FollowerCount, &p.FollowingCount)
	if err != nil {
		return fmt.Errorf("profile counts: %w", err)
	}
	return nil
}

// IsFollowing reports whether follower already follows following.
func (s *ProfileStore) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	var following bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM profile_follows WHERE follower_id = $1 AND following_id = $2
		)
	`, followerID, followingID).Scan(&following)
	if err != nil {
		return false, fmt.Errorf("is following: %w", err)
	}
	return following, nil
}

// ToggleFollow flips the follow edge from follower to following and
// returns true when the edge now exists, false when it was removed.
func (s *ProfileStore) ToggleFollow(ctx context.Context, followerID, followingID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM profile_follows WHERE follower_id = $1 AND following_id = $2
	`, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("toggle follow delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggle follow: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	// ON CONFLICT guards against a concurrent toggle inserting first.
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO profile_follows (follower_id, following_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, followerID, followingID); err != nil {
		return false, fmt.Errorf("toggle follow insert: %w", err)
	}
	return true, nil
}

// FollowingUserIDs returns the user ids of the authors the given profile
// follows. Used for the subscription-filtered article listing.
func (s *ProfileStore) FollowingUserIDs(ctx context.Context, profileID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.user_id
		FROM profile_follows f
		JOIN profiles p ON p.id = f.following_id
		WHERE f.follower_id = $1
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("following user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan following id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Followers returns the profiles following the given profile.
func (s *ProfileStore) Followers(ctx context.Context, profileID int64) ([]models.Profile, error) {
	return s.edgeProfiles(ctx, `
		SELECT `+profileColumns+`
		FROM profile_follows f
		JOIN profiles p ON p.id = f.follower_id
		JOIN users u ON u.id = p.user_id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC
	`, profileID)
}

// Following returns the profiles the given profile follows.
func (s *ProfileStore) Following(ctx context.Context, profileID int64) ([]models.Profile, error) {
	return s.edgeProfiles(ctx, `
		SELECT `+profileColumns+`
		FROM profile_follows f
		JOIN profiles p ON p.id = f.following_id
		JOIN users u ON u.id = p.user_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`, profileID)
}

func (s *ProfileStore) edgeProfiles(ctx context.Context, query string, id int64) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("follow edge profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}
