// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"inkwell/internal/models"
)

func TestRatingToggle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewRatingStore(db)

	email := "rating-toggle@store-test.local"
	t.Cleanup(func() {
		cleanArticles(t, db, "rating-toggle-article")
		cleanCategories(t, db, "rating-toggle-cat")
		cleanUsers(t, db, email)
	})

	u := seedUser(t, db, "rating-toggle", email)
	c := seedCategory(t, db, "Rating Toggle", "rating-toggle-cat")
	a := seedArticle(t, db, u.ID, c.ID, "Rating Toggle Article", "rating-toggle-article")

	ip := "203.0.113.10"

	// First vote creates.
	outcome, sum, err := s.Toggle(ctx, a.ID, &u.ID, models.RatingLike, ip)
	if err != nil {
		t.Fatalf("Toggle (create): %v", err)
	}
	if outcome != models.RatingCreated {
		t.Errorf("outcome: got %q, want %q", outcome, models.RatingCreated)
	}
	if sum != 1 {
		t.Errorf("sum after like: got %d, want 1", sum)
	}

	// Opposite value flips.
	outcome, sum, err = s.Toggle(ctx, a.ID, &u.ID, models.RatingDislike, ip)
	if err != nil {
		t.Fatalf("Toggle (flip): %v", err)
	}
	if outcome != models.RatingUpdated {
		t.Errorf("outcome: got %q, want %q", outcome, models.RatingUpdated)
	}
	if sum != -1 {
		t.Errorf("sum after flip: got %d, want -1", sum)
	}

	// Same value withdraws.
	outcome, sum, err = s.Toggle(ctx, a.ID, &u.ID, models.RatingDislike, ip)
	if err != nil {
		t.Fatalf("Toggle (withdraw): %v", err)
	}
	if outcome != models.RatingDeleted {
		t.Errorf("outcome: got %q, want %q", outcome, models.RatingDeleted)
	}
	if sum != 0 {
		t.Errorf("sum after withdraw: got %d, want 0", sum)
	}
}

func TestRatingToggleOneVotePerIP(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewRatingStore(db)

	email := "rating-ip@store-test.local"
	t.Cleanup(func() {
		cleanArticles(t, db, "rating-ip-article")
		cleanCategories(t, db, "rating-ip-cat")
		cleanUsers(t, db, email)
	})

	u := seedUser(t, db, "rating-ip", email)
	c := seedCategory(t, db, "Rating IP", "rating-ip-cat")
	a := seedArticle(t, db, u.ID, c.ID, "Rating IP Article", "rating-ip-article")

	// Anonymous like, then a logged-in like from the same IP: the
	// second call is a withdrawal, not a second vote.
	if _, _, err := s.Toggle(ctx, a.ID, nil, models.RatingLike, "198.51.100.7"); err != nil {
		t.Fatalf("Toggle anonymous: %v", err)
	}
	outcome, sum, err := s.Toggle(ctx, a.ID, &u.ID, models.RatingLike, "198.51.100.7")
	if err != nil {
		t.Fatalf("Toggle logged-in: %v", err)
	}
	if outcome != models.RatingDeleted {
		t.Errorf("outcome: got %q, want %q", outcome, models.RatingDeleted)
	}
	if sum != 0 {
		t.Errorf("sum: got %d, want 0", sum)
	}

	// A different IP is a fresh vote.
	outcome, sum, err = s.Toggle(ctx, a.ID, nil, models.RatingLike, "198.51.100.8")
	if err != nil {
		t.Fatalf("Toggle other IP: %v", err)
	}
	if outcome != models.RatingCreated {
		t.Errorf("outcome: got %q, want %q", outcome, models.RatingCreated)
	}
	if sum != 1 {
		t.Errorf("sum: got %d, want 1", sum)
	}
}

func TestRatingToggleRejectsInvalidValue(t *testing.T) {
	db := testDB(t)
	s := NewRatingStore(db)

	if _, _, err := s.Toggle(context.Background(), 1, nil, 5, "192.0.2.1"); err != ErrInvalidRating {
		t.Errorf("expected ErrInvalidRating, got %v", err)
	}
}

func TestRatingSumEmpty(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewRatingStore(db)

	email := "rating-empty@store-test.local"
	t.Cleanup(func() {
		cleanArticles(t, db, "rating-empty-article")
		cleanCategories(t, db, "rating-empty-cat")
		cleanUsers(t, db, email)
	})

	u := seedUser(t, db, "rating-empty", email)
	c := seedCategory(t, db, "Rating Empty", "rating-empty-cat")
	a := seedArticle(t, db, u.ID, c.ID, "Rating Empty Article", "rating-empty-article")

	sum, err := s.Sum(ctx, a.ID)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if sum != 0 {
		t.Errorf("sum with no votes: got %d, want 0", sum)
	}
}
