// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"
)

func TestUserStoreRegisterCreatesProfile(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewUserStore(db)

	email := "register-profile@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	u, err := s.Register(ctx, RegisterInput{
		Username:  "register-profile",
		Email:     email,
		Password:  "testpass123",
		FirstName: "Reg",
		LastName:  "Ister",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if u.ID == 0 {
		t.Error("expected non-zero user id")
	}
	if u.IsActive {
		t.Error("new accounts must start inactive")
	}
	if u.PasswordHash == "testpass123" {
		t.Error("password hash must not be plaintext")
	}

	// The profile is created in the same transaction as the user.
	p, err := NewProfileStore(db).FindByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if p == nil {
		t.Fatal("expected a profile for the new user")
	}
	if p.Slug == "" {
		t.Error("expected non-empty profile slug")
	}
}

func TestUserStoreAuthenticate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewUserStore(db)

	email := "auth-flow@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	u := seedUser(t, db, "auth-flow", email)

	// By username.
	got, err := s.Authenticate(ctx, "auth-flow", "testpass123")
	if err != nil {
		t.Fatalf("Authenticate by username: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatal("expected authentication by username to succeed")
	}

	// By email, case-insensitive.
	got, err = s.Authenticate(ctx, "AUTH-FLOW@store-test.local", "testpass123")
	if err != nil {
		t.Fatalf("Authenticate by email: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatal("expected authentication by email to succeed")
	}

	// Wrong password.
	got, err = s.Authenticate(ctx, "auth-flow", "wrongpass")
	if err != nil {
		t.Fatalf("Authenticate wrong password: %v", err)
	}
	if got != nil {
		t.Error("expected nil for wrong password")
	}

	// Unknown identifier.
	got, err = s.Authenticate(ctx, "no-such-user", "testpass123")
	if err != nil {
		t.Fatalf("Authenticate unknown: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown identifier")
	}
}

func TestUserStoreAuthenticateInactive(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewUserStore(db)

	email := "auth-inactive@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	if _, err := s.Register(ctx, RegisterInput{
		Username: "auth-inactive",
		Email:    email,
		Password: "testpass123",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := s.Authenticate(ctx, "auth-inactive", "testpass123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got != nil {
		t.Error("inactive accounts must not authenticate")
	}
}

// Two accounts can share an email; lookup by that email must settle on
// the exact match with the lowest id.
func TestUserStoreFindByIdentifierTieBreak(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewUserStore(db)

	email := "shared@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	first := seedUser(t, db, "shared-first", email)
	seedUser(t, db, "shared-second", email)

	got, err := s.FindByIdentifier(ctx, email)
	if err != nil {
		t.Fatalf("FindByIdentifier: %v", err)
	}
	if got == nil {
		t.Fatal("expected a user")
	}
	if got.ID != first.ID {
		t.Errorf("tie-break: got id %d, want lowest id %d", got.ID, first.ID)
	}
}

func TestUserStoreActivateIsSingleUse(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewUserStore(db)

	email := "activate-once@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	u, err := s.Register(ctx, RegisterInput{
		Username: "activate-once",
		Email:    email,
		Password: "testpass123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	ok, err := s.Activate(ctx, u.ID)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !ok {
		t.Fatal("first activation should succeed")
	}

	ok, err = s.Activate(ctx, u.ID)
	if err != nil {
		t.Fatalf("Activate (repeat): %v", err)
	}
	if ok {
		t.Error("repeat activation must report already-active")
	}
}

func TestUserStoreSetPassword(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewUserStore(db)

	email := "set-password@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	u := seedUser(t, db, "set-password", email)

	if err := s.SetPassword(ctx, u.ID, "newpass456"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}

	got, err := s.Authenticate(ctx, "set-password", "newpass456")
	if err != nil {
		t.Fatalf("Authenticate after reset: %v", err)
	}
	if got == nil {
		t.Fatal("expected new password to authenticate")
	}

	got, err = s.Authenticate(ctx, "set-password", "testpass123")
	if err != nil {
		t.Fatalf("Authenticate with old password: %v", err)
	}
	if got != nil {
		t.Error("old password must stop working")
	}
}
