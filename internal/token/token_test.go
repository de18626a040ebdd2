// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package token

import (
	"testing"
	"time"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewMaker("test-secret")

	tok, err := m.Generate(42, PurposeActivation, "", ActivationTTL)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := m.Verify(tok, PurposeActivation, "")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id: got %d, want 42", claims.UserID)
	}
}

func TestVerifyRejectsWrongPurpose(t *testing.T) {
	m := NewMaker("test-secret")

	tok, err := m.Generate(42, PurposeActivation, "", ActivationTTL)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := m.Verify(tok, PurposePasswordReset, ""); err != ErrWrongPurpose {
		t.Errorf("got %v, want ErrWrongPurpose", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := NewMaker("secret-a").Generate(42, PurposeActivation, "", ActivationTTL)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := NewMaker("secret-b").Verify(tok, PurposeActivation, ""); err != ErrInvalidToken {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewMaker("test-secret")

	tok, err := m.Generate(42, PurposeActivation, "", -time.Minute)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := m.Verify(tok, PurposeActivation, ""); err != ErrInvalidToken {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

// A reset token is fingerprinted with the current password hash; once
// the password changes the token stops verifying, making reset links
// effectively single-use.
func TestVerifyFingerprintBinding(t *testing.T) {
	m := NewMaker("test-secret")

	tok, err := m.Generate(42, PurposePasswordReset, "old-hash", PasswordResetTTL)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := m.Verify(tok, PurposePasswordReset, "old-hash"); err != nil {
		t.Fatalf("Verify with matching fingerprint: %v", err)
	}
	if _, err := m.Verify(tok, PurposePasswordReset, "new-hash"); err != ErrStaleToken {
		t.Errorf("got %v, want ErrStaleToken", err)
	}
}

func TestUIDRoundTrip(t *testing.T) {
	encoded := EncodeUID(1234)
	id, err := DecodeUID(encoded)
	if err != nil {
		t.Fatalf("DecodeUID: %v", err)
	}
	if id != 1234 {
		t.Errorf("round trip: got %d, want 1234", id)
	}
}

func TestDecodeUIDRejectsGarbage(t *testing.T) {
	for _, segment := range []string{"", "!!!", "bm90LWEtbnVtYmVy", EncodeUID(-5)} {
		if _, err := DecodeUID(segment); err != ErrMalformedUID {
			t.Errorf("segment %q: got %v, want ErrMalformedUID", segment, err)
		}
	}
}
