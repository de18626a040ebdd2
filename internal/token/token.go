// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package token issues and verifies the signed, time-limited tokens
// used in account emails: activation links and password resets. Tokens
// are HMAC-signed JWTs; the link additionally carries the user id as a
// base64 segment so the account can be located before verification.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A token minted for one purpose never verifies for
// another.
const (
	PurposeActivation    = "activation"
	PurposePasswordReset = "password-reset"
)

// Lifetimes per purpose.
const (
	ActivationTTL    = 48 * time.Hour
	PasswordResetTTL = 2 * time.Hour
)

var (
	ErrInvalidToken = errors.New("token is invalid or expired")
	ErrWrongPurpose = errors.New("token issued for a different purpose")
	ErrStaleToken   = errors.New("token no longer matches the account state")
	ErrMalformedUID = errors.New("malformed user id segment")
)

// Claims carried by account tokens. Fingerprint binds the token to a
// snapshot of account state (the password hash for resets), so using
// the link once invalidates any copies.
type Claims struct {
	UserID      int64  `json:"user_id"`
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fingerprint,omitempty"`
	jwt.RegisteredClaims
}

// Maker signs and verifies account tokens with a shared secret.
type Maker struct {
	secret []byte
}

// NewMaker creates a token maker using the application secret key.
func NewMaker(secret string) *Maker {
	return &Maker{secret: []byte(secret)}
}

// Generate issues a token for the user with the given purpose and
// lifetime. fingerprint may be empty for purposes that do not need
// state binding.
func (m *Maker) Generate(userID int64, purpose, fingerprint string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:      userID,
		Purpose:     purpose,
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and checks its purpose and, when expected is
// non-empty, its fingerprint.
func (m *Maker) Verify(tokenStr, purpose, expectedFingerprint string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	if expectedFingerprint != "" && claims.Fingerprint != expectedFingerprint {
		return nil, ErrStaleToken
	}
	return claims, nil
}

// EncodeUID renders a user id as the URL-safe base64 segment used in
// account links.
func EncodeUID(userID int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(userID, 10)))
}

// DecodeUID parses the base64 user id segment of an account link.
func DecodeUID(segment string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return 0, ErrMalformedUID
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrMalformedUID
	}
	return id, nil
}
