// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Reset session configuration.
const (
	ResetSessionLifetime = 10 * time.Minute
	ResetCodeBytes       = 5 // 8 base32 characters
)

// PasswordResetSession tracks one in-progress password reset.
type PasswordResetSession struct {
	// ID is HashSessionToken of the reset token.
	ID                string
	UserID            ulid.ULID
	Email             string
	Code              string
	EmailVerified     bool
	TwoFactorVerified bool
	ExpiresAt         time.Time
}

// NewPasswordResetSession creates a reset session for token with a fresh
// email verification code.
func NewPasswordResetSession(token string, user *User, expiresAt time.Time) (*PasswordResetSession, error) {
	if token == "" {
		return nil, oops.Code("RESET_TOKEN_EMPTY").Errorf("reset token cannot be empty")
	}
	if user == nil || user.ID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("RESET_INVALID_USER").Errorf("user is required")
	}
	code, err := GenerateResetCode()
	if err != nil {
		return nil, err
	}
	return &PasswordResetSession{
		ID:        HashSessionToken(token),
		UserID:    user.ID,
		Email:     user.Email,
		Code:      code,
		ExpiresAt: expiresAt,
	}, nil
}

// IsExpiredAt returns true if the reset session is expired at t.
func (r *PasswordResetSession) IsExpiredAt(t time.Time) bool {
	return !t.Before(r.ExpiresAt)
}

// MatchesCode compares code against the stored code in constant time,
// ignoring case and surrounding whitespace.
func (r *PasswordResetSession) MatchesCode(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	return subtle.ConstantTimeCompare([]byte(code), []byte(r.Code)) == 1
}

// GenerateResetCode returns an 8-character uppercase base32 code.
func GenerateResetCode() (string, error) {
	b := make([]byte, ResetCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("RESET_CODE_GENERATE_FAILED").Wrap(err)
	}
	return tokenEncoding.EncodeToString(b), nil
}

// PasswordResetRepository manages reset session persistence.
type PasswordResetRepository interface {
	// Create stores a new reset session.
	Create(ctx context.Context, reset *PasswordResetSession) error

	// Get retrieves a reset session by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*PasswordResetSession, error)

	// SetEmailVerified marks the reset session's email as confirmed.
	SetEmailVerified(ctx context.Context, id string) error

	// SetTwoFactorVerified marks the reset session as having passed a second factor.
	SetTwoFactorVerified(ctx context.Context, id string) error

	// Delete removes a reset session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByUser removes all reset sessions for a user.
	DeleteByUser(ctx context.Context, userID ulid.ULID) error
}
