// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// User represents a registered account.
type User struct {
	ID            ulid.ULID
	Email         string
	DisplayName   string
	PasswordHash  string
	CreatedAt     time.Time
	TOTPKey       []byte // nil when no second factor is enrolled
	EmailVerified bool
}

// HasTOTP reports whether the user has enrolled a TOTP key.
func (u *User) HasTOTP() bool {
	return len(u.TOTPKey) > 0
}

// NewUser creates a validated User with a fresh ID. The email is normalized
// and the display name is "first last".
func NewUser(email, firstName, lastName, passwordHash string) (*User, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, oops.Code("USER_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	return &User{
		ID:           ulid.Make(),
		Email:        normalized,
		DisplayName:  DisplayName(firstName, lastName),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// DisplayName joins first and last name with a single space.
func DisplayName(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by normalized email. Returns ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdatePassword overwrites the stored password hash.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// SetEmailVerified marks the user's email as verified.
	SetEmailVerified(ctx context.Context, id ulid.ULID) error
}
