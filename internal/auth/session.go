// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenBytes      = 20                  // 160 bits
	DefaultSessionLifetime = 30 * 24 * time.Hour // renewed in the trailing half
)

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Session represents one authenticated browser or device.
type Session struct {
	// ID is HashSessionToken(token). The raw token is never stored.
	ID                string
	UserID            ulid.ULID
	TwoFactorVerified bool
	ExpiresAt         time.Time
}

// SessionFlags are the attributes chosen when a session is created.
type SessionFlags struct {
	TwoFactorVerified bool
}

// NewSession creates a validated Session for token.
// Returns an error if any required fields are invalid.
func NewSession(token string, userID ulid.ULID, flags SessionFlags, expiresAt time.Time) (*Session, error) {
	if token == "" {
		return nil, oops.Code("SESSION_TOKEN_EMPTY").Errorf("session token cannot be empty")
	}
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &Session{
		ID:                HashSessionToken(token),
		UserID:            userID,
		TwoFactorVerified: flags.TwoFactorVerified,
		ExpiresAt:         expiresAt,
	}, nil
}

// IsExpiredAt returns true if the session is expired at t.
// A session is expired from the instant of ExpiresAt onwards.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// GenerateSessionToken returns a random token safe for cookie transport:
// 20 bytes from crypto/rand, lowercase base32 without padding.
func GenerateSessionToken() (string, error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}
	return strings.ToLower(tokenEncoding.EncodeToString(tokenBytes)), nil
}

// HashSessionToken computes the session ID for a token: the lowercase hex
// SHA-256 digest.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SessionValidation is the outcome of validating a token. Session and User
// are nil for an anonymous caller.
//
// Err is set only by GetCurrentSession when validation failed and the caller
// was downgraded to anonymous. The session may still be valid once the store
// recovers, so transports must keep the client's token.
type SessionValidation struct {
	Session *Session
	User    *User
	Err     error
}

// Degraded reports whether the caller is anonymous because validation failed.
func (v SessionValidation) Degraded() bool {
	return v.Err != nil
}

// Authenticated reports whether the validation carries a live session.
func (v SessionValidation) Authenticated() bool {
	return v.Session != nil && v.User != nil
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetWithUser retrieves a session joined with its owning user.
	// Returns ErrNotFound if no session has the given ID.
	GetWithUser(ctx context.Context, id string) (*Session, *User, error)

	// UpdateExpiry sets the expiry of a single session.
	UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error

	// SetTwoFactorVerified marks a session as having passed a second factor.
	// Returns ErrNotFound if the session does not exist.
	SetTwoFactorVerified(ctx context.Context, id string) error

	// Delete removes a session by ID. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByUser removes all sessions for a user.
	DeleteByUser(ctx context.Context, userID ulid.ULID) error

	// DeleteExpired removes all sessions expired at now and returns the count
	// of deleted records.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
