// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/authcore/authcore/pkg/errutil"
	"github.com/authcore/authcore/pkg/result"
)

// dummyPasswordHash is verified when no user matches, so response time does
// not reveal whether an email is registered. It never matches any password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// LoginResult is a fresh session and the token to hand to the client.
type LoginResult struct {
	Session *Session
	User    *User
	Token   string
}

// Authenticator checks credentials and opens sessions.
type Authenticator struct {
	users    UserRepository
	sessions *SessionManager
	hasher   PasswordHasher
	logger   *slog.Logger
	metrics  Recorder
}

// NewAuthenticator creates an Authenticator. A nil logger uses slog.Default
// and a nil recorder discards metrics.
func NewAuthenticator(users UserRepository, sessions *SessionManager, hasher PasswordHasher, logger *slog.Logger, metrics Recorder) (*Authenticator, error) {
	if users == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("session manager is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NopRecorder{}
	}
	return &Authenticator{users: users, sessions: sessions, hasher: hasher, logger: logger, metrics: metrics}, nil
}

// Login verifies email and password and creates a session that has not yet
// passed a second factor.
func (a *Authenticator) Login(ctx context.Context, email, password string) result.Result[*LoginResult] {
	r := a.login(ctx, email, password)
	if r.IsOk() {
		a.metrics.LoginAttempt(OutcomeSuccess)
	} else {
		a.metrics.LoginAttempt(OutcomeFailure)
	}
	return r
}

func (a *Authenticator) login(ctx context.Context, email, password string) result.Result[*LoginResult] {
	user, lookupErr := a.users.GetByEmail(ctx, NormalizeEmail(email))

	targetHash := dummyPasswordHash
	userExists := false
	switch {
	case lookupErr == nil:
		targetHash = user.PasswordHash
		userExists = true
	case !errors.Is(lookupErr, ErrNotFound):
		return result.Err[*LoginResult](oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by email").
			Wrap(lookupErr))
	}

	// Always verify so both branches cost the same.
	valid, verifyErr := a.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return result.Err[*LoginResult](errInvalidCredentials())
		}
		return result.Err[*LoginResult](oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr))
	}
	if !userExists || !valid {
		return result.Err[*LoginResult](errInvalidCredentials())
	}

	if a.hasher.NeedsUpgrade(user.PasswordHash) {
		a.upgradeHash(ctx, user, password)
	}

	token, err := a.sessions.GenerateSessionToken()
	if err != nil {
		return result.Err[*LoginResult](oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "generate session token").
			Wrap(err))
	}

	return result.Map(a.sessions.CreateSession(ctx, token, user.ID, SessionFlags{}), func(s *Session) *LoginResult {
		return &LoginResult{Session: s, User: user, Token: token}
	})
}

// upgradeHash rehashes with the current parameters. Failure leaves the old
// hash in place and does not fail the login.
func (a *Authenticator) upgradeHash(ctx context.Context, user *User, password string) {
	newHash, err := a.hasher.Hash(password)
	if err != nil {
		errutil.LogWarnContext(ctx, a.logger, "password rehash failed", err)
		return
	}
	if err := a.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
		errutil.LogWarnContext(ctx, a.logger, "persisting upgraded password hash failed", err)
		return
	}
	user.PasswordHash = newHash
}

// Logout invalidates a session. Logging out of a missing session succeeds.
func (a *Authenticator) Logout(ctx context.Context, sessionID string) result.Result[struct{}] {
	return a.sessions.InvalidateSession(ctx, sessionID)
}

func errInvalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
}
