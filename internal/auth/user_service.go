// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authcore/authcore/pkg/result"
)

// MaxNameLength bounds first and last names at registration.
const MaxNameLength = 64

// PasswordStrength decides whether a new password is acceptable.
type PasswordStrength interface {
	VerifyPasswordStrength(ctx context.Context, password string) bool
}

// UserService looks up, creates and updates user records.
type UserService struct {
	users    UserRepository
	hasher   PasswordHasher
	strength PasswordStrength
	logger   *slog.Logger
}

// NewUserService creates a UserService. strength may be nil, in which case
// Register skips the breach check.
func NewUserService(users UserRepository, hasher PasswordHasher, strength PasswordStrength, logger *slog.Logger) (*UserService, error) {
	if users == nil {
		return nil, oops.Code("USER_SERVICE_INVALID").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("USER_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, hasher: hasher, strength: strength, logger: logger}, nil
}

// CreateUser hashes password and stores a new, unverified user.
func (s *UserService) CreateUser(ctx context.Context, email, firstName, lastName, password string) result.Result[*User] {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return result.Err[*User](oops.Code("USER_CREATE_FAILED").
			With("operation", "hash password").
			Wrap(err))
	}

	user, err := NewUser(email, firstName, lastName, hash)
	if err != nil {
		return result.Err[*User](err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return result.Err[*User](oops.Code("USER_EMAIL_TAKEN").
				With("email", user.Email).
				Wrap(err))
		}
		return result.Err[*User](oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(err))
	}

	s.logger.InfoContext(ctx, "user created", "user_id", user.ID.String())
	return result.Ok(user)
}

// GetUserByID returns the user with id, or Ok(nil) if there is none.
func (s *UserService) GetUserByID(ctx context.Context, id ulid.ULID) result.Result[*User] {
	return s.lookup(s.users.GetByID(ctx, id))
}

// GetUserByEmail returns the user registered under email, or Ok(nil) if
// there is none. The email is normalized before lookup.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) result.Result[*User] {
	return s.lookup(s.users.GetByEmail(ctx, NormalizeEmail(email)))
}

func (s *UserService) lookup(user *User, err error) result.Result[*User] {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.Ok[*User](nil)
		}
		return result.Err[*User](oops.Code("USER_LOOKUP_FAILED").Wrap(err))
	}
	return result.Ok(user)
}

// UpdateUserPassword re-hashes password and overwrites the stored hash.
// Existing sessions are left alone.
func (s *UserService) UpdateUserPassword(ctx context.Context, userID ulid.ULID, password string) result.Result[struct{}] {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return result.Err[struct{}](oops.Code("USER_PASSWORD_UPDATE_FAILED").
			With("operation", "hash password").
			Wrap(err))
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return result.Err[struct{}](oops.Code("USER_PASSWORD_UPDATE_FAILED").
			With("operation", "update password").
			With("user_id", userID.String()).
			Wrap(err))
	}
	return result.Ok(struct{}{})
}

// ChangePassword replaces the password of user after checking current.
// A wrong current password fails with AUTH_INVALID_CREDENTIALS and a weak
// replacement with USER_WEAK_PASSWORD. Sessions are left to the caller.
func (s *UserService) ChangePassword(ctx context.Context, user *User, current, next string) result.Result[struct{}] {
	ok, err := s.hasher.Verify(current, user.PasswordHash)
	if err != nil {
		return result.Err[struct{}](oops.Code("USER_PASSWORD_UPDATE_FAILED").
			With("operation", "verify password").
			With("user_id", user.ID.String()).
			Wrap(err))
	}
	if !ok {
		return result.Err[struct{}](errInvalidCredentials())
	}
	if s.strength != nil && !s.strength.VerifyPasswordStrength(ctx, next) {
		return result.Err[struct{}](oops.Code("USER_WEAK_PASSWORD").Errorf("password is too weak"))
	}
	return s.UpdateUserPassword(ctx, user.ID, next)
}

// SetEmailVerified marks a user's email as verified.
func (s *UserService) SetEmailVerified(ctx context.Context, userID ulid.ULID) result.Result[struct{}] {
	if err := s.users.SetEmailVerified(ctx, userID); err != nil {
		return result.Err[struct{}](oops.Code("USER_VERIFY_FAILED").
			With("user_id", userID.String()).
			Wrap(err))
	}
	return result.Ok(struct{}{})
}

// RegisterInput is the data collected at sign-up.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Register validates input and creates the user. Rejections carry one of the
// codes USER_INVALID_EMAIL, USER_INVALID_NAME, USER_WEAK_PASSWORD or
// USER_EMAIL_TAKEN.
func (s *UserService) Register(ctx context.Context, in RegisterInput) result.Result[*User] {
	if !VerifyEmailInput(in.Email) {
		return result.Err[*User](oops.Code("USER_INVALID_EMAIL").Errorf("invalid email address"))
	}
	if !validName(in.FirstName) || !validName(in.LastName) {
		return result.Err[*User](oops.Code("USER_INVALID_NAME").
			Errorf("names must be 1 to %d characters", MaxNameLength))
	}
	if s.strength != nil && !s.strength.VerifyPasswordStrength(ctx, in.Password) {
		return result.Err[*User](oops.Code("USER_WEAK_PASSWORD").Errorf("password is too weak"))
	}

	return result.FlatMap(s.GetUserByEmail(ctx, in.Email), func(existing *User) result.Result[*User] {
		if existing != nil {
			return result.Err[*User](oops.Code("USER_EMAIL_TAKEN").Wrap(ErrEmailTaken))
		}
		return s.CreateUser(ctx, in.Email, in.FirstName, in.LastName, in.Password)
	})
}

func validName(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n > 0 && n <= MaxNameLength
}
