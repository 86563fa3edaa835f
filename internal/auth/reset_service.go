// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/authcore/authcore/pkg/errutil"
	"github.com/authcore/authcore/pkg/result"
)

// ResetChallenge is what the caller delivers to the user out of band.
type ResetChallenge struct {
	Token   string
	Code    string
	Session *PasswordResetSession
}

// ResetService runs the password reset flow: request, email confirmation,
// optional second factor, completion.
type ResetService struct {
	users    UserRepository
	resets   PasswordResetRepository
	sessions *SessionManager
	hasher   PasswordHasher
	strength PasswordStrength
	logger   *slog.Logger
	now      func() time.Time
}

// NewResetService creates a ResetService. strength may be nil to skip the
// breach check on the new password.
func NewResetService(
	users UserRepository,
	resets PasswordResetRepository,
	sessions *SessionManager,
	hasher PasswordHasher,
	strength PasswordStrength,
	logger *slog.Logger,
) (*ResetService, error) {
	switch {
	case users == nil:
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("users repository is required")
	case resets == nil:
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("reset repository is required")
	case sessions == nil:
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("session manager is required")
	case hasher == nil:
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResetService{
		users:    users,
		resets:   resets,
		sessions: sessions,
		hasher:   hasher,
		strength: strength,
		logger:   logger,
		now:      sessions.now,
	}, nil
}

// RequestReset starts a reset for email. It returns Ok(nil) when no user is
// registered under email, so callers respond identically either way.
// Earlier resets for the same user are discarded.
func (s *ResetService) RequestReset(ctx context.Context, email string) result.Result[*ResetChallenge] {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.Ok[*ResetChallenge](nil)
		}
		return result.Err[*ResetChallenge](oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get user by email").
			Wrap(err))
	}

	if err := s.resets.DeleteByUser(ctx, user.ID); err != nil {
		return result.Err[*ResetChallenge](oops.Code("RESET_REQUEST_FAILED").
			With("operation", "delete previous resets").
			Wrap(err))
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return result.Err[*ResetChallenge](oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate reset token").
			Wrap(err))
	}

	reset, err := NewPasswordResetSession(token, user, s.now().Add(ResetSessionLifetime))
	if err != nil {
		return result.Err[*ResetChallenge](err)
	}

	if err := s.resets.Create(ctx, reset); err != nil {
		return result.Err[*ResetChallenge](oops.Code("RESET_REQUEST_FAILED").
			With("operation", "persist reset session").
			Wrap(err))
	}

	s.logger.InfoContext(ctx, "password reset requested", "user_id", user.ID.String())
	return result.Ok(&ResetChallenge{Token: token, Code: reset.Code, Session: reset})
}

// ValidateResetToken returns the live reset session for token, or Ok(nil).
// An expired reset session is deleted.
func (s *ResetService) ValidateResetToken(ctx context.Context, token string) result.Result[*PasswordResetSession] {
	if token == "" {
		return result.Ok[*PasswordResetSession](nil)
	}
	id := HashSessionToken(token)

	reset, err := s.resets.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.Ok[*PasswordResetSession](nil)
		}
		return result.Err[*PasswordResetSession](oops.Code("RESET_VALIDATE_FAILED").
			With("operation", "get reset session").
			Wrap(err))
	}

	if reset.IsExpiredAt(s.now()) {
		if err := s.resets.Delete(ctx, id); err != nil {
			return result.Err[*PasswordResetSession](oops.Code("RESET_VALIDATE_FAILED").
				With("operation", "delete expired reset session").
				Wrap(err))
		}
		return result.Ok[*PasswordResetSession](nil)
	}
	return result.Ok(reset)
}

// VerifyResetEmail checks the emailed code. A wrong code yields Ok(false).
// A correct code also marks the user's email verified when it still matches.
func (s *ResetService) VerifyResetEmail(ctx context.Context, token, code string) result.Result[bool] {
	return result.FlatMap(s.requireReset(ctx, token), func(reset *PasswordResetSession) result.Result[bool] {
		if !reset.MatchesCode(code) {
			return result.Ok(false)
		}
		if err := s.resets.SetEmailVerified(ctx, reset.ID); err != nil {
			return result.Err[bool](oops.Code("RESET_VERIFY_FAILED").
				With("operation", "set reset email verified").
				Wrap(err))
		}

		user, err := s.users.GetByID(ctx, reset.UserID)
		if err == nil && user.Email == reset.Email && !user.EmailVerified {
			if err := s.users.SetEmailVerified(ctx, user.ID); err != nil {
				errutil.LogWarnContext(ctx, s.logger, "marking email verified failed", err)
			}
		}
		return result.Ok(true)
	})
}

// SetResetAs2FAVerified records that the reset passed a second factor.
func (s *ResetService) SetResetAs2FAVerified(ctx context.Context, token string) result.Result[struct{}] {
	return result.FlatMap(s.requireReset(ctx, token), func(reset *PasswordResetSession) result.Result[struct{}] {
		if err := s.resets.SetTwoFactorVerified(ctx, reset.ID); err != nil {
			return result.Err[struct{}](oops.Code("RESET_VERIFY_FAILED").
				With("operation", "set reset two factor verified").
				Wrap(err))
		}
		return result.Ok(struct{}{})
	})
}

// CompleteReset sets a new password. The reset must have a verified email
// and, for users with TOTP enrolled, a verified second factor. All of the
// user's sessions and reset sessions are removed afterwards.
func (s *ResetService) CompleteReset(ctx context.Context, token, newPassword string) result.Result[struct{}] {
	return result.FlatMap(s.requireReset(ctx, token), func(reset *PasswordResetSession) result.Result[struct{}] {
		if !reset.EmailVerified {
			return result.Err[struct{}](oops.Code("RESET_NOT_VERIFIED").Errorf("email has not been verified"))
		}

		user, err := s.users.GetByID(ctx, reset.UserID)
		if err != nil {
			return result.Err[struct{}](oops.Code("RESET_PASSWORD_FAILED").
				With("operation", "get user").
				Wrap(err))
		}
		if user.HasTOTP() && !reset.TwoFactorVerified {
			return result.Err[struct{}](oops.Code("RESET_2FA_REQUIRED").Errorf("second factor required"))
		}
		if s.strength != nil && !s.strength.VerifyPasswordStrength(ctx, newPassword) {
			return result.Err[struct{}](oops.Code("USER_WEAK_PASSWORD").Errorf("password is too weak"))
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return result.Err[struct{}](oops.Code("RESET_PASSWORD_FAILED").
				With("operation", "hash password").
				Wrap(err))
		}
		if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return result.Err[struct{}](oops.Code("RESET_PASSWORD_FAILED").
				With("operation", "update password").
				Wrap(err))
		}

		if r := s.sessions.InvalidateUserSessions(ctx, user.ID); !r.IsOk() {
			return r
		}

		// The password is already changed; a leftover reset row expires on its own.
		if err := s.resets.DeleteByUser(ctx, user.ID); err != nil {
			errutil.LogWarnContext(ctx, s.logger, "deleting reset sessions failed", err)
		}

		s.logger.InfoContext(ctx, "password reset completed", "user_id", user.ID.String())
		return result.Ok(struct{}{})
	})
}

func (s *ResetService) requireReset(ctx context.Context, token string) result.Result[*PasswordResetSession] {
	return result.FlatMap(s.ValidateResetToken(ctx, token), func(reset *PasswordResetSession) result.Result[*PasswordResetSession] {
		if reset == nil {
			return result.Err[*PasswordResetSession](oops.Code("RESET_TOKEN_INVALID").Errorf("reset session not found or expired"))
		}
		return result.Ok(reset)
	})
}
