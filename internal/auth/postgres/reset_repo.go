// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authcore/authcore/internal/auth"
)

// PasswordResetRepository implements auth.PasswordResetRepository using PostgreSQL.
type PasswordResetRepository struct {
	db DBTX
}

// NewPasswordResetRepository creates a new PasswordResetRepository.
func NewPasswordResetRepository(db DBTX) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// Create stores a new reset session.
func (r *PasswordResetRepository) Create(ctx context.Context, reset *auth.PasswordResetSession) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_reset_sessions (id, user_id, email, code, email_verified, two_factor_verified, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		reset.ID,
		reset.UserID.String(),
		reset.Email,
		reset.Code,
		reset.EmailVerified,
		reset.TwoFactorVerified,
		reset.ExpiresAt,
	)
	if err != nil {
		return oops.Code("RESET_INSERT_FAILED").
			With("operation", "insert password_reset_session").
			With("user_id", reset.UserID.String()).
			Wrap(err)
	}
	return nil
}

// Get retrieves a reset session by ID.
func (r *PasswordResetRepository) Get(ctx context.Context, id string) (*auth.PasswordResetSession, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, email, code, email_verified, two_factor_verified, expires_at
		FROM password_reset_sessions
		WHERE id = $1
	`, id)

	var (
		reset     auth.PasswordResetSession
		userIDStr string
		expiresAt time.Time
	)
	err := row.Scan(&reset.ID, &userIDStr, &reset.Email, &reset.Code,
		&reset.EmailVerified, &reset.TwoFactorVerified, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("RESET_QUERY_FAILED").
			With("operation", "get password_reset_session").
			Wrap(err)
	}

	userID, err := ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("RESET_INVALID_USER_ID").
			With("operation", "parse user id").
			With("user_id", userIDStr).
			Wrap(err)
	}
	reset.UserID = userID
	reset.ExpiresAt = expiresAt
	return &reset, nil
}

// SetEmailVerified marks the reset session's email as confirmed.
func (r *PasswordResetRepository) SetEmailVerified(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "email_verified")
}

// SetTwoFactorVerified marks the reset session as having passed a second factor.
func (r *PasswordResetRepository) SetTwoFactorVerified(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "two_factor_verified")
}

// setFlag sets a boolean column. column is always a package constant.
func (r *PasswordResetRepository) setFlag(ctx context.Context, id, column string) error {
	tag, err := r.db.Exec(ctx, `UPDATE password_reset_sessions SET `+column+` = TRUE WHERE id = $1`, id)
	if err != nil {
		return oops.Code("RESET_UPDATE_FAILED").
			With("operation", "set "+column).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("RESET_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a reset session.
func (r *PasswordResetRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM password_reset_sessions WHERE id = $1`, id)
	if err != nil {
		return oops.Code("RESET_DELETE_FAILED").
			With("operation", "delete password_reset_session").
			Wrap(err)
	}
	return nil
}

// DeleteByUser removes all reset sessions for a user.
func (r *PasswordResetRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM password_reset_sessions WHERE user_id = $1`, userID.String())
	if err != nil {
		return oops.Code("RESET_DELETE_FAILED").
			With("operation", "delete password_reset_sessions by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.PasswordResetRepository = (*PasswordResetRepository)(nil)
