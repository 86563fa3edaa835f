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

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	db DBTX
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, two_factor_verified, expires_at)
		VALUES ($1, $2, $3, $4)
	`, session.ID, session.UserID.String(), session.TwoFactorVerified, session.ExpiresAt)
	if err != nil {
		return oops.Code("SESSION_INSERT_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetWithUser retrieves a session joined with its owning user.
func (r *SessionRepository) GetWithUser(ctx context.Context, id string) (*auth.Session, *auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT s.id, s.user_id, s.two_factor_verified, s.expires_at,
		       u.email, u.display_name, u.password_hash, u.created_at, u.totp_key, u.email_verified
		FROM sessions s
		INNER JOIN users u ON u.id = s.user_id
		WHERE s.id = $1
	`, id)

	var (
		sessionID         string
		userIDStr         string
		twoFactorVerified bool
		expiresAt         time.Time
		user              auth.User
	)
	err := row.Scan(
		&sessionID, &userIDStr, &twoFactorVerified, &expiresAt,
		&user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt, &user.TOTPKey, &user.EmailVerified,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, nil, oops.Code("SESSION_QUERY_FAILED").
			With("operation", "get session with user").
			Wrap(err)
	}

	userID, err := ulid.Parse(userIDStr)
	if err != nil {
		return nil, nil, oops.Code("SESSION_INVALID_USER_ID").
			With("operation", "parse user id").
			With("user_id", userIDStr).
			Wrap(err)
	}
	user.ID = userID

	session := &auth.Session{
		ID:                sessionID,
		UserID:            userID,
		TwoFactorVerified: twoFactorVerified,
		ExpiresAt:         expiresAt,
	}
	return session, &user, nil
}

// UpdateExpiry sets the expiry of a single session.
func (r *SessionRepository) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE sessions SET expires_at = $2 WHERE id = $1`, id, expiresAt)
	if err != nil {
		return oops.Code("SESSION_UPDATE_FAILED").
			With("operation", "update expires_at").
			Wrap(err)
	}
	// A concurrent delete may have removed the row; the next lookup reports it.
	return nil
}

// SetTwoFactorVerified marks a session as having passed a second factor.
func (r *SessionRepository) SetTwoFactorVerified(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE sessions SET two_factor_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return oops.Code("SESSION_UPDATE_FAILED").
			With("operation", "set two_factor_verified").
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a session by ID.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	// No ErrNotFound if no rows deleted: that's a valid state
	return nil
}

// DeleteByUser removes all sessions for a user.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID.String())
	if err != nil {
		return oops.Code("SESSION_DELETE_BY_USER_FAILED").
			With("operation", "delete sessions by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

// DeleteExpired removes all sessions expired at now and returns the count.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
