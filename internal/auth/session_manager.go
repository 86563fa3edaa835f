// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/authcore/authcore/pkg/errutil"
	"github.com/authcore/authcore/pkg/result"
)

const tracerName = "github.com/authcore/authcore/internal/auth"

// SessionManager issues, validates, renews and revokes sessions.
type SessionManager struct {
	sessions SessionRepository
	lifetime time.Duration
	now      func() time.Time
	logger   *slog.Logger
	metrics  Recorder
	tracer   trace.Tracer
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) { m.now = now }
}

// WithSessionLifetime sets the session lifetime. Sessions are renewed once
// less than half of it remains.
func WithSessionLifetime(d time.Duration) SessionOption {
	return func(m *SessionManager) { m.lifetime = d }
}

// WithSessionLogger sets the logger.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(m *SessionManager) { m.logger = l }
}

// WithSessionMetrics sets the metrics recorder.
func WithSessionMetrics(r Recorder) SessionOption {
	return func(m *SessionManager) { m.metrics = r }
}

// NewSessionManager creates a SessionManager backed by sessions.
func NewSessionManager(sessions SessionRepository, opts ...SessionOption) (*SessionManager, error) {
	if sessions == nil {
		return nil, oops.Code("SESSION_MANAGER_INVALID").Errorf("sessions repository is required")
	}

	m := &SessionManager{
		sessions: sessions,
		lifetime: DefaultSessionLifetime,
		now:      time.Now,
		logger:   slog.Default(),
		metrics:  NopRecorder{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.lifetime <= 0 {
		return nil, oops.Code("SESSION_MANAGER_INVALID").
			With("lifetime", m.lifetime.String()).
			Errorf("session lifetime must be positive")
	}
	if m.now == nil || m.logger == nil || m.metrics == nil {
		return nil, oops.Code("SESSION_MANAGER_INVALID").Errorf("clock, logger and metrics must not be nil")
	}
	return m, nil
}

// Lifetime returns the configured session lifetime.
func (m *SessionManager) Lifetime() time.Duration {
	return m.lifetime
}

// RenewalWindow returns the trailing window in which validation renews a session.
func (m *SessionManager) RenewalWindow() time.Duration {
	return m.lifetime / 2
}

// GenerateSessionToken returns a new random session token.
func (m *SessionManager) GenerateSessionToken() (string, error) {
	return GenerateSessionToken()
}

// CreateSession persists a session for token and returns it. Only the hash
// of token is stored.
func (m *SessionManager) CreateSession(ctx context.Context, token string, userID ulid.ULID, flags SessionFlags) result.Result[*Session] {
	session, err := NewSession(token, userID, flags, m.now().Add(m.lifetime))
	if err != nil {
		return result.Err[*Session](err)
	}

	if err := m.sessions.Create(ctx, session); err != nil {
		return result.Err[*Session](oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			With("user_id", userID.String()).
			Wrap(err))
	}

	m.logger.DebugContext(ctx, "session created",
		"user_id", userID.String(),
		"expires_at", session.ExpiresAt)
	return result.Ok(session)
}

// ValidateSessionToken resolves token to a session and its user.
//
// A missing session yields an anonymous validation. An expired session is
// deleted and also yields anonymous. A session inside the renewal window has
// its expiry pushed to now+lifetime. Store failures are returned as failures
// and must not be read as a valid session.
func (m *SessionManager) ValidateSessionToken(ctx context.Context, token string) result.Result[SessionValidation] {
	ctx, span := m.tracer.Start(ctx, "auth.ValidateSessionToken")
	defer span.End()

	v, outcome, err := m.validate(ctx, token)

	span.SetAttributes(attribute.String("auth.session.outcome", outcome))
	m.metrics.SessionValidation(outcome)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session validation failed")
		return result.Err[SessionValidation](err)
	}
	return result.Ok(v)
}

func (m *SessionManager) validate(ctx context.Context, token string) (SessionValidation, string, error) {
	if token == "" {
		return SessionValidation{}, OutcomeAnonymous, nil
	}

	id := HashSessionToken(token)
	session, user, err := m.sessions.GetWithUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SessionValidation{}, OutcomeAnonymous, nil
		}
		return SessionValidation{}, OutcomeError, oops.Code("SESSION_LOOKUP_FAILED").
			With("operation", "get session with user").
			Wrap(err)
	}

	now := m.now()

	if session.IsExpiredAt(now) {
		if err := m.sessions.Delete(ctx, id); err != nil {
			return SessionValidation{}, OutcomeError, oops.Code("SESSION_DELETE_FAILED").
				With("operation", "delete expired session").
				With("user_id", session.UserID.String()).
				Wrap(err)
		}
		m.logger.DebugContext(ctx, "expired session removed", "user_id", session.UserID.String())
		return SessionValidation{}, OutcomeExpired, nil
	}

	if !now.Before(session.ExpiresAt.Add(-m.RenewalWindow())) {
		expiresAt := now.Add(m.lifetime)
		if err := m.sessions.UpdateExpiry(ctx, id, expiresAt); err != nil {
			return SessionValidation{}, OutcomeError, oops.Code("SESSION_RENEW_FAILED").
				With("operation", "extend session expiry").
				With("user_id", session.UserID.String()).
				Wrap(err)
		}
		session.ExpiresAt = expiresAt
		return SessionValidation{Session: session, User: user}, OutcomeRenewed, nil
	}

	return SessionValidation{Session: session, User: user}, OutcomeActive, nil
}

// InvalidateSession deletes a session. Invalidating a missing session succeeds.
func (m *SessionManager) InvalidateSession(ctx context.Context, sessionID string) result.Result[struct{}] {
	if err := m.sessions.Delete(ctx, sessionID); err != nil {
		return result.Err[struct{}](oops.Code("SESSION_INVALIDATE_FAILED").
			With("operation", "delete session").
			Wrap(err))
	}
	return result.Ok(struct{}{})
}

// InvalidateUserSessions deletes every session owned by userID.
func (m *SessionManager) InvalidateUserSessions(ctx context.Context, userID ulid.ULID) result.Result[struct{}] {
	if err := m.sessions.DeleteByUser(ctx, userID); err != nil {
		return result.Err[struct{}](oops.Code("SESSION_INVALIDATE_FAILED").
			With("operation", "delete sessions by user").
			With("user_id", userID.String()).
			Wrap(err))
	}
	return result.Ok(struct{}{})
}

// SetSessionAs2FAVerified marks a session as having passed a second factor.
func (m *SessionManager) SetSessionAs2FAVerified(ctx context.Context, sessionID string) result.Result[struct{}] {
	if err := m.sessions.SetTwoFactorVerified(ctx, sessionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.Err[struct{}](oops.Code("SESSION_NOT_FOUND").Wrap(err))
		}
		return result.Err[struct{}](oops.Code("SESSION_2FA_UPDATE_FAILED").
			With("operation", "set two factor verified").
			Wrap(err))
	}
	return result.Ok(struct{}{})
}

// PruneExpired deletes all sessions that have expired and returns how many
// were removed.
func (m *SessionManager) PruneExpired(ctx context.Context) result.Result[int64] {
	n, err := m.sessions.DeleteExpired(ctx, m.now())
	if err != nil {
		return result.Err[int64](oops.Code("SESSION_PRUNE_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err))
	}
	return result.Ok(n)
}

// GetCurrentSession validates the token carried by ctx.
//
// A missing token is anonymous. Validation failures are logged and also
// reported as anonymous, with Err set: a store error never counts as
// logged in. When ctx
// carries a request scope the outcome is computed once per scope.
func (m *SessionManager) GetCurrentSession(ctx context.Context) SessionValidation {
	scope := scopeFromContext(ctx)
	if scope == nil {
		return m.currentSession(ctx)
	}

	scope.mu.Lock()
	defer scope.mu.Unlock()
	if !scope.done {
		scope.value = m.currentSession(ctx)
		scope.done = true
	}
	return scope.value
}

func (m *SessionManager) currentSession(ctx context.Context) SessionValidation {
	token, ok := SessionTokenFromContext(ctx)
	if !ok {
		return SessionValidation{}
	}

	return m.ValidateSessionToken(ctx, token).UnwrapOrElse(func(err error) SessionValidation {
		errutil.LogWarnContext(ctx, m.logger, "session validation failed, treating caller as anonymous", err)
		return SessionValidation{Err: err}
	})
}
