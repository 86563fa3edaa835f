// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

// Package web exposes the auth services over HTTP with cookie sessions.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/authcore/authcore/internal/auth"
)

// DefaultRequestTimeout bounds a single API request.
const DefaultRequestTimeout = 30 * time.Second

// ResetCodeSender delivers a password-reset code to its owner.
type ResetCodeSender interface {
	SendResetCode(ctx context.Context, email, code string) error
}

// Services are the auth components the API is built on. Resets and
// Recovery are optional; their routes are not mounted when nil.
type Services struct {
	Auth       *auth.Authenticator
	Users      *auth.UserService
	Sessions   *auth.SessionManager
	Resets     *auth.ResetService
	ResetCodes ResetCodeSender
	Recovery   *auth.RecoveryService
}

// Options tune the router.
type Options struct {
	Production bool
	Timeout    time.Duration
	Logger     *slog.Logger
	Metrics    HTTPRecorder
}

// NewRouter builds the auth API.
//
// Routes:
//   - POST /auth/register - create an account and sign in
//   - POST /auth/login - sign in
//   - POST /auth/logout - sign out
//   - GET /auth/session - current user
//   - POST /auth/password - change password, revoking other sessions
//   - POST /auth/2fa/recovery - pass the second factor with a recovery code
//   - POST /auth/recovery-codes - issue a fresh set of recovery codes
//   - POST /auth/reset - start a password reset
//   - POST /auth/reset/verify - confirm the emailed code
//   - POST /auth/reset/recovery - pass the reset's second factor
//   - POST /auth/reset/complete - set the new password
func NewRouter(svc Services, opts Options) (http.Handler, error) {
	switch {
	case svc.Auth == nil:
		return nil, oops.Code("WEB_ROUTER_INVALID").Errorf("authenticator is required")
	case svc.Users == nil:
		return nil, oops.Code("WEB_ROUTER_INVALID").Errorf("user service is required")
	case svc.Sessions == nil:
		return nil, oops.Code("WEB_ROUTER_INVALID").Errorf("session manager is required")
	case svc.Resets != nil && svc.ResetCodes == nil:
		return nil, oops.Code("WEB_ROUTER_INVALID").Errorf("reset code sender is required with resets")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRequestTimeout
	}

	h := &handler{
		svc:     svc,
		cookies: NewCookies(opts.Production),
		logger:  opts.Logger,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	if opts.Metrics != nil {
		r.Use(requestMetrics(opts.Metrics))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))
	r.Use(Sessions(h.cookies, svc.Sessions))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)
		r.Get("/session", h.session)
		r.Post("/password", h.changePassword)

		if svc.Recovery != nil {
			r.Post("/2fa/recovery", h.redeemRecovery)
			r.Post("/recovery-codes", h.generateRecovery)
		}

		if svc.Resets != nil {
			r.Route("/reset", func(r chi.Router) {
				r.Post("/", h.requestReset)
				r.Post("/verify", h.verifyReset)
				if svc.Recovery != nil {
					r.Post("/recovery", h.recoverReset)
				}
				r.Post("/complete", h.completeReset)
			})
		}
	})

	return r, nil
}
