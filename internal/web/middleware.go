// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/authcore/authcore/internal/auth"
)

// Sessions puts the session cookie's token into the request context and
// installs the per-request session memo. A valid session has its cookie
// refreshed with the current expiry, so renewals reach the client.
func Sessions(cookies *Cookies, sessions *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.WithRequestScope(r.Context())
			if token := cookies.SessionToken(r); token != "" {
				ctx = auth.WithSessionToken(ctx, token)
				if current := sessions.GetCurrentSession(ctx); current.Authenticated() {
					cookies.SetSessionToken(w, token, current.Session.ExpiresAt)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HTTPRecorder counts finished requests.
type HTTPRecorder interface {
	HTTPRequest(route string, status int)
}

func requestMetrics(rec HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			rec.HTTPRequest(route, status)
		})
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			}
			logger.InfoContext(r.Context(), "request completed", args...)
		})
	}
}
