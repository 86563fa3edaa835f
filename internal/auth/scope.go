// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

import (
	"context"
	"sync"
)

type tokenKey struct{}

type scopeKey struct{}

// requestScope memoizes the current session for one request.
type requestScope struct {
	mu    sync.Mutex
	done  bool
	value SessionValidation
}

// WithSessionToken returns a context carrying the raw session token read by
// the transport layer.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// SessionTokenFromContext returns the session token carried by ctx.
func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// WithRequestScope returns a context in which GetCurrentSession validates at
// most once. Install it once per inbound request.
func WithRequestScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, &requestScope{})
}

func scopeFromContext(ctx context.Context) *requestScope {
	s, _ := ctx.Value(scopeKey{}).(*requestScope)
	return s
}
