// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package web

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names.
const (
	SessionCookieName = "session"
	ResetCookieName   = "password_reset"
)

// Cookies reads and writes the session and password-reset cookies. Both are
// HttpOnly, scoped to the whole site and SameSite=Lax. Secure is set in
// production.
type Cookies struct {
	secure bool
}

// NewCookies creates a cookie transport.
func NewCookies(production bool) *Cookies {
	return &Cookies{secure: production}
}

// SessionToken returns the session token sent with r, or "".
func (c *Cookies) SessionToken(r *http.Request) string {
	return read(r, SessionCookieName)
}

// SetSessionToken stores token in the session cookie until expiresAt.
func (c *Cookies) SetSessionToken(w http.ResponseWriter, token string, expiresAt time.Time) {
	c.set(w, SessionCookieName, token, expiresAt)
}

// ClearSessionToken tells the client to drop the session cookie.
func (c *Cookies) ClearSessionToken(w http.ResponseWriter) {
	c.clear(w, SessionCookieName)
}

// ResetToken returns the password-reset token sent with r, or "".
func (c *Cookies) ResetToken(r *http.Request) string {
	return read(r, ResetCookieName)
}

// SetResetToken stores a password-reset token until expiresAt.
func (c *Cookies) SetResetToken(w http.ResponseWriter, token string, expiresAt time.Time) {
	c.set(w, ResetCookieName, token, expiresAt)
}

// ClearResetToken tells the client to drop the password-reset cookie.
func (c *Cookies) ClearResetToken(w http.ResponseWriter) {
	c.clear(w, ResetCookieName)
}

func (c *Cookies) set(w http.ResponseWriter, name, value string, expiresAt time.Time) {
	replaceCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *Cookies) clear(w http.ResponseWriter, name string) {
	replaceCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func read(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// replaceCookie writes cookie, dropping any Set-Cookie already queued for
// the same name so one response carries one instruction per cookie.
func replaceCookie(w http.ResponseWriter, cookie *http.Cookie) {
	h := w.Header()
	prefix := cookie.Name + "="
	existing := h.Values("Set-Cookie")
	kept := make([]string, 0, len(existing))
	for _, line := range existing {
		if !strings.HasPrefix(line, prefix) {
			kept = append(kept, line)
		}
	}
	h.Del("Set-Cookie")
	for _, line := range kept {
		h.Add("Set-Cookie", line)
	}
	http.SetCookie(w, cookie)
}
