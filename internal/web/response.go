// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/authcore/authcore/internal/auth"
	"github.com/authcore/authcore/pkg/errutil"
)

const maxBodyBytes = 1 << 16

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name"`
	EmailVerified bool      `json:"email_verified"`
	TwoFactor     bool      `json:"two_factor_enrolled"`
	CreatedAt     time.Time `json:"created_at"`
}

// SessionResponse is the public view of a session. The id is never exposed.
type SessionResponse struct {
	ExpiresAt         time.Time `json:"expires_at"`
	TwoFactorVerified bool      `json:"two_factor_verified"`
}

// AuthResponse is returned by endpoints that open or describe a session.
type AuthResponse struct {
	User    UserResponse    `json:"user"`
	Session SessionResponse `json:"session"`
}

func newAuthResponse(user *auth.User, session *auth.Session) AuthResponse {
	return AuthResponse{
		User: UserResponse{
			ID:            user.ID.String(),
			Email:         user.Email,
			DisplayName:   user.DisplayName,
			EmailVerified: user.EmailVerified,
			TwoFactor:     user.HasTOTP(),
			CreatedAt:     user.CreatedAt,
		},
		Session: SessionResponse{
			ExpiresAt:         session.ExpiresAt,
			TwoFactorVerified: session.TwoFactorVerified,
		},
	}
}

type publicError struct {
	status  int
	message string
}

// Codes that may be shown to clients. Anything else is reported as INTERNAL.
var publicErrors = map[string]publicError{
	codeRequestInvalid:         {http.StatusBadRequest, "invalid request body"},
	"USER_INVALID_EMAIL":       {http.StatusBadRequest, "invalid email address"},
	"USER_INVALID_NAME":        {http.StatusBadRequest, "invalid name"},
	"USER_WEAK_PASSWORD":       {http.StatusBadRequest, "password is too weak"},
	"USER_EMAIL_TAKEN":         {http.StatusConflict, "email already registered"},
	"AUTH_INVALID_CREDENTIALS": {http.StatusUnauthorized, "invalid email or password"},
	codeSessionRequired:        {http.StatusUnauthorized, "authentication required"},
	code2FARequired:            {http.StatusForbidden, "second factor required"},
	"RESET_TOKEN_INVALID":      {http.StatusUnauthorized, "reset session not found or expired"},
	codeResetCodeInvalid:       {http.StatusBadRequest, "incorrect code"},
	"RESET_NOT_VERIFIED":       {http.StatusForbidden, "email has not been verified"},
	"RESET_2FA_REQUIRED":       {http.StatusForbidden, "second factor required"},
	codeRecoveryCodeInvalid:    {http.StatusBadRequest, "invalid recovery code"},
}

const (
	codeInternal            = "INTERNAL"
	codeRequestInvalid      = "REQUEST_INVALID"
	codeSessionRequired     = "SESSION_REQUIRED"
	code2FARequired         = "AUTH_2FA_REQUIRED"
	codeResetCodeInvalid    = "RESET_CODE_INVALID"
	codeRecoveryCodeInvalid = "RECOVERY_CODE_INVALID"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeCode(w http.ResponseWriter, code string) {
	pe, ok := publicErrors[code]
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: codeInternal})
		return
	}
	writeJSON(w, pe.status, ErrorResponse{Error: pe.message, Code: code})
}

// writeError maps err to a public error. Unknown errors are logged and
// answered with a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := errutil.Code(err)
	if _, ok := publicErrors[code]; !ok {
		errutil.LogErrorContext(r.Context(), logger, "request failed", err)
		code = codeInternal
	}
	writeCode(w, code)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeCode(w, codeRequestInvalid)
		return false
	}
	return true
}
