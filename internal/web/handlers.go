// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/authcore/authcore/internal/auth"
	"github.com/authcore/authcore/pkg/errutil"
)

type handler struct {
	svc     Services
	cookies *Cookies
	logger  *slog.Logger
}

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type completeResetRequest struct {
	Password string `json:"password"`
}

type recoveryCodesResponse struct {
	Codes []string `json:"codes"`
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Users.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}).Get()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	session, ok := h.openSession(w, r, user, auth.SessionFlags{})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, newAuthResponse(user, session))
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Auth.Login(r.Context(), req.Email, req.Password).Get()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.cookies.SetSessionToken(w, res.Token, res.Session.ExpiresAt)
	writeJSON(w, http.StatusOK, newAuthResponse(res.User, res.Session))
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if current := h.svc.Sessions.GetCurrentSession(r.Context()); current.Session != nil {
		if err := h.svc.Auth.Logout(r.Context(), current.Session.ID).Error(); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}
	h.cookies.ClearSessionToken(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) session(w http.ResponseWriter, r *http.Request) {
	current, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newAuthResponse(current.User, current.Session))
}

func (h *handler) changePassword(w http.ResponseWriter, r *http.Request) {
	current, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	if err := h.svc.Users.ChangePassword(ctx, current.User, req.CurrentPassword, req.NewPassword).Error(); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.svc.Sessions.InvalidateUserSessions(ctx, current.User.ID).Error(); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	flags := auth.SessionFlags{TwoFactorVerified: current.Session.TwoFactorVerified}
	session, ok := h.openSession(w, r, current.User, flags)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newAuthResponse(current.User, session))
}

func (h *handler) redeemRecovery(w http.ResponseWriter, r *http.Request) {
	current, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	redeemed, err := h.svc.Recovery.Redeem(ctx, current.User.ID, req.Code).Get()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !redeemed {
		writeCode(w, codeRecoveryCodeInvalid)
		return
	}
	if err := h.svc.Sessions.SetSessionAs2FAVerified(ctx, current.Session.ID).Error(); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) generateRecovery(w http.ResponseWriter, r *http.Request) {
	current, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	if current.User.HasTOTP() && !current.Session.TwoFactorVerified {
		writeCode(w, code2FARequired)
		return
	}

	codes, err := h.svc.Recovery.Generate(r.Context(), current.User.ID, auth.DefaultRecoveryCodes).Get()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recoveryCodesResponse{Codes: codes})
}

// requestReset answers 202 whether or not the email is registered.
func (h *handler) requestReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !auth.VerifyEmailInput(req.Email) {
		writeCode(w, "USER_INVALID_EMAIL")
		return
	}

	ctx := r.Context()
	challenge, err := h.svc.Resets.RequestReset(ctx, req.Email).Get()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if challenge == nil {
		// Unknown email: hand out a token that matches no reset session.
		decoy, err := auth.GenerateSessionToken()
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		h.cookies.SetResetToken(w, decoy, time.Now().Add(auth.ResetSessionLifetime))
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if err := h.svc.ResetCodes.SendResetCode(ctx, challenge.Session.Email, challenge.Code); err != nil {
		errutil.LogErrorContext(ctx, h.logger, "sending reset code failed", err)
	}
	h.cookies.SetResetToken(w, challenge.Token, challenge.Session.ExpiresAt)
	w.WriteHeader(http.StatusAccepted)
}

func (h *handler) verifyReset(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	verified, err := h.svc.Resets.VerifyResetEmail(r.Context(), h.cookies.ResetToken(r), req.Code).Get()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !verified {
		writeCode(w, codeResetCodeInvalid)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) recoverReset(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	token := h.cookies.ResetToken(r)
	reset, err := h.svc.Resets.ValidateResetToken(ctx, token).Get()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if reset == nil {
		writeCode(w, "RESET_TOKEN_INVALID")
		return
	}

	redeemed, err := h.svc.Recovery.Redeem(ctx, reset.UserID, req.Code).Get()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !redeemed {
		writeCode(w, codeRecoveryCodeInvalid)
		return
	}
	if err := h.svc.Resets.SetResetAs2FAVerified(ctx, token).Error(); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// completeReset clears both cookies on success since every session of the
// user has been revoked.
func (h *handler) completeReset(w http.ResponseWriter, r *http.Request) {
	var req completeResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.Resets.CompleteReset(r.Context(), h.cookies.ResetToken(r), req.Password).Error(); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.cookies.ClearResetToken(w)
	h.cookies.ClearSessionToken(w)
	w.WriteHeader(http.StatusNoContent)
}

// requireSession writes 401 when the request is anonymous. The cookie is
// cleared only when the store answered that the session does not exist.
func (h *handler) requireSession(w http.ResponseWriter, r *http.Request) (auth.SessionValidation, bool) {
	current := h.svc.Sessions.GetCurrentSession(r.Context())
	if !current.Authenticated() {
		if _, sent := auth.SessionTokenFromContext(r.Context()); sent && !current.Degraded() {
			h.cookies.ClearSessionToken(w)
		}
		writeCode(w, codeSessionRequired)
		return current, false
	}
	return current, true
}

func (h *handler) openSession(w http.ResponseWriter, r *http.Request, user *auth.User, flags auth.SessionFlags) (*auth.Session, bool) {
	ctx := r.Context()
	token, err := h.svc.Sessions.GenerateSessionToken()
	if err != nil {
		writeError(w, r, h.logger, err)
		return nil, false
	}
	session, err := h.svc.Sessions.CreateSession(ctx, token, user.ID, flags).Get()
	if err != nil {
		writeError(w, r, h.logger, err)
		return nil, false
	}
	h.cookies.SetSessionToken(w, token, session.ExpiresAt)
	return session, true
}
