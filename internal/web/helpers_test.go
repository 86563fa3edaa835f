// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/authcore/authcore/internal/auth"
	"github.com/authcore/authcore/internal/web"
)

const weakPassword = "password123"

type weakList struct{}

func (weakList) VerifyPasswordStrength(_ context.Context, password string) bool {
	return len(password) >= auth.MinPasswordLength && password != weakPassword
}

type codesBody struct {
	Codes []string `json:"codes"`
}

type sentCode struct {
	email string
	code  string
}

type captureSender struct {
	mu   sync.Mutex
	sent []sentCode
}

func (s *captureSender) SendResetCode(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentCode{email: email, code: code})
	return nil
}

func (s *captureSender) last() (sentCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentCode{}, false
	}
	return s.sent[len(s.sent)-1], true
}

type httpCall struct {
	route  string
	status int
}

type fakeHTTPRecorder struct {
	mu    sync.Mutex
	calls []httpCall
}

func (f *fakeHTTPRecorder) HTTPRequest(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, httpCall{route: route, status: status})
}

type harness struct {
	t        *testing.T
	now      time.Time
	store    *memStore
	sender   *captureSender
	metrics  *fakeHTTPRecorder
	sessions *auth.SessionManager
	router   http.Handler
	logs     *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		store:   newMemStore(),
		sender:  &captureSender{},
		metrics: &fakeHTTPRecorder{},
		logs:    &bytes.Buffer{},
	}
	logger := slog.New(slog.NewJSONHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hasher := auth.NewArgon2idHasher()
	users := userStore{h.store}

	sessions, err := auth.NewSessionManager(sessionStore{h.store},
		auth.WithClock(func() time.Time { return h.now }),
		auth.WithSessionLogger(logger))
	require.NoError(t, err)
	h.sessions = sessions

	authn, err := auth.NewAuthenticator(users, sessions, hasher, logger, nil)
	require.NoError(t, err)
	userSvc, err := auth.NewUserService(users, hasher, weakList{}, logger)
	require.NoError(t, err)
	resets, err := auth.NewResetService(users, resetStore{h.store}, sessions, hasher, weakList{}, logger)
	require.NoError(t, err)
	recovery, err := auth.NewRecoveryService(recoveryStore{h.store}, logger)
	require.NoError(t, err)

	h.router, err = web.NewRouter(web.Services{
		Auth:       authn,
		Users:      userSvc,
		Sessions:   sessions,
		Resets:     resets,
		ResetCodes: h.sender,
		Recovery:   recovery,
	}, web.Options{Logger: logger, Metrics: h.metrics})
	require.NoError(t, err)
	return h
}

// client keeps cookies between requests like a browser would.
type client struct {
	h       *harness
	cookies map[string]*http.Cookie
}

func (h *harness) client() *client {
	return &client{h: h, cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.h.t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(c.h.t, err)
			r = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	rec := httptest.NewRecorder()
	c.h.router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) register(email, password string) *httptest.ResponseRecorder {
	c.h.t.Helper()
	return c.do(http.MethodPost, "/auth/register", map[string]string{
		"email": email, "first_name": "Ada", "last_name": "Lovelace", "password": password,
	})
}

func (c *client) login(email, password string) *httptest.ResponseRecorder {
	c.h.t.Helper()
	return c.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password})
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
