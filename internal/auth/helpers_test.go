// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/authcore/authcore/internal/auth"
)

// fakeRecorder counts outcomes per event.
type fakeRecorder struct {
	mu       sync.Mutex
	sessions []string
	breaches []string
	logins   []string
}

func (r *fakeRecorder) SessionValidation(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, outcome)
}

func (r *fakeRecorder) BreachCheck(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breaches = append(r.breaches, outcome)
}

func (r *fakeRecorder) LoginAttempt(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, outcome)
}

// memUserRepo is an in-memory UserRepository keyed by ID.
type memUserRepo struct {
	mu    sync.Mutex
	users map[ulid.ULID]*auth.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[ulid.ULID]*auth.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return auth.ErrEmailTaken
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id ulid.ULID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *memUserRepo) SetEmailVerified(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.EmailVerified = true
	return nil
}

var _ auth.UserRepository = (*memUserRepo)(nil)

// fixedClock returns a clock pinned to t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// captureLogger returns a JSON logger writing into buf.
func captureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// testHasher is an argon2id hasher for tests.
func testHasher() auth.PasswordHasher {
	return auth.NewArgon2idHasher()
}
