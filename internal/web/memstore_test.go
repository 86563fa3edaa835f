// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package web_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/authcore/authcore/internal/auth"
)

var errStoreDown = errors.New("store down")

// memStore backs every auth repository with maps.
type memStore struct {
	mu       sync.Mutex
	users    map[ulid.ULID]auth.User
	sessions map[string]auth.Session
	resets   map[string]auth.PasswordResetSession
	recovery map[ulid.ULID]map[string]bool
	failing  bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[ulid.ULID]auth.User),
		sessions: make(map[string]auth.Session),
		resets:   make(map[string]auth.PasswordResetSession),
		recovery: make(map[ulid.ULID]map[string]bool),
	}
}

func (s *memStore) setFailing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = v
}

func (s *memStore) sessionCount(userID ulid.ULID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			n++
		}
	}
	return n
}

func (s *memStore) userByEmail(email string) (auth.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return auth.User{}, false
}

func (s *memStore) enrollTOTP(id ulid.ULID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.TOTPKey = []byte("0123456789abcdef0123")
	s.users[id] = u
}

type userStore struct{ *memStore }

func (s userStore) Create(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return auth.ErrEmailTaken
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s userStore) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errStoreDown
	}
	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &u, nil
}

func (s userStore) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errStoreDown
	}
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s userStore) UpdatePassword(_ context.Context, id ulid.ULID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s userStore) SetEmailVerified(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.EmailVerified = true
	s.users[id] = u
	return nil
}

type sessionStore struct{ *memStore }

func (s sessionStore) Create(_ context.Context, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s sessionStore) GetWithUser(_ context.Context, id string) (*auth.Session, *auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, nil, errStoreDown
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil, auth.ErrNotFound
	}
	u := s.users[sess.UserID]
	return &sess, &u, nil
}

func (s sessionStore) UpdateExpiry(_ context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.ExpiresAt = expiresAt
		s.sessions[id] = sess
	}
	return nil
}

func (s sessionStore) SetTwoFactorVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return auth.ErrNotFound
	}
	sess.TwoFactorVerified = true
	s.sessions[id] = sess
	return nil
}

func (s sessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s sessionStore) DeleteByUser(_ context.Context, userID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s sessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

type resetStore struct{ *memStore }

func (s resetStore) Create(_ context.Context, reset *auth.PasswordResetSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[reset.ID] = *reset
	return nil
}

func (s resetStore) Get(_ context.Context, id string) (*auth.PasswordResetSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resets[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &r, nil
}

func (s resetStore) SetEmailVerified(_ context.Context, id string) error {
	return s.update(id, func(r *auth.PasswordResetSession) { r.EmailVerified = true })
}

func (s resetStore) SetTwoFactorVerified(_ context.Context, id string) error {
	return s.update(id, func(r *auth.PasswordResetSession) { r.TwoFactorVerified = true })
}

func (s resetStore) update(id string, fn func(*auth.PasswordResetSession)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resets[id]
	if !ok {
		return auth.ErrNotFound
	}
	fn(&r)
	s.resets[id] = r
	return nil
}

func (s resetStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resets, id)
	return nil
}

func (s resetStore) DeleteByUser(_ context.Context, userID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.resets {
		if r.UserID == userID {
			delete(s.resets, id)
		}
	}
	return nil
}

type recoveryStore struct{ *memStore }

func (s recoveryStore) Replace(_ context.Context, userID ulid.ULID, hashes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		set[h] = true
	}
	s.recovery[userID] = set
	return nil
}

func (s recoveryStore) Consume(_ context.Context, userID ulid.ULID, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recovery[userID][hash] {
		return false, nil
	}
	delete(s.recovery[userID], hash)
	return true, nil
}
