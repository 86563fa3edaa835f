// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

// Package mocks provides testify mocks for the auth interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/authcore/authcore/internal/auth"
)

// TestingT is the subset of *testing.T the constructors need.
type TestingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(m *mock.Mock, t TestingT) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockUserRepository mocks auth.UserRepository.
type MockUserRepository struct{ mock.Mock }

// NewMockUserRepository creates a mock that asserts its expectations on cleanup.
func NewMockUserRepository(t TestingT) *MockUserRepository {
	m := &MockUserRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockUserRepository) Create(ctx context.Context, user *auth.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*auth.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*auth.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockUserRepository) SetEmailVerified(ctx context.Context, id ulid.ULID) error {
	return m.Called(ctx, id).Error(0)
}

// MockSessionRepository mocks auth.SessionRepository.
type MockSessionRepository struct{ mock.Mock }

// NewMockSessionRepository creates a mock that asserts its expectations on cleanup.
func NewMockSessionRepository(t TestingT) *MockSessionRepository {
	m := &MockSessionRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockSessionRepository) Create(ctx context.Context, session *auth.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockSessionRepository) GetWithUser(ctx context.Context, id string) (*auth.Session, *auth.User, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*auth.Session)
	u, _ := args.Get(1).(*auth.User)
	return s, u, args.Error(2)
}

func (m *MockSessionRepository) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	return m.Called(ctx, id, expiresAt).Error(0)
}

func (m *MockSessionRepository) SetTwoFactorVerified(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

// MockPasswordResetRepository mocks auth.PasswordResetRepository.
type MockPasswordResetRepository struct{ mock.Mock }

// NewMockPasswordResetRepository creates a mock that asserts its expectations on cleanup.
func NewMockPasswordResetRepository(t TestingT) *MockPasswordResetRepository {
	m := &MockPasswordResetRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockPasswordResetRepository) Create(ctx context.Context, reset *auth.PasswordResetSession) error {
	return m.Called(ctx, reset).Error(0)
}

func (m *MockPasswordResetRepository) Get(ctx context.Context, id string) (*auth.PasswordResetSession, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*auth.PasswordResetSession)
	return r, args.Error(1)
}

func (m *MockPasswordResetRepository) SetEmailVerified(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPasswordResetRepository) SetTwoFactorVerified(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPasswordResetRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPasswordResetRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) error {
	return m.Called(ctx, userID).Error(0)
}

// MockRecoveryCodeRepository mocks auth.RecoveryCodeRepository.
type MockRecoveryCodeRepository struct{ mock.Mock }

// NewMockRecoveryCodeRepository creates a mock that asserts its expectations on cleanup.
func NewMockRecoveryCodeRepository(t TestingT) *MockRecoveryCodeRepository {
	m := &MockRecoveryCodeRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockRecoveryCodeRepository) Replace(ctx context.Context, userID ulid.ULID, codeHashes []string) error {
	return m.Called(ctx, userID, codeHashes).Error(0)
}

func (m *MockRecoveryCodeRepository) Consume(ctx context.Context, userID ulid.ULID, codeHash string) (bool, error) {
	args := m.Called(ctx, userID, codeHash)
	return args.Bool(0), args.Error(1)
}

// MockPasswordHasher mocks auth.PasswordHasher.
type MockPasswordHasher struct{ mock.Mock }

// NewMockPasswordHasher creates a mock that asserts its expectations on cleanup.
func NewMockPasswordHasher(t TestingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	register(&m.Mock, t)
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

func (m *MockPasswordHasher) NeedsUpgrade(hash string) bool {
	return m.Called(hash).Bool(0)
}

// MockRangeClient mocks auth.RangeClient.
type MockRangeClient struct{ mock.Mock }

// NewMockRangeClient creates a mock that asserts its expectations on cleanup.
func NewMockRangeClient(t TestingT) *MockRangeClient {
	m := &MockRangeClient{}
	register(&m.Mock, t)
	return m
}

func (m *MockRangeClient) Range(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	lines, _ := args.Get(0).([]string)
	return lines, args.Error(1)
}

// MockPasswordStrength mocks auth.PasswordStrength.
type MockPasswordStrength struct{ mock.Mock }

// NewMockPasswordStrength creates a mock that asserts its expectations on cleanup.
func NewMockPasswordStrength(t TestingT) *MockPasswordStrength {
	m := &MockPasswordStrength{}
	register(&m.Mock, t)
	return m
}

func (m *MockPasswordStrength) VerifyPasswordStrength(ctx context.Context, password string) bool {
	return m.Called(ctx, password).Bool(0)
}

var (
	_ auth.UserRepository          = (*MockUserRepository)(nil)
	_ auth.SessionRepository       = (*MockSessionRepository)(nil)
	_ auth.PasswordResetRepository = (*MockPasswordResetRepository)(nil)
	_ auth.RecoveryCodeRepository  = (*MockRecoveryCodeRepository)(nil)
	_ auth.PasswordHasher          = (*MockPasswordHasher)(nil)
	_ auth.RangeClient             = (*MockRangeClient)(nil)
	_ auth.PasswordStrength        = (*MockPasswordStrength)(nil)
)
