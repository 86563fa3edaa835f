// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

import (
	"context"
	"crypto/rand"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authcore/authcore/pkg/result"
)

// Recovery code configuration.
const (
	RecoveryCodeBytes    = 10 // 16 base32 characters
	DefaultRecoveryCodes = 8
	MaxRecoveryCodes     = 16
)

// RecoveryCodeRepository stores hashed single-use recovery codes.
type RecoveryCodeRepository interface {
	// Replace discards the user's codes and stores the given hashes.
	Replace(ctx context.Context, userID ulid.ULID, codeHashes []string) error

	// Consume deletes the matching code and reports whether one existed.
	Consume(ctx context.Context, userID ulid.ULID, codeHash string) (bool, error)
}

// GenerateRecoveryCode returns a 16-character uppercase base32 code.
func GenerateRecoveryCode() (string, error) {
	b := make([]byte, RecoveryCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("RECOVERY_CODE_GENERATE_FAILED").Wrap(err)
	}
	return tokenEncoding.EncodeToString(b), nil
}

// HashRecoveryCode normalizes and hashes a recovery code for storage.
func HashRecoveryCode(code string) string {
	return HashSessionToken(strings.ToUpper(strings.TrimSpace(code)))
}

// RecoveryService issues and redeems recovery codes.
type RecoveryService struct {
	codes  RecoveryCodeRepository
	logger *slog.Logger
}

// NewRecoveryService creates a RecoveryService.
func NewRecoveryService(codes RecoveryCodeRepository, logger *slog.Logger) (*RecoveryService, error) {
	if codes == nil {
		return nil, oops.Code("RECOVERY_SERVICE_INVALID").Errorf("recovery code repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecoveryService{codes: codes, logger: logger}, nil
}

// Generate replaces the user's recovery codes with n new ones and returns
// the plaintexts. They cannot be retrieved again.
func (s *RecoveryService) Generate(ctx context.Context, userID ulid.ULID, n int) result.Result[[]string] {
	if n <= 0 || n > MaxRecoveryCodes {
		return result.Err[[]string](oops.Code("RECOVERY_INVALID_COUNT").
			With("count", n).
			Errorf("recovery code count must be 1 to %d", MaxRecoveryCodes))
	}

	codes := make([]string, 0, n)
	hashes := make([]string, 0, n)
	for range n {
		code, err := GenerateRecoveryCode()
		if err != nil {
			return result.Err[[]string](err)
		}
		codes = append(codes, code)
		hashes = append(hashes, HashRecoveryCode(code))
	}

	if err := s.codes.Replace(ctx, userID, hashes); err != nil {
		return result.Err[[]string](oops.Code("RECOVERY_GENERATE_FAILED").
			With("user_id", userID.String()).
			Wrap(err))
	}

	s.logger.InfoContext(ctx, "recovery codes generated", "user_id", userID.String(), "count", n)
	return result.Ok(codes)
}

// Redeem consumes code for userID. An unknown code yields Ok(false).
func (s *RecoveryService) Redeem(ctx context.Context, userID ulid.ULID, code string) result.Result[bool] {
	if strings.TrimSpace(code) == "" {
		return result.Ok(false)
	}
	ok, err := s.codes.Consume(ctx, userID, HashRecoveryCode(code))
	if err != nil {
		return result.Err[bool](oops.Code("RECOVERY_REDEEM_FAILED").
			With("user_id", userID.String()).
			Wrap(err))
	}
	if ok {
		s.logger.InfoContext(ctx, "recovery code redeemed", "user_id", userID.String())
	}
	return result.Ok(ok)
}
