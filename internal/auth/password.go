// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package auth

import (
	"context"
	"crypto/sha1" //nolint:gosec // G505: the breach corpus is keyed by SHA-1
	"encoding/hex"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"

	"github.com/authcore/authcore/pkg/errutil"
)

// Password length bounds for new passwords.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 255
)

const (
	breachPrefixLen = 5
	breachSuffixLen = 35
)

// RangeClient fetches breach corpus records whose digest starts with prefix.
// Each returned line is a suffix followed by optional metadata.
type RangeClient interface {
	Range(ctx context.Context, prefix string) ([]string, error)
}

// StrengthChecker rejects passwords that are out of bounds or appear in a
// breach corpus.
type StrengthChecker struct {
	client  RangeClient
	logger  *slog.Logger
	metrics Recorder
}

// NewStrengthChecker creates a StrengthChecker. A nil logger uses
// slog.Default and a nil recorder discards metrics.
func NewStrengthChecker(client RangeClient, logger *slog.Logger, metrics Recorder) (*StrengthChecker, error) {
	if client == nil {
		return nil, oops.Code("STRENGTH_CHECKER_INVALID").Errorf("range client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NopRecorder{}
	}
	return &StrengthChecker{client: client, logger: logger, metrics: metrics}, nil
}

// VerifyPasswordStrength reports whether password is acceptable.
//
// Passwords outside [MinPasswordLength, MaxPasswordLength] are rejected
// without a lookup. Otherwise only the first five hex characters of the
// password's SHA-1 digest leave the process. A lookup failure rejects the
// password.
func (c *StrengthChecker) VerifyPasswordStrength(ctx context.Context, password string) bool {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		c.metrics.BreachCheck(OutcomeRejected)
		return false
	}

	sum := sha1.Sum([]byte(password)) //nolint:gosec // G401: corpus lookup key, not a password hash
	digest := hex.EncodeToString(sum[:])
	prefix, suffix := digest[:breachPrefixLen], digest[breachPrefixLen:]

	lines, err := c.client.Range(ctx, prefix)
	if err != nil {
		errutil.LogWarnContext(ctx, c.logger, "breach check unavailable, rejecting password", err)
		c.metrics.BreachCheck(OutcomeUnavailable)
		return false
	}

	for _, line := range lines {
		if len(line) < breachSuffixLen {
			continue
		}
		if strings.ToLower(line[:breachSuffixLen]) == suffix {
			c.logger.DebugContext(ctx, "password found in breach corpus")
			c.metrics.BreachCheck(OutcomeBreached)
			return false
		}
	}

	c.metrics.BreachCheck(OutcomeClean)
	return true
}
