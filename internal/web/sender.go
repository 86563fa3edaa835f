// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package web

import (
	"context"
	"log/slog"
)

// LogCodeSender writes reset codes to the log instead of mailing them. It is
// meant for development setups without a mail relay.
type LogCodeSender struct {
	Logger *slog.Logger
}

// SendResetCode logs code for email.
func (s LogCodeSender) SendResetCode(ctx context.Context, email, code string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "password reset code issued", "email", email, "reset_code", code)
	return nil
}
