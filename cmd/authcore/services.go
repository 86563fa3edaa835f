// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package main

import (
	"fmt"
	"log/slog"

	"github.com/authcore/authcore/internal/auth"
	"github.com/authcore/authcore/internal/auth/postgres"
	"github.com/authcore/authcore/internal/breach"
	"github.com/authcore/authcore/internal/config"
	"github.com/authcore/authcore/internal/web"
)

// buildServices wires the auth services over db. metrics may be nil.
func buildServices(db postgres.DBTX, cfg *config.Config, logger *slog.Logger, metrics auth.Recorder) (web.Services, error) {
	if metrics == nil {
		metrics = auth.NopRecorder{}
	}
	repos := postgres.NewRepositories(db)
	hasher := auth.NewArgon2idHasher()

	strength, err := newStrengthChecker(cfg, logger, metrics)
	if err != nil {
		return web.Services{}, err
	}

	sessions, err := auth.NewSessionManager(repos.Sessions,
		auth.WithSessionLifetime(cfg.SessionLifetime),
		auth.WithSessionLogger(logger),
		auth.WithSessionMetrics(metrics))
	if err != nil {
		return web.Services{}, fmt.Errorf("failed to create session manager: %w", err)
	}

	authn, err := auth.NewAuthenticator(repos.Users, sessions, hasher, logger, metrics)
	if err != nil {
		return web.Services{}, fmt.Errorf("failed to create authenticator: %w", err)
	}
	users, err := auth.NewUserService(repos.Users, hasher, strength, logger)
	if err != nil {
		return web.Services{}, fmt.Errorf("failed to create user service: %w", err)
	}
	recovery, err := auth.NewRecoveryService(repos.Recovery, logger)
	if err != nil {
		return web.Services{}, fmt.Errorf("failed to create recovery service: %w", err)
	}

	svc := web.Services{
		Auth:     authn,
		Users:    users,
		Sessions: sessions,
		Recovery: recovery,
	}

	// Reset codes are only logged; without a mail relay the flow stays off
	// in production.
	if cfg.Production {
		logger.Warn("password reset disabled: no reset code delivery configured")
		return svc, nil
	}
	resets, err := auth.NewResetService(repos.Users, repos.Resets, sessions, hasher, strength, logger)
	if err != nil {
		return web.Services{}, fmt.Errorf("failed to create reset service: %w", err)
	}
	svc.Resets = resets
	svc.ResetCodes = web.LogCodeSender{Logger: logger}
	return svc, nil
}

func newStrengthChecker(cfg *config.Config, logger *slog.Logger, metrics auth.Recorder) (*auth.StrengthChecker, error) {
	client, err := breach.New(cfg.BreachURL, breach.WithTimeout(cfg.BreachTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create breach client: %w", err)
	}
	checker, err := auth.NewStrengthChecker(client, logger, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create strength checker: %w", err)
	}
	return checker, nil
}
