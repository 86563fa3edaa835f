// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/authcore/authcore/internal/auth"
	"github.com/authcore/authcore/internal/auth/postgres"
	"github.com/authcore/authcore/internal/logging"
)

// NewPruneSessionsCmd creates the prune-sessions subcommand. deps may be nil.
func NewPruneSessionsCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-sessions",
		Short: "Delete expired sessions",
		Long: `Delete every session whose expiry has passed. Expired sessions are
already rejected on use; pruning only reclaims storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPruneSessions(cmd, deps)
		},
	}
}

func runPruneSessions(cmd *cobra.Command, deps *Deps) error {
	deps = deps.withDefaults()
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := logging.SetDefault(serviceName, version, cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

	pool, err := deps.PoolFactory(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	sessions, err := auth.NewSessionManager(postgres.NewSessionRepository(pool),
		auth.WithSessionLifetime(cfg.SessionLifetime),
		auth.WithSessionLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	n, err := sessions.PruneExpired(ctx).Get()
	if err != nil {
		return fmt.Errorf("failed to prune sessions: %w", err)
	}
	cmd.Printf("Pruned %d expired sessions\n", n)
	return nil
}
