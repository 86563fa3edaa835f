// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/authcore/authcore/internal/config"
)

const serviceName = "authcore"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the authcore CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authcore",
		Short: "AuthCore - session and credential service",
		Long: `AuthCore issues, validates, renews and revokes cookie sessions,
and hashes and breach-checks passwords.`,
		Version:      versionString(),
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd(deps))
	cmd.AddCommand(NewPruneSessionsCmd(deps))
	cmd.AddCommand(NewCheckPasswordCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// loadConfig merges the config file and the command's flags. Without
// --config the file in the XDG config directory is used if present.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
