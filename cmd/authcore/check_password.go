// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/authcore/authcore/internal/logging"
)

var errPasswordRejected = errors.New("password rejected")

// NewCheckPasswordCmd creates the check-password subcommand.
func NewCheckPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-password",
		Short: "Check a password against the length rules and breach corpus",
		Long: `Read a password from standard input and report whether it would be
accepted at registration. Only a five character digest prefix is sent to the
breach endpoint. Exits non-zero when the password is rejected.`,
		Args: cobra.NoArgs,
		RunE: runCheckPassword,
	}
}

func runCheckPassword(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.Setup(serviceName, version, cfg.LogFormat, logging.ParseLevel(cfg.LogLevel), cmd.ErrOrStderr())

	password, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && password == "" {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	checker, err := newStrengthChecker(cfg, logger, nil)
	if err != nil {
		return err
	}
	if !checker.VerifyPasswordStrength(cmd.Context(), password) {
		cmd.Println("Password rejected")
		return errPasswordRejected
	}
	cmd.Println("Password accepted")
	return nil
}
