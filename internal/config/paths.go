// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package config

import (
	"os"
	"path/filepath"
)

const appName = "authcore"

// FileName is the config file looked up in ConfigDir.
const FileName = "config.yaml"

// ConfigDir returns the XDG config directory for authcore.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/authcore.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultPath returns the config file in ConfigDir, or "" when there is
// none.
func DefaultPath() string {
	path := filepath.Join(ConfigDir(), FileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
