// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authcore/authcore/internal/config"
	"github.com/authcore/authcore/pkg/errutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "config file")
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(config.DatabaseURLEnv, "")

	cfg, err := config.Load("", newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 720*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.Production)
}

func TestLoad_NilFlags(t *testing.T) {
	t.Setenv(config.DatabaseURLEnv, "")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	t.Setenv(config.DatabaseURLEnv, "")
	path := writeConfig(t, `
http_addr: ":9000"
database_url: postgres://localhost/authcore
log_format: text
production: true
session_lifetime: 24h
breach_timeout: 2s
`)

	cfg, err := config.Load(path, newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "postgres://localhost/authcore", cfg.DatabaseURL)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.Production)
	assert.Equal(t, 24*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, 2*time.Second, cfg.BreachTimeout)
	assert.Equal(t, ":9100", cfg.MetricsAddr, "unset keys keep defaults")
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	t.Setenv(config.DatabaseURLEnv, "")
	path := writeConfig(t, "http_addr: \":9000\"\nsession_lifetime: 24h\n")

	cfg, err := config.Load(path, newFlags(t, "--http-addr", ":7000"))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionLifetime, "unchanged flag does not clobber file")
}

func TestLoad_DurationFlag(t *testing.T) {
	t.Setenv(config.DatabaseURLEnv, "")

	cfg, err := config.Load("", newFlags(t, "--session-lifetime", "1h", "--production"))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.SessionLifetime)
	assert.True(t, cfg.Production)
}

func TestLoad_DatabaseURLFromEnv(t *testing.T) {
	t.Setenv(config.DatabaseURLEnv, "postgres://env/authcore")

	cfg, err := config.Load("", newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/authcore", cfg.DatabaseURL)

	cfg, err = config.Load("", newFlags(t, "--database-url", "postgres://flag/authcore"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://flag/authcore", cfg.DatabaseURL)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(config.DatabaseURLEnv, "")

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_READ_FAILED")
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "http_adr: \":1\"\n"), nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_SCHEMA_INVALID")
	})

	t.Run("bad enum", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "log_format: xml\n"), nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_SCHEMA_INVALID")
	})

	t.Run("semantic violation", func(t *testing.T) {
		_, err := config.Load("", newFlags(t, "--session-lifetime", "0s"))
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty http addr", func(c *config.Config) { c.HTTPAddr = "" }},
		{"empty metrics addr", func(c *config.Config) { c.MetricsAddr = "" }},
		{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }},
		{"zero lifetime", func(c *config.Config) { c.SessionLifetime = 0 }},
		{"negative breach timeout", func(c *config.Config) { c.BreachTimeout = -time.Second }},
		{"zero shutdown timeout", func(c *config.Config) { c.ShutdownTimeout = 0 }},
		{"relative breach url", func(c *config.Config) { c.BreachURL = "/range" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
		})
	}

	assert.NoError(t, config.Default().Validate())
}

func TestConfig_RequireDatabase(t *testing.T) {
	cfg := config.Default()
	err := cfg.RequireDatabase()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")

	cfg.DatabaseURL = "postgres://localhost/authcore"
	assert.NoError(t, cfg.RequireDatabase())
}
