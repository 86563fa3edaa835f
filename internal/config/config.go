// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

// Package config loads authcore settings from an optional YAML file and
// command-line flags.
package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/authcore/authcore/internal/auth"
	"github.com/authcore/authcore/internal/breach"
)

// DatabaseURLEnv is consulted when no database URL is configured.
const DatabaseURLEnv = "DATABASE_URL"

// Config holds every runtime setting.
//
//nolint:lll // struct tags carry the schema
type Config struct {
	HTTPAddr        string        `koanf:"http_addr" json:"http_addr,omitempty" jsonschema:"description=Listen address for the auth HTTP API"`
	MetricsAddr     string        `koanf:"metrics_addr" json:"metrics_addr,omitempty" jsonschema:"description=Listen address for metrics and health probes"`
	DatabaseURL     string        `koanf:"database_url" json:"database_url,omitempty" jsonschema:"description=PostgreSQL connection string"`
	LogFormat       string        `koanf:"log_format" json:"log_format,omitempty" jsonschema:"enum=json,enum=text"`
	LogLevel        string        `koanf:"log_level" json:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Production      bool          `koanf:"production" json:"production,omitempty" jsonschema:"description=Mark session cookies Secure"`
	SessionLifetime time.Duration `koanf:"session_lifetime" json:"session_lifetime,omitempty" jsonschema:"type=string,pattern=^([0-9]+(ns|us|ms|s|m|h))+$"`
	BreachURL       string        `koanf:"breach_url" json:"breach_url,omitempty" jsonschema:"description=Base URL of the password range endpoint"`
	BreachTimeout   time.Duration `koanf:"breach_timeout" json:"breach_timeout,omitempty" jsonschema:"type=string,pattern=^([0-9]+(ns|us|ms|s|m|h))+$"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout,omitempty" jsonschema:"type=string,pattern=^([0-9]+(ns|us|ms|s|m|h))+$"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		HTTPAddr:        ":8080",
		MetricsAddr:     ":9100",
		LogFormat:       "json",
		LogLevel:        "info",
		SessionLifetime: auth.DefaultSessionLifetime,
		BreachURL:       breach.DefaultBaseURL,
		BreachTimeout:   breach.DefaultTimeout,
		ShutdownTimeout: 10 * time.Second,
	}
}

// RegisterFlags adds one flag per setting to fs, seeded from Default.
// Flag names use dashes; they map onto the underscore keys.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("http-addr", d.HTTPAddr, "listen address for the auth HTTP API")
	fs.String("metrics-addr", d.MetricsAddr, "listen address for metrics and health probes")
	fs.String("database-url", d.DatabaseURL, "PostgreSQL connection string (default $"+DatabaseURLEnv+")")
	fs.String("log-format", d.LogFormat, "log format (json or text)")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.Bool("production", d.Production, "mark session cookies Secure")
	fs.Duration("session-lifetime", d.SessionLifetime, "session lifetime; sessions renew in the trailing half")
	fs.String("breach-url", d.BreachURL, "base URL of the password range endpoint")
	fs.Duration("breach-timeout", d.BreachTimeout, "timeout for one breach range request")
	fs.Duration("shutdown-timeout", d.ShutdownTimeout, "graceful shutdown timeout")
}

// Load builds a Config from Default, then the YAML file at path (if any),
// then flags. Explicitly set flags win over the file.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
		if err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
		if err := ValidateYAML(data); err != nil {
			return nil, oops.Code("CONFIG_SCHEMA_INVALID").With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, known := knownKeys[key]; !known {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv(DatabaseURLEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var knownKeys = map[string]struct{}{
	"http_addr": {}, "metrics_addr": {}, "database_url": {}, "log_format": {}, "log_level": {},
	"production": {}, "session_lifetime": {}, "breach_url": {}, "breach_timeout": {}, "shutdown_timeout": {},
}

// Validate checks constraints the schema cannot express.
func (c *Config) Validate() error {
	invalid := func(field, format string, args ...any) error {
		return oops.Code("CONFIG_INVALID").With("field", field).Errorf(format, args...)
	}

	switch {
	case c.HTTPAddr == "":
		return invalid("http_addr", "http_addr is required")
	case c.MetricsAddr == "":
		return invalid("metrics_addr", "metrics_addr is required")
	case c.LogFormat != "json" && c.LogFormat != "text":
		return invalid("log_format", "log_format must be json or text, got %q", c.LogFormat)
	case c.SessionLifetime <= 0:
		return invalid("session_lifetime", "session_lifetime must be positive")
	case c.BreachTimeout <= 0:
		return invalid("breach_timeout", "breach_timeout must be positive")
	case c.ShutdownTimeout <= 0:
		return invalid("shutdown_timeout", "shutdown_timeout must be positive")
	}

	u, err := url.Parse(c.BreachURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid("breach_url", "breach_url must be an absolute URL")
	}
	return nil
}

// RequireDatabase reports an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "database_url").
			Errorf("database_url is required (or set $%s)", DatabaseURLEnv)
	}
	return nil
}
