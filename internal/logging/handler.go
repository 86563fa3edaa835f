// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

// Package logging builds the process slog.Logger.
//
// Every record carries the service identity. Records logged with a context
// also pick up the HTTP request id and any OpenTelemetry span. Attributes
// whose key names a credential are masked at any group depth.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// Redacted replaces the value of any attribute whose key is sensitive.
const Redacted = "[REDACTED]"

var sensitiveKeys = map[string]bool{
	"password":      true,
	"new_password":  true,
	"password_hash": true,
	"token":         true,
	"session_token": true,
	"reset_token":   true,
	"recovery_code": true,
	"totp_key":      true,
	"cookie":        true,
	"authorization": true,
}

// contextHandler decorates records with identity and request correlation.
type contextHandler struct {
	next     slog.Handler
	identity []slog.Attr
}

func newContextHandler(next slog.Handler, service, version string) *contextHandler {
	return &contextHandler{
		next:     next,
		identity: []slog.Attr{slog.String("service", service), slog.String("version", version)},
	}
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(h.identity...)
	r.AddAttrs(correlation(ctx)...)
	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), identity: h.identity}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), identity: h.identity}
}

func correlation(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if id := middleware.GetReqID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()))
	}
	return attrs
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, Redacted)
	}
	return a
}

// ParseLevel maps "debug", "info", "warn" and "error" to a slog.Level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup returns a logger writing to w, or stderr when w is nil.
// format is "json" or "text"; anything else means json.
func Setup(service, version, format string, level slog.Level, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: redact}

	var base slog.Handler = slog.NewJSONHandler(w, opts)
	if format == "text" {
		base = slog.NewTextHandler(w, opts)
	}
	return slog.New(newContextHandler(base, service, version))
}

// SetDefault installs a Setup logger writing to stderr as the slog default.
func SetDefault(service, version, format string, level slog.Level) *slog.Logger {
	logger := Setup(service, version, format, level, nil)
	slog.SetDefault(logger)
	return logger
}
