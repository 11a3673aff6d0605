// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

// Package logging provides structured logging for QuillPad.
//
// The handler redacts credential-bearing attributes so that passwords and
// password hashes never reach the log output, regardless of call site.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// redactedValue replaces the value of any secret-bearing attribute.
const redactedValue = "[REDACTED]"

// secretKeys are attribute keys whose values must never be logged.
var secretKeys = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"candidate":     {},
}

// appHandler wraps a slog.Handler to add service metadata and redact secrets.
type appHandler struct {
	handler slog.Handler
	service string
	version string
}

// Handle adds service attributes and redacts secret-bearing attributes.
func (h *appHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	clean.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)

	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(redact(a))
		return true
	})

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.handler.Handle(ctx, clean)
}

// redact replaces secret attribute values, recursing into groups.
func redact(a slog.Attr) slog.Attr {
	if _, secret := secretKeys[a.Key]; secret {
		return slog.String(a.Key, redactedValue)
	}
	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		cleaned := make([]any, 0, len(members))
		for _, m := range members {
			cleaned = append(cleaned, redact(m))
		}
		return slog.Group(a.Key, cleaned...)
	}
	return a
}

// Enabled returns true if the level is enabled.
func (h *appHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler with the given attributes.
func (h *appHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		cleaned = append(cleaned, redact(a))
	}
	return &appHandler{
		handler: h.handler.WithAttrs(cleaned),
		service: h.service,
		version: h.version,
	}
}

// WithGroup returns a new handler with the given group.
func (h *appHandler) WithGroup(name string) slog.Handler {
	return &appHandler{
		handler: h.handler.WithGroup(name),
		service: h.service,
		version: h.version,
	}
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "json" if empty)
// If w is nil, writes to os.Stderr.
func Setup(service, version, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	var baseHandler slog.Handler
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	if format == "text" {
		baseHandler = slog.NewTextHandler(w, opts)
	} else {
		baseHandler = slog.NewJSONHandler(w, opts)
	}

	handler := &appHandler{
		handler: baseHandler,
		service: service,
		version: version,
	}

	return slog.New(handler)
}

// SetDefault sets up and configures the default logger.
func SetDefault(service, version, format string) {
	logger := Setup(service, version, format, nil)
	slog.SetDefault(logger)
}
