// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package logging builds the process slog.Logger. Every record carries the
// service name and version, and the trace and span ids of the span active in
// the record's context, if any.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/trace"
)

// traceHandler adds span identifiers to each record.
type traceHandler struct {
	next slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.next.Handle(ctx, r)
}

func (h traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{next: h.next.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{next: h.next.WithGroup(name)}
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
// An empty string is info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, oops.Code("LOG_LEVEL_INVALID").With("level", level).Errorf("unknown log level %q", level)
}

// Setup creates a logger writing to w (os.Stderr when nil). format is "json"
// or "text"; anything else is an error, except empty which means json.
func Setup(service, version, format, level string, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var base slog.Handler
	switch format {
	case "", "json":
		base = slog.NewJSONHandler(w, opts)
	case "text":
		base = slog.NewTextHandler(w, opts)
	default:
		return nil, oops.Code("LOG_FORMAT_INVALID").
			With("format", format).
			Errorf("invalid log format %q: must be 'json' or 'text'", format)
	}

	base = base.WithAttrs([]slog.Attr{
		slog.String("service", service),
		slog.String("version", version),
	})
	return slog.New(traceHandler{next: base}), nil
}

// SetDefault installs a Setup logger as slog's default and returns it.
func SetDefault(service, version, format, level string) (*slog.Logger, error) {
	logger, err := Setup(service, version, format, level, nil)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
