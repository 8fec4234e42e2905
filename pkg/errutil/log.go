// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package errutil holds helpers for working with oops errors at the edges of
// the system: logging them, extracting their code, and asserting on them.
package errutil

import (
	"fmt"
	"log/slog"

	"github.com/samber/oops"
)

// Code returns the oops error code carried by err, or "" when err is not an
// oops error or has no code. Callers use it to map failures to transports.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	switch code := any(oopsErr.Code()).(type) {
	case nil:
		return ""
	case string:
		return code
	default:
		return fmt.Sprint(code)
	}
}

// HasCode reports whether err carries the given oops code.
func HasCode(err error, code string) bool {
	return err != nil && Code(err) == code
}

// LogError logs an error with structured context if it's an oops error.
// For oops errors it adds the code and context; other errors are logged as is.
func LogError(logger *slog.Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, "error", err)
		return
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := Code(err); code != "" {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	logger.Error(msg, attrs...)
}
