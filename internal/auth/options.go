// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package auth

import (
	"log/slog"

	"github.com/ringdex/ringdex/internal/clock"
)

type serviceOptions struct {
	clock  clock.Clock
	logger *slog.Logger
}

// Option configures a SessionService or Authenticator.
type Option func(*serviceOptions)

// WithClock sets the clock used for timestamps. The default is clock.System.
func WithClock(c clock.Clock) Option {
	return func(o *serviceOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *serviceOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) serviceOptions {
	o := serviceOptions{clock: clock.System{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
