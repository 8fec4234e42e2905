// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package store provides the PostgreSQL plumbing shared by repositories:
// connection setup, explicit transaction handles, the soft-delete query helper
// and schema migrations.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ConnectOptions tunes the startup connection loop.
type ConnectOptions struct {
	// Timeout bounds each ping attempt.
	Timeout time.Duration
	// Retries is the number of additional attempts after the first failure.
	Retries uint64
	// Backoff is the base delay of the exponential backoff.
	Backoff time.Duration
}

func (o ConnectOptions) withDefaults() ConnectOptions {
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.Backoff <= 0 {
		o.Backoff = 250 * time.Millisecond
	}
	return o
}

// Connect opens a pgx pool and waits until the database answers a ping,
// retrying with exponential backoff while it is still starting.
func Connect(ctx context.Context, databaseURL string, opts ConnectOptions) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("database url is required")
	}
	opts = opts.withDefaults()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	backoff := retry.WithCappedDuration(5*time.Second, retry.NewExponential(opts.Backoff))
	backoff = retry.WithMaxRetries(opts.Retries, backoff)

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			slog.WarnContext(ctx, "database not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			With("attempts", attempt).
			Wrap(err)
	}

	return pool, nil
}
