// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/ringdex/ringdex/internal/auth"
	"github.com/ringdex/ringdex/internal/lifecycle"
	"github.com/ringdex/ringdex/internal/observability"
	"github.com/ringdex/ringdex/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve metrics and health probes until interrupted",
		Long: `Connect to the database and serve /metrics, /healthz/liveness and
/healthz/readiness on metrics.addr until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, env)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command, env *cmdEnv) error {
	cfg, err := env.load(cmd)
	if err != nil {
		return err
	}
	if cfg.Metrics.Addr == "" {
		return oops.Code("CONFIG_INVALID").With("key", "metrics.addr").Errorf("metrics.addr is required to serve")
	}
	logger, err := env.logger(cmd, cfg)
	if err != nil {
		return err
	}

	svc, err := env.deps.OpenServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := observability.NewServer(cfg.Metrics.Addr, svc.Ping, logger)
	auth.RegisterMetrics(srv.Registry())
	lifecycle.RegisterMetrics(srv.Registry())

	errCh, err := srv.Start()
	if err != nil {
		//nolint:wrapcheck // observability errors are already coded
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err, ok := <-errCh:
		if ok {
			serveErr = oops.Code("SERVE_FAILED").Wrap(err)
			errutil.LogError(logger, "observability server failed", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		errutil.LogError(logger, "error stopping observability server", err)
	}
	return serveErr
}
