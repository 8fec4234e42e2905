// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringdex/ringdex/internal/config"
	"github.com/ringdex/ringdex/pkg/errutil"
)

func TestServe_RequiresMetricsAddr(t *testing.T) {
	_, _, err := execute(t, newFakeRepos().deps(), "serve", "--metrics.addr", "")
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestServe_PropagatesOpenFailure(t *testing.T) {
	deps := &CommandDeps{
		OpenServices: func(context.Context, *config.Config, *slog.Logger) (*Services, error) {
			return nil, errors.New("connection refused")
		},
	}
	_, _, err := execute(t, deps, "serve", "--metrics.addr", "127.0.0.1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestServe_StopsWhenContextEnds(t *testing.T) {
	f := newFakeRepos()
	closed := false
	deps := &CommandDeps{
		OpenServices: func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
			svc, err := f.deps().OpenServices(ctx, cfg, logger)
			if err != nil {
				return nil, err
			}
			svc.Close = func() { closed = true }
			return svc, nil
		},
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := newRootCmd(deps)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"serve", "--metrics.addr", "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.True(t, closed, "services are closed on shutdown")
}
