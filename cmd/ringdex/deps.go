// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/auth"
	authpg "github.com/ringdex/ringdex/internal/auth/postgres"
	"github.com/ringdex/ringdex/internal/config"
	"github.com/ringdex/ringdex/internal/lifecycle"
	"github.com/ringdex/ringdex/internal/ring"
	ringpg "github.com/ringdex/ringdex/internal/ring/postgres"
	"github.com/ringdex/ringdex/internal/store"
)

// Migrator is the subset of store.Migrator used by the migrate command.
type Migrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Close() error
}

// CommandDeps contains injectable dependencies for the subcommands.
// Nil fields use their default implementations.
type CommandDeps struct {
	// OpenServices connects to the database and wires the services.
	// Default: openServices
	OpenServices func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error)

	// MigratorFactory creates a migrator for a database URL.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)
}

func (d *CommandDeps) withDefaults() *CommandDeps {
	out := CommandDeps{}
	if d != nil {
		out = *d
	}
	if out.OpenServices == nil {
		out.OpenServices = openServices
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (Migrator, error) {
			//nolint:wrapcheck // migrator errors are already coded
			return store.NewMigrator(databaseURL)
		}
	}
	return &out
}

// Repositories are the storage dependencies of the services.
type Repositories struct {
	Users      auth.UserRepository
	Sessions   auth.SessionRepository
	Webrings   ring.WebringRepository
	Sites      ring.SiteRepository
	Tags       ring.TagRepository
	Transactor store.Transactor
}

// Services are the wired application services.
type Services struct {
	Sessions      *auth.SessionService
	Authenticator *auth.Authenticator
	Coordinator   *lifecycle.Coordinator
	Directory     *ring.Directory

	// Ping checks the database, for readiness.
	Ping func(ctx context.Context) error
	// Close releases the database pool.
	Close func()
}

// newServices wires the services over repos.
func newServices(cfg *config.Config, logger *slog.Logger, repos Repositories) (*Services, error) {
	hasher, err := auth.NewHasher(cfg.Auth.Hasher, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, oops.Code("SERVICE_INIT_FAILED").With("component", "hasher").Wrap(err)
	}

	sessions, err := auth.NewSessionService(repos.Users, repos.Sessions, cfg.Auth.SessionValidity,
		auth.WithLogger(logger))
	if err != nil {
		return nil, oops.Code("SERVICE_INIT_FAILED").With("component", "sessions").Wrap(err)
	}

	authenticator, err := auth.NewAuthenticator(repos.Users, sessions, hasher, repos.Transactor,
		cfg.AuthPolicy(), auth.WithLogger(logger))
	if err != nil {
		return nil, oops.Code("SERVICE_INIT_FAILED").With("component", "authenticator").Wrap(err)
	}

	coordinator, err := lifecycle.NewCoordinator(repos.Users, repos.Webrings, repos.Sites, repos.Transactor,
		lifecycle.WithLogger(logger))
	if err != nil {
		return nil, oops.Code("SERVICE_INIT_FAILED").With("component", "coordinator").Wrap(err)
	}

	directory, err := ring.NewDirectory(repos.Webrings, repos.Sites, repos.Tags, repos.Transactor,
		cfg.RingLimits(), ring.WithDirectoryLogger(logger))
	if err != nil {
		return nil, oops.Code("SERVICE_INIT_FAILED").With("component", "directory").Wrap(err)
	}

	return &Services{
		Sessions:      sessions,
		Authenticator: authenticator,
		Coordinator:   coordinator,
		Directory:     directory,
		Ping:          func(context.Context) error { return nil },
		Close:         func() {},
	}, nil
}

// openServices connects to PostgreSQL and wires the services over it.
func openServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	if cfg.Database.URL == "" {
		return nil, oops.Code("CONFIG_INVALID").With("key", "database.url").Errorf("database.url is required")
	}

	pool, err := store.Connect(ctx, cfg.Database.URL, store.ConnectOptions{
		Timeout: cfg.Database.ConnectTimeout,
		Retries: cfg.Database.ConnectRetries,
	})
	if err != nil {
		//nolint:wrapcheck // connect errors are already coded
		return nil, err
	}

	svc, err := newServices(cfg, logger, Repositories{
		Users:      authpg.NewUserRepository(pool),
		Sessions:   authpg.NewSessionRepository(pool),
		Webrings:   ringpg.NewWebringRepository(pool),
		Sites:      ringpg.NewSiteRepository(pool),
		Tags:       ringpg.NewTagRepository(pool),
		Transactor: store.NewTransactor(pool),
	})
	if err != nil {
		pool.Close()
		return nil, err
	}
	svc.Ping = pool.Ping
	svc.Close = pool.Close
	return svc, nil
}
