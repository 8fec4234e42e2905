// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/ringdex/ringdex/internal/auth"
	"github.com/ringdex/ringdex/internal/lifecycle"
	"github.com/ringdex/ringdex/internal/validate"
)

func newAdminCmd(env *cmdEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative actions on directory content, users and sessions",
	}

	var at string
	deleteFlags := func(c *cobra.Command) *cobra.Command {
		c.Flags().StringVar(&at, "at", "", "deletion instant (RFC 3339, default now)")
		return c
	}

	cmd.AddCommand(deleteFlags(&cobra.Command{
		Use:   "delete-user <user-id>",
		Short: "Soft-delete a user with the webrings they created and their sites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, env, func(ctx context.Context, svc *Services) error {
				opts, err := deleteOptions(at)
				if err != nil {
					return err
				}
				u, err := svc.Coordinator.DeleteUser(ctx, args[0], opts)
				if err != nil {
					//nolint:wrapcheck // coordinator errors are already coded
					return err
				}
				cmd.Printf("Deleted user %s (%s)\n", u.ID, u.Username)
				return nil
			})
		},
	}))

	cmd.AddCommand(deleteFlags(&cobra.Command{
		Use:   "delete-webring <webring-id>",
		Short: "Soft-delete a webring and its sites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, env, func(ctx context.Context, svc *Services) error {
				opts, err := deleteOptions(at)
				if err != nil {
					return err
				}
				w, err := svc.Coordinator.DeleteWebring(ctx, args[0], opts)
				if err != nil {
					//nolint:wrapcheck // coordinator errors are already coded
					return err
				}
				cmd.Printf("Deleted webring %s (%s)\n", w.ID, w.URL)
				return nil
			})
		},
	}))

	cmd.AddCommand(deleteFlags(&cobra.Command{
		Use:   "delete-site <site-id>",
		Short: "Soft-delete a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, env, func(ctx context.Context, svc *Services) error {
				opts, err := deleteOptions(at)
				if err != nil {
					return err
				}
				s, err := svc.Coordinator.DeleteSite(ctx, args[0], opts)
				if err != nil {
					//nolint:wrapcheck // coordinator errors are already coded
					return err
				}
				cmd.Printf("Deleted site %s (%s)\n", s.ID, s.URL)
				return nil
			})
		},
	}))

	cmd.AddCommand(&cobra.Command{
		Use:   "unlock-user <user-id>",
		Short: "Clear a login lockout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, env, func(ctx context.Context, svc *Services) error {
				id, err := validate.ParseID("user_id", args[0])
				if err != nil {
					//nolint:wrapcheck // validation errors are already coded
					return err
				}
				if err := svc.Authenticator.Unlock(ctx, id); err != nil {
					//nolint:wrapcheck // auth errors are already coded
					return err
				}
				cmd.Printf("Unlocked user %s\n", id)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "end-session <session-id>",
		Short: "End a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, env, func(ctx context.Context, svc *Services) error {
				if err := svc.Sessions.EndSession(ctx, args[0], auth.EndSessionOptions{}); err != nil {
					//nolint:wrapcheck // auth errors are already coded
					return err
				}
				cmd.Printf("Ended session %s\n", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "end-user-sessions <user-id>",
		Short: "End every current session of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, env, func(ctx context.Context, svc *Services) error {
				id, err := validate.ParseID("user_id", args[0])
				if err != nil {
					//nolint:wrapcheck // validation errors are already coded
					return err
				}
				n, err := svc.Sessions.EndUserSessions(ctx, id, auth.EndSessionOptions{})
				if err != nil {
					//nolint:wrapcheck // auth errors are already coded
					return err
				}
				cmd.Printf("Ended %d session(s) of user %s\n", n, id)
				return nil
			})
		},
	})

	addDirectoryCmds(cmd, env)
	return cmd
}

// withServices loads configuration, opens the services and runs fn.
func withServices(cmd *cobra.Command, env *cmdEnv, fn func(ctx context.Context, svc *Services) error) error {
	cfg, err := env.load(cmd)
	if err != nil {
		return err
	}
	logger, err := env.logger(cmd, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := env.deps.OpenServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(ctx, svc)
}

func deleteOptions(at string) (lifecycle.DeleteOptions, error) {
	if at == "" {
		return lifecycle.DeleteOptions{}, nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return lifecycle.DeleteOptions{}, oops.Code("INVALID_TIMESTAMP").With("at", at).Wrap(err)
	}
	return lifecycle.DeleteOptions{DeletedAt: t}, nil
}
