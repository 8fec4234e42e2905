// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newMigrateCmd(env *cmdEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, env, func(m Migrator) error {
				if err := m.Up(); err != nil {
					//nolint:wrapcheck // migrator errors are already coded
					return err
				}
				cmd.Println("Migrations applied")
				return nil
			})
		},
	})

	var yes bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping all data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return oops.Code("CONFIRMATION_REQUIRED").Errorf("migrate down drops all data; pass --yes to confirm")
			}
			return withMigrator(cmd, env, func(m Migrator) error {
				if err := m.Down(); err != nil {
					//nolint:wrapcheck // migrator errors are already coded
					return err
				}
				cmd.Println("Migrations rolled back")
				return nil
			})
		},
	}
	down.Flags().BoolVar(&yes, "yes", false, "confirm dropping all data")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, env, func(m Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					//nolint:wrapcheck // migrator errors are already coded
					return err
				}
				if dirty {
					cmd.Printf("Schema version %d (dirty)\n", v)
					return nil
				}
				cmd.Printf("Schema version %d\n", v)
				return nil
			})
		},
	})

	return cmd
}

// withMigrator opens a migrator for the configured database and closes it
// after fn.
func withMigrator(cmd *cobra.Command, env *cmdEnv, fn func(Migrator) error) (err error) {
	cfg, err := env.load(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").With("key", "database.url").Errorf("database.url is required")
	}

	m, err := env.deps.MigratorFactory(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(m)
}
