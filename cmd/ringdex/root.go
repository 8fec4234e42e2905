// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ringdex/ringdex/internal/config"
	"github.com/ringdex/ringdex/internal/logging"
	"github.com/ringdex/ringdex/internal/xdg"
)

// NewRootCmd creates the root command for the ringdex CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *CommandDeps) *cobra.Command {
	deps = deps.withDefaults()
	var configFile string

	cmd := &cobra.Command{
		Use:   "ringdex",
		Short: "ringdex - a webring directory",
		Long: `ringdex manages a directory of webrings and their member sites.

Configuration is read from defaults, then the --config YAML file
($XDG_CONFIG_HOME/ringdex/config.yaml when --config is not given), then any
configuration flag given on the command line.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	env := &cmdEnv{deps: deps, configFile: &configFile}
	cmd.AddCommand(newMigrateCmd(env))
	cmd.AddCommand(newServeCmd(env))
	cmd.AddCommand(newAdminCmd(env))
	cmd.AddCommand(newConfigCmd(env))

	return cmd
}

// cmdEnv is what every subcommand needs to start up.
type cmdEnv struct {
	deps       *CommandDeps
	configFile *string
}

// load reads the configuration with the flags of cmd applied. Without
// --config, the XDG config file is used when it exists.
func (e *cmdEnv) load(cmd *cobra.Command) (*config.Config, error) {
	path := *e.configFile
	if path == "" {
		var err error
		if path, err = xdg.DefaultConfigFile(); err != nil {
			//nolint:wrapcheck // xdg errors are already coded
			return nil, err
		}
	}
	//nolint:wrapcheck // config errors are already coded
	return config.Load(path, cmd.Flags())
}

// logger builds the process logger from cfg, writing to the command's stderr.
func (e *cmdEnv) logger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	//nolint:wrapcheck // logging errors are already coded
	return logging.Setup("ringdex", version, cfg.Log.Format, cfg.Log.Level, cmd.ErrOrStderr())
}
