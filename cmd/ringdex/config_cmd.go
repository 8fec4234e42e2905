// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package main

import (
	"net/url"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration after defaults, the config file and flags
are applied. The database password is redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := env.load(cmd)
			if err != nil {
				return err
			}

			shown := *cfg
			if u, err := url.Parse(cfg.Database.URL); err == nil && u.User != nil {
				shown.Database.URL = u.Redacted()
			}

			out, err := yaml.Marshal(&shown)
			if err != nil {
				return oops.Code("CONFIG_ENCODE_FAILED").Wrap(err)
			}
			cmd.Print(string(out))
			return nil
		},
	}
}
