// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package main is the ringdex operator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/ringdex/ringdex/pkg/errutil"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// exitConfig is EX_CONFIG from sysexits(3).
const exitConfig = 78

var configErrorCodes = []string{"CONFIG_INVALID", "CONFIG_NOT_FOUND", "CONFIG_PARSE_FAILED", "CONFIG_LOAD_FAILED"}

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode returns exitConfig for configuration failures and 1 otherwise.
func exitCode(err error) int {
	for _, code := range configErrorCodes {
		if errutil.HasCode(err, code) {
			return exitConfig
		}
	}
	return 1
}
