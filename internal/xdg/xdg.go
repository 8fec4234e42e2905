// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package xdg locates ringdex files under the XDG base directories.
package xdg

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const (
	appName        = "ringdex"
	configFileName = "config.yaml"
)

// ConfigDir returns $XDG_CONFIG_HOME/ringdex, falling back to ~/.config/ringdex.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// ConfigFile returns ConfigDir()/config.yaml.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), configFileName)
}

// DefaultConfigFile returns ConfigFile() if it exists and "" if it does not.
// Any other stat failure is an error.
func DefaultConfigFile() (string, error) {
	path := ConfigFile()
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", nil
	case err != nil:
		return "", oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	case info.IsDir():
		return "", oops.Code("CONFIG_LOAD_FAILED").With("path", path).Errorf("config path is a directory")
	}
	return path, nil
}
