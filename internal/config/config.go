// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package config loads ringdex configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// command-line flags that were explicitly set. Flag names are the dotted
// configuration keys, for example --database.url or --auth.hasher.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/ringdex/ringdex/internal/auth"
	"github.com/ringdex/ringdex/internal/ring"
)

// Config is the complete process configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database" yaml:"database"`
	Log      LogConfig      `koanf:"log" yaml:"log"`
	Metrics  MetricsConfig  `koanf:"metrics" yaml:"metrics"`
	Auth     AuthConfig     `koanf:"auth" yaml:"auth"`
	Limits   LimitsConfig   `koanf:"limits" yaml:"limits"`
}

// DatabaseConfig locates PostgreSQL.
type DatabaseConfig struct {
	URL            string        `koanf:"url" yaml:"url"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" yaml:"connect_timeout"`
	ConnectRetries uint64        `koanf:"connect_retries" yaml:"connect_retries"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Format string `koanf:"format" yaml:"format"`
	Level  string `koanf:"level" yaml:"level"`
}

// MetricsConfig controls the observability server. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" yaml:"addr"`
}

// AuthConfig holds session and login policy.
type AuthConfig struct {
	SessionValidity  time.Duration `koanf:"session_validity" yaml:"session_validity"`
	MaxLoginAttempts int           `koanf:"max_login_attempts" yaml:"max_login_attempts"`
	// PasswordExpiry of zero disables password expiry.
	PasswordExpiry time.Duration `koanf:"password_expiry" yaml:"password_expiry"`
	Hasher         string        `koanf:"hasher" yaml:"hasher"`
	BcryptCost     int           `koanf:"bcrypt_cost" yaml:"bcrypt_cost"`
}

// Range is an inclusive length range.
type Range struct {
	Min int `koanf:"min" yaml:"min"`
	Max int `koanf:"max" yaml:"max"`
}

// LimitsConfig holds entity field length limits. Email, Description and
// SiteURL have no minimum beyond non-empty; their Min is ignored.
type LimitsConfig struct {
	Username    Range `koanf:"username" yaml:"username"`
	Email       Range `koanf:"email" yaml:"email"`
	Password    Range `koanf:"password" yaml:"password"`
	WebringName Range `koanf:"webring_name" yaml:"webring_name"`
	WebringURL  Range `koanf:"webring_url" yaml:"webring_url"`
	Description Range `koanf:"description" yaml:"description"`
	SiteName    Range `koanf:"site_name" yaml:"site_name"`
	SiteURL     Range `koanf:"site_url" yaml:"site_url"`
	TagName     Range `koanf:"tag_name" yaml:"tag_name"`
}

// Default returns the built-in configuration.
func Default() *Config {
	al := auth.DefaultLimits()
	rl := ring.DefaultLimits()
	return &Config{
		Database: DatabaseConfig{
			ConnectTimeout: 5 * time.Second,
			ConnectRetries: 5,
		},
		Log:     LogConfig{Format: "json", Level: "info"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9100"},
		Auth: AuthConfig{
			SessionValidity:  auth.DefaultSessionValidity,
			MaxLoginAttempts: auth.DefaultMaxLoginAttempts,
			Hasher:           auth.AlgorithmArgon2id,
			BcryptCost:       bcrypt.DefaultCost,
		},
		Limits: LimitsConfig{
			Username:    Range{Min: al.UsernameMin, Max: al.UsernameMax},
			Email:       Range{Max: al.EmailMax},
			Password:    Range{Min: al.PasswordMin, Max: al.PasswordMax},
			WebringName: Range{Min: rl.WebringNameMin, Max: rl.WebringNameMax},
			WebringURL:  Range{Min: rl.WebringURLMin, Max: rl.WebringURLMax},
			Description: Range{Max: rl.DescriptionMax},
			SiteName:    Range{Min: rl.SiteNameMin, Max: rl.SiteNameMax},
			SiteURL:     Range{Max: rl.SiteURLMax},
			TagName:     Range{Min: rl.TagNameMin, Max: rl.TagNameMax},
		},
	}
}

// defaults flattens Default into koanf keys.
func defaults() map[string]any {
	d := Default()
	m := map[string]any{
		"database.url":             d.Database.URL,
		"database.connect_timeout": d.Database.ConnectTimeout,
		"database.connect_retries": d.Database.ConnectRetries,
		"log.format":               d.Log.Format,
		"log.level":                d.Log.Level,
		"metrics.addr":             d.Metrics.Addr,
		"auth.session_validity":    d.Auth.SessionValidity,
		"auth.max_login_attempts":  d.Auth.MaxLoginAttempts,
		"auth.password_expiry":     d.Auth.PasswordExpiry,
		"auth.hasher":              d.Auth.Hasher,
		"auth.bcrypt_cost":         d.Auth.BcryptCost,
	}
	for name, r := range map[string]Range{
		"username":     d.Limits.Username,
		"email":        d.Limits.Email,
		"password":     d.Limits.Password,
		"webring_name": d.Limits.WebringName,
		"webring_url":  d.Limits.WebringURL,
		"description":  d.Limits.Description,
		"site_name":    d.Limits.SiteName,
		"site_url":     d.Limits.SiteURL,
		"tag_name":     d.Limits.TagName,
	} {
		m["limits."+name+".min"] = r.Min
		m["limits."+name+".max"] = r.Max
	}
	return m
}

// RegisterFlags adds a flag for every scalar configuration key. Only flags the
// user sets override the file.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("database.url", d.Database.URL, "PostgreSQL connection URL")
	fs.Duration("database.connect_timeout", d.Database.ConnectTimeout, "timeout of each connection attempt")
	fs.Uint64("database.connect_retries", d.Database.ConnectRetries, "connection retries at startup")
	fs.String("log.format", d.Log.Format, "log format (json or text)")
	fs.String("log.level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.String("metrics.addr", d.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	fs.Duration("auth.session_validity", d.Auth.SessionValidity, "lifetime of a new session")
	fs.Int("auth.max_login_attempts", d.Auth.MaxLoginAttempts, "failed logins before the account locks")
	fs.Duration("auth.password_expiry", d.Auth.PasswordExpiry, "password lifetime (0 = never expires)")
	fs.String("auth.hasher", d.Auth.Hasher, "password hash algorithm (argon2id or bcrypt)")
	fs.Int("auth.bcrypt_cost", d.Auth.BcryptCost, "bcrypt cost factor")
}

// Load builds the configuration. path may be empty, in which case no file is
// read; a named file that does not exist is an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("key", key).Wrap(err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, oops.Code("CONFIG_NOT_FOUND").With("path", path).Errorf("config file does not exist")
			}
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_PARSE_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects inconsistent values.
func (c *Config) Validate() error {
	invalid := func(key, format string, args ...any) error {
		return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", "log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level", "unknown log level %q", c.Log.Level)
	}
	if c.Database.ConnectTimeout <= 0 {
		return invalid("database.connect_timeout", "database.connect_timeout must be positive")
	}
	if c.Auth.SessionValidity <= 0 {
		return invalid("auth.session_validity", "auth.session_validity must be positive")
	}
	if c.Auth.MaxLoginAttempts < 1 {
		return invalid("auth.max_login_attempts", "auth.max_login_attempts must be at least 1")
	}
	if c.Auth.PasswordExpiry < 0 {
		return invalid("auth.password_expiry", "auth.password_expiry cannot be negative")
	}
	switch c.Auth.Hasher {
	case auth.AlgorithmArgon2id:
	case auth.AlgorithmBcrypt:
		if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
			return invalid("auth.bcrypt_cost", "auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
	default:
		return invalid("auth.hasher", "auth.hasher must be %q or %q, got %q",
			auth.AlgorithmArgon2id, auth.AlgorithmBcrypt, c.Auth.Hasher)
	}

	for name, r := range map[string]Range{
		"username":     c.Limits.Username,
		"email":        c.Limits.Email,
		"password":     c.Limits.Password,
		"webring_name": c.Limits.WebringName,
		"webring_url":  c.Limits.WebringURL,
		"description":  c.Limits.Description,
		"site_name":    c.Limits.SiteName,
		"site_url":     c.Limits.SiteURL,
		"tag_name":     c.Limits.TagName,
	} {
		if r.Min < 0 || r.Max < 1 || r.Min > r.Max {
			return invalid("limits."+name, "limits.%s must satisfy 0 <= min <= max and max >= 1, got %d..%d", name, r.Min, r.Max)
		}
	}
	return nil
}

// AuthPolicy returns the login policy.
func (c *Config) AuthPolicy() auth.Policy {
	policy := auth.Policy{
		MaxLoginAttempts: c.Auth.MaxLoginAttempts,
		PasswordExpiry:   c.Auth.PasswordExpiry,
		Limits: auth.Limits{
			UsernameMin: c.Limits.Username.Min,
			UsernameMax: c.Limits.Username.Max,
			EmailMax:    c.Limits.Email.Max,
			PasswordMin: c.Limits.Password.Min,
			PasswordMax: c.Limits.Password.Max,
		},
	}
	if c.Auth.Hasher == auth.AlgorithmBcrypt {
		policy.Limits.PasswordMaxBytes = auth.BcryptMaxPasswordBytes
	}
	return policy
}

// RingLimits returns the webring, site and tag limits.
func (c *Config) RingLimits() ring.Limits {
	return ring.Limits{
		WebringNameMin: c.Limits.WebringName.Min,
		WebringNameMax: c.Limits.WebringName.Max,
		WebringURLMin:  c.Limits.WebringURL.Min,
		WebringURLMax:  c.Limits.WebringURL.Max,
		DescriptionMax: c.Limits.Description.Max,
		SiteNameMin:    c.Limits.SiteName.Min,
		SiteNameMax:    c.Limits.SiteName.Max,
		SiteURLMax:     c.Limits.SiteURL.Max,
		TagNameMin:     c.Limits.TagName.Min,
		TagNameMax:     c.Limits.TagName.Max,
	}
}
