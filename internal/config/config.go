// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

// Package config loads QuillPad configuration from defaults, an optional
// YAML file, and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/quillpad/quillpad/internal/xdg"
)

// Auth holds the authentication core tunables.
type Auth struct {
	PasswordMinLength int           `koanf:"password_min_length"`
	MaxLoginAttempts  int           `koanf:"max_login_attempts"`
	LockoutDuration   time.Duration `koanf:"lockout_duration"`
	AttemptWindow     time.Duration `koanf:"attempt_window"`
	SessionMaxAge     time.Duration `koanf:"session_max_age"`
	AuditTailLimit    int           `koanf:"audit_tail_limit"`
}

// Config is the root application configuration.
type Config struct {
	DataDir    string `koanf:"data_dir"`
	DocsDir    string `koanf:"docs_dir"`
	BackupsDir string `koanf:"backups_dir"`
	LogFormat  string `koanf:"log_format"`
	Auth       Auth   `koanf:"auth"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogFormat: "text",
		Auth: Auth{
			PasswordMinLength: 8,
			MaxLoginAttempts:  5,
			LockoutDuration:   5 * time.Minute,
			AttemptWindow:     time.Hour,
			SessionMaxAge:     24 * time.Hour,
			AuditTailLimit:    20,
		},
	}
}

// DefaultFile returns the default config file path in the XDG config dir.
func DefaultFile() string {
	return filepath.Join(xdg.ConfigDir(), "quillpad.yaml")
}

// Load builds the effective configuration. path may be empty, in which case
// the default config file is used if present. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	explicit := path != ""
	if path == "" {
		path = DefaultFile()
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// A missing default file is fine; an explicit --config that cannot
		// be read is not.
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, oops.Code("CONFIG_INVALID").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		// Flag names use dashes; config keys use underscores.
		p := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(p, nil); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").
				With("source", "flags").
				Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	cfg.applyPathDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyPathDefaults fills directory fields left empty by file and flags.
func (c *Config) applyPathDefaults() {
	if c.DataDir == "" {
		c.DataDir = xdg.DataDir()
	}
	if c.DocsDir == "" {
		c.DocsDir = filepath.Join(c.DataDir, "docs")
	}
	if c.BackupsDir == "" {
		c.BackupsDir = filepath.Join(c.DataDir, "backups")
	}
}

// Validate checks the configuration for values the core cannot operate with.
func (c *Config) Validate() error {
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be \"text\" or \"json\"")
	}
	if c.Auth.PasswordMinLength < 1 {
		return oops.Code("CONFIG_INVALID").
			With("password_min_length", c.Auth.PasswordMinLength).
			Errorf("password_min_length must be positive")
	}
	if c.Auth.MaxLoginAttempts < 1 {
		return oops.Code("CONFIG_INVALID").
			With("max_login_attempts", c.Auth.MaxLoginAttempts).
			Errorf("max_login_attempts must be positive")
	}
	if c.Auth.LockoutDuration <= 0 || c.Auth.AttemptWindow <= 0 || c.Auth.SessionMaxAge <= 0 {
		return oops.Code("CONFIG_INVALID").
			Errorf("lockout_duration, attempt_window and session_max_age must be positive")
	}
	if c.Auth.AuditTailLimit < 1 {
		return oops.Code("CONFIG_INVALID").
			With("audit_tail_limit", c.Auth.AuditTailLimit).
			Errorf("audit_tail_limit must be positive")
	}
	return nil
}

// UsersFile returns the path of the persisted user store.
func (c *Config) UsersFile() string {
	return filepath.Join(c.DataDir, "users.json")
}

// AuditLogFile returns the path of the login audit log.
func (c *Config) AuditLogFile() string {
	return filepath.Join(c.DataDir, "login_log.csv")
}

// DocumentBackupsDir returns the directory for document backups.
func (c *Config) DocumentBackupsDir() string {
	return filepath.Join(c.BackupsDir, "documents")
}

// EnsureDirs creates the data, docs and backups directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.DocsDir, c.BackupsDir} {
		if err := xdg.EnsureDir(dir); err != nil {
			return oops.Code("CONFIG_DIR_FAILED").With("dir", dir).Wrap(err)
		}
	}
	return nil
}

// WriteTemplate writes the default configuration as YAML to path, refusing to
// overwrite an existing file.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return oops.Code("CONFIG_EXISTS").
			With("path", path).
			Errorf("config file already exists")
	}
	def := Default()
	// Durations are rendered in their human-readable form ("5m", "24h").
	tmpl := map[string]any{
		"data_dir":    def.DataDir,
		"docs_dir":    def.DocsDir,
		"backups_dir": def.BackupsDir,
		"log_format":  def.LogFormat,
		"auth": map[string]any{
			"password_min_length": def.Auth.PasswordMinLength,
			"max_login_attempts":  def.Auth.MaxLoginAttempts,
			"lockout_duration":    def.Auth.LockoutDuration.String(),
			"attempt_window":      def.Auth.AttemptWindow.String(),
			"session_max_age":     def.Auth.SessionMaxAge.String(),
			"audit_tail_limit":    def.Auth.AuditTailLimit,
		},
	}
	out, err := yamlv3.Marshal(tmpl)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if err := xdg.EnsureDir(filepath.Dir(path)); err != nil {
		return oops.Code("CONFIG_DIR_FAILED").Wrap(err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return oops.Code("CONFIG_WRITE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
