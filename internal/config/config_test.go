// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpad/quillpad/internal/config"
	"github.com/quillpad/quillpad/pkg/errutil"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 8, cfg.Auth.PasswordMinLength)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Auth.LockoutDuration)
	assert.Equal(t, time.Hour, cfg.Auth.AttemptWindow)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionMaxAge)
	assert.Equal(t, 20, cfg.Auth.AuditTailLimit)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "/data/home")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Auth.PasswordMinLength)
	assert.Equal(t, "/data/home/quillpad", cfg.DataDir)
	assert.Equal(t, "/data/home/quillpad/docs", cfg.DocsDir)
	assert.Equal(t, "/data/home/quillpad/backups", cfg.BackupsDir)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quillpad.yaml")
	content := `
data_dir: /srv/quill
log_format: json
auth:
  password_min_length: 12
  lockout_duration: 10m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/srv/quill", cfg.DataDir)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 12, cfg.Auth.PasswordMinLength)
	assert.Equal(t, 10*time.Minute, cfg.Auth.LockoutDuration)
	// Untouched keys keep defaults.
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	// Derived paths follow the overridden data dir.
	assert.Equal(t, "/srv/quill/docs", cfg.DocsDir)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quillpad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_format: json\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-format", "text", "")
	require.NoError(t, flags.Parse([]string{"--log-format=text"}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_UnchangedFlagDoesNotMaskFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quillpad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_format: json\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-format", "text", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quillpad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  max_login_attempts: 0\n"), 0o600))

	_, err := config.Load(path, nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	errutil.AssertErrorContext(t, err, "max_login_attempts", 0)
}

func TestDerivedPaths(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = "/srv/quill"
	cfg.BackupsDir = "/srv/quill/backups"

	assert.Equal(t, "/srv/quill/users.json", cfg.UsersFile())
	assert.Equal(t, "/srv/quill/login_log.csv", cfg.AuditLogFile())
	assert.Equal(t, "/srv/quill/backups/documents", cfg.DocumentBackupsDir())
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "quillpad.yaml")

	require.NoError(t, config.WriteTemplate(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "password_min_length: 8")

	// Refuses to overwrite.
	assert.Error(t, config.WriteTemplate(path))
}
