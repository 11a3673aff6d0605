// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/quillpad/quillpad/internal/auth"
	"github.com/quillpad/quillpad/internal/config"
	"github.com/quillpad/quillpad/internal/editor"
	"github.com/quillpad/quillpad/internal/logging"
)

// app wires the configured components together for one CLI invocation.
// Session and throttle state is process-local: it exists for the lifetime
// of the embedding process, which for the CLI is a single invocation.
type app struct {
	cfg      config.Config
	service  *auth.Service
	docs     *editor.DocumentManager
	registry *prometheus.Registry
}

// newApp loads configuration, sets up logging and builds the auth service
// and document manager over the configured directories.
func newApp(cmd *cobra.Command) (*app, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger := logging.Setup("quillpad", version, cfg.LogFormat, os.Stderr)

	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	hasher := auth.NewPBKDF2Hasher(cfg.Auth.PasswordMinLength)
	store := auth.NewUserStore(cfg.UsersFile(), cfg.BackupsDir, hasher, logger)
	if err := store.Load(); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	auth.RegisterMetrics(registry)

	service := auth.NewService(
		store,
		auth.NewSessionRegistry(),
		auth.NewAuditLog(cfg.AuditLogFile(), logger),
		auth.NewLoginThrottle(cfg.Auth.MaxLoginAttempts, cfg.Auth.AttemptWindow, cfg.Auth.LockoutDuration),
		logger,
	)

	return &app{
		cfg:      cfg,
		service:  service,
		docs:     editor.NewDocumentManager(cfg.DocsDir, cfg.DocumentBackupsDir(), logger),
		registry: registry,
	}, nil
}

// defaultOrigin identifies this machine in the audit log and throttle.
func defaultOrigin() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "local"
	}
	return host
}
