// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package main

import (
	"time"

	"github.com/spf13/cobra"
)

// NewSessionsCmd creates the sessions command group.
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage login sessions",
	}
	cmd.AddCommand(newSessionsSweepCmd())
	return cmd
}

// sessionsSweepConfig holds configuration for the sessions sweep command.
type sessionsSweepConfig struct {
	maxAge time.Duration
}

func newSessionsSweepCmd() *cobra.Command {
	cfg := &sessionsSweepConfig{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove sessions older than the maximum age",
		Long: `Remove sessions whose creation time is older than the maximum age.
Sessions live in the memory of the embedding process; there is no
background timer, expiry only happens through this operation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			maxAge := cfg.maxAge
			if maxAge == 0 {
				maxAge = a.cfg.Auth.SessionMaxAge
			}
			removed := a.service.SweepSessions(maxAge)
			cmd.Printf("Removed %d expired session(s).\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&cfg.maxAge, "max-age", 0, "maximum session age (default: configured session_max_age)")
	return cmd
}
