// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the QuillPad CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quillpad",
		Short: "QuillPad - a text editor with a login gate",
		Long: `QuillPad manages local user accounts, login sessions and plain-text
documents. Account and document state lives under the XDG data directory
unless overridden by configuration.`,
		SilenceUsage: true,
	}

	// Config file plus overridable config keys. Flag names use dashes; the
	// matching config keys use underscores. Flag defaults mirror the
	// built-in defaults so an untouched flag never masks a file value.
	cmd.PersistentFlags().String("config", "", "config file path")
	cmd.PersistentFlags().String("data-dir", "", "data directory (default: XDG data dir)")
	cmd.PersistentFlags().String("docs-dir", "", "documents directory (default: <data-dir>/docs)")
	cmd.PersistentFlags().String("backups-dir", "", "backups directory (default: <data-dir>/backups)")
	cmd.PersistentFlags().String("log-format", "text", "log format: text or json")

	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewLogoutCmd())
	cmd.AddCommand(NewWhoamiCmd())
	cmd.AddCommand(NewUsersCmd())
	cmd.AddCommand(NewSessionsCmd())
	cmd.AddCommand(NewDocsCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}
