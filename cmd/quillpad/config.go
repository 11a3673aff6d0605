// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/quillpad/quillpad/internal/config"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = config.DefaultFile()
			}
			if err := config.WriteTemplate(path); err != nil {
				return err
			}
			cmd.Println(path)
			return nil
		},
	}
}
