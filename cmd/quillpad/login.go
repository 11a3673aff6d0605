// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword. Tests replace it with
// a stub to avoid touching the terminal.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// loginConfig holds configuration for the login command.
type loginConfig struct {
	origin   string
	password string
}

// NewLoginCmd creates the login subcommand.
func NewLoginCmd() *cobra.Command {
	cfg := &loginConfig{}

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate and open a session",
		Long: `Authenticate a user and open an in-memory session. The password is
prompted without echo unless --password is given. On success the session
token is printed on stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, cfg, args[0])
		},
	}

	cmd.Flags().StringVar(&cfg.origin, "origin", defaultOrigin(), "origin identifier for the audit log and throttle")
	cmd.Flags().StringVar(&cfg.password, "password", "", "password (prompted when omitted)")

	return cmd
}

func runLogin(cmd *cobra.Command, cfg *loginConfig, username string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	password := cfg.password
	if password == "" {
		cmd.PrintErr("Password: ")
		raw, err := readPassword()
		cmd.PrintErrln()
		if err != nil {
			return err
		}
		password = string(raw)
	}

	result, err := a.service.Login(username, password, cfg.origin)
	if err != nil {
		return err
	}

	cmd.Printf("Logged in as %s (%s)\n", result.Session.Profile.FullName, result.Session.Profile.Role)
	cmd.Println(result.Token)
	return nil
}

// NewLogoutCmd creates the logout subcommand.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout <token>",
		Short: "End a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			a.service.Logout(args[0])
			cmd.Println("Logged out.")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami subcommand.
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami <token>",
		Short: "Show the profile behind a session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			session, ok := a.service.ValidateSession(args[0])
			if !ok {
				cmd.Println("No active session for this token.")
				return nil
			}
			p := session.Profile
			cmd.Printf("%s (%s)\nRole: %s\nEmail: %s\nDepartment: %s\nAvatar: %s\n",
				p.Username, p.FullName, p.Role, p.Email, p.Department, p.AvatarColor)
			return nil
		},
	}
}
