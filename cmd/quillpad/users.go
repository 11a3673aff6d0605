// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quillpad/quillpad/internal/auth"
)

// NewUsersCmd creates the users command group.
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(newUsersAddCmd())
	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersUpdateCmd())
	cmd.AddCommand(newUsersDeleteCmd())
	cmd.AddCommand(newUsersRolesCmd())

	return cmd
}

// usersAddConfig holds configuration for the users add command.
type usersAddConfig struct {
	role       string
	fullName   string
	email      string
	department string
	password   string
}

func newUsersAddCmd() *cobra.Command {
	cfg := &usersAddConfig{}

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersAdd(cmd, cfg, args[0])
		},
	}

	cmd.Flags().StringVar(&cfg.role, "role", "user", "role: admin, editor or user")
	cmd.Flags().StringVar(&cfg.fullName, "full-name", "", "display name (default: username)")
	cmd.Flags().StringVar(&cfg.email, "email", "", "email address")
	cmd.Flags().StringVar(&cfg.department, "department", "", "department")
	cmd.Flags().StringVar(&cfg.password, "password", "", "password (prompted when omitted)")

	return cmd
}

func runUsersAdd(cmd *cobra.Command, cfg *usersAddConfig, username string) error {
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

	profile := auth.Profile{
		Role:       auth.Role(cfg.role),
		FullName:   cfg.fullName,
		Email:      cfg.email,
		Department: cfg.department,
	}
	if err := a.service.Users().AddUser(username, password, profile); err != nil {
		return err
	}
	cmd.Printf("User %s created.\n", username)
	return nil
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "USERNAME\tROLE\tFULL NAME\tEMAIL\tDEPARTMENT")
			for _, p := range a.service.Users().ListUsers() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Username, p.Role, p.FullName, p.Email, p.Department)
			}
			return w.Flush()
		},
	}
}

func newUsersUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <username> <field=value> [field=value ...]",
		Short: "Update fields of a user account",
		Long: `Update fields of a user account. Known fields are full_name, email,
department and role; unknown fields are stored alongside the record and
preserved across releases.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			updates := make(map[string]json.RawMessage, len(args)-1)
			for _, pair := range args[1:] {
				field, value, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("expected field=value, got %q", pair)
				}
				raw, err := json.Marshal(value)
				if err != nil {
					return err
				}
				updates[field] = raw
			}

			if err := a.service.Users().UpdateUser(args[0], updates); err != nil {
				return err
			}
			cmd.Printf("User %s updated.\n", args[0])
			return nil
		},
	}
	return cmd
}

func newUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.service.Users().DeleteUser(args[0]); err != nil {
				return err
			}
			cmd.Printf("User %s deleted.\n", args[0])
			return nil
		},
	}
}

func newUsersRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "Show account counts per role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			counts := a.service.Users().RoleCounts()
			roles := make([]string, 0, len(counts))
			for role := range counts {
				roles = append(roles, string(role))
			}
			sort.Strings(roles)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ROLE\tCOUNT")
			for _, role := range roles {
				fmt.Fprintf(w, "%s\t%d\n", role, counts[auth.Role(role)])
			}
			return w.Flush()
		},
	}
}
