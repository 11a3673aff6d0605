// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quillpad/quillpad/internal/editor"
)

// NewDocsCmd creates the docs command group.
func NewDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage documents",
	}

	cmd.AddCommand(newDocsNewCmd())
	cmd.AddCommand(newDocsSaveCmd())
	cmd.AddCommand(newDocsCatCmd())
	cmd.AddCommand(newDocsRmCmd())
	cmd.AddCommand(newDocsRenameCmd())
	cmd.AddCommand(newDocsListCmd())
	cmd.AddCommand(newDocsStatsCmd())

	return cmd
}

func newDocsNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a document from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			content, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			path, err := a.docs.Create(string(content))
			if err != nil {
				return err
			}
			cmd.Println(path)
			return nil
		},
	}
}

func newDocsSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <path>",
		Short: "Overwrite a document from stdin, backing up the old content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			content, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := a.docs.Save(args[0], string(content)); err != nil {
				return err
			}
			cmd.Println("Saved.")
			return nil
		},
	}
}

func newDocsCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			content, err := a.docs.Load(args[0])
			if err != nil {
				return err
			}
			cmd.Print(content)
			return nil
		},
	}
}

func newDocsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.docs.Delete(args[0]); err != nil {
				return err
			}
			cmd.Println("Deleted.")
			return nil
		},
	}
}

func newDocsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <path> <new-name>",
		Short: "Rename a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			newPath, err := a.docs.Rename(args[0], args[1])
			if err != nil {
				return err
			}
			cmd.Println(newPath)
			return nil
		},
	}
}

// docsListConfig holds configuration for the docs list command.
type docsListConfig struct {
	pattern string
}

func newDocsListCmd() *cobra.Command {
	cfg := &docsListConfig{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			docs, err := a.docs.List(cfg.pattern)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED")
			for _, doc := range docs {
				fmt.Fprintf(w, "%s\t%d\t%s\n", doc.Name, doc.Size, doc.ModifiedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&cfg.pattern, "pattern", "", "glob pattern matched against document names")
	return cmd
}

func newDocsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate document statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			stats, err := a.docs.Stats()
			if err != nil {
				return err
			}

			cmd.Printf("Documents: %d\nTotal size: %d bytes\nAverage size: %d bytes\n",
				stats.Count, stats.TotalSize, stats.AvgSize)
			if stats.Count > 0 {
				cmd.Printf("Oldest: %s\nNewest: %s\n",
					stats.Oldest.Format("2006-01-02 15:04:05"),
					stats.Newest.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

// NewAnalyzeCmd creates the analyze subcommand.
func NewAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "Show text statistics for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return printAnalysis(cmd, string(data))
		},
	}
}

func printAnalysis(cmd *cobra.Command, text string) error {
	stats := editor.Analyze(text)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Characters\t%d\n", stats.Characters)
	fmt.Fprintf(w, "Words\t%d\n", stats.Words)
	fmt.Fprintf(w, "Lines\t%d\n", stats.Lines)
	fmt.Fprintf(w, "Spaces\t%d\n", stats.Spaces)
	fmt.Fprintf(w, "Sentences\t%d\n", stats.Sentences)
	fmt.Fprintf(w, "Avg word length\t%.2f\n", stats.AvgWordLength)
	fmt.Fprintf(w, "Avg line length\t%.2f\n", stats.AvgLineLength)
	return w.Flush()
}
