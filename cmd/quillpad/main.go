// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

// Package main is the entry point for the QuillPad command line.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/quillpad/quillpad/pkg/errutil"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := NewRootCmd()
	cmd.Version = formatVersion(version, commit, date)

	if err := cmd.Execute(); err != nil {
		errutil.LogError(slog.Default(), "command failed", err)
		return 1
	}
	return 0
}

func formatVersion(version, commit, date string) string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}
