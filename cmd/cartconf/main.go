// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

// Package main is the entry point for the cartconf CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/pevogam/cartconf/pkg/errutil"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		errutil.LogError(slog.Default(), "cartconf failed", err)
		os.Exit(errutil.ExitCode(err))
	}
}
