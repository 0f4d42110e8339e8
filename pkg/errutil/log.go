// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

// Package errutil carries the error conventions shared by the library and
// the CLI: structured logging of oops errors, exit-code mapping and test
// assertion helpers.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// CLI exit codes.
const (
	ExitOK      = 0
	ExitError   = 2 // parse or expansion failure
	ExitIOError = 3 // include resolution failure
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code and context.
// For standard errors, it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != "" {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
	} else {
		logger.Error(msg, "error", err)
	}
}

// ExitCode maps an error to the CLI exit code: include resolution failures
// are I/O errors, everything else a parse/expansion error.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if Code(err) == "INCLUDE_ERROR" {
		return ExitIOError
	}
	return ExitError
}

// Code extracts the oops error code, or "" for plain errors.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}
