// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package filter

import "github.com/samber/oops"

// CodeFilterError marks filter expressions rejected at parse time. These are
// usually surfaced while parsing extra filters supplied on the command line.
const CodeFilterError = "FILTER_ERROR"

// ErrBadFilter creates an error for an unparseable filter expression.
func ErrBadFilter(text string, cause error) error {
	return oops.Code(CodeFilterError).
		With("expression", text).
		Wrapf(cause, "parsing filter expression %q", text)
}
