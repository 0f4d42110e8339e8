// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package parser

import "github.com/samber/oops"

// Error codes for parse failures.
const (
	CodeParseError   = "PARSE_ERROR"
	CodeIncludeError = "INCLUDE_ERROR"
	CodeDepError     = "DEP_ERROR"
)

// ErrBadIndent creates an error for indentation that matches no open block.
func ErrBadIndent(line int) error {
	return oops.Code(CodeParseError).
		With("line", line).
		Errorf("inconsistent indentation at line %d", line)
}

// ErrUnexpected creates an error for a statement the grammar does not allow
// here.
func ErrUnexpected(line int, what string) error {
	return oops.Code(CodeParseError).
		With("line", line).
		Errorf("unexpected %s at line %d", what, line)
}

// ErrMissingColon creates an error for a header or bullet without its colon.
func ErrMissingColon(line int, what string) error {
	return oops.Code(CodeParseError).
		With("line", line).
		Errorf("missing colon after %s at line %d", what, line)
}

// ErrMissingArg creates an error for a directive without its argument.
func ErrMissingArg(line int, directive string) error {
	return oops.Code(CodeParseError).
		With("line", line).
		With("directive", directive).
		Errorf("%s requires an argument at line %d", directive, line)
}

// ErrNoLoader creates an error for an include with no loader configured.
func ErrNoLoader(target string, line int) error {
	return oops.Code(CodeIncludeError).
		With("target", target).
		With("line", line).
		Errorf("include %q: no loader configured", target)
}

// ErrIncludeCycle creates an error for a cyclic include chain.
func ErrIncludeCycle(target string, line int) error {
	return oops.Code(CodeIncludeError).
		With("target", target).
		With("line", line).
		Errorf("cyclic include of %q at line %d", target, line)
}

// ErrIncludeLoad creates an error for an include target that cannot be read.
func ErrIncludeLoad(target string, line int, cause error) error {
	return oops.Code(CodeIncludeError).
		With("target", target).
		With("line", line).
		Wrapf(cause, "loading include %q", target)
}

// ErrUnsatisfiableDep creates an error for a dependency no sibling tree can
// ever provide.
func ErrUnsatisfiableDep(variant, dep string, line int) error {
	return oops.Code(CodeDepError).
		With("variant", variant).
		With("dep", dep).
		With("line", line).
		Errorf("variant %q depends on %q which is declared nowhere", variant, dep)
}
