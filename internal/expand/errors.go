// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package expand

import "github.com/samber/oops"

// Error codes for expansion failures.
const (
	CodeInterpError    = "INTERP_ERROR"
	CodeExpansionError = "EXPANSION_ERROR"
)

// ErrUnresolvedRef creates an error for a ${...} reference naming a key the
// final dict does not contain.
func ErrUnresolvedRef(key, ref string) error {
	return oops.Code(CodeInterpError).
		With("key", key).
		With("ref", ref).
		Errorf("unresolved reference ${%s} in value of %q", ref, key)
}

// ErrInterpCycle creates an error for interpolation that never reaches a
// fixed point within the iteration cap.
func ErrInterpCycle(key, chain string) error {
	return oops.Code(CodeInterpError).
		With("key", key).
		With("chain", chain).
		Errorf("cyclic interpolation in value of %q", key)
}

// ErrBadRegexValue creates an error for a "~=" value that is not of the form
// /pattern/replacement/.
func ErrBadRegexValue(key, value string, line int) error {
	return oops.Code(CodeExpansionError).
		With("key", key).
		With("value", value).
		With("line", line).
		Errorf("malformed regex substitution %q for key %q", value, key)
}

// ErrBadRegexPattern creates an error for an uncompilable "~=" pattern.
func ErrBadRegexPattern(key, pattern string, line int, cause error) error {
	return oops.Code(CodeExpansionError).
		With("key", key).
		With("pattern", pattern).
		With("line", line).
		Wrapf(cause, "compiling regex substitution for key %q", key)
}

// ErrBadDelPattern creates an error for an uncompilable del glob.
func ErrBadDelPattern(pattern string, line int, cause error) error {
	return oops.Code(CodeExpansionError).
		With("pattern", pattern).
		With("line", line).
		Wrapf(cause, "compiling del pattern %q", pattern)
}

// ErrEmptyJoinGroup creates an error for a join group whose expansion yields
// no variants.
func ErrEmptyJoinGroup(group string) error {
	return oops.Code(CodeExpansionError).
		With("group", group).
		Errorf("join group %q produced no variants", group)
}
