// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package lexer

import "github.com/samber/oops"

// CodeLexError marks tokenization failures: unterminated strings and
// unrecognized characters outside a value context.
const CodeLexError = "LEX_ERROR"

// ErrUnterminatedString creates an error for a quote that never closes.
func ErrUnterminatedString(line, col int) error {
	return oops.Code(CodeLexError).
		With("line", line).
		With("col", col).
		Errorf("unterminated string at line %d column %d", line, col)
}

// ErrUnexpectedChar creates an error for a character the grammar does not
// recognize at statement position.
func ErrUnexpectedChar(line, col int, ch rune) error {
	return oops.Code(CodeLexError).
		With("line", line).
		With("col", col).
		With("char", string(ch)).
		Errorf("unexpected character %q at line %d column %d", ch, line, col)
}
