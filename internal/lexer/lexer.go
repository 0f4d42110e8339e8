// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

// Package lexer tokenizes the Cartesian configuration format. The grammar is
// line-oriented and indentation-sensitive, so the lexer produces logical
// lines: physical lines joined over trailing backslashes, with comments
// stripped and indentation captured both as a raw whitespace run (for the
// prefix relation the parser enforces) and as a column width.
package lexer

import (
	"strings"
)

// tabWidth is the column width of a tab for indentation measurement.
const tabWidth = 8

// directiveKeywords lead statements whose argument is free-form text rather
// than tokenizable grammar: the remainder of the line is emitted as a single
// String token and interpreted by the statement parser.
var directiveKeywords = map[string]bool{
	"include": true,
	"del":     true,
	"suffix":  true,
	"only":    true,
	"no":      true,
	"join":    true,
}

// singlePunct is the set of single-character operator tokens.
var singlePunct = [128]bool{}

func init() {
	for _, ch := range []byte{':', ',', '.', '!', '-', '@', '(', ')', '[', ']', '='} {
		singlePunct[ch] = true
	}
}

// Lex tokenizes src into logical lines. Blank and comment-only lines are
// dropped; every returned line carries at least one token plus a terminating
// Newline token.
func Lex(src string) ([]Line, error) {
	physical := strings.Split(src, "\n")
	var lines []Line

	for i := 0; i < len(physical); i++ {
		raw := strings.TrimSuffix(physical[i], "\r")
		startLine := i + 1

		indent := leadingWhitespace(raw)
		content := raw[len(indent):]

		// Line continuations: a trailing backslash appends the next physical
		// line's content after a single space; its indentation is ignored.
		for strings.HasSuffix(content, "\\") && i+1 < len(physical) {
			i++
			next := strings.TrimSuffix(physical[i], "\r")
			content = strings.TrimSuffix(content, "\\") + " " + strings.TrimSpace(next)
		}

		content = stripComment(content)
		if strings.TrimSpace(content) == "" {
			continue
		}
		content = strings.TrimRight(content, " \t")

		ln := Line{
			No:     startLine,
			Indent: indent,
			Cols:   indentWidth(indent),
			Raw:    content,
		}
		if err := tokenize(&ln); err != nil {
			return nil, err
		}
		lines = append(lines, ln)
	}
	return lines, nil
}

// Tokens flattens lines into a single stream terminated by an EOF token.
func Tokens(lines []Line) []Token {
	var toks []Token
	lastLine := 0
	for _, ln := range lines {
		toks = append(toks, ln.Toks...)
		lastLine = ln.No
	}
	return append(toks, Token{Kind: EOF, Line: lastLine + 1})
}

// leadingWhitespace returns the run of spaces and tabs opening s.
func leadingWhitespace(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return s[:i]
		}
	}
	return s
}

// indentWidth measures an indentation run in columns, tabs advancing to the
// next multiple of tabWidth.
func indentWidth(indent string) int {
	w := 0
	for i := 0; i < len(indent); i++ {
		if indent[i] == '\t' {
			w += tabWidth - w%tabWidth
		} else {
			w++
		}
	}
	return w
}

// stripComment cuts "#" and "//" comments, honoring single and double quotes.
func stripComment(s string) string {
	inQuote := byte(0)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case inQuote != 0:
			if ch == inQuote {
				inQuote = 0
			}
		case ch == '\'' || ch == '"':
			inQuote = ch
		case ch == '#':
			return s[:i]
		case ch == '/' && i+1 < len(s) && s[i+1] == '/':
			return s[:i]
		}
	}
	return s
}

// tokenize fills ln.Toks from ln.Raw.
func tokenize(ln *Line) error {
	ln.Toks = append(ln.Toks, Token{
		Kind:   IndentSet,
		Text:   ln.Indent,
		Col:    0,
		Indent: ln.Cols,
		Line:   ln.No,
	})

	s := ln.Raw
	i := skipSpaces(s, 0)
	emitted := 0

	for i < len(s) {
		start := i
		ch := s[i]

		switch {
		case ch == '\'' || ch == '"':
			end := strings.IndexByte(s[i+1:], ch)
			if end < 0 {
				return ErrUnterminatedString(ln.No, ln.Cols+i)
			}
			ln.addTok(String, s[i+1:i+1+end], start)
			i += end + 2

		case isIdentStart(ch):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			word := s[i:j]
			ln.addTok(Ident, word, start)
			i = j

			// A directive keyword in first position swallows the remainder as
			// one String token, unless an assignment operator follows (then
			// the keyword is an ordinary key name).
			if emitted == 0 && directiveKeywords[word] {
				rest := skipSpaces(s, i)
				if op := matchAssignOp(s[rest:]); op == "" {
					if rest < len(s) {
						ln.addTok(String, strings.TrimSpace(s[rest:]), rest)
					}
					i = len(s)
				}
			}
			emitted++
			i = skipSpaces(s, i)
			continue

		default:
			if op := matchAssignOp(s[i:]); op != "" && emitted == 1 && ln.lastKind() == Ident {
				ln.addTok(Punct, op, start)
				i += len(op)
				// Everything after an assignment operator is the value.
				rest := skipSpaces(s, i)
				if rest < len(s) {
					ln.addTok(String, unquote(s[rest:]), rest)
				}
				i = len(s)
			} else if strings.HasPrefix(s[i:], "..") {
				ln.addTok(Punct, "..", start)
				i += 2
			} else if ch < 128 && singlePunct[ch] {
				ln.addTok(Punct, s[i:i+1], start)
				i++
			} else {
				return ErrUnexpectedChar(ln.No, ln.Cols+i, rune(ch))
			}
		}
		emitted++
		i = skipSpaces(s, i)
	}

	ln.Toks = append(ln.Toks, Token{Kind: Newline, Col: len(s), Indent: ln.Cols, Line: ln.No})
	return nil
}

func (ln *Line) lastKind() Kind {
	if len(ln.Toks) == 0 {
		return EOF
	}
	return ln.Toks[len(ln.Toks)-1].Kind
}

func (ln *Line) addTok(kind Kind, text string, col int) {
	ln.Toks = append(ln.Toks, Token{
		Kind:   kind,
		Text:   text,
		Col:    col,
		Indent: ln.Cols,
		Line:   ln.No,
	})
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// matchAssignOp returns the assignment operator s opens with, or "".
func matchAssignOp(s string) string {
	for _, op := range assignOps {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

// unquote strips one pair of matching surrounding quotes; the body is kept
// verbatim, no escape processing.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func isIdentStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || ch == '_' || ch == '-'
}
