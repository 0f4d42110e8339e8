// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

// Package parser builds the statement tree for the Cartesian configuration
// format. The grammar is indentation-sensitive: each statement's indentation
// run must be a strict prefix-extension of its enclosing block's, and
// dedenting closes blocks. Includes are resolved and spliced during parsing
// through a caller-supplied Loader.
package parser

import (
	"log/slog"
	"strings"

	"github.com/pevogam/cartconf/internal/filter"
	"github.com/pevogam/cartconf/internal/lexer"
)

// Loader resolves include targets to source buffers.
type Loader interface {
	Load(name string) ([]byte, error)
}

// Parser turns configuration source into a Block tree.
type Parser struct {
	loader    Loader
	logger    *slog.Logger
	including map[string]bool
	conds     []CondRef
}

// New creates a parser. loader may be nil when the source contains no
// include statements; logger nil falls back to slog.Default().
func New(loader Loader, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		loader:    loader,
		logger:    logger,
		including: make(map[string]bool),
	}
}

// Parse parses src into a statement tree and validates that every declared
// dependency is satisfiable.
func (p *Parser) Parse(src string) (*Block, error) {
	root, err := p.parseSource(src)
	if err != nil {
		return nil, err
	}
	if err := validateDeps(root); err != nil {
		return nil, err
	}
	p.logger.Debug("parsed configuration", "statements", len(root.Children))
	return root, nil
}

// parseSource parses one source buffer without dep validation; include
// splicing re-enters here for each target.
func (p *Parser) parseSource(src string) (*Block, error) {
	lines, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	root := &Block{}
	if len(lines) > 0 {
		root.Indent = lines[0].Indent
	}
	pos := 0
	if err := p.parseInto(root, lines, &pos, false); err != nil {
		return nil, err
	}
	if pos < len(lines) {
		return nil, ErrBadIndent(lines[pos].No)
	}
	return root, nil
}

// parseInto consumes statements at exactly block.Indent until a dedent or
// end of input.
func (p *Parser) parseInto(block *Block, lines []lexer.Line, pos *int, inVariants bool) error {
	for *pos < len(lines) {
		ln := lines[*pos]
		switch {
		case ln.Indent == block.Indent:
			if err := p.parseStatement(block, lines, pos, inVariants); err != nil {
				return err
			}
		case strictlyExtends(block.Indent, ln.Indent):
			// A deeper line not owned by the previous statement.
			return ErrBadIndent(ln.No)
		default:
			// Dedent: an ancestor block owns this line.
			return nil
		}
	}
	return nil
}

// parseStatement dispatches on the first significant token of the current
// line and appends the resulting node to block.
func (p *Parser) parseStatement(block *Block, lines []lexer.Line, pos *int, inVariants bool) error {
	ln := lines[*pos]
	toks := contentTokens(ln)
	if len(toks) == 0 {
		*pos++
		return nil
	}

	if inVariants && !isPunct(toks, 0, "-") {
		return ErrUnexpected(ln.No, "statement (variant bullets expected)")
	}

	switch {
	case isPunct(toks, 0, "-"):
		if !inVariants {
			return ErrUnexpected(ln.No, "variant bullet outside a variants block")
		}
		return p.parseBullet(block, lines, pos)

	case toks[0].Kind == lexer.Ident && len(toks) > 1 &&
		toks[1].Kind == lexer.Punct && lexer.IsAssignOp(toks[1].Text):
		return p.parseAssign(block, toks, pos)

	case toks[0].Kind == lexer.Ident && isDirective(toks[0].Text):
		return p.parseDirective(block, toks, pos)

	case toks[0].Kind == lexer.Ident && toks[0].Text == "variants":
		return p.parseVariants(block, lines, pos, toks)

	case endsWithColon(ln.Raw):
		return p.parseCondBlock(block, lines, pos)

	default:
		return ErrUnexpected(ln.No, "token "+toks[0].Text)
	}
}

// parseAssign handles "key OP value".
func (p *Parser) parseAssign(block *Block, toks []lexer.Token, pos *int) error {
	value := ""
	if len(toks) > 2 && toks[2].Kind == lexer.String {
		value = toks[2].Text
	}
	block.Children = append(block.Children, &Assign{
		Key:     toks[0].Text,
		Op:      assignOpNames[toks[1].Text],
		Value:   value,
		Filters: append([]CondRef(nil), p.conds...),
		Line:    toks[0].Line,
	})
	*pos++
	return nil
}

// parseDirective handles include, del, suffix, only, no and join. The lexer
// delivers the argument as a single String token.
func (p *Parser) parseDirective(block *Block, toks []lexer.Token, pos *int) error {
	kw := toks[0].Text
	line := toks[0].Line
	arg := ""
	if len(toks) > 1 && toks[1].Kind == lexer.String {
		arg = toks[1].Text
	}
	if arg == "" {
		return ErrMissingArg(line, kw)
	}
	*pos++

	switch kw {
	case "include":
		return p.splice(block, arg, line)
	case "del":
		block.Children = append(block.Children, &Del{Key: arg, Line: line})
	case "suffix":
		block.Children = append(block.Children, &Suffix{Text: arg, Line: line})
	case "only", "no":
		expr, err := filter.Parse(arg)
		if err != nil {
			return err
		}
		kind := Only
		if kw == "no" {
			kind = No
		}
		block.Children = append(block.Children, &FilterStmt{Kind: kind, Expr: expr, Text: arg, Line: line})
	case "join":
		texts := strings.Fields(arg)
		groups := make([]filter.Expr, 0, len(texts))
		for _, text := range texts {
			expr, err := filter.Parse(text)
			if err != nil {
				return err
			}
			groups = append(groups, expr)
		}
		block.Children = append(block.Children, &Join{Groups: groups, Texts: texts, Line: line})
	}
	return nil
}

// splice parses an include target and inlines its statements at the current
// level. Cycles are detected on the chain of targets currently being
// included.
func (p *Parser) splice(block *Block, target string, line int) error {
	if p.loader == nil {
		return ErrNoLoader(target, line)
	}
	if p.including[target] {
		return ErrIncludeCycle(target, line)
	}
	data, err := p.loader.Load(target)
	if err != nil {
		return ErrIncludeLoad(target, line, err)
	}

	p.including[target] = true
	sub, err := p.parseSource(string(data))
	delete(p.including, target)
	if err != nil {
		return err
	}
	p.logger.Debug("spliced include", "target", target, "statements", len(sub.Children))
	block.Children = append(block.Children, sub.Children...)
	return nil
}

// parseVariants handles a "variants [var_type] [meta]... :" header and its
// bullet body.
func (p *Parser) parseVariants(block *Block, lines []lexer.Line, pos *int, toks []lexer.Token) error {
	ln := lines[*pos]
	if !endsWithColon(ln.Raw) {
		return ErrMissingColon(ln.No, "variants header")
	}

	decl := &VariantsDecl{Meta: map[string]string{}, Line: ln.No}
	i := 1
	if i < len(toks) && toks[i].Kind == lexer.Ident {
		decl.VarType = toks[i].Text
		i++
	}
	for i < len(toks) && isPunct(toks, i, "[") {
		i++
		if i >= len(toks) || toks[i].Kind != lexer.Ident {
			return ErrUnexpected(ln.No, "variants meta")
		}
		key := toks[i].Text
		value := "true"
		i++
		if isPunct(toks, i, "=") {
			i++
			if i >= len(toks) || (toks[i].Kind != lexer.Ident && toks[i].Kind != lexer.String) {
				return ErrUnexpected(ln.No, "variants meta value")
			}
			value = toks[i].Text
			i++
		}
		if !isPunct(toks, i, "]") {
			return ErrUnexpected(ln.No, "variants meta (missing ])")
		}
		i++
		decl.Meta[key] = value
	}
	if !isPunct(toks, i, ":") {
		return ErrMissingColon(ln.No, "variants header")
	}
	*pos++

	body, err := p.parseChildBlock(lines, pos, ln.Indent, true)
	if err != nil {
		return err
	}
	for _, child := range body.Children {
		bullet, ok := child.(*VariantName)
		if !ok {
			return ErrUnexpected(decl.Line, "non-bullet statement in variants block")
		}
		decl.Children = append(decl.Children, bullet)
	}
	decl.Leaf = isLeafDecl(decl)
	block.Children = append(block.Children, decl)
	return nil
}

// parseBullet handles "- [@]name: [dep, dep...]" and its body.
func (p *Parser) parseBullet(block *Block, lines []lexer.Line, pos *int) error {
	ln := lines[*pos]
	toks := contentTokens(ln)

	i := 1
	bullet := &VariantName{Line: ln.No}
	if isPunct(toks, i, "@") {
		bullet.Default = true
		i++
	}
	if i >= len(toks) || toks[i].Kind != lexer.Ident {
		return ErrUnexpected(ln.No, "variant bullet (name expected)")
	}
	bullet.Name = toks[i].Text
	i++
	if !isPunct(toks, i, ":") {
		return ErrMissingColon(ln.No, "variant name "+bullet.Name)
	}
	i++

	// Comma-separated dependency list after the colon.
	for i < len(toks) {
		if toks[i].Kind != lexer.Ident {
			return ErrUnexpected(ln.No, "dependency list")
		}
		bullet.Deps = append(bullet.Deps, toks[i].Text)
		i++
		if i < len(toks) {
			if !isPunct(toks, i, ",") {
				return ErrUnexpected(ln.No, "dependency list (comma expected)")
			}
			i++
		}
	}
	*pos++

	body, err := p.parseChildBlock(lines, pos, ln.Indent, false)
	if err != nil {
		return err
	}
	bullet.Body = body
	block.Children = append(block.Children, bullet)
	return nil
}

// parseCondBlock handles the "EXPR:" and "!EXPR:" conditional forms.
func (p *Parser) parseCondBlock(block *Block, lines []lexer.Line, pos *int) error {
	ln := lines[*pos]
	raw := strings.TrimSpace(ln.Raw)
	raw = strings.TrimSuffix(raw, ":")

	negated := false
	if strings.HasPrefix(raw, "!") {
		negated = true
		raw = strings.TrimSpace(raw[1:])
	}
	expr, err := filter.Parse(raw)
	if err != nil {
		return err
	}
	*pos++

	p.conds = append(p.conds, CondRef{Expr: expr, Negated: negated})
	body, bodyErr := p.parseChildBlock(lines, pos, ln.Indent, false)
	p.conds = p.conds[:len(p.conds)-1]
	if bodyErr != nil {
		return bodyErr
	}

	block.Children = append(block.Children, &CondBlock{
		Expr:    expr,
		Negated: negated,
		Text:    raw,
		Body:    body,
		Line:    ln.No,
	})
	return nil
}

// parseChildBlock consumes a body indented strictly deeper than parentIndent,
// or returns an empty block when the next line does not open one.
func (p *Parser) parseChildBlock(lines []lexer.Line, pos *int, parentIndent string, inVariants bool) (*Block, error) {
	if *pos < len(lines) && strictlyExtends(parentIndent, lines[*pos].Indent) {
		child := &Block{Indent: lines[*pos].Indent}
		if err := p.parseInto(child, lines, pos, inVariants); err != nil {
			return nil, err
		}
		return child, nil
	}
	return &Block{Indent: parentIndent}, nil
}

// validateDeps rejects dependencies no sibling tree can ever satisfy: the
// dep name must be declared under some other variants declaration, since the
// bullets of the declaring one are mutually exclusive with their siblings.
func validateDeps(root *Block) error {
	counts := make(map[string]int)
	collectNames(root, counts)
	return checkDeps(root, counts)
}

func collectNames(n Node, counts map[string]int) {
	switch node := n.(type) {
	case *Block:
		for _, c := range node.Children {
			collectNames(c, counts)
		}
	case *VariantsDecl:
		for _, b := range node.Children {
			counts[b.Name]++
			collectNames(b.Body, counts)
		}
	case *CondBlock:
		collectNames(node.Body, counts)
	}
}

func checkDeps(n Node, counts map[string]int) error {
	switch node := n.(type) {
	case *Block:
		for _, c := range node.Children {
			if err := checkDeps(c, counts); err != nil {
				return err
			}
		}
	case *VariantsDecl:
		own := make(map[string]int, len(node.Children))
		for _, b := range node.Children {
			own[b.Name]++
		}
		for _, b := range node.Children {
			for _, dep := range b.Deps {
				if counts[dep]-own[dep] == 0 {
					return ErrUnsatisfiableDep(b.Name, dep, b.Line)
				}
			}
			if err := checkDeps(b.Body, counts); err != nil {
				return err
			}
		}
	case *CondBlock:
		return checkDeps(node.Body, counts)
	}
	return nil
}

// isLeafDecl reports whether no bullet body declares nested variants.
func isLeafDecl(decl *VariantsDecl) bool {
	for _, b := range decl.Children {
		if hasVariants(b.Body) {
			return false
		}
	}
	return true
}

func hasVariants(n Node) bool {
	switch node := n.(type) {
	case *Block:
		for _, c := range node.Children {
			if hasVariants(c) {
				return true
			}
		}
	case *VariantsDecl:
		return true
	case *CondBlock:
		return hasVariants(node.Body)
	}
	return false
}

func contentTokens(ln lexer.Line) []lexer.Token {
	toks := ln.Toks
	if len(toks) > 0 && toks[0].Kind == lexer.IndentSet {
		toks = toks[1:]
	}
	if len(toks) > 0 && toks[len(toks)-1].Kind == lexer.Newline {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func isPunct(toks []lexer.Token, i int, text string) bool {
	return i < len(toks) && toks[i].Kind == lexer.Punct && toks[i].Text == text
}

func isDirective(word string) bool {
	switch word {
	case "include", "del", "suffix", "only", "no", "join":
		return true
	}
	return false
}

func endsWithColon(raw string) bool {
	return strings.HasSuffix(strings.TrimSpace(raw), ":")
}

func strictlyExtends(parent, child string) bool {
	return len(child) > len(parent) && strings.HasPrefix(child, parent)
}
