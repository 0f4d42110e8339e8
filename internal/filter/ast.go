// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

// Package filter implements the boolean filter algebra evaluated against a
// variant path. Expressions combine dotted name patterns with "," (OR), ".."
// (AND), "." (immediately-followed-by), "!" (NOT), parentheses for grouping
// and "(key=value)" attribute predicates. The concrete grammar is parsed with
// participle and compiled into a small tagged-sum tree evaluated in match.go.
package filter

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// filterLexer defines the token types for filter expressions. ".." must come
// before "." so the longer operator wins.
var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "DotDot", Pattern: `\.\.`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Bang", Pattern: `!`},
	{Name: "Eq", Pattern: `=`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Ident", Pattern: `[A-Za-z0-9][A-Za-z0-9_-]*`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Grammar nodes, weakest binding first: "," < ".." < ".".

// orNode is a comma-separated list of alternatives.
type orNode struct {
	Alts []*andNode `parser:"@@ (Comma @@)*"`
}

// andNode is a ".."-separated conjunction; order between terms is irrelevant.
type andNode struct {
	Terms []*adjNode `parser:"@@ (DotDot @@)*"`
}

// adjNode is a "."-separated chain whose elements must align consecutively on
// the path.
type adjNode struct {
	Units []*unitNode `parser:"@@ (Dot @@)*"`
}

// unitNode is a negation, an attribute predicate, a parenthesized group or a
// bare variant name. The predicate alternative is tried before the group so
// that "(k=v)" is not consumed as a grouped name; MaxLookahead backtracking
// disambiguates the shared "(" prefix.
type unitNode struct {
	Neg   *unitNode `parser:"  Bang @@"`
	Pred  *predNode `parser:"| @@"`
	Group *orNode   `parser:"| LParen @@ RParen"`
	Name  string    `parser:"| @Ident"`
}

// predNode is an attribute predicate: "(" key "=" value ")".
type predNode struct {
	Key   string `parser:"LParen @Ident Eq"`
	Value string `parser:"@Ident RParen"`
}

// exprParser is the singleton participle parser for filter expressions.
var exprParser *participle.Parser[orNode]

func init() {
	var err error
	exprParser, err = participle.Build[orNode](
		participle.Lexer(filterLexer),
		participle.UseLookahead(participle.MaxLookahead),
	)
	if err != nil {
		panic("building filter parser: " + err.Error())
	}
}

// Parse parses a filter expression into its compiled form.
func Parse(text string) (Expr, error) {
	node, err := exprParser.ParseString("", text)
	if err != nil {
		return nil, ErrBadFilter(text, err)
	}
	return compileOr(node), nil
}

// MustParse is Parse for expressions known to be valid, used in tests.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

func compileOr(n *orNode) Expr {
	if len(n.Alts) == 1 {
		return compileAnd(n.Alts[0])
	}
	xs := make([]Expr, len(n.Alts))
	for i, alt := range n.Alts {
		xs[i] = compileAnd(alt)
	}
	return &Or{Xs: xs}
}

func compileAnd(n *andNode) Expr {
	if len(n.Terms) == 1 {
		return compileAdj(n.Terms[0])
	}
	xs := make([]Expr, len(n.Terms))
	for i, term := range n.Terms {
		xs[i] = compileAdj(term)
	}
	return &And{Xs: xs}
}

// compileAdj folds a "."-chain. A chain of plain names and predicates becomes
// a single Atom; anything containing groups or negations stays an AdjAnd.
func compileAdj(n *adjNode) Expr {
	simple := true
	for _, u := range n.Units {
		if u.Neg != nil || u.Group != nil {
			simple = false
			break
		}
	}
	if simple {
		segs := make([]Seg, len(n.Units))
		for i, u := range n.Units {
			segs[i] = unitSeg(u)
		}
		return &Atom{Segs: segs}
	}
	if len(n.Units) == 1 {
		return compileUnit(n.Units[0])
	}
	xs := make([]Expr, len(n.Units))
	for i, u := range n.Units {
		xs[i] = compileUnit(u)
	}
	return &AdjAnd{Xs: xs}
}

func compileUnit(n *unitNode) Expr {
	switch {
	case n.Neg != nil:
		return &Not{X: compileUnit(n.Neg)}
	case n.Group != nil:
		return compileOr(n.Group)
	default:
		return &Atom{Segs: []Seg{unitSeg(n)}}
	}
}

func unitSeg(n *unitNode) Seg {
	if n.Pred != nil {
		return Seg{Key: n.Pred.Key, Value: n.Pred.Value}
	}
	return Seg{Name: n.Name}
}
