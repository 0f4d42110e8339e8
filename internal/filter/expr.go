// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package filter

import "strings"

// Expr is a compiled filter expression. Exactly five concrete types implement
// it: Atom, Not, And, AdjAnd and Or. Evaluation dispatches on the concrete
// type in match.go.
type Expr interface {
	expr()
	String() string
}

// Seg is one element of an Atom: either a literal variant name or, when Key
// is non-empty, a "(key=value)" attribute predicate.
type Seg struct {
	Name  string
	Key   string
	Value string
}

func (s Seg) String() string {
	if s.Key != "" {
		return "(" + s.Key + "=" + s.Value + ")"
	}
	return s.Name
}

// Atom is a dotted run of segments that must align consecutively on the path.
type Atom struct {
	Segs []Seg
}

// Not negates its operand.
type Not struct {
	X Expr
}

// And is the ".." connective: every operand must match the path, order
// between them irrelevant.
type And struct {
	Xs []Expr
}

// AdjAnd is the "." connective for chains containing a group or a negation:
// the operands must match with a shared anchoring, aligning consecutively.
type AdjAnd struct {
	Xs []Expr
}

// Or is the "," connective: any operand may match.
type Or struct {
	Xs []Expr
}

func (*Atom) expr()   {}
func (*Not) expr()    {}
func (*And) expr()    {}
func (*AdjAnd) expr() {}
func (*Or) expr()     {}

func (a *Atom) String() string {
	parts := make([]string, len(a.Segs))
	for i, s := range a.Segs {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

func (n *Not) String() string {
	return "!" + n.X.String()
}

func (a *And) String() string {
	return joinExprs(a.Xs, "..")
}

func (a *AdjAnd) String() string {
	return joinExprs(a.Xs, ".")
}

func (o *Or) String() string {
	return joinExprs(o.Xs, ", ")
}

func joinExprs(xs []Expr, sep string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		if _, grouped := x.(*Or); grouped {
			parts[i] = "(" + x.String() + ")"
		} else {
			parts[i] = x.String()
		}
	}
	return strings.Join(parts, sep)
}

// Names returns every literal segment name mentioned anywhere in e. The
// expander uses this to decide whether a filter addresses a variants
// declaration when resolving default bullets.
func Names(e Expr) []string {
	var out []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *Atom:
			for _, s := range n.Segs {
				if s.Name != "" {
					out = append(out, s.Name)
				}
			}
		case *Not:
			walk(n.X)
		case *And:
			for _, x := range n.Xs {
				walk(x)
			}
		case *AdjAnd:
			for _, x := range n.Xs {
				walk(x)
			}
		case *Or:
			for _, x := range n.Xs {
				walk(x)
			}
		}
	}
	walk(e)
	return out
}
