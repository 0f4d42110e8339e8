// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package parser

import (
	"github.com/pevogam/cartconf/internal/filter"
)

// Node is one statement in the parsed configuration tree. Nodes are built
// once by the parser and never mutated afterwards; the expander walks them by
// shared read-only reference.
type Node interface {
	node()
}

// Block is an indented group of statements.
type Block struct {
	Indent   string
	Children []Node
}

// AssignOp enumerates the assignment operators.
type AssignOp int

const (
	// OpSet overwrites the key ("=").
	OpSet AssignOp = iota
	// OpAppend concatenates after the existing value ("+=").
	OpAppend
	// OpPrepend concatenates before the existing value ("<=").
	OpPrepend
	// OpRegexSub applies /pattern/replacement/ to the existing value ("~=").
	OpRegexSub
	// OpLazySet sets the key only when it has no value yet ("?=").
	OpLazySet
	// OpLazyAppend appends only when the key has no value yet ("?+=").
	OpLazyAppend
	// OpLazyPrepend prepends only when the key has no value yet ("?<=").
	OpLazyPrepend
)

// Lazy reports whether the operator fires only on an unset key.
func (op AssignOp) Lazy() bool {
	return op == OpLazySet || op == OpLazyAppend || op == OpLazyPrepend
}

// assignOpNames maps operator spellings to AssignOp values.
var assignOpNames = map[string]AssignOp{
	"=":   OpSet,
	"+=":  OpAppend,
	"<=":  OpPrepend,
	"~=":  OpRegexSub,
	"?=":  OpLazySet,
	"?+=": OpLazyAppend,
	"?<=": OpLazyPrepend,
}

func (op AssignOp) String() string {
	for text, o := range assignOpNames {
		if o == op {
			return text
		}
	}
	return "?"
}

// CondRef is one enclosing conditional filter of a statement: the block's
// expression and whether the block was negated.
type CondRef struct {
	Expr    filter.Expr
	Negated bool
}

// Assign is a key assignment. Filters holds the conditional filters of every
// enclosing CondBlock, outermost first; the assignment fires at leaf
// materialization only when all of them are satisfied by the final path.
type Assign struct {
	Key     string
	Op      AssignOp
	Value   string
	Filters []CondRef
	Line    int
}

// VariantsDecl is a "variants:" header. When VarType is set it names the
// dimension and every bullet receives VarType=name as an implicit assignment.
// Leaf is true when no bullet body declares further variants.
type VariantsDecl struct {
	VarType  string
	Meta     map[string]string
	Leaf     bool
	Children []*VariantName
	Line     int
}

// MetaShortNameOnly omits the declaration's bullet names from short_name.
const MetaShortNameOnly = "short_name_only"

// ShortNameOnly reports whether the declaration's bullets are omitted from
// the short name.
func (d *VariantsDecl) ShortNameOnly() bool {
	_, ok := d.Meta[MetaShortNameOnly]
	return ok
}

// VariantName is one bullet under a variants declaration. Default marks the
// "@" prefix: the bullet chosen when no only-filter anywhere in the
// configuration or the extra filters names one of the declaration's bullets.
type VariantName struct {
	Name    string
	Deps    []string
	Default bool
	Body    *Block
	Line    int
}

// FilterKind distinguishes "only" from "no".
type FilterKind int

const (
	// Only retains paths matching the expression.
	Only FilterKind = iota
	// No rejects paths matching the expression.
	No
)

func (k FilterKind) String() string {
	if k == No {
		return "no"
	}
	return "only"
}

// FilterStmt is an "only EXPR" or "no EXPR" statement.
type FilterStmt struct {
	Kind FilterKind
	Expr filter.Expr
	Text string
	Line int
}

// CondBlock is the "EXPR:" conditional form; Negated marks the "!" prefix.
// The body's statements apply only when the active path satisfies the
// expression at application time.
type CondBlock struct {
	Expr    filter.Expr
	Negated bool
	Text    string
	Body    *Block
	Line    int
}

// Include splices another configuration at this statement's level.
type Include struct {
	Target string
	Line   int
}

// Del removes keys matching a glob pattern from the dict at application time.
type Del struct {
	Key  string
	Line int
}

// Join composes the cross-subtree expansion of its groups element-wise.
type Join struct {
	Groups []filter.Expr
	Texts  []string
	Line   int
}

// Suffix renames every key assigned in the enclosing block subtree by
// appending Text.
type Suffix struct {
	Text string
	Line int
}

func (*Block) node()        {}
func (*Assign) node()       {}
func (*VariantsDecl) node() {}
func (*VariantName) node()  {}
func (*FilterStmt) node()   {}
func (*CondBlock) node()    {}
func (*Include) node()      {}
func (*Del) node()          {}
func (*Join) node()         {}
func (*Suffix) node()       {}
