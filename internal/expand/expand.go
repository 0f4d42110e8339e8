// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

// Package expand enumerates the Cartesian product of variant choices declared
// in a parsed configuration tree. The walk is depth-first in document order;
// assignments and filter statements are collected into a deferred operation
// list tagged with their enclosing conditional filters, and a parameter
// dictionary is materialized only at leaves by replaying that list against
// the final path.
package expand

import (
	"iter"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/pevogam/cartconf/internal/filter"
	"github.com/pevogam/cartconf/internal/parser"
	"github.com/pevogam/cartconf/pkg/params"
)

// Variant is one fully expanded configuration.
type Variant struct {
	Name      string
	ShortName string
	Params    *params.Params
}

// KV is one extra assignment applied as a Set at the outermost scope.
type KV struct {
	Key   string
	Value string
}

// ExtraFilter is one extra filter applied at the outermost scope.
type ExtraFilter struct {
	Kind parser.FilterKind
	Expr filter.Expr
	Text string
}

// Options configure an expansion.
type Options struct {
	Logger *slog.Logger
	// FileName, when set, is recorded in the _name_map_file and
	// _short_name_map_file keys of every emitted dict.
	FileName string
	// Assignments are applied before any file-declared statement.
	Assignments []KV
	// Filters are appended to the file-declared filter statements.
	Filters []ExtraFilter
}

// Expander walks a parsed tree. It holds the tree by shared read-only
// reference and owns only per-run traversal state, so concurrent or repeated
// iterations over the same tree are independent.
type Expander struct {
	root *parser.Block
	opts Options
}

// New creates an expander over root.
func New(root *parser.Block, opts Options) *Expander {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Expander{root: root, opts: opts}
}

// All returns the lazy sequence of variants. Iteration is single-threaded;
// the walk advances only as the consumer pulls. On failure the sequence
// yields exactly one (nil, err) pair and stops. Each call restarts the
// expansion from scratch.
func (e *Expander) All() iter.Seq2[*Variant, error] {
	return func(yield func(*Variant, error) bool) {
		stop := errStopIteration
		err := e.run(func(v *Variant) error {
			if !yield(v, nil) {
				return stop
			}
			return nil
		})
		if err != nil && err != stop {
			yield(nil, err)
		}
	}
}

// Collect materializes the whole sequence.
func (e *Expander) Collect() ([]*Variant, error) {
	var out []*Variant
	err := e.run(func(v *Variant) error {
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// errStopIteration signals that the consumer stopped pulling; it never
// escapes this package.
var errStopIteration = &stopError{}

type stopError struct{}

func (*stopError) Error() string { return "iteration stopped" }

// run drives one full expansion, calling emit for every surviving leaf.
func (e *Expander) run(emit func(*Variant) error) error {
	joins := collectJoins(e.root)
	if len(joins) > 0 {
		return e.runJoined(joins, emit)
	}
	return e.runPlain(emit)
}

// runPlain walks the tree ignoring join directives. An empty tree expands
// to nothing, not to a single empty dict.
func (e *Expander) runPlain(emit func(*Variant) error) error {
	if len(e.root.Children) == 0 {
		return nil
	}
	r := &runner{e: e, emit: emit, chosen: map[string]int{}, onlyMentions: map[string]bool{}}
	collectOnlyMentions(e.root, r.onlyMentions)
	for _, f := range e.opts.Filters {
		if f.Kind == parser.Only {
			for _, name := range filter.Names(f.Expr) {
				r.onlyMentions[name] = true
			}
		}
	}
	for _, kv := range e.opts.Assignments {
		r.ops = append(r.ops, op{kind: opAssign, key: kv.Key, aop: parser.OpSet, value: kv.Value})
	}
	suffix := blockSuffix(e.root)
	if err := r.walk(e.root.Children, 0, suffix, nil, r.leaf); err != nil {
		return err
	}
	e.opts.Logger.Debug("expansion complete", "variants", r.emitted)
	return nil
}

// opKind tags entries of the deferred operation list.
type opKind int

const (
	opAssign opKind = iota
	opDel
	opFilter
)

// op is one deferred operation, tagged with the conditional filters under
// which it fires and the composed key suffix of its lexical scope.
type op struct {
	kind opKind

	key   string
	aop   parser.AssignOp
	value string

	pattern string

	fkind parser.FilterKind
	fexpr filter.Expr
	ftext string

	conds  []parser.CondRef
	suffix string
	line   int
}

// runner holds the mutable traversal state of a single expansion run.
type runner struct {
	e    *Expander
	emit func(*Variant) error

	choices    []filter.PathSeg // chosen variants, document order
	shortSkips []bool           // parallel to choices: omit from short name
	deps       []string         // declared deps of chosen bullets, in order
	chosen     map[string]int   // name -> times chosen, for dep checks
	ops        []op
	emitted    int

	// onlyMentions holds every variant name mentioned by an only-filter
	// anywhere in the tree or the extra filters; it decides whether a
	// default bullet stands in for its declaration.
	onlyMentions map[string]bool
}

// walk processes stmts[i:] under the given lexical suffix and conditional
// context; k continues with the enclosing frames and ends at the leaf.
func (r *runner) walk(stmts []parser.Node, i int, suffix string, conds []parser.CondRef, k func() error) error {
	if i == len(stmts) {
		return k()
	}
	next := func() error { return r.walk(stmts, i+1, suffix, conds, k) }

	switch node := stmts[i].(type) {
	case *parser.Assign:
		r.ops = append(r.ops, op{
			kind: opAssign, key: node.Key, aop: node.Op, value: node.Value,
			conds: conds, suffix: suffix, line: node.Line,
		})
		return next()

	case *parser.Del:
		r.ops = append(r.ops, op{kind: opDel, pattern: node.Key, conds: conds, line: node.Line})
		return next()

	case *parser.FilterStmt:
		r.ops = append(r.ops, op{
			kind: opFilter, fkind: node.Kind, fexpr: node.Expr, ftext: node.Text,
			conds: conds, line: node.Line,
		})
		return next()

	case *parser.Suffix:
		// Consumed by blockSuffix when the enclosing block was entered.
		return next()

	case *parser.Join:
		// Handled by the pre-pass in run; inert during a plain walk.
		return next()

	case *parser.CondBlock:
		bodyConds := append(append([]parser.CondRef(nil), conds...),
			parser.CondRef{Expr: node.Expr, Negated: node.Negated})
		bodySuffix := suffix + blockSuffix(node.Body)
		return r.walk(node.Body.Children, 0, bodySuffix, bodyConds, next)

	case *parser.VariantsDecl:
		return r.branch(node, stmts, i, suffix, conds, k)
	}
	return next()
}

// branch explores every eligible bullet of decl, then continues with the
// remaining statements of the enclosing block inside each choice.
func (r *runner) branch(decl *parser.VariantsDecl, stmts []parser.Node, i int, suffix string, conds []parser.CondRef, k func() error) error {
	if len(decl.Children) == 0 {
		return r.walk(stmts, i+1, suffix, conds, k)
	}

	transparent := decl.VarType == "" && len(decl.Children) == 1
	bullets := r.eligible(decl)
	if len(bullets) == 0 {
		return nil
	}

	for _, b := range bullets {
		opsLen, pathLen, depsLen := len(r.ops), len(r.choices), len(r.deps)

		if !transparent {
			seg := filter.PathSeg{Name: b.Name}
			if decl.VarType != "" {
				seg.Attrs = map[string]string{decl.VarType: b.Name}
			}
			r.choices = append(r.choices, seg)
			r.shortSkips = append(r.shortSkips, decl.ShortNameOnly())
		}
		if decl.VarType != "" {
			r.ops = append(r.ops, op{
				kind: opAssign, key: decl.VarType, aop: parser.OpSet, value: b.Name,
				conds: conds, line: b.Line,
			})
		}
		r.deps = append(r.deps, b.Deps...)
		r.chosen[b.Name]++

		bodySuffix := suffix + blockSuffix(b.Body)
		err := r.walk(b.Body.Children, 0, bodySuffix, conds, func() error {
			return r.walk(stmts, i+1, suffix, conds, k)
		})

		r.chosen[b.Name]--
		r.ops = r.ops[:opsLen]
		r.choices = r.choices[:pathLen]
		r.shortSkips = r.shortSkips[:pathLen]
		r.deps = r.deps[:depsLen]
		if err != nil {
			return err
		}
	}
	return nil
}

// eligible filters decl's bullets by declared dependencies and resolves
// default bullets: when no only-filter anywhere in the tree or the extra
// filters mentions any of the declaration's bullet names, the default bullets
// stand in for the whole set.
func (r *runner) eligible(decl *parser.VariantsDecl) []*parser.VariantName {
	var out []*parser.VariantName
	for _, b := range decl.Children {
		if r.depsSatisfied(b) {
			out = append(out, b)
		}
	}

	var defaults []*parser.VariantName
	for _, b := range out {
		if b.Default {
			defaults = append(defaults, b)
		}
	}
	if len(defaults) == 0 {
		return out
	}
	for _, b := range decl.Children {
		if r.onlyMentions[b.Name] {
			return out
		}
	}
	return defaults
}

func (r *runner) depsSatisfied(b *parser.VariantName) bool {
	for _, dep := range b.Deps {
		if r.chosen[dep] == 0 {
			return false
		}
	}
	return true
}

// path returns the filter path: chosen names with the newest choice leftmost,
// matching the emitted name.
func (r *runner) path() filter.Path {
	p := make(filter.Path, len(r.choices))
	for i, seg := range r.choices {
		p[len(r.choices)-1-i] = seg
	}
	return p
}

// leaf materializes the dict for the fully committed choice stack.
func (r *runner) leaf() error {
	fpath := r.path()

	// Filter statements prune first; their conditional context is evaluated
	// against the same final path.
	for _, o := range r.ops {
		if o.kind != opFilter || !condsMatch(o.conds, fpath) {
			continue
		}
		if rejected(o.fkind, o.fexpr, fpath) {
			r.e.opts.Logger.Debug("variant pruned",
				"name", fpath.String(), "filter", o.fkind.String()+" "+o.ftext)
			return nil
		}
	}
	for _, f := range r.e.opts.Filters {
		if rejected(f.Kind, f.Expr, fpath) {
			return nil
		}
	}

	pm := params.New()
	pm.Set("name", "")
	pm.Set("shortname", "")
	pm.Set("dep", "[]")
	suffixes := map[string]string{}

	for _, o := range r.ops {
		if !condsMatch(o.conds, fpath) {
			continue
		}
		var err error
		switch o.kind {
		case opAssign:
			err = applyAssign(pm, o, suffixes)
		case opDel:
			err = applyDel(pm, o)
		}
		if err != nil {
			return err
		}
	}

	name := fpath.String()
	short := r.shortName()
	pm.Set("name", name)
	pm.Set("shortname", short)
	pm.Set("dep", formatDeps(r.deps))
	if r.e.opts.FileName != "" {
		base := filepath.Base(r.e.opts.FileName)
		pm.Set("_name_map_file", base)
		pm.Set("_short_name_map_file", base)
	}

	if err := interpolate(pm, suffixes); err != nil {
		return err
	}

	r.emitted++
	r.e.opts.Logger.Debug("emitting variant", "name", name, "keys", pm.Len())
	return r.emit(&Variant{Name: name, ShortName: short, Params: pm})
}

func (r *runner) shortName() string {
	var parts []string
	for i := len(r.choices) - 1; i >= 0; i-- {
		if !r.shortSkips[i] {
			parts = append(parts, r.choices[i].Name)
		}
	}
	return strings.Join(parts, ".")
}

func rejected(kind parser.FilterKind, expr filter.Expr, fpath filter.Path) bool {
	matched := filter.Match(expr, fpath)
	if kind == parser.Only {
		return !matched
	}
	return matched
}

func condsMatch(conds []parser.CondRef, fpath filter.Path) bool {
	for _, c := range conds {
		if filter.Match(c.Expr, fpath) == c.Negated {
			return false
		}
	}
	return true
}

// applyAssign replays one assignment against the dict under construction.
func applyAssign(pm *params.Params, o op, suffixes map[string]string) error {
	key := o.key + o.suffix
	if o.suffix != "" {
		suffixes[key] = o.suffix
	}
	if o.aop.Lazy() && hasValue(pm, key) {
		// Lazy ops fire only on an unset key; among lazy ops the first wins.
		return nil
	}
	switch o.aop {
	case parser.OpSet, parser.OpLazySet:
		pm.Set(key, o.value)
	case parser.OpAppend, parser.OpLazyAppend:
		pm.Set(key, pm.GetOr(key, "")+o.value)
	case parser.OpPrepend, parser.OpLazyPrepend:
		pm.Set(key, o.value+pm.GetOr(key, ""))
	case parser.OpRegexSub:
		pattern, repl, ok := splitRegexValue(o.value)
		if !ok {
			return ErrBadRegexValue(key, o.value, o.line)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return ErrBadRegexPattern(key, pattern, o.line, err)
		}
		pm.Set(key, re.ReplaceAllString(pm.GetOr(key, ""), repl))
	}
	return nil
}

// hasValue reports whether key carries a real value: the reserved keys are
// pre-seeded placeholders and do not block lazy assignment.
func hasValue(pm *params.Params, key string) bool {
	switch key {
	case "name", "shortname", "dep":
		return false
	}
	return pm.Has(key)
}

// applyDel removes every key matching the del glob.
func applyDel(pm *params.Params, o op) error {
	g, err := glob.Compile(o.pattern)
	if err != nil {
		return ErrBadDelPattern(o.pattern, o.line, err)
	}
	for _, key := range pm.Keys() {
		if g.Match(key) {
			pm.Delete(key)
		}
	}
	return nil
}

// splitRegexValue splits "/pattern/replacement/" into its parts.
func splitRegexValue(value string) (pattern, repl string, ok bool) {
	if len(value) < 2 || value[0] != '/' || value[len(value)-1] != '/' {
		return "", "", false
	}
	body := value[1 : len(value)-1]
	idx := strings.Index(body, "/")
	if idx < 0 {
		return "", "", false
	}
	return body[:idx], body[idx+1:], true
}

// formatDeps renders the union of declared dependency names in declaration
// order: "[]" or "[a, b]".
func formatDeps(deps []string) string {
	if len(deps) == 0 {
		return "[]"
	}
	seen := make(map[string]bool, len(deps))
	var uniq []string
	for _, d := range deps {
		if !seen[d] {
			seen[d] = true
			uniq = append(uniq, d)
		}
	}
	return "[" + strings.Join(uniq, ", ") + "]"
}

// blockSuffix concatenates the suffix statements declared directly in block;
// a suffix scopes over its whole enclosing block subtree.
func blockSuffix(block *parser.Block) string {
	var b strings.Builder
	for _, child := range block.Children {
		if s, ok := child.(*parser.Suffix); ok {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// collectOnlyMentions gathers every variant name any only-filter in the tree
// refers to, regardless of the filter's position or conditional context.
func collectOnlyMentions(n parser.Node, mentions map[string]bool) {
	switch node := n.(type) {
	case *parser.Block:
		for _, c := range node.Children {
			collectOnlyMentions(c, mentions)
		}
	case *parser.FilterStmt:
		if node.Kind == parser.Only {
			for _, name := range filter.Names(node.Expr) {
				mentions[name] = true
			}
		}
	case *parser.CondBlock:
		collectOnlyMentions(node.Body, mentions)
	case *parser.VariantsDecl:
		for _, b := range node.Children {
			collectOnlyMentions(b.Body, mentions)
		}
	}
}

// collectJoins gathers join directives declared at block level of the root.
func collectJoins(root *parser.Block) []*parser.Join {
	var joins []*parser.Join
	for _, child := range root.Children {
		if j, ok := child.(*parser.Join); ok {
			joins = append(joins, j)
		}
	}
	return joins
}
