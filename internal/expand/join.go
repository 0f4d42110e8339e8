// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package expand

import (
	"strings"

	"github.com/pevogam/cartconf/internal/filter"
	"github.com/pevogam/cartconf/internal/parser"
	"github.com/pevogam/cartconf/pkg/params"
)

// joinGroup is one filter expression of a join directive.
type joinGroup struct {
	expr filter.Expr
	text string
}

// runJoined composes the expansions of the join groups element-wise: each
// group expands the tree under an additional "only" filter, the resulting
// lists are zipped (truncating to the shortest) and the dicts of every tuple
// merged left-to-right. Suffix statements inside the joined subtrees keep
// the per-group keys apart.
func (e *Expander) runJoined(joins []*parser.Join, emit func(*Variant) error) error {
	var groups []joinGroup
	for _, j := range joins {
		for i, expr := range j.Groups {
			groups = append(groups, joinGroup{expr: expr, text: j.Texts[i]})
		}
	}

	lists := make([][]*Variant, len(groups))
	minLen := -1
	for gi, g := range groups {
		opts := e.opts
		opts.Filters = append(append([]ExtraFilter(nil), e.opts.Filters...),
			ExtraFilter{Kind: parser.Only, Expr: g.expr, Text: g.text})
		sub := &Expander{root: e.root, opts: opts}

		var list []*Variant
		err := sub.runPlain(func(v *Variant) error {
			list = append(list, v)
			return nil
		})
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return ErrEmptyJoinGroup(g.text)
		}
		lists[gi] = list
		if minLen < 0 || len(list) < minLen {
			minLen = len(list)
		}
	}

	for gi, list := range lists {
		if len(list) > minLen {
			e.opts.Logger.Debug("join truncating group",
				"group", groups[gi].text, "have", len(list), "using", minLen)
		}
	}

	for i := 0; i < minLen; i++ {
		row := make([]*Variant, len(lists))
		for gi := range lists {
			row[gi] = lists[gi][i]
		}
		if err := emit(mergeRow(row)); err != nil {
			return err
		}
	}
	return nil
}

// mergeRow merges one tuple of per-group variants into a single variant.
// Keys merge left-to-right with later groups overwriting; names concatenate
// in group order.
func mergeRow(row []*Variant) *Variant {
	merged := params.New()
	var names, shorts []string
	var deps []string

	for _, v := range row {
		merged.Merge(v.Params)
		if v.Name != "" {
			names = append(names, v.Name)
		}
		if v.ShortName != "" {
			shorts = append(shorts, v.ShortName)
		}
		deps = append(deps, parseDeps(v.Params.GetOr("dep", "[]"))...)
	}

	name := strings.Join(names, ".")
	short := strings.Join(shorts, ".")
	merged.Set("name", name)
	merged.Set("shortname", short)
	merged.Set("dep", formatDeps(deps))
	return &Variant{Name: name, ShortName: short, Params: merged}
}

// parseDeps inverts formatDeps.
func parseDeps(s string) []string {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if s == "" {
		return nil
	}
	return strings.Split(s, ", ")
}
