// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package filter

import "strings"

// PathSeg is one chosen variant on the path a filter matches against. Attrs
// holds implicit attributes, notably var_type=name for typed declarations.
type PathSeg struct {
	Name  string
	Attrs map[string]string
}

// Path is the ordered sequence of chosen variant names, leftmost segment
// first, in the same order the segments appear in the emitted name.
type Path []PathSeg

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.Name
	}
	return strings.Join(parts, ".")
}

// Match reports whether path satisfies e.
func Match(e Expr, path Path) bool {
	switch n := e.(type) {
	case *Or:
		for _, x := range n.Xs {
			if Match(x, path) {
				return true
			}
		}
		return false
	case *And:
		for _, x := range n.Xs {
			if !Match(x, path) {
				return false
			}
		}
		return true
	case *Not:
		return !Match(n.X, path)
	default:
		// Atoms and adjacency chains are anchored: they match if they align
		// at any starting position.
		for i := 0; i <= len(path); i++ {
			if len(matchEnds(e, path, i)) > 0 {
				return true
			}
		}
		return false
	}
}

// matchEnds returns the positions just past every match of e anchored at
// start. An empty result means e does not match at start.
func matchEnds(e Expr, path Path, start int) []int {
	switch n := e.(type) {
	case *Atom:
		if end, ok := atomAt(n, path, start); ok {
			return []int{end}
		}
		return nil
	case *AdjAnd:
		ends := []int{start}
		for _, x := range n.Xs {
			var next []int
			for _, pos := range ends {
				next = append(next, matchEnds(x, path, pos)...)
			}
			if len(next) == 0 {
				return nil
			}
			ends = dedupInts(next)
		}
		return ends
	case *Or:
		var ends []int
		for _, x := range n.Xs {
			ends = append(ends, matchEnds(x, path, start)...)
		}
		return dedupInts(ends)
	case *And:
		// Non-positional inside an adjacency chain: zero width, every term
		// must match the whole path.
		if Match(n, path) {
			return []int{start}
		}
		return nil
	case *Not:
		if Match(n, path) {
			return []int{start}
		}
		return nil
	}
	return nil
}

// atomAt matches an atom's segments consecutively from start.
func atomAt(a *Atom, path Path, start int) (int, bool) {
	if start+len(a.Segs) > len(path) {
		return 0, false
	}
	for i, seg := range a.Segs {
		if !segMatches(seg, path[start+i]) {
			return 0, false
		}
	}
	return start + len(a.Segs), true
}

func segMatches(seg Seg, ps PathSeg) bool {
	if seg.Key != "" {
		return ps.Attrs[seg.Key] == seg.Value
	}
	return ps.Name == seg.Name
}

func dedupInts(xs []int) []int {
	seen := make(map[int]bool, len(xs))
	out := xs[:0]
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}
