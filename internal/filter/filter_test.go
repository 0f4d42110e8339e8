// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pevogam/cartconf/internal/filter"
	"github.com/pevogam/cartconf/pkg/errutil"
)

// path builds a plain path from names.
func path(names ...string) filter.Path {
	p := make(filter.Path, len(names))
	for i, n := range names {
		p[i] = filter.PathSeg{Name: n}
	}
	return p
}

func TestParse_Shapes(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string // String() rendering of the compiled expression
	}{
		{"single name", "a", "a"},
		{"dotted atom", "a.b", "a.b"},
		{"or", "a, b", "a, b"},
		{"and", "a..b", "a..b"},
		{"negation", "!a", "!a"},
		{"predicate", "(fmt=raw)", "(fmt=raw)"},
		{"predicate in chain", "a.(fmt=raw)", "a.(fmt=raw)"},
		{"grouping", "(a, b)..c", "(a, b)..c"},
		{"precedence comma weakest", "a..b, c", "a..b, c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := filter.Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"dangling comma", "a,"},
		{"dangling dot", "a."},
		{"unbalanced paren", "(a"},
		{"bad predicate", "(k=)"},
		{"bare operator", ".."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := filter.Parse(tt.expr)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, filter.CodeFilterError)
		})
	}
}

func TestMatch_Atoms(t *testing.T) {
	tests := []struct {
		name string
		expr string
		path filter.Path
		want bool
	}{
		{"name anywhere", "a", path("x", "a", "y"), true},
		{"name missing", "a", path("x", "y"), false},
		{"adjacent pair", "a.b", path("x", "a", "b"), true},
		{"pair with gap", "a.b", path("a", "x", "b"), false},
		{"pair wrong order", "a.b", path("b", "a"), false},
		{"pair at start", "a.b", path("a", "b", "x"), true},
		{"longer than path", "a.b.c", path("a", "b"), false},
		{"empty path", "a", path(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter.Match(filter.MustParse(tt.expr), tt.path))
		})
	}
}

func TestMatch_Connectives(t *testing.T) {
	p := path("1", "a")
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"or left", "a, z", true},
		{"or right", "z, 1", true},
		{"or neither", "z, q", false},
		{"and both", "a..1", true},
		{"and order insensitive", "1..a", true},
		{"and one missing", "a..z", false},
		{"not missing", "!z", true},
		{"not present", "!a", false},
		{"group or with and", "(z, a)..1", true},
		{"negated group", "!(z, q)", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter.Match(filter.MustParse(tt.expr), p))
		})
	}
}

func TestMatch_Predicates(t *testing.T) {
	p := filter.Path{
		{Name: "qcow2", Attrs: map[string]string{"fmt": "qcow2"}},
		{Name: "a"},
	}
	assert.True(t, filter.Match(filter.MustParse("(fmt=qcow2)"), p))
	assert.False(t, filter.Match(filter.MustParse("(fmt=raw)"), p))
	assert.True(t, filter.Match(filter.MustParse("(fmt=qcow2).a"), p))
	assert.False(t, filter.Match(filter.MustParse("a.(fmt=qcow2)"), p))
}

func TestMatch_AdjacentGroups(t *testing.T) {
	p := path("x", "a", "b", "y")
	// A grouped alternative keeps the anchoring of the surrounding chain.
	assert.True(t, filter.Match(filter.MustParse("(a, z).b"), p))
	assert.False(t, filter.Match(filter.MustParse("(z, q).b"), p))
	assert.True(t, filter.Match(filter.MustParse("x.(a.b).y"), p))
}

func TestNames(t *testing.T) {
	expr := filter.MustParse("a.b, !(c..(fmt=raw))")
	assert.ElementsMatch(t, []string{"a", "b", "c"}, filter.Names(expr))
}
