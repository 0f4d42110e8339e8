// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package expand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pevogam/cartconf/internal/expand"
	"github.com/pevogam/cartconf/internal/parser"
	"github.com/pevogam/cartconf/pkg/errutil"
)

func TestJoin_MergesGroupsElementWise(t *testing.T) {
	src := `variants:
    - one:
        suffix _1
        key = v1
    - two:
        suffix _2
        key = v2
variants:
    - alpha:
    - beta:
join one two
`
	variants := expandAll(t, src, expand.Options{})
	require.Len(t, variants, 2)

	for _, v := range variants {
		assert.Equal(t, "v1", v.Params.GetOr("key_1", ""))
		assert.Equal(t, "v2", v.Params.GetOr("key_2", ""))
		assert.False(t, v.Params.Has("key"))
	}
	assert.Equal(t, "alpha.one.alpha.two", variants[0].Name)
	assert.Equal(t, "beta.one.beta.two", variants[1].Name)
}

func TestJoin_TruncatesToShortestGroup(t *testing.T) {
	// Group "a" expands once, group "b" twice: one merged dict.
	src := `variants:
    - a:
        x = ax
    - b:
        x = bx
variants:
    - 1:
    - 2:
only b, (a..1)
join a b
`
	variants := expandAll(t, src, expand.Options{})
	require.Len(t, variants, 1)
	// Later groups overwrite on key conflicts.
	assert.Equal(t, "bx", variants[0].Params.GetOr("x", ""))
}

func TestJoin_LaterGroupOverwrites(t *testing.T) {
	src := `variants:
    - one:
        key = v1
    - two:
        key = v2
join one two
`
	variants := expandAll(t, src, expand.Options{})
	require.Len(t, variants, 1)
	assert.Equal(t, "v2", variants[0].Params.GetOr("key", ""))
	assert.Equal(t, "one.two", variants[0].Name)
}

func TestJoin_EmptyGroupIsError(t *testing.T) {
	src := `variants:
    - one:
    - two:
join one ghost
`
	tree, err := parser.New(nil, nil).Parse(src)
	require.NoError(t, err)
	_, err = expand.New(tree, expand.Options{}).Collect()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, expand.CodeExpansionError)
	errutil.AssertErrorContext(t, err, "group", "ghost")
}

func TestJoin_MergedDeps(t *testing.T) {
	src := `variants:
    - base:
variants:
    - one: base
    - two: base
join one two
`
	variants := expandAll(t, src, expand.Options{})
	require.Len(t, variants, 1)
	assert.Equal(t, "[base]", variants[0].Params.GetOr("dep", ""))
}
