// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package expand_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pevogam/cartconf/internal/expand"
	"github.com/pevogam/cartconf/internal/parser"
	"github.com/pevogam/cartconf/pkg/errutil"
)

func TestInterp_Simple(t *testing.T) {
	src := "x = va\nword = ${x}\n"
	variants := expandAll(t, src, expand.Options{})
	assert.Equal(t, "va", variants[0].Params.GetOr("word", ""))
}

func TestInterp_Nested(t *testing.T) {
	src := "a = 1\nb = ${a}2\nc = ${b}3\nd = ${c}4\n"
	variants := expandAll(t, src, expand.Options{})
	assert.Equal(t, "1234", variants[0].Params.GetOr("d", ""))
}

func TestInterp_ForwardReference(t *testing.T) {
	// References resolve against the final dict, not declaration order.
	src := "word = ${x}\nx = later\n"
	variants := expandAll(t, src, expand.Options{})
	assert.Equal(t, "later", variants[0].Params.GetOr("word", ""))
}

func TestInterp_MultipleRefsInOneValue(t *testing.T) {
	src := "a = A\nb = B\nboth = ${a}-${b}\n"
	variants := expandAll(t, src, expand.Options{})
	assert.Equal(t, "A-B", variants[0].Params.GetOr("both", ""))
}

func TestInterp_NoTokensSurvive(t *testing.T) {
	src := `base = ${x}/${y}
variants:
    - a:
        x = 1
        y = 2
    - b:
        x = 3
        y = 4
`
	variants := expandAll(t, src, expand.Options{})
	require.Len(t, variants, 2)
	for _, v := range variants {
		v.Params.Each(func(_, value string) bool {
			assert.NotContains(t, value, "${")
			return true
		})
	}
}

func TestInterp_UnresolvedIsError(t *testing.T) {
	tree, err := parser.New(nil, nil).Parse("word = ${ghost}\n")
	require.NoError(t, err)
	_, err = expand.New(tree, expand.Options{}).Collect()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, expand.CodeInterpError)
	errutil.AssertErrorContext(t, err, "ref", "ghost")
}

func TestInterp_CycleIsError(t *testing.T) {
	tree, err := parser.New(nil, nil).Parse("a = ${b}\nb = ${a}\n")
	require.NoError(t, err)
	_, err = expand.New(tree, expand.Options{}).Collect()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, expand.CodeInterpError)
}

func TestInterp_SelfReferenceIsError(t *testing.T) {
	tree, err := parser.New(nil, nil).Parse("a = ${a}\n")
	require.NoError(t, err)
	_, err = expand.New(tree, expand.Options{}).Collect()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, expand.CodeInterpError)
}

func TestInterp_DeepChainWithinCap(t *testing.T) {
	// 20 chained references stay well under the iteration cap.
	var b strings.Builder
	b.WriteString("k00 = end\n")
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&b, "k%02d = ${k%02d}\n", i, i-1)
	}
	variants := expandAll(t, b.String(), expand.Options{})
	assert.Equal(t, "end", variants[0].Params.GetOr("k20", ""))
}
