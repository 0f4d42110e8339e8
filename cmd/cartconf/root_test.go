// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pevogam/cartconf/pkg/errutil"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const productSrc = `variants:
    - a:
        x = va
    - b:
        x = vb
variants:
    - 1:
    - 2:
`

func TestRun_Contents(t *testing.T) {
	out, err := runCLI(t, "-c", productSrc)
	require.NoError(t, err)
	assert.Contains(t, out, "dict    1:  1.a")
	assert.Contains(t, out, "dict    2:  2.a")
	assert.Contains(t, out, "dict    3:  1.b")
	assert.Contains(t, out, "dict    4:  2.b")
}

func TestRun_Verbose(t *testing.T) {
	out, err := runCLI(t, "-c", "-v", "x = 1\n")
	require.NoError(t, err)
	assert.Contains(t, out, "dict    1:  ")
	assert.Contains(t, out, "    x = 1")
	assert.Contains(t, out, "    dep = []")
}

func TestRun_ExtraFiltersAndAssignments(t *testing.T) {
	out, err := runCLI(t, "-c", "-v", productSrc, "only", "a", "extra=1")
	require.NoError(t, err)
	assert.Contains(t, out, "dict    1:  1.a")
	assert.Contains(t, out, "dict    2:  2.a")
	assert.NotContains(t, out, "1.b")
	assert.Contains(t, out, "    extra = 1")
}

func TestRun_OnlyConsumesMultipleExpressions(t *testing.T) {
	out, err := runCLI(t, "-c", productSrc, "only", "a", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "dict    1:  1.a")
	assert.NotContains(t, out, "2.a")
	assert.NotContains(t, out, "1.b")
}

func TestRun_PredicateFilterArgument(t *testing.T) {
	src := `variants fmt:
    - qcow2:
    - raw:
`
	out, err := runCLI(t, "-c", src, "only", "(fmt=raw)")
	require.NoError(t, err)
	assert.Contains(t, out, "dict    1:  raw")
	assert.NotContains(t, out, "qcow2")
}

func TestRun_YAMLOutput(t *testing.T) {
	out, err := runCLI(t, "-c", "--output", "yaml", productSrc)
	require.NoError(t, err)
	assert.Contains(t, out, "name: 1.a")
	assert.Contains(t, out, "x: va")
}

func TestRun_MissingFile(t *testing.T) {
	_, err := runCLI(t, filepath.Join(t.TempDir(), "ghost.cfg"))
	require.Error(t, err)
	assert.Equal(t, errutil.ExitIOError, errutil.ExitCode(err))
}

func TestRun_ParseErrorExitCode(t *testing.T) {
	_, err := runCLI(t, "-c", "variants\n")
	require.Error(t, err)
	assert.Equal(t, errutil.ExitError, errutil.ExitCode(err))
}

func TestRun_UnrecognizedArgument(t *testing.T) {
	_, err := runCLI(t, "-c", "x = 1\n", "stray")
	require.Error(t, err)
}

func TestRun_DanglingFilterKeyword(t *testing.T) {
	_, err := runCLI(t, "-c", "x = 1\n", "only")
	require.Error(t, err)
}
