// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package errutil_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/pevogam/cartconf/pkg/errutil"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, errutil.ExitOK},
		{"include error", oops.Code("INCLUDE_ERROR").Errorf("missing"), errutil.ExitIOError},
		{"parse error", oops.Code("PARSE_ERROR").Errorf("bad indent"), errutil.ExitError},
		{"interp error", oops.Code("INTERP_ERROR").Errorf("cycle"), errutil.ExitError},
		{"plain error", errors.New("boom"), errutil.ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errutil.ExitCode(tt.err))
		})
	}
}

func TestCode(t *testing.T) {
	assert.Equal(t, "LEX_ERROR", errutil.Code(oops.Code("LEX_ERROR").Errorf("bad char")))
	assert.Equal(t, "", errutil.Code(errors.New("plain")))
}

func TestLogError_OopsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	err := oops.Code("PARSE_ERROR").With("line", 3).Errorf("bad indentation")
	errutil.LogError(logger, "parse failed", err)

	out := buf.String()
	assert.Contains(t, out, "parse failed")
	assert.Contains(t, out, "PARSE_ERROR")
	assert.Contains(t, out, "bad indentation")
}

func TestLogError_PlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	errutil.LogError(logger, "something failed", errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}
