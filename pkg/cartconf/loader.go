// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package cartconf

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

// Loader resolves include targets (and root documents) to source buffers.
// The core treats it as an opaque capability; no file I/O happens outside
// it.
type Loader interface {
	Load(name string) ([]byte, error)
}

// FileLoader resolves targets as paths relative to Root. Absolute targets
// are read as given.
type FileLoader struct {
	Root string
}

// Load reads the target file.
func (l FileLoader) Load(name string) ([]byte, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.Root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.With("path", path).Wrapf(err, "reading %q", name)
	}
	return data, nil
}

// MapLoader resolves targets from an in-memory map, keyed by target string.
// Useful in tests and for embedded configurations.
type MapLoader map[string]string

// Load returns the mapped source.
func (l MapLoader) Load(name string) ([]byte, error) {
	src, ok := l[name]
	if !ok {
		return nil, oops.With("target", name).Errorf("no source registered for %q", name)
	}
	return []byte(src), nil
}
