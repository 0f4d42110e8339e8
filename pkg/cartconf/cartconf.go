// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

// Package cartconf parses the Cartesian configuration format and expands it
// into a stream of concrete parameter dictionaries, one per test variant.
//
// The format declares groups of mutually exclusive variants; the expander
// yields their Cartesian product, pruned by filters and dependency
// declarations, with assignment operators replayed and ${name} references
// resolved per emitted dictionary. Parsing and expansion are split: a parsed
// Config is immutable and every Variants call restarts an independent
// expansion over it.
package cartconf

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"github.com/pevogam/cartconf/internal/expand"
	"github.com/pevogam/cartconf/internal/filter"
	"github.com/pevogam/cartconf/internal/parser"
	"github.com/pevogam/cartconf/pkg/params"
)

// Variant is one fully expanded configuration: the dotted variant name, the
// short name with short_name_only dimensions omitted, and the parameter
// dictionary.
type Variant struct {
	Name      string
	ShortName string
	Params    *params.Params
}

// Option configures parsing and expansion.
type Option func(*options) error

type options struct {
	logger      *slog.Logger
	loader      Loader
	fileName    string
	assignments []expand.KV
	filters     []expand.ExtraFilter
}

// WithLogger routes parser and expander debug logging to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithLoader supplies the loader used to resolve include targets.
func WithLoader(loader Loader) Option {
	return func(o *options) error {
		o.loader = loader
		return nil
	}
}

// WithAssignments applies extra "key=value" assignments at the outermost
// scope, before any file-declared statement. They participate in lazy/eager
// resolution like file-declared assignments.
func WithAssignments(assignments ...string) Option {
	return func(o *options) error {
		for _, a := range assignments {
			key, value, found := strings.Cut(a, "=")
			if !found || key == "" {
				return oops.Code(parser.CodeParseError).
					With("assignment", a).
					Errorf("extra assignment %q is not of the form key=value", a)
			}
			o.assignments = append(o.assignments, expand.KV{Key: key, Value: value})
		}
		return nil
	}
}

// WithOnly retains only variants whose path matches each expression.
func WithOnly(exprs ...string) Option {
	return withFilters(parser.Only, exprs)
}

// WithNo rejects variants whose path matches any expression.
func WithNo(exprs ...string) Option {
	return withFilters(parser.No, exprs)
}

func withFilters(kind parser.FilterKind, exprs []string) Option {
	return func(o *options) error {
		for _, text := range exprs {
			expr, err := filter.Parse(text)
			if err != nil {
				return err
			}
			o.filters = append(o.filters, expand.ExtraFilter{Kind: kind, Expr: expr, Text: text})
		}
		return nil
	}
}

// withFileName records the source filename for the _name_map_file keys.
func withFileName(name string) Option {
	return func(o *options) error {
		o.fileName = name
		return nil
	}
}

// Config is a parsed configuration, ready for repeated expansion.
type Config struct {
	tree *parser.Block
	opts options
}

// ParseString parses configuration source given directly as text.
func ParseString(src string, opts ...Option) (*Config, error) {
	return parse(src, opts)
}

// ParseFile parses the configuration file at path. Includes resolve
// relative to the file's directory unless WithLoader overrides the loader.
func ParseFile(path string, opts ...Option) (*Config, error) {
	loader := FileLoader{Root: dirOf(path)}
	data, err := loader.Load(baseOf(path))
	if err != nil {
		return nil, oops.Code(parser.CodeIncludeError).Wrapf(err, "reading configuration %q", path)
	}
	opts = append([]Option{WithLoader(loader), withFileName(path)}, opts...)
	return parse(string(data), opts)
}

// ParseNamed loads the root document by name through loader and parses it.
func ParseNamed(loader Loader, target string, opts ...Option) (*Config, error) {
	data, err := loader.Load(target)
	if err != nil {
		return nil, oops.Code(parser.CodeIncludeError).Wrapf(err, "loading configuration %q", target)
	}
	opts = append([]Option{WithLoader(loader), withFileName(target)}, opts...)
	return parse(string(data), opts)
}

func parse(src string, opts []Option) (*Config, error) {
	var o options
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	var loader parser.Loader
	if o.loader != nil {
		loader = o.loader
	}
	tree, err := parser.New(loader, o.logger).Parse(src)
	if err != nil {
		return nil, err
	}
	return &Config{tree: tree, opts: o}, nil
}

// Variants returns the lazy sequence of (name, short_name, dict) triples.
// The sequence is restartable: each call re-runs the expansion from scratch
// over the shared read-only tree. On failure it yields one (nil, err) pair
// and stops; per-variant errors abort the iteration rather than skipping
// silently.
func (c *Config) Variants() iter.Seq2[*Variant, error] {
	return func(yield func(*Variant, error) bool) {
		for v, err := range c.expander().All() {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(&Variant{Name: v.Name, ShortName: v.ShortName, Params: v.Params}, nil) {
				return
			}
		}
	}
}

// Dicts returns the same sequence as Variants, reduced to the parameter
// dictionaries.
func (c *Config) Dicts() iter.Seq2[*params.Params, error] {
	return func(yield func(*params.Params, error) bool) {
		for v, err := range c.Variants() {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(v.Params, nil) {
				return
			}
		}
	}
}

// Collect materializes the whole variant sequence.
func (c *Config) Collect() ([]*Variant, error) {
	var out []*Variant
	for v, err := range c.Variants() {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Config) expander() *expand.Expander {
	return expand.New(c.tree, expand.Options{
		Logger:      c.opts.logger,
		FileName:    c.opts.fileName,
		Assignments: c.opts.assignments,
		Filters:     c.opts.filters,
	})
}

func dirOf(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[:i]
	}
	return "."
}

func baseOf(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
