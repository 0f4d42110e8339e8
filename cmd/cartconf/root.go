// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pevogam/cartconf/internal/config"
	"github.com/pevogam/cartconf/internal/logging"
	"github.com/pevogam/cartconf/pkg/cartconf"
)

// Global flags available to the root command.
var (
	configFile string
	contents   bool
)

// NewRootCmd creates the root command for the cartconf CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cartconf <config> [key=value | only EXPR | no EXPR]...",
		Short: "cartconf - Cartesian configuration expander",
		Long: `cartconf parses a Cartesian configuration file and prints the
expanded stream of test variant dictionaries. Trailing arguments add
assignments (key=value) and filters (only EXPR, no EXPR) at the
outermost scope.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "CLI config file path")
	cmd.Flags().BoolVarP(&contents, "contents", "c", false,
		"treat the first argument as configuration text rather than a path")
	cmd.Flags().BoolP("verbose", "v", false, "print dict contents and debug logs")
	cmd.Flags().String("output", "text", "output format (text or yaml)")
	cmd.Flags().String("log-format", "text", "log format (json or text)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := logging.Setup("cartconf", version+"+"+commit, cfg.LogFormat, level, cmd.ErrOrStderr())

	opts := []cartconf.Option{cartconf.WithLogger(logger)}
	opts, err = appendExtras(opts, cfg, args[1:])
	if err != nil {
		return err
	}

	var conf *cartconf.Config
	if contents {
		conf, err = cartconf.ParseString(args[0], opts...)
	} else {
		conf, err = cartconf.ParseFile(args[0], opts...)
	}
	if err != nil {
		return err
	}

	if cfg.Output == "yaml" {
		return writeYAML(cmd.OutOrStdout(), conf)
	}
	return writeText(cmd.OutOrStdout(), conf, cfg.Verbose)
}

// appendExtras turns config-file settings and trailing CLI arguments into
// parse options.
func appendExtras(opts []cartconf.Option, cfg *config.Config, rest []string) ([]cartconf.Option, error) {
	if len(cfg.Assignments) > 0 {
		opts = append(opts, cartconf.WithAssignments(cfg.Assignments...))
	}
	for _, f := range cfg.Filters {
		kw, expr, found := strings.Cut(strings.TrimSpace(f), " ")
		if !found {
			return nil, oops.Code(config.CodeConfigError).
				With("filter", f).
				Errorf("config filter %q must be 'only EXPR' or 'no EXPR'", f)
		}
		opt, err := filterOption(kw, strings.TrimSpace(expr))
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}

	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch {
		case arg == "only" || arg == "no":
			// The keyword consumes every following expression up to the next
			// keyword or assignment, so "only a 1" adds two filters.
			exprs := 0
			for i+1 < len(rest) && rest[i+1] != "only" && rest[i+1] != "no" &&
				!isAssignment(rest[i+1]) {
				i++
				exprs++
				opt, err := filterOption(arg, rest[i])
				if err != nil {
					return nil, err
				}
				opts = append(opts, opt)
			}
			if exprs == 0 {
				return nil, oops.Code(config.CodeConfigError).
					Errorf("%s requires a filter expression", arg)
			}
		case isAssignment(arg):
			opts = append(opts, cartconf.WithAssignments(arg))
		default:
			return nil, oops.Code(config.CodeConfigError).
				With("argument", arg).
				Errorf("unrecognized argument %q", arg)
		}
	}
	return opts, nil
}

// isAssignment reports whether arg is a key=value token: an identifier-shaped
// key before the first "=". Filter predicates like "(fmt=raw)" are not
// assignments.
func isAssignment(arg string) bool {
	idx := strings.Index(arg, "=")
	if idx <= 0 {
		return false
	}
	for _, ch := range arg[:idx] {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9',
			ch == '_', ch == '-':
		default:
			return false
		}
	}
	return true
}

func filterOption(kw, expr string) (cartconf.Option, error) {
	switch kw {
	case "only":
		return cartconf.WithOnly(expr), nil
	case "no":
		return cartconf.WithNo(expr), nil
	}
	return nil, oops.Code(config.CodeConfigError).
		With("keyword", kw).
		Errorf("unknown filter keyword %q", kw)
}

// writeText prints the numbered dict listing, one line per variant.
func writeText(w io.Writer, conf *cartconf.Config, verbose bool) error {
	i := 0
	for v, err := range conf.Variants() {
		if err != nil {
			return err
		}
		i++
		fmt.Fprintf(w, "dict %4d:  %s\n", i, v.Name)
		if verbose {
			v.Params.Each(func(key, value string) bool {
				fmt.Fprintf(w, "    %s = %s\n", key, value)
				return true
			})
		}
	}
	return nil
}

// writeYAML emits the dict stream as a YAML sequence of mappings, keys in
// insertion order.
func writeYAML(w io.Writer, conf *cartconf.Config) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for v, err := range conf.Variants() {
		if err != nil {
			return err
		}
		m := &yaml.Node{Kind: yaml.MappingNode}
		v.Params.Each(func(key, value string) bool {
			m.Content = append(m.Content, scalarNode(key), scalarNode(value))
			return true
		})
		seq.Content = append(seq.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return oops.Wrapf(err, "encoding yaml output")
	}
	return enc.Close()
}

func scalarNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: s}
}
