// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

package expand

import (
	"regexp"
	"strings"

	"github.com/pevogam/cartconf/pkg/params"
)

// maxInterpPasses bounds the fixed-point iteration over nested references.
const maxInterpPasses = 32

// refPattern matches a ${name} reference.
var refPattern = regexp.MustCompile(`\$\{([A-Za-z0-9][A-Za-z0-9_-]*)\}`)

// interpolate resolves every ${name} reference in the dict's values until a
// fixed point. suffixes records the lexical suffix of each assigned key:
// references inside suffixed values prefer the suffixed sibling key. An
// unresolvable reference or a value that never converges is an error; every
// surviving dict is free of ${...} tokens.
func interpolate(pm *params.Params, suffixes map[string]string) error {
	for pass := 0; pass < maxInterpPasses; pass++ {
		changed := false
		for _, key := range pm.Keys() {
			value, _ := pm.Get(key)
			if !strings.Contains(value, "${") {
				continue
			}
			var resolveErr error
			sfx := suffixes[key]
			next := refPattern.ReplaceAllStringFunc(value, func(m string) string {
				ref := m[2 : len(m)-1]
				if sfx != "" {
					if v, ok := pm.Get(ref + sfx); ok {
						return v
					}
				}
				if v, ok := pm.Get(ref); ok {
					return v
				}
				if resolveErr == nil {
					resolveErr = ErrUnresolvedRef(key, ref)
				}
				return m
			})
			if resolveErr != nil {
				return resolveErr
			}
			if next != value {
				pm.Set(key, next)
				changed = true
			}
		}
		if !changed {
			// Fixed point: a self-referencing value can be stable while
			// still holding its own ${...} token, which counts as a cycle.
			return findCycle(pm)
		}
	}
	return findCycle(pm)
}

func findCycle(pm *params.Params) error {
	var err error
	pm.Each(func(key, value string) bool {
		if refPattern.MatchString(value) {
			err = ErrInterpCycle(key, truncateValue(value))
			return false
		}
		return true
	})
	return err
}

func truncateValue(v string) string {
	const max = 120
	if len(v) > max {
		return v[:max] + "..."
	}
	return v
}
