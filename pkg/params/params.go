// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

// Package params provides the insertion-ordered string dictionary emitted for
// every expanded variant. Iteration order is the order in which keys were
// first assigned; re-assigning an existing key keeps its original position.
package params

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Params is an ordered mapping from parameter names to string values.
// The zero value is not usable; construct with New.
type Params struct {
	m *orderedmap.OrderedMap[string, string]
}

// New returns an empty parameter dictionary.
func New() *Params {
	return &Params{m: orderedmap.New[string, string]()}
}

// Set assigns value to key. A key assigned for the first time is appended to
// the iteration order; an existing key keeps its position.
func (p *Params) Set(key, value string) {
	p.m.Set(key, value)
}

// Get returns the value for key and whether it is present.
func (p *Params) Get(key string) (string, bool) {
	return p.m.Get(key)
}

// GetOr returns the value for key, or def when absent.
func (p *Params) GetOr(key, def string) string {
	if v, ok := p.m.Get(key); ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (p *Params) Has(key string) bool {
	_, ok := p.m.Get(key)
	return ok
}

// Delete removes key. Removing an absent key is a no-op.
func (p *Params) Delete(key string) {
	p.m.Delete(key)
}

// Len returns the number of keys.
func (p *Params) Len() int {
	return p.m.Len()
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	keys := make([]string, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every key/value pair in insertion order. Returning false
// from fn stops the iteration.
func (p *Params) Each(fn func(key, value string) bool) {
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns an independent copy preserving insertion order.
func (p *Params) Clone() *Params {
	c := New()
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		c.m.Set(pair.Key, pair.Value)
	}
	return c
}

// Merge assigns every pair of other into p in other's insertion order,
// overwriting values for keys p already holds.
func (p *Params) Merge(other *Params) {
	for pair := other.m.Oldest(); pair != nil; pair = pair.Next() {
		p.m.Set(pair.Key, pair.Value)
	}
}

// String renders the dictionary as "k1=v1 k2=v2" in insertion order.
func (p *Params) String() string {
	var b strings.Builder
	first := true
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(pair.Key)
		b.WriteByte('=')
		b.WriteString(pair.Value)
	}
	return b.String()
}

// Map returns a plain map copy of the dictionary. Order is lost; use Each or
// Keys when order matters.
func (p *Params) Map() map[string]string {
	m := make(map[string]string, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value
	}
	return m
}
