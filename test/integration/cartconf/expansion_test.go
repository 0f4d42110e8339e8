// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cartconf Contributors

//go:build integration

package cartconf_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/pevogam/cartconf/pkg/cartconf"
)

func expand(src string, opts ...cartconf.Option) []*cartconf.Variant {
	c, err := cartconf.ParseString(src, opts...)
	Expect(err).NotTo(HaveOccurred())
	variants, err := c.Collect()
	Expect(err).NotTo(HaveOccurred())
	return variants
}

func variantNames(variants []*cartconf.Variant) []string {
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = v.Name
	}
	return names
}

var _ = Describe("Expansion", func() {
	It("yields nothing for an empty source", func() {
		Expect(expand("")).To(BeEmpty())
	})

	It("yields a single dict for a plain assignment", func() {
		variants := expand("x = 1\n")
		Expect(variants).To(HaveLen(1))
		v := variants[0]
		Expect(v.Name).To(Equal(""))
		Expect(v.ShortName).To(Equal(""))
		Expect(v.Params.GetOr("dep", "")).To(Equal("[]"))
		Expect(v.Params.GetOr("x", "")).To(Equal("1"))
	})

	It("emits the two-dimensional product in declaration order", func() {
		src := `variants:
    - a:
    - b:
variants:
    - 1:
    - 2:
`
		Expect(variantNames(expand(src))).To(Equal([]string{"1.a", "2.a", "1.b", "2.b"}))
	})

	It("prunes with only-filters", func() {
		src := `variants:
    - a:
        x = va
    - b:
        x = vb
only a
`
		variants := expand(src)
		Expect(variants).To(HaveLen(1))
		Expect(variants[0].Name).To(Equal("a"))
		Expect(variants[0].Params.GetOr("x", "")).To(Equal("va"))
	})

	It("resolves interpolation against the final dict", func() {
		src := `word = abc
variants:
    - a:
        x = va
        word = ${x}
    - b:
        x = vb
variants:
    - 1:
        y = w1
    - 2:
        y = w2
        word = ${y}
`
		variants := expand(src, cartconf.WithOnly("a", "1"))
		Expect(variants).To(HaveLen(1))
		v := variants[0]
		Expect(v.Name).To(Equal("1.a"))
		Expect(v.Params.GetOr("x", "")).To(Equal("va"))
		Expect(v.Params.GetOr("y", "")).To(Equal("w1"))
		Expect(v.Params.GetOr("word", "")).To(Equal("va"))
	})

	It("joins variant groups element-wise", func() {
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
		variants := expand(src)
		Expect(variants).To(HaveLen(2))
		for _, v := range variants {
			Expect(v.Params.GetOr("key_1", "")).To(Equal("v1"))
			Expect(v.Params.GetOr("key_2", "")).To(Equal("v2"))
		}
		Expect(variantNames(variants)).To(Equal([]string{
			"alpha.one.alpha.two",
			"beta.one.beta.two",
		}))
	})
})

var _ = Describe("Universal properties", func() {
	src := `base = ${suffix}-img
variants arch:
    - x86_64:
        suffix = amd
    - aarch64:
        suffix = arm
variants:
    - smp2:
        smp = 2
    - smp4:
        smp = 4
variants:
    - virtio:
    - ide:
`

	It("emits the full product when unfiltered", func() {
		Expect(expand(src)).To(HaveLen(2 * 2 * 2))
	})

	It("applies filters idempotently", func() {
		once := expand(src, cartconf.WithOnly("virtio"))
		twice := expand(src, cartconf.WithOnly("virtio", "virtio"))
		Expect(variantNames(once)).To(Equal(variantNames(twice)))
	})

	It("applies filters commutatively", func() {
		ab := expand(src, cartconf.WithOnly("virtio"), cartconf.WithNo("smp2"))
		ba := expand(src, cartconf.WithNo("smp2"), cartconf.WithOnly("virtio"))
		Expect(variantNames(ab)).To(Equal(variantNames(ba)))
	})

	It("is deterministic across runs", func() {
		c, err := cartconf.ParseString(src)
		Expect(err).NotTo(HaveOccurred())
		first, err := c.Collect()
		Expect(err).NotTo(HaveOccurred())
		second, err := c.Collect()
		Expect(err).NotTo(HaveOccurred())
		Expect(first).To(HaveLen(len(second)))
		for i := range first {
			Expect(first[i].Name).To(Equal(second[i].Name))
			Expect(first[i].Params.Keys()).To(Equal(second[i].Params.Keys()))
			Expect(first[i].Params.Map()).To(Equal(second[i].Params.Map()))
		}
	})

	It("leaves no interpolation tokens in any value", func() {
		for _, v := range expand(src) {
			v.Params.Each(func(_, value string) bool {
				Expect(value).NotTo(ContainSubstring("${"))
				return true
			})
		}
	})

	It("treats a single-child unnamed variants block as transparent", func() {
		wrapped := `variants:
    - wrapper:
        x = 1
`
		plain := "x = 1\n"
		Expect(variantNames(expand(wrapped))).To(Equal(variantNames(expand(plain))))
		Expect(expand(wrapped)[0].Params.Map()).To(Equal(expand(plain)[0].Params.Map()))
	})
})
