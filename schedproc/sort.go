// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedproc

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Less reports whether k comes before o in the canonical order of
// their projection: field by field, each field compared by its Order.
// It panics if k and o have different Projections.
func (k Key) Less(o Key) bool {
	if k.k.proj != o.k.proj {
		panic("cannot compare Keys from different Projections")
	}
	return less(k.k.proj.fields, k.k.vals, o.k.vals)
}

func less(fields []*Field, a, b []string) bool {
	for _, f := range fields {
		aa, bb := a[f.idx], b[f.idx]
		if aa == bb {
			continue
		}
		if c := f.cmp(aa, bb); c != 0 {
			return c < 0
		}
		// Equal under the field's order but different strings,
		// such as "Moderate" and "Medium". Keys are only == if
		// their strings are ==, so break the tie on the strings.
		return aa < bb
	}
	return false
}

// SortKeys sorts keys into canonical order. All Keys must have the
// same Projection.
func SortKeys(keys []Key) {
	if len(keys) == 0 {
		return
	}
	p := keys[0].Projection()
	for _, k := range keys[1:] {
		if k.Projection() != p {
			panic("Keys must all have the same Projection")
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return less(p.fields, keys[i].k.vals, keys[j].k.vals)
	})
}

// Compare compares two values of f by its order. It returns <0, 0 or
// >0, and 0 only if a == b.
func (f *Field) Compare(a, b string) int {
	if a == b {
		return 0
	}
	if c := f.cmp(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// builtinOrders are the comparison functions a Field may use. Each
// returns <0 if a < b, >0 if a > b, or 0 if a and b are unordered.
var builtinOrders = map[string]func(a, b string) int{
	"alpha": strings.Compare,
	"num": func(a, b string) int {
		aa, erra := strconv.ParseFloat(a, 64)
		bb, errb := strconv.ParseFloat(b, 64)
		if erra == nil && errb == nil {
			// Sort numerically, and put NaNs after other
			// values.
			if aa < bb || (!math.IsNaN(aa) && math.IsNaN(bb)) {
				return -1
			}
			if aa > bb || (math.IsNaN(aa) && !math.IsNaN(bb)) {
				return 1
			}
			return 0
		}
		if erra != nil && errb != nil {
			return strings.Compare(a, b)
		}
		// Put numbers before non-numbers.
		if erra == nil {
			return -1
		}
		return 1
	},
	"severity": func(a, b string) int {
		ra, rb := WorkloadRank(a), WorkloadRank(b)
		if ra != rb {
			return ra - rb
		}
		if ra == unknownWorkload {
			return strings.Compare(strings.ToLower(a), strings.ToLower(b))
		}
		return 0
	},
	"toggle": func(a, b string) int {
		return toggleRank(a) - toggleRank(b)
	},
}

const unknownWorkload = 4

// WorkloadRank returns the severity of a workload tier: Light 0,
// Moderate and Medium 1, Heavy 2, Overload 3. Case is ignored. Unknown
// names rank after every known tier.
func WorkloadRank(name string) int {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return 0
	case "moderate", "medium":
		return 1
	case "heavy":
		return 2
	case "overload":
		return 3
	}
	return unknownWorkload
}

// toggleRank orders OFF before ON, and both before anything else.
func toggleRank(v string) int {
	switch strings.ToUpper(v) {
	case "OFF", "FALSE", "0":
		return 0
	case "ON", "TRUE", "1":
		return 1
	}
	return 2
}
