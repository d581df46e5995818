// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schedstat compares aggregated scheduler results: it ranks
// groups by a metric, finds the best group in each partition, measures
// the effect of toggling a configuration attribute, and formats the
// results as text, CSV, JSON or HTML.
//
// All orderings are deterministic. Ties are broken by the canonical
// order of group keys, never by the order results were read in.
package schedstat

import (
	"fmt"
	"sort"

	"github.com/rtsched/schedstat/schedmath"
	"github.com/rtsched/schedstat/schedproc"
)

// Direction is the order Rank sorts metric values in.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection parses "asc" or "desc".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "asc", "ascending", "":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return 0, fmt.Errorf("unknown direction %q, want asc or desc", s)
}

// Rank returns the keys of g ordered by metric. Groups where metric is
// undefined follow all groups where it is defined, in key order.
func Rank(g *schedproc.Groups, metric string, dir Direction) []schedproc.Key {
	keys := append([]schedproc.Key(nil), g.Keys...)
	vals := make(map[schedproc.Key]schedmath.Derived, len(keys))
	for _, k := range keys {
		vals[k] = g.Stats[k].Derived(metric)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := vals[keys[i]], vals[keys[j]]
		if a.Valid != b.Valid {
			return a.Valid
		}
		if a.Valid && a.Value != b.Value {
			if dir == Descending {
				return a.Value > b.Value
			}
			return a.Value < b.Value
		}
		return keys[i].Less(keys[j])
	})
	return keys
}

// BestPerPartition partitions the groups of g by the value of field and
// returns, for each partition, the group with the smallest value of
// metric. Partitions where metric is undefined for every group are
// omitted.
func BestPerPartition(g *schedproc.Groups, field, metric string) (map[string]schedproc.Key, error) {
	f := g.Projection.Field(field)
	if f == nil {
		return nil, fmt.Errorf("cannot partition by %q: not a grouping attribute", field)
	}
	best := make(map[string]schedproc.Key)
	// Rank puts the minimum of each partition first.
	for _, k := range Rank(g, metric, Ascending) {
		if !g.Stats[k].Derived(metric).Valid {
			break
		}
		part := k.Get(f)
		if _, ok := best[part]; !ok {
			best[part] = k
		}
	}
	return best, nil
}

// Partitions returns the keys of a BestPerPartition result in the
// canonical order of field.
func Partitions(g *schedproc.Groups, field string, best map[string]schedproc.Key) []string {
	f := g.Projection.Field(field)
	parts := make([]string, 0, len(best))
	for p := range best {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return f.Compare(parts[i], parts[j]) < 0 })
	return parts
}

// A Delta is the effect of switching one attribute from an Off value
// to an On value with every other attribute held fixed.
type Delta struct {
	// Rest is the rest of the key, without the toggled attribute.
	Rest string

	Off, On schedproc.Key

	Old, New schedmath.Derived

	// Improvement is the percent reduction from Old to New.
	Improvement schedmath.Derived

	// Comparison tests whether the metric's samples differ. It is
	// nil if either group has no samples of the metric.
	Comparison *schedmath.Comparison
}

// Improvement pairs each group whose toggle attribute is off with the
// group that differs only in having it on, and reports how much metric
// improves. Groups without a partner are skipped. Deltas are in the
// canonical order of the Off keys.
func Improvement(g *schedproc.Groups, toggle, off, on, metric string) ([]Delta, error) {
	f := g.Projection.Field(toggle)
	if f == nil {
		return nil, fmt.Errorf("cannot toggle %q: not a grouping attribute", toggle)
	}
	var deltas []Delta
	for _, k := range g.Keys {
		if k.Get(f) != off {
			continue
		}
		vals := k.Values()
		vals[fieldIndex(g.Projection, f)] = on
		onKey := g.Projection.KeyOf(vals...)
		onStats, ok := g.Stats[onKey]
		if !ok {
			continue
		}
		offStats := g.Stats[k]
		d := Delta{
			Rest: k.StringWithout(f),
			Off:  k,
			On:   onKey,
			Old:  offStats.Derived(metric),
			New:  onStats.Derived(metric),
		}
		switch {
		case !d.Old.Valid:
			d.Improvement = schedmath.Undefined(d.Old.Reason)
		case !d.New.Valid:
			d.Improvement = schedmath.Undefined(d.New.Reason)
		default:
			d.Improvement = schedmath.Improvement(d.Old.Value, d.New.Value)
		}
		name := schedproc.MetricName(metric)
		s1, s2 := offStats.Samples[name], onStats.Samples[name]
		if s1 != nil && s2 != nil && len(s1.Values) > 0 && len(s2.Values) > 0 {
			c := schedmath.Compare(s1, s2)
			d.Comparison = &c
		}
		deltas = append(deltas, d)
	}
	return deltas, nil
}

func fieldIndex(p *schedproc.Projection, f *schedproc.Field) int {
	for i, pf := range p.Fields() {
		if pf == f {
			return i
		}
	}
	panic("field not in projection")
}
