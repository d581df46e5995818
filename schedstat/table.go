// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedstat

import (
	"github.com/rtsched/schedstat/schedmath"
	"github.com/rtsched/schedstat/schedproc"
)

// DefaultColumns are the statistics reported for each group when none
// are requested. Grouped by scheduler and workload, they give the
// comparative report columns scheduler, workload, avg_response_ms,
// jitter_ms and miss_rate_percent.
var DefaultColumns = []string{"avg_response_ms", "jitter_ms", "miss_rate_percent", "normalized_miss_rate"}

// A Table is a report over a set of groups: one row per group, one
// column per grouping attribute, then one per statistic and finally
// the group's efficiency rating.
type Table struct {
	// Fields are the grouping attributes.
	Fields []string

	// Columns are the statistic selectors, as accepted by
	// schedproc.Stats.Value.
	Columns []string

	Rows []*Row

	// Unassigned counts records that belonged to no group.
	Unassigned int

	Warnings []error
}

// A Row is one group of a Table.
type Row struct {
	Key schedproc.Key

	// Attrs are the key's values, in Fields order.
	Attrs []string

	// Values are the statistics, in Columns order.
	Values []schedmath.Derived

	Rating schedmath.Rating
}

// NewTable builds a Table over the groups of g listed in keys, in that
// order. If keys is nil, every group is listed in canonical order. If
// columns is empty, DefaultColumns are used.
func NewTable(g *schedproc.Groups, keys []schedproc.Key, columns []string) *Table {
	if keys == nil {
		keys = g.Keys
	}
	if len(columns) == 0 {
		columns = DefaultColumns
	}
	t := &Table{Columns: columns, Unassigned: g.Unassigned, Warnings: g.Warnings()}
	for _, f := range g.Projection.Fields() {
		t.Fields = append(t.Fields, f.Name)
	}
	for _, k := range keys {
		st := g.Stats[k]
		row := &Row{Key: k, Attrs: k.Values(), Rating: st.Rating}
		for _, c := range columns {
			row.Values = append(row.Values, st.Derived(c))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Header returns the column names of t, ending with "rating".
func (t *Table) Header() []string {
	h := append([]string(nil), t.Fields...)
	h = append(h, t.Columns...)
	return append(h, "rating")
}

// Strings returns the cells of r in Header order.
func (r *Row) Strings() []string {
	s := append([]string(nil), r.Attrs...)
	for _, v := range r.Values {
		s = append(s, v.String())
	}
	return append(s, r.Rating.String())
}
