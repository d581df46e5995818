// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedstat

import (
	"fmt"
	"io"
	"strings"

	"github.com/rtsched/schedstat/internal/texttab"
	"github.com/rtsched/schedstat/schedproc"
)

// FormatText writes t as an aligned text table, followed by a note of
// unassigned records and any warnings.
func FormatText(w io.Writer, t *Table) error {
	var tab texttab.Table
	tab.Row()
	for _, h := range t.Header() {
		tab.Cell(h)
	}
	tab.Rule('-')
	nattrs := len(t.Fields)
	for _, r := range t.Rows {
		tab.Row()
		for i, s := range r.Strings() {
			if i >= nattrs && i < nattrs+len(r.Values) {
				tab.Cell(s, texttab.Right)
			} else {
				tab.Cell(s)
			}
		}
	}
	if err := tab.Format(w); err != nil {
		return err
	}
	return formatNotes(w, t)
}

func formatNotes(w io.Writer, t *Table) error {
	var b strings.Builder
	if t.Unassigned > 0 {
		fmt.Fprintf(&b, "\n%d records lack a grouping attribute and were not counted\n", t.Unassigned)
	}
	for _, err := range t.Warnings {
		fmt.Fprintf(&b, "warning: %v\n", err)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatBest writes, for each partition of g by field, the group with
// the lowest value of each metric.
func FormatBest(w io.Writer, g *schedproc.Groups, field string, metrics []string) error {
	f := g.Projection.Field(field)
	if f == nil {
		return fmt.Errorf("cannot partition by %q: not a grouping attribute", field)
	}
	bests := make([]map[string]schedproc.Key, len(metrics))
	all := make(map[string]schedproc.Key)
	for i, m := range metrics {
		best, err := BestPerPartition(g, field, m)
		if err != nil {
			return err
		}
		bests[i] = best
		for p, k := range best {
			all[p] = k
		}
	}
	var tab texttab.Table
	for _, part := range Partitions(g, field, all) {
		tab.Row().Span(3, field+": "+part)
		for i, m := range metrics {
			k, ok := bests[i][part]
			if !ok {
				continue
			}
			label := k.StringWithout(f)
			if label == "" {
				label = part
			}
			tab.Row().Cell("  lowest "+m+":").Cell(label).Cell("("+g.Stats[k].Derived(m).String()+")", texttab.Right)
		}
	}
	return tab.Format(w)
}

// FormatDeltas writes the result of Improvement as a table.
func FormatDeltas(w io.Writer, deltas []Delta, metric string) error {
	var tab texttab.Table
	tab.Row().Cell("group").Cell("off " + metric).Cell("on " + metric).Cell("improvement").Cell("")
	tab.Rule('-')
	for _, d := range deltas {
		note := ""
		if c := d.Comparison; c != nil {
			note = c.String()
			if !c.Significant() {
				note += " (not significant)"
			}
		}
		imp := d.Improvement.String()
		if d.Improvement.Valid {
			imp = fmt.Sprintf("%+.2f%%", d.Improvement.Value)
		}
		tab.Row().Cell(d.Rest).
			Cell(d.Old.String(), texttab.Right).
			Cell(d.New.String(), texttab.Right).
			Cell(imp, texttab.Right).
			Cell(note)
	}
	return tab.Format(w)
}
