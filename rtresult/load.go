// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtresult

import (
	"fmt"
	"sort"
	"strings"
)

// A Layout names the columns a kind of result file must carry.
type Layout struct {
	Name string

	// Required lists canonical column names. A row missing one of
	// these, or carrying an unparseable value in one, is malformed.
	Required []string

	// derive fills fields computed from other columns when the file
	// does not carry them.
	derive func(r *ResultRow, have map[*Column]bool)
}

var (
	// ActivationLayout is for files with one row per task
	// activation that carry their own miss rate.
	ActivationLayout = &Layout{
		Name:     "activation",
		Required: []string{"scheduler", "workload", "response_time", "deadline_met", "miss_rate"},
	}

	// SummaryLayout is for files with one pre-aggregated row per
	// scenario, such as summary.csv.
	SummaryLayout = &Layout{
		Name:     "summary",
		Required: []string{"scheduler", "workload", "response_time", "miss_rate"},
	}

	// HarnessLayout is for the raw per-activation exports of the
	// harness. Scheduler and workload usually come from file name
	// labels, and a missing miss rate is derived from deadline_met:
	// 0 for a met deadline, 100 for a miss.
	HarnessLayout = &Layout{
		Name:     "harness",
		Required: []string{"scheduler", "workload", "response_time", "deadline_met"},
		derive: func(r *ResultRow, have map[*Column]bool) {
			if !have[Lookup("miss_rate")] && !r.DeadlineMet {
				r.MissRatePercent = 100
			}
		},
	}
)

// Layouts lists the known layouts by name.
var Layouts = map[string]*Layout{
	ActivationLayout.Name: ActivationLayout,
	SummaryLayout.Name:    SummaryLayout,
	HarnessLayout.Name:    HarnessLayout,
}

// ParseLayout returns the layout with the given name.
func ParseLayout(name string) (*Layout, error) {
	if l, ok := Layouts[name]; ok {
		return l, nil
	}
	names := make([]string, 0, len(Layouts))
	for n := range Layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("unknown layout %q (want one of %s)", name, strings.Join(names, ", "))
}

func (l *Layout) required(c *Column) bool {
	for _, name := range l.Required {
		if name == c.Name {
			return true
		}
	}
	return false
}

// A MalformedRowError reports a row whose required column is missing or
// unparseable.
type MalformedRowError struct {
	File   string
	Line   int
	Column string
	Value  string
	Msg    string
}

func (e *MalformedRowError) Pos() (string, int) {
	return e.File, e.Line
}

func (e *MalformedRowError) Error() string {
	pos := ""
	if e.File != "" || e.Line != 0 {
		pos = fmt.Sprintf("%s:%d: ", e.File, e.Line)
	}
	if e.Value != "" {
		return fmt.Sprintf("%scolumn %s: %s %q", pos, e.Column, e.Msg, e.Value)
	}
	return fmt.Sprintf("%scolumn %s: %s", pos, e.Column, e.Msg)
}

// A Loader converts header-keyed rows to ResultRows.
//
// The zero Loader uses ActivationLayout.
type Loader struct {
	Layout *Layout

	// File names the source in errors.
	File string
}

// Load converts a row with ActivationLayout.
func Load(row map[string]string) (ResultRow, error) {
	var l Loader
	return l.Load(row)
}

// Load converts one row. Keys are header names; unknown keys are
// ignored. It fails with a *MalformedRowError only when a required
// column is absent, empty or unparseable; optional columns take their
// default from Columns.
func (l *Loader) Load(row map[string]string) (ResultRow, error) {
	return l.load(row, 0)
}

func (l *Loader) load(row map[string]string, line int) (ResultRow, error) {
	layout := l.Layout
	if layout == nil {
		layout = ActivationLayout
	}

	// Resolve header names to columns. Keys are visited in sorted
	// order so a column given under two names resolves the same way
	// every time.
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cells := make(map[*Column]string)
	headers := make(map[*Column]string)
	for _, k := range keys {
		c := Lookup(k)
		if c == nil {
			continue
		}
		if _, dup := cells[c]; dup && strings.TrimSpace(cells[c]) != "" {
			continue
		}
		cells[c] = row[k]
		headers[c] = strings.ToLower(strings.TrimSpace(k))
	}

	r := ResultRow{File: l.File, Line: line}
	have := make(map[*Column]bool)
	for _, c := range Columns {
		req := layout.required(c)
		cell, ok := cells[c]
		if !ok || strings.TrimSpace(cell) == "" {
			if req {
				return ResultRow{}, &MalformedRowError{l.File, line, c.Name, "", "missing required column"}
			}
			v, _ := c.Kind.parse(c.Default)
			c.set(&r, v)
			continue
		}
		v, ok := c.Kind.parse(cell)
		if !ok {
			if req {
				return ResultRow{}, &MalformedRowError{l.File, line, c.Name, cell, "malformed value"}
			}
			v, _ = c.Kind.parse(c.Default)
			c.set(&r, v)
			continue
		}
		if s, ok := c.Scale[headers[c]]; ok {
			v.f *= s
		}
		c.set(&r, v)
		have[c] = true
		r.present |= c.flag
	}
	if layout.derive != nil {
		layout.derive(&r, have)
	}
	return r, nil
}
