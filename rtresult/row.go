// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rtresult loads the tabular result files of a scheduler
// evaluation harness into typed rows.
//
// Harness versions disagree on column names and on which columns they
// write at all, so columns are found by name through a fixed alias
// table, never by position. Every optional column has an explicit
// default, listed in Columns, applied when the column is absent or its
// value cannot be parsed.
package rtresult

import (
	"math"
	"strconv"
	"strings"
)

// A ResultRow is one observation: a single task activation, or a
// pre-aggregated scenario summary.
//
// Rows are immutable once loaded.
type ResultRow struct {
	Scheduler string
	Workload  string

	// DynamicWeighting is "ON", "OFF" or "" if unknown.
	DynamicWeighting string

	Threads    int
	TaskID     int
	Activation int

	// Type and Timestamp are the record type and timestamp columns
	// of raw harness exports.
	Type      string
	Timestamp string

	ResponseMs  float64
	ExecMs      float64
	DeadlineMet bool
	LatenessMs  float64
	PeriodMs    float64
	DeadlineMs  float64
	Weight      float64
	JitterMs    float64

	ContextSwitches int
	Preemptions     int
	CSPerActivation float64
	OverheadPercent float64

	Utilization        float64
	MissRatePercent    float64
	NormalizedMissRate float64
	MaxResponseMs      float64

	// Activations and Misses are the activation counts of a summary
	// row. They are 0 for a per-activation row.
	Activations int
	Misses      int

	// Source labels the input the row came from, and File and Line
	// locate it.
	Source string
	File   string
	Line   int

	present presence
}

// presence records which optional selector columns a row carried.
type presence uint8

const (
	hasTaskID presence = 1 << iota
	hasThreads
	hasDW
	hasActivations
	hasDeadlineMet
)

// HasTaskID reports whether the row carried a task ID column.
func (r *ResultRow) HasTaskID() bool { return r.present&hasTaskID != 0 }

// HasThreads reports whether the row carried a thread count column.
func (r *ResultRow) HasThreads() bool { return r.present&hasThreads != 0 }

// HasActivations reports whether the row carried activation counts.
func (r *ResultRow) HasActivations() bool { return r.present&hasActivations != 0 }

// Pos returns the position of the row in its source file.
func (r *ResultRow) Pos() (string, int) {
	return r.File, r.Line
}

// A Kind is the type of a column's values.
type Kind int

const (
	Text Kind = iota
	Int
	Float
	Bool
)

// A Column describes one logical column of a result file.
type Column struct {
	// Name is the canonical name of the column.
	Name string

	// Aliases are the other header names the column appears under,
	// matched case-insensitively.
	Aliases []string

	Kind Kind

	// Default is the value used when an optional column is absent or
	// unparseable.
	Default string

	// Scale multiplies parsed numeric values, keyed by the header
	// name that needs it. It converts microsecond columns to
	// milliseconds.
	Scale map[string]float64

	set  func(r *ResultRow, v value)
	flag presence
}

// value is a parsed cell. Int values are whole and in int range.
type value struct {
	s string
	f float64
	b bool
}

func (v value) int() int { return int(v.f) }

// Columns is the column table. Its defaults are the only defaults the
// loader applies.
var Columns = []*Column{
	{Name: "scheduler", Aliases: []string{"Scheduler", "sched"}, Kind: Text,
		set: func(r *ResultRow, v value) { r.Scheduler = v.s }},
	{Name: "workload", Aliases: []string{"Load", "Workload"}, Kind: Text,
		set: func(r *ResultRow, v value) { r.Workload = v.s }},
	{Name: "dynamic_weighting", Aliases: []string{"dw", "DW", "DynamicWeighting"}, Kind: Text, flag: hasDW,
		set: func(r *ResultRow, v value) { r.DynamicWeighting = strings.ToUpper(v.s) }},
	{Name: "threads", Aliases: []string{"thread_count", "Threads"}, Kind: Int, Default: "0", flag: hasThreads,
		set: func(r *ResultRow, v value) { r.Threads = v.int() }},
	{Name: "task_id", Aliases: []string{"TaskID", "task"}, Kind: Int, Default: "0", flag: hasTaskID,
		set: func(r *ResultRow, v value) { r.TaskID = v.int() }},
	{Name: "activation", Aliases: []string{"activation_index"}, Kind: Int, Default: "0",
		set: func(r *ResultRow, v value) { r.Activation = v.int() }},
	{Name: "type", Kind: Text,
		set: func(r *ResultRow, v value) { r.Type = v.s }},
	{Name: "timestamp", Kind: Text,
		set: func(r *ResultRow, v value) { r.Timestamp = v.s }},
	{Name: "response_time", Aliases: []string{"response_time_ms", "avg_response_ms", "AvgResponseTime", "response_time_us"},
		Kind: Float, Default: "0", Scale: map[string]float64{"response_time_us": 1e-3},
		set: func(r *ResultRow, v value) { r.ResponseMs = v.f }},
	{Name: "exec_time", Aliases: []string{"exec_time_ms"}, Kind: Float, Default: "0",
		set: func(r *ResultRow, v value) { r.ExecMs = v.f }},
	{Name: "deadline_met", Aliases: []string{"DeadlineMet"}, Kind: Bool, Default: "false", flag: hasDeadlineMet,
		set: func(r *ResultRow, v value) { r.DeadlineMet = v.b }},
	{Name: "lateness", Aliases: []string{"lateness_ms"}, Kind: Float, Default: "0",
		set: func(r *ResultRow, v value) { r.LatenessMs = v.f }},
	{Name: "period", Aliases: []string{"period_ms"}, Kind: Float, Default: "0",
		set: func(r *ResultRow, v value) { r.PeriodMs = v.f }},
	{Name: "deadline", Aliases: []string{"deadline_ms"}, Kind: Float, Default: "0",
		set: func(r *ResultRow, v value) { r.DeadlineMs = v.f }},
	{Name: "weight", Kind: Float, Default: "0",
		set: func(r *ResultRow, v value) { r.Weight = v.f }},
	{Name: "jitter", Aliases: []string{"jitter_ms", "Jitter"}, Kind: Float, Default: "0",
		set: func(r *ResultRow, v value) { r.JitterMs = v.f }},
	{Name: "context_switches", Aliases: []string{"ContextSwitches"}, Kind: Int, Default: "0",
		set: func(r *ResultRow, v value) { r.ContextSwitches = v.int() }},
	{Name: "preemptions", Aliases: []string{"Preemptions"}, Kind: Int, Default: "0",
		set: func(r *ResultRow, v value) { r.Preemptions = v.int() }},
	{Name: "cs_per_activation", Aliases: []string{"CSPerActivation"}, Kind: Float, Default: "0",
		set: func(r *ResultRow, v value) { r.CSPerActivation = v.f }},
	{Name: "overhead_percent", Aliases: []string{"OverheadPercent"}, Kind: Float, Default: "0",
		set: func(r *ResultRow, v value) { r.OverheadPercent = v.f }},
	{Name: "utilization", Aliases: []string{"Utilization"}, Kind: Float, Default: "0",
		set: func(r *ResultRow, v value) { r.Utilization = v.f }},
	{Name: "miss_rate", Aliases: []string{"miss_rate_percent", "MissRate"}, Kind: Float, Default: "0",
		set: func(r *ResultRow, v value) { r.MissRatePercent = v.f }},
	{Name: "normalized_miss_rate", Aliases: []string{"NormalizedMissRate"}, Kind: Float, Default: "0",
		set: func(r *ResultRow, v value) { r.NormalizedMissRate = v.f }},
	{Name: "max_response_time", Aliases: []string{"max_response_ms", "MaxResponseTime"}, Kind: Float, Default: "0",
		set: func(r *ResultRow, v value) { r.MaxResponseMs = v.f }},
	{Name: "activations", Aliases: []string{"Activations"}, Kind: Int, Default: "0", flag: hasActivations,
		set: func(r *ResultRow, v value) { r.Activations = v.int() }},
	{Name: "misses", Aliases: []string{"Misses"}, Kind: Int, Default: "0",
		set: func(r *ResultRow, v value) { r.Misses = v.int() }},
}

// Defaults maps each canonical column name to its default value.
var Defaults = func() map[string]string {
	m := make(map[string]string, len(Columns))
	for _, c := range Columns {
		m[c.Name] = c.Default
	}
	return m
}()

// byName indexes Columns by lower-cased name and alias.
var byName = func() map[string]*Column {
	m := make(map[string]*Column)
	for _, c := range Columns {
		m[strings.ToLower(c.Name)] = c
		for _, a := range c.Aliases {
			m[strings.ToLower(a)] = c
		}
	}
	return m
}()

// Lookup returns the column a header name refers to, or nil.
func Lookup(header string) *Column {
	return byName[strings.ToLower(strings.TrimSpace(header))]
}

// parse parses s as a value of kind k.
func (k Kind) parse(s string) (value, bool) {
	s = strings.TrimSpace(s)
	switch k {
	case Text:
		return value{s: s}, true
	case Int, Float:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return value{}, false
		}
		if k == Int {
			if f < math.MinInt || f >= -math.MinInt {
				return value{}, false
			}
			f = math.Trunc(f)
		}
		return value{s: s, f: f}, true
	case Bool:
		if b, err := strconv.ParseBool(s); err == nil {
			return value{s: s, b: b}, true
		}
		switch strings.ToLower(s) {
		case "yes", "y", "met":
			return value{s: s, b: true}, true
		case "no", "n", "missed":
			return value{s: s}, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
			return value{s: s, b: f != 0}, true
		}
	}
	return value{}, false
}

// Attr returns a grouping attribute of the row. Optional selector
// attributes are reported missing when the row had no such column.
func (r *ResultRow) Attr(name string) (string, bool) {
	switch name {
	case "scheduler":
		return r.Scheduler, r.Scheduler != ""
	case "workload":
		return r.Workload, r.Workload != ""
	case "dw", "dynamic_weighting":
		return r.DynamicWeighting, r.present&hasDW != 0 && r.DynamicWeighting != ""
	case "threads", "thread_count":
		return strconv.Itoa(r.Threads), r.HasThreads()
	case "task", "task_id":
		return strconv.Itoa(r.TaskID), r.HasTaskID()
	case "source":
		return r.Source, r.Source != ""
	case "type":
		return r.Type, r.Type != ""
	}
	return "", false
}

// Metric returns a numeric field of the row by name.
func (r *ResultRow) Metric(name string) (float64, bool) {
	switch name {
	case "response_ms", "response_time":
		return r.ResponseMs, true
	case "exec_ms":
		return r.ExecMs, true
	case "deadline_met":
		if r.present&hasDeadlineMet == 0 {
			return 0, false
		}
		if r.DeadlineMet {
			return 1, true
		}
		return 0, true
	case "lateness_ms":
		return r.LatenessMs, true
	case "period_ms":
		return r.PeriodMs, true
	case "deadline_ms":
		return r.DeadlineMs, true
	case "weight":
		return r.Weight, true
	case "jitter_ms":
		return r.JitterMs, true
	case "context_switches":
		return float64(r.ContextSwitches), true
	case "preemptions":
		return float64(r.Preemptions), true
	case "cs_per_activation":
		return r.CSPerActivation, true
	case "overhead_percent":
		return r.OverheadPercent, true
	case "utilization":
		return r.Utilization, true
	case "miss_rate", "miss_rate_percent":
		return r.MissRatePercent, true
	case "normalized_miss_rate":
		return r.NormalizedMissRate, true
	case "max_response_ms":
		return r.MaxResponseMs, true
	case "activations":
		return float64(r.Activations), r.HasActivations()
	case "misses":
		return float64(r.Misses), r.HasActivations()
	}
	return 0, false
}
