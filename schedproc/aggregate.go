// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedproc

import (
	"fmt"
	"strings"

	"github.com/rtsched/schedstat/schedmath"
)

// DefaultMetrics are the metrics summarized when Aggregate is given
// none.
var DefaultMetrics = []string{
	"response_ms", "max_response_ms", "jitter_ms", "lateness_ms",
	"miss_rate", "utilization", "context_switches", "preemptions",
	"cs_per_activation", "overhead_percent",
}

// Groups is the result of aggregating a collection of records.
type Groups struct {
	Projection *Projection

	// Keys lists every group in canonical order.
	Keys []Key

	// Stats maps each Key to its group statistics.
	Stats map[Key]*Stats

	// Unassigned counts records that lacked a projected attribute
	// and so belong to no group.
	Unassigned int

	// Metrics are the summarized metric names.
	Metrics []string
}

// Stats are the statistics of one group.
type Stats struct {
	Key   Key
	Count int

	// Samples and Summaries hold each metric over the group's
	// records that carry it.
	Samples   map[string]*schedmath.Sample
	Summaries map[string]schedmath.Summary

	// Activations and Misses total the activation counts the group
	// carries: 1 for each per-activation record, or the counts of a
	// summary record.
	Activations int
	Misses      int

	MissRate           schedmath.Derived
	Utilization        schedmath.Derived
	NormalizedMissRate schedmath.Derived
	Rating             schedmath.Rating

	// Warnings are anomalies found while deriving metrics.
	Warnings []error
}

// Aggregate partitions records by proj and summarizes metrics over each
// group. If metrics is empty, DefaultMetrics are used.
//
// Aggregate is a pure function of the set of records: permuting
// records does not change any statistic.
func Aggregate(records []Record, proj *Projection, metrics ...string) *Groups {
	if len(metrics) == 0 {
		metrics = DefaultMetrics
	}
	g := &Groups{
		Projection: proj,
		Stats:      make(map[Key]*Stats),
		Metrics:    metrics,
	}
	collect := metrics
	for _, m := range []string{"miss_rate", "utilization"} {
		if !contains(collect, m) {
			collect = append(collect[:len(collect):len(collect)], m)
		}
	}
	values := make(map[Key]map[string][]float64)
	for _, r := range records {
		key, ok := proj.Project(r)
		if !ok {
			g.Unassigned++
			continue
		}
		st := g.Stats[key]
		if st == nil {
			st = &Stats{Key: key}
			g.Stats[key] = st
			g.Keys = append(g.Keys, key)
			values[key] = make(map[string][]float64)
		}
		st.Count++
		for _, m := range collect {
			if v, ok := r.Metric(m); ok {
				values[key][m] = append(values[key][m], v)
			}
		}
		// Activation counts, if the record carries any.
		if n, ok := r.Metric("activations"); ok {
			misses, _ := r.Metric("misses")
			st.Activations += int(n)
			st.Misses += int(misses)
		} else if met, ok := r.Metric("deadline_met"); ok {
			st.Activations++
			if met == 0 {
				st.Misses++
			}
		}
	}
	SortKeys(g.Keys)

	for _, key := range g.Keys {
		st := g.Stats[key]
		st.Samples = make(map[string]*schedmath.Sample, len(metrics))
		st.Summaries = make(map[string]schedmath.Summary, len(metrics))
		for _, m := range metrics {
			s := schedmath.NewSample(values[key][m])
			st.Samples[m] = s
			st.Summaries[m] = s.Summary()
		}
		st.derive(values[key])
	}
	return g
}

// derive computes the group's miss rate, utilization, normalized miss
// rate and rating.
func (st *Stats) derive(values map[string][]float64) {
	switch {
	case st.Activations > 0:
		st.MissRate = schedmath.MissRate(st.Misses, st.Activations)
	default:
		st.MissRate = fromSummary(schedmath.Summarize(values["miss_rate"]), "no miss rate")
	}
	st.Utilization = fromSummary(schedmath.Summarize(values["utilization"]), "no utilization")

	switch {
	case !st.MissRate.Valid:
		st.NormalizedMissRate = schedmath.Undefined(st.MissRate.Reason)
	case !st.Utilization.Valid:
		st.NormalizedMissRate = schedmath.Undefined(st.Utilization.Reason)
	default:
		st.NormalizedMissRate = schedmath.NormalizedMissRate(st.MissRate.Value, st.Utilization.Value)
	}
	if st.MissRate.Valid && !st.NormalizedMissRate.Valid {
		st.Warnings = append(st.Warnings, fmt.Errorf("%s: normalized miss rate undefined: %s", st.Key.StringValues(), st.NormalizedMissRate.Reason))
	}
	st.Rating = schedmath.RateDerived(st.NormalizedMissRate)
}

func fromSummary(s schedmath.Summary, reason string) schedmath.Derived {
	if !s.Defined() {
		return schedmath.Undefined(reason)
	}
	return schedmath.Value(s.Mean)
}

// Value returns a group statistic selected by name. Selectors are:
//
//	miss_rate, miss_rate_percent   the derived miss rate
//	normalized_miss_rate           miss rate / utilization
//	utilization                    mean utilization
//	count, activations, misses     counts
//	METRIC or METRIC:STAT          a summary statistic of a metric,
//	                               STAT one of mean (default), min,
//	                               max, stddev, median, p95
//
// avg_response_ms is an alias for response_ms. Value reports false if
// the statistic is undefined for this group.
func (st *Stats) Value(sel string) (float64, bool) {
	d := st.Derived(sel)
	return d.Value, d.Valid
}

// Derived is like Value, but returns the reason an undefined statistic
// is undefined.
func (st *Stats) Derived(sel string) schedmath.Derived {
	switch sel {
	case "miss_rate", "miss_rate_percent":
		return st.MissRate
	case "normalized_miss_rate":
		return st.NormalizedMissRate
	case "utilization":
		return st.Utilization
	case "count":
		return schedmath.Value(float64(st.Count))
	case "activations":
		return schedmath.Value(float64(st.Activations))
	case "misses":
		return schedmath.Value(float64(st.Misses))
	}
	metric, stat := splitSelector(sel)
	sum, ok := st.Summaries[metric]
	if !ok {
		return schedmath.Undefined("no metric " + metric)
	}
	if !sum.Defined() {
		return schedmath.Undefined("no " + metric + " values")
	}
	v, ok := sum.Stat(stat)
	if !ok {
		return schedmath.Undefined("unknown statistic " + stat)
	}
	return schedmath.Value(v)
}

// MetricName returns the metric a selector summarizes, resolving
// aliases and dropping any :STAT suffix.
func MetricName(sel string) string {
	metric, _ := splitSelector(sel)
	return metric
}

func splitSelector(sel string) (metric, stat string) {
	metric, stat, _ = strings.Cut(sel, ":")
	if stat == "" {
		stat = "mean"
	}
	if alias, ok := metricAliases[metric]; ok {
		metric = alias
	}
	return metric, stat
}

var metricAliases = map[string]string{
	"avg_response_ms": "response_ms",
	"response_time":   "response_ms",
}

// Warnings returns the warnings of every group, in key order.
func (g *Groups) Warnings() []error {
	var ws []error
	for _, k := range g.Keys {
		ws = append(ws, g.Stats[k].Warnings...)
	}
	return ws
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
