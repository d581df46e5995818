// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedstat

import (
	"fmt"
	"io"
	"strings"

	"github.com/rtsched/schedstat/internal/texttab"
	"github.com/rtsched/schedstat/schedlog"
)

// FormatSummary writes a human-readable analysis of a parsed log: the
// headline counts, per-task performance, the emergency and violation
// records, and the timeline, priority and health figures derived from
// them.
func FormatSummary(w io.Writer, l *schedlog.Log) error {
	sum := l.Summary()
	var tab texttab.Table
	section := func(title string) {
		if tab.Row(); title != "" {
			tab.Cell(title)
			tab.Rule('-')
		}
	}
	kv := func(k string, v interface{}) {
		tab.Row().Cell(k + ":").Cell(fmt.Sprint(v))
	}

	section("Simulation")
	kv("duration", fmt.Sprintf("%d s", sum.SimulationDuration))
	kv("tasks monitored", sum.TotalTasks)
	kv("scheduler events", sum.SchedulerEventsCount)
	kv("emergency events", sum.EmergencyEventsCount)
	kv("safety violations", sum.SafetyViolationsCount)
	kv("timing reports", sum.TimingReportsCount)
	kv("memory samples", sum.MemoryEntriesCount)
	kv("fault cycles", sum.FaultCyclesCount)
	if sum.ClockRegressions > 0 {
		kv("clock regressions", sum.ClockRegressions)
	}

	if names := l.Tasks.Names(); len(names) > 0 {
		section("")
		section("Task performance")
		for _, name := range names {
			tc, _ := l.Tasks.Get(name)
			tab.Row().Cell("  "+name+":").Cell(fmt.Sprint(tc.Count), texttab.Right).Cell(tc.Unit)
		}
	}
	if rates := l.CompletionRates(); len(rates) > 0 {
		section("")
		section("Task rates")
		for _, r := range rates {
			tab.Row().Cell("  "+r.Task+":").Cell(fmt.Sprintf("%.2f", r.PerSec), texttab.Right).Cell(r.Unit + "/s")
		}
	}
	if len(l.Emergencies) > 0 {
		section("")
		section("Emergency events")
		for _, e := range l.Emergencies {
			tab.Row().Cell("  ["+stamp(e.Timestamp)+"]").Span(2, e.Message)
		}
	}
	if len(l.Violations) > 0 {
		section("")
		section("Safety violations")
		for _, v := range l.Violations {
			tab.Row().Cell("  ["+stamp(v.Timestamp)+"]").Span(2, fmt.Sprintf("at simulation time %ds", v.SimSeconds))
		}
	}
	if prios := l.Priorities(); len(prios) > 0 {
		section("")
		section("Priority distribution")
		for _, p := range prios {
			tab.Row().Cell(fmt.Sprintf("  priority %d:", p.Priority)).
				Cell(fmt.Sprintf("%d (%.1f%%)", p.Count, p.Percent), texttab.Right).
				Cell(schedlog.ClassOf(p.Priority).String())
		}
	}

	section("")
	section("Timeline")
	tl := l.Timeline()
	if tl.Real > 0 {
		kv("real time elapsed", fmt.Sprintf("%.1f s", tl.Real.Seconds()))
		kv("virtual time elapsed", fmt.Sprintf("%d s", tl.Virtual))
		kv("speed factor", fmt.Sprintf("%.1fx", tl.SpeedFactor))
	} else {
		kv("speed factor", "n/a")
	}
	h := l.Health()
	kv("violations per second", fmt.Sprintf("%.3f", h.ViolationsPerSec))
	kv("scheduling events per second", fmt.Sprintf("%.3f", h.SchedulingPerSec))

	return tab.Format(w)
}

func stamp(ts string) string {
	if ts = strings.TrimSpace(ts); ts == "" {
		return "no timestamp"
	}
	return ts
}
