// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtsched/schedstat/internal/input"
	"github.com/rtsched/schedstat/internal/texttab"
	"github.com/rtsched/schedstat/schedlog"
	"github.com/rtsched/schedstat/schedproc"
	"github.com/rtsched/schedstat/storage/db"
)

type eventsOptions struct {
	classifierFlags
	store   storeFlags
	kind    string
	task    string
	session string
	by      string
	metrics []string
}

func newEventsCmd(g *globals) *cobra.Command {
	var o eventsOptions
	cmd := &cobra.Command{
		Use:   "events [log ...]",
		Short: "List or group the events of execution logs",
		Long: `Events prints the classified events of each log, one per line, in
input order. -kind and -task select events.

With -by, events are grouped by the named attributes instead, such as
"kind" or "kind,task", and each group is printed with its size and the
mean of each -metric, such as "count" or "simulation_seconds:max".

With -session, events are read from the store instead of logs.`,
		RunE: run(func(cmd *cobra.Command, args []string) error {
			return runEvents(cmd, g, &o, args)
		}),
	}
	o.classifierFlags.register(cmd)
	o.store.register(cmd)
	cmd.Flags().StringVar(&o.kind, "kind", "", "only events of this `kind`, such as emergency")
	cmd.Flags().StringVar(&o.task, "task", "", "only events of this `task`")
	cmd.Flags().StringVar(&o.session, "session", "", "read events from the stored `session`")
	cmd.Flags().StringVar(&o.by, "by", "", "group events by these comma-separated `attributes`")
	cmd.Flags().StringSliceVar(&o.metrics, "metric", nil, "summarize this `metric` in each group (repeatable)")
	return cmd
}

func runEvents(cmd *cobra.Command, g *globals, o *eventsOptions, args []string) error {
	events, err := loadEvents(cmd, g, o, args)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if o.by == "" {
		return listEvents(w, events)
	}
	proj, err := schedproc.ParseProjection(o.by)
	if err != nil {
		return err
	}
	recs := make([]schedproc.Record, len(events))
	for i, ev := range events {
		recs[i] = ev
	}
	metrics := make([]string, len(o.metrics))
	for i, m := range o.metrics {
		metrics[i] = schedproc.MetricName(m)
	}
	if len(metrics) == 0 {
		metrics = []string{"simulation_seconds"}
	}
	return groupEvents(w, schedproc.Aggregate(recs, proj, metrics...), o.metrics)
}

func loadEvents(cmd *cobra.Command, g *globals, o *eventsOptions, args []string) ([]schedlog.Event, error) {
	var events []schedlog.Event
	if o.session != "" {
		d, err := o.store.open(cmd, g)
		if err != nil {
			return nil, err
		}
		defer d.Close()
		q := db.Query{Session: o.session, Labels: map[string]string{}}
		if o.kind != "" {
			q.Labels["kind"] = o.kind
		}
		if o.task != "" {
			q.Labels["task"] = o.task
		}
		return d.Events(cmd.Context(), q)
	}

	c, err := o.classifier(cmd, g)
	if err != nil {
		return nil, err
	}
	for _, in := range input.Parse(args, true, false) {
		l, err := readLog(in, c)
		if err != nil {
			return nil, err
		}
		warnRegressions(l)
		for _, ev := range l.Events {
			if keep(ev, "kind", o.kind) && keep(ev, "task", o.task) {
				events = append(events, ev)
			}
		}
	}
	return events, nil
}

func keep(ev schedlog.Event, attr, want string) bool {
	if want == "" {
		return true
	}
	v, ok := ev.Attr(attr)
	return ok && v == want
}

// listEvents prints one event per line.
func listEvents(w io.Writer, events []schedlog.Event) error {
	var tab texttab.Table
	tab.Row().Cell("time").Cell("wall clock").Cell("kind").Cell("detail")
	tab.Rule('-')
	for _, ev := range events {
		h := ev.Head()
		tab.Row().Cell(fmt.Sprintf("%ds", h.SimSeconds), texttab.Right).
			Cell(stampOrDash(h.Timestamp)).
			Cell(ev.Kind().String()).
			Cell(detail(ev))
	}
	return tab.Format(w)
}

func stampOrDash(ts string) string {
	if ts == "" {
		return "-"
	}
	return ts
}

// detail describes the variant-specific fields of ev.
func detail(ev schedlog.Event) string {
	switch ev := ev.(type) {
	case *schedlog.TaskCompletion:
		return fmt.Sprintf("%s %d %s", ev.TaskName, ev.Count, ev.Unit)
	case *schedlog.SchedulerState:
		return fmt.Sprintf("thread %s priority %d (%s)", ev.ThreadID, ev.Priority, schedlog.ClassOf(ev.Priority))
	case *schedlog.ContextSwitch:
		return fmt.Sprintf("%s -> %s (total %d)", ev.FromThread, ev.ToThread, ev.TotalSwitches)
	case *schedlog.Emergency:
		return ev.Message
	case *schedlog.TimingCheckpoint:
		if ev.MarksReportBoundary {
			return "timing analysis report"
		}
		return "clock advanced"
	case *schedlog.MemorySample:
		return fmt.Sprintf("task %d thread %s", ev.TaskID, ev.ThreadPtr)
	case *schedlog.FaultCycle:
		return fmt.Sprintf("cycle %d thread %s", ev.Cycle, ev.ThreadID)
	}
	return ""
}

// groupEvents prints one line per group of g.
func groupEvents(w io.Writer, g *schedproc.Groups, selectors []string) error {
	var tab texttab.Table
	row := tab.Row()
	for _, f := range g.Projection.Fields() {
		row.Cell(f.Name)
	}
	row.Cell("events")
	for _, sel := range selectors {
		row.Cell(sel)
	}
	tab.Rule('-')
	for _, k := range g.Keys {
		st := g.Stats[k]
		row := tab.Row()
		for _, v := range k.Values() {
			row.Cell(v)
		}
		row.Cell(fmt.Sprint(st.Count), texttab.Right)
		for _, sel := range selectors {
			row.Cell(st.Derived(sel).String(), texttab.Right)
		}
	}
	if err := tab.Format(w); err != nil {
		return err
	}
	if g.Unassigned > 0 {
		var names []string
		for _, f := range g.Projection.Fields() {
			names = append(names, f.Name)
		}
		fmt.Fprintf(w, "%d events lack %s\n", g.Unassigned, strings.Join(names, " or "))
	}
	return nil
}
