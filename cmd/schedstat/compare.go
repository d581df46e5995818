// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtsched/schedstat/internal/export"
	"github.com/rtsched/schedstat/schedproc"
	"github.com/rtsched/schedstat/schedstat"
)

// groupFlags select how rows are grouped and which metric orders them.
type groupFlags struct {
	rows   rowFlags
	store  storeFlags
	by     string
	metric string
}

func (f *groupFlags) register(cmd *cobra.Command) {
	f.rows.register(cmd, true)
	f.store.register(cmd)
	cmd.Flags().StringVar(&f.by, "by", "scheduler,workload", "group rows by these comma-separated `attributes`")
	cmd.Flags().StringVar(&f.metric, "metric", "miss_rate_percent", "the `metric` to rank, partition or chart by")
}

// aggregate loads the rows named by args and groups them. extra names
// attributes that must be part of the grouping; they are appended to
// -by if it does not list them.
func (f *groupFlags) aggregate(cmd *cobra.Command, g *globals, args []string, columns []string, extra ...string) (*schedproc.Groups, error) {
	applyString(cmd, "by", &f.by, g.file.Report.By)
	applyString(cmd, "metric", &f.metric, g.file.Report.Metric)

	by := f.by
	for _, name := range extra {
		if name != "" && !hasField(by, name) {
			by += "," + name
		}
	}
	proj, err := schedproc.ParseProjection(by)
	if err != nil {
		return nil, err
	}
	rows, err := f.rows.loadRows(cmd.Context(), cmd, g, &f.store, args)
	if err != nil {
		return nil, err
	}
	metrics := append([]string(nil), schedproc.DefaultMetrics...)
	for _, sel := range append([]string{f.metric}, columns...) {
		if m := schedproc.MetricName(sel); !contains(metrics, m) {
			metrics = append(metrics, m)
		}
	}
	groups := schedproc.Aggregate(records(rows), proj, metrics...)
	g.vlogf("%d rows in %d groups", len(rows), len(groups.Keys))
	return groups, nil
}

func hasField(spec, name string) bool {
	for _, f := range strings.Split(spec, ",") {
		f, _, _ = strings.Cut(strings.TrimSpace(f), "@")
		if f == name {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

type compareOptions struct {
	groupFlags
	direction   string
	columns     []string
	format      string
	best        string
	toggle      string
	off, on     string
	output      string
	credentials string
}

// formats are the -format choices of compare.
var formats = map[string]func(io.Writer, *schedstat.Table) error{
	"text": schedstat.FormatText,
	"csv":  schedstat.FormatCSV,
	"json": schedstat.FormatJSON,
	"html": schedstat.FormatHTML,
}

var contentTypes = map[string]string{
	"text": "text/plain; charset=utf-8",
	"csv":  "text/csv",
	"json": "application/json",
	"html": "text/html; charset=utf-8",
}

func newCompareCmd(g *globals) *cobra.Command {
	var o compareOptions
	cmd := &cobra.Command{
		Use:   "compare [flags] file ...",
		Short: "Compare schedulers across result files",
		Long: `Compare loads tabular result files and groups their rows by the
-by attributes. Each file may be given as label=path to name its rows'
source.

By default it prints one row per group with the -columns statistics
and an efficiency rating, ordered by -metric. Groups where the metric
is undefined, such as a normalized miss rate at zero utilization, are
listed last.

With -best, it prints the group with the lowest value of each column
in every partition of the named attribute, such as the best scheduler
per workload.

With -toggle, it prints the improvement of -metric from the -off to
the -on value of the named attribute, for every group that has both.`,
		RunE: run(func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, g, &o, args)
		}),
	}
	o.groupFlags.register(cmd)
	cmd.Flags().StringVar(&o.direction, "direction", "asc", "rank order: asc or desc")
	cmd.Flags().StringSliceVar(&o.columns, "columns", schedstat.DefaultColumns, "statistics to report for each group")
	cmd.Flags().StringVar(&o.format, "format", "text", "output format: text, csv, json or html")
	cmd.Flags().StringVar(&o.best, "best", "", "report the best group in each partition of this `attribute`")
	cmd.Flags().StringVar(&o.toggle, "toggle", "", "report the improvement from turning this `attribute` on")
	cmd.Flags().StringVar(&o.off, "off", "OFF", "the off value of -toggle")
	cmd.Flags().StringVar(&o.on, "on", "ON", "the on value of -toggle")
	cmd.Flags().StringVarP(&o.output, "output", "o", "-", "write the report to `dest`: a file, - or gs://bucket/object")
	cmd.Flags().StringVar(&o.credentials, "credentials", "", "service account key `file` for gs:// destinations")
	return cmd
}

func runCompare(cmd *cobra.Command, g *globals, o *compareOptions, args []string) error {
	applyString(cmd, "direction", &o.direction, g.file.Report.Direction)
	applyString(cmd, "format", &o.format, g.file.Report.Format)
	applyString(cmd, "best", &o.best, g.file.Report.Partition)
	applyStrings(cmd, "columns", &o.columns, g.file.Report.Columns)
	applyString(cmd, "credentials", &o.credentials, g.file.Export.Credentials)

	dir, err := schedstat.ParseDirection(o.direction)
	if err != nil {
		return err
	}
	format, ok := formats[o.format]
	if !ok {
		return fmt.Errorf("unknown format %q, want text, csv, json or html", o.format)
	}
	if o.best != "" && o.toggle != "" {
		return fmt.Errorf("-best and -toggle are exclusive")
	}

	groups, err := o.aggregate(cmd, g, args, o.columns, o.best, o.toggle)
	if err != nil {
		return err
	}

	var write func(io.Writer) error
	switch {
	case o.best != "":
		write = func(w io.Writer) error {
			return schedstat.FormatBest(w, groups, o.best, o.columns)
		}
	case o.toggle != "":
		deltas, err := schedstat.Improvement(groups, o.toggle, o.off, o.on, o.metric)
		if err != nil {
			return err
		}
		if len(deltas) == 0 {
			return fmt.Errorf("no groups have both %s=%s and %s=%s", o.toggle, o.off, o.toggle, o.on)
		}
		write = func(w io.Writer) error {
			return schedstat.FormatDeltas(w, deltas, o.metric)
		}
	default:
		keys := schedstat.Rank(groups, o.metric, dir)
		t := schedstat.NewTable(groups, keys, o.columns)
		write = func(w io.Writer) error {
			return format(w, t)
		}
	}

	opts := export.Options{
		CredentialsFile: o.credentials,
		ContentType:     contentTypes[o.format],
		Stdout:          cmd.OutOrStdout(),
	}
	return export.WriteTo(cmd.Context(), o.output, opts, write)
}
