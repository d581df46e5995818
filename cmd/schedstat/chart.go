// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtsched/schedstat/internal/chart"
	"github.com/rtsched/schedstat/internal/export"
)

type chartOptions struct {
	groupFlags
	x           string
	title       string
	format      string
	output      string
	credentials string
}

func newChartCmd(g *globals) *cobra.Command {
	var o chartOptions
	cmd := &cobra.Command{
		Use:   "chart [flags] file ...",
		Short: "Draw a bar chart of a metric across groups",
		Long: `Chart groups result rows like compare and draws -metric as a grouped
bar chart: one group of bars per value of the -x attribute, one bar per
combination of the other -by attributes. Bars where the metric is
undefined are drawn at zero and listed on standard error.

The image format is taken from -format, or else from the extension of
the -o destination.`,
		RunE: run(func(cmd *cobra.Command, args []string) error {
			return runChart(cmd, g, &o, args)
		}),
	}
	o.groupFlags.register(cmd)
	cmd.Flags().StringVar(&o.x, "x", "workload", "the `attribute` along the x axis")
	cmd.Flags().StringVar(&o.title, "title", "", "chart title; defaults to the metric")
	cmd.Flags().StringVar(&o.format, "format", "", "image format: png or svg")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the chart to `dest`: a file, - or gs://bucket/object")
	cmd.Flags().StringVar(&o.credentials, "credentials", "", "service account key `file` for gs:// destinations")
	return cmd
}

func runChart(cmd *cobra.Command, g *globals, o *chartOptions, args []string) error {
	if o.output == "" {
		return fmt.Errorf("-o is required")
	}
	applyString(cmd, "credentials", &o.credentials, g.file.Export.Credentials)
	format := o.format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(o.output), ".")
	}
	if !contains(chart.Formats, format) {
		return fmt.Errorf("unknown chart format %q, want png or svg", format)
	}

	groups, err := o.aggregate(cmd, g, args, nil, o.x)
	if err != nil {
		return err
	}
	data, err := chart.Collect(groups, o.x, o.metric)
	if err != nil {
		return err
	}
	for _, s := range data.Series {
		for i, missing := range s.Missing {
			if missing {
				g.vlogf("%s %s: no %s", s.Name, data.Categories[i], o.metric)
			}
		}
	}
	pl, err := chart.Plot(data, o.title)
	if err != nil {
		return err
	}
	opts := export.Options{
		CredentialsFile: o.credentials,
		ContentType:     "image/" + strings.Replace(format, "svg", "svg+xml", 1),
		Stdout:          cmd.OutOrStdout(),
	}
	return export.WriteTo(cmd.Context(), o.output, opts, func(w io.Writer) error {
		return chart.Write(w, pl, len(data.Categories), format)
	})
}
