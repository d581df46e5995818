// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart draws grouped bar charts of aggregated scheduler
// metrics.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/rtsched/schedstat/schedproc"
)

// A Series is one bar per category, in category order.
type Series struct {
	Name   string
	Values []float64

	// Missing marks categories where the metric is undefined.
	// Their bars are drawn at zero.
	Missing []bool
}

// Data is the content of a grouped bar chart.
type Data struct {
	Metric     string
	Categories []string
	Series     []Series
}

// Collect lays out the groups of g as bars of metric: one category per
// value of the field x, in x's canonical order, and one series per
// combination of the remaining grouping attributes.
func Collect(g *schedproc.Groups, x, metric string) (*Data, error) {
	f := g.Projection.Field(x)
	if f == nil {
		return nil, fmt.Errorf("cannot chart by %q: not a grouping attribute", x)
	}
	d := &Data{Metric: metric}
	catIndex := make(map[string]int)
	seriesIndex := make(map[string]int)
	for _, k := range g.Keys {
		if _, ok := catIndex[k.Get(f)]; !ok {
			catIndex[k.Get(f)] = len(d.Categories)
			d.Categories = append(d.Categories, k.Get(f))
		}
		name := k.StringWithout(f)
		if _, ok := seriesIndex[name]; !ok {
			seriesIndex[name] = len(d.Series)
			d.Series = append(d.Series, Series{Name: name})
		}
	}
	sortStrings(d.Categories, f.Compare)
	for i, c := range d.Categories {
		catIndex[c] = i
	}
	for i := range d.Series {
		d.Series[i].Values = make([]float64, len(d.Categories))
		d.Series[i].Missing = make([]bool, len(d.Categories))
		for j := range d.Series[i].Missing {
			d.Series[i].Missing[j] = true
		}
	}
	for _, k := range g.Keys {
		s := &d.Series[seriesIndex[k.StringWithout(f)]]
		c := catIndex[k.Get(f)]
		if v := g.Stats[k].Derived(metric); v.Valid && !math.IsInf(v.Value, 0) {
			s.Values[c] = v.Value
			s.Missing[c] = false
		}
	}
	return d, nil
}

func sortStrings(s []string, cmp func(a, b string) int) {
	// Insertion sort: there are only a handful of categories.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && cmp(s[j-1], s[j]) > 0; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Plot draws d as a grouped bar chart.
func Plot(d *Data, title string) (*plot.Plot, error) {
	pl := plot.New()
	if title == "" {
		title = d.Metric
	}
	pl.Title.Text = title
	pl.Y.Label.Text = d.Metric
	pl.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	n := len(d.Series)
	w := vg.Points(60 / float64(max(n, 1)))
	for i, s := range d.Series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), w)
		if err != nil {
			return nil, err
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Points(0.5)
		bars.Offset = w * vg.Length(2*i-n+1) / 2
		pl.Add(bars)
		name := s.Name
		if name == "" {
			name = d.Metric
		}
		pl.Legend.Add(name, bars)
	}
	pl.NominalX(d.Categories...)
	if pl.Y.Min > 0 {
		pl.Y.Min = 0
	}
	return pl, nil
}

// Formats are the image formats Write supports.
var Formats = []string{"png", "svg"}

// Write renders pl in the given format, "png" or "svg". The image is
// sized for the number of categories.
func Write(w io.Writer, pl *plot.Plot, categories int, format string) error {
	width := vg.Length(4+2*categories) * vg.Centimeter
	height := 10 * vg.Centimeter
	var c vg.CanvasWriterTo
	switch format {
	case "png":
		c = vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(width, height),
			vgimg.UseDPI(150), vgimg.UseBackgroundColor(color.White))}
	case "svg":
		c = vgsvg.New(width, height)
	default:
		return fmt.Errorf("unknown chart format %q, want png or svg", format)
	}
	pl.Draw(draw.New(c))
	_, err := c.WriteTo(w)
	return err
}
