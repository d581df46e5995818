// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out plain-text tables for terminal reports.
//
// Widths are measured in terminal cells, so task and scheduler names
// containing wide runes still line up.
package texttab

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table accumulates cells row by row and lays them out in Format.
//
// Row, Cell, Span and Rule return the Table so calls can be chained.
type Table struct {
	cells []cell
	cols  int

	row, col int
}

type cell struct {
	row, col, span int
	value          string
	margin         string
	align          align

	// rule cells are drawn as a line of their value's rune across
	// the full table width.
	rule bool
}

// A CellOption adjusts one cell.
type CellOption func(c *cell)

// Margin sets the text printed before a cell. Cells default to a
// single space of margin, except in the first column.
func Margin(m string) CellOption {
	return func(c *cell) { c.margin = m }
}

var (
	Left   CellOption = func(c *cell) { c.align = alignLeft }
	Center CellOption = func(c *cell) { c.align = alignCenter }
	Right  CellOption = func(c *cell) { c.align = alignRight }
)

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

// pad pads s on the left to position it in a field of width w.
func (a align) pad(s string, w int) string {
	gap := w - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	switch a {
	case alignCenter:
		return strings.Repeat(" ", gap/2) + s
	case alignRight:
		return strings.Repeat(" ", gap) + s
	}
	return s
}

// Row starts a new row.
func (t *Table) Row() *Table {
	if len(t.cells) > 0 {
		t.row++
	}
	t.col = 0
	return t
}

// Cell adds a one-column cell at the current position.
func (t *Table) Cell(value string, opts ...CellOption) *Table {
	return t.Span(1, value, opts...)
}

// Span adds a cell covering n columns at the current position.
func (t *Table) Span(n int, value string, opts ...CellOption) *Table {
	c := cell{row: t.row, col: t.col, span: n, value: value}
	if t.col > 0 && value != "" {
		c.margin = " "
	}
	for _, o := range opts {
		o(&c)
	}
	t.cells = append(t.cells, c)
	t.col += n
	if t.col > t.cols {
		t.cols = t.col
	}
	return t
}

// Rule adds a row holding a horizontal line drawn with ch across the
// whole table.
func (t *Table) Rule(ch rune) *Table {
	t.Row()
	t.cells = append(t.cells, cell{row: t.row, value: string(ch), rule: true})
	return t
}

// Format lays out t and writes it to w.
func (t *Table) Format(w io.Writer) error {
	if len(t.cells) == 0 {
		return nil
	}
	margin := make([]int, t.cols)
	for _, c := range t.cells {
		if !c.rule {
			margin[c.col] = max(margin[c.col], runewidth.StringWidth(c.margin))
		}
	}

	// Widen columns for single-column cells first, then spread any
	// extra width a spanning cell needs across the columns it
	// covers, narrowest first.
	width := make([]int, t.cols)
	cells := append([]cell(nil), t.cells...)
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].span < cells[j].span })
	for _, c := range cells {
		if c.rule {
			continue
		}
		need := runewidth.StringWidth(c.value) + margin[c.col]
		if c.span == 1 {
			width[c.col] = max(width[c.col], need)
			continue
		}
		cols := make([]int, 0, c.span)
		for col := c.col; col < c.col+c.span; col++ {
			cols = append(cols, col)
		}
		sort.Slice(cols, func(i, j int) bool { return width[cols[i]] > width[cols[j]] })
		for n, col := range cols {
			avg := (need + (len(cols) - n) - 1) / (len(cols) - n)
			width[col] = max(width[col], avg)
			need -= width[col]
		}
	}
	offs := make([]int, t.cols+1)
	for i, cw := range width {
		offs[i+1] = offs[i] + cw
	}

	// Back to reading order.
	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].row != cells[j].row {
			return cells[i].row < cells[j].row
		}
		return cells[i].col < cells[j].col
	})
	var b strings.Builder
	row, off := cells[0].row, 0
	for _, c := range cells {
		for row < c.row {
			b.WriteByte('\n')
			row++
			off = 0
		}
		if c.rule {
			b.WriteString(strings.Repeat(c.value, offs[t.cols]))
			off = offs[t.cols]
			continue
		}
		if strings.TrimSpace(c.value) == "" && strings.TrimSpace(c.margin) == "" {
			continue
		}
		fmt.Fprintf(&b, "%*s%*s", offs[c.col]-off, "", margin[c.col], c.margin)
		tw := offs[c.col+c.span] - offs[c.col] - margin[c.col]
		s := c.align.pad(c.value, tw)
		b.WriteString(s)
		off = offs[c.col] + margin[c.col] + runewidth.StringWidth(s)
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
