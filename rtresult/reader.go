// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtresult

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// HarnessHeader is the column order of the harness's headerless
// per-activation exports. Response times are in microseconds.
var HarnessHeader = []string{
	"type", "timestamp", "task_id", "activation", "response_time_us",
	"deadline_met", "lateness", "period", "deadline", "weight",
}

// HarnessJitterHeader is the column order of the older headerless
// exports that also record execution time and jitter.
var HarnessJitterHeader = []string{
	"type", "timestamp", "task_id", "activation", "response_time", "exec_time",
	"deadline_met", "lateness", "period", "deadline", "weight", "jitter",
}

// A Reader reads ResultRows from a CSV file.
//
// Its API is modeled on bufio.Scanner. Reading stops at the first
// malformed row; rows already returned stay valid.
type Reader struct {
	Loader Loader

	// Header, if non-nil, gives the column names of a file without
	// a header line. Otherwise the first record is the header.
	Header []string

	// Labels are extra column values applied to every row that does
	// not carry the column itself, such as those from ParseFileName.
	Labels map[string]string

	// Source is copied to each row's Source field.
	Source string

	csv    *csv.Reader
	header []string
	row    ResultRow
	err    error
}

// NewReader constructs a Reader for the CSV data in r. fileName is used
// in positions and errors.
func NewReader(r io.Reader, fileName string) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return &Reader{Loader: Loader{File: fileName}, Source: fileName, csv: cr}
}

// Scan advances to the next row and reports whether one was read. It
// returns false at EOF or on error; the caller should then check Err.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	if r.header == nil {
		if r.Header != nil {
			r.header = r.Header
		} else {
			rec, err := r.csv.Read()
			if err == io.EOF {
				return false
			}
			if err != nil {
				r.err = r.wrap(err)
				return false
			}
			r.header = rec
		}
	}
	for {
		rec, err := r.csv.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			r.err = r.wrap(err)
			return false
		}
		if blank(rec) {
			continue
		}
		line, _ := r.csv.FieldPos(0)
		m := make(map[string]string, len(r.header)+len(r.Labels))
		for i, name := range r.header {
			if i < len(rec) {
				m[name] = rec[i]
			}
		}
		for k, v := range r.Labels {
			if c := Lookup(k); c != nil && r.carries(m, c) {
				continue
			}
			m[k] = v
		}
		row, err := r.Loader.load(m, line)
		if err != nil {
			r.err = err
			return false
		}
		row.Source = r.Source
		r.row = row
		return true
	}
}

// carries reports whether m holds a non-empty cell for column c.
func (r *Reader) carries(m map[string]string, c *Column) bool {
	for k, v := range m {
		if Lookup(k) == c && strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func (r *Reader) wrap(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &MalformedRowError{File: r.Loader.File, Line: pe.Line, Msg: pe.Err.Error()}
	}
	return fmt.Errorf("%s: %w", r.Loader.File, err)
}

// Row returns the row read by the last call to Scan.
func (r *Reader) Row() ResultRow {
	return r.row
}

// Err returns the error that stopped Scan, if any. It is a
// *MalformedRowError for a bad row.
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every row from r.
func (r *Reader) ReadAll() ([]ResultRow, error) {
	var rows []ResultRow
	for r.Scan() {
		rows = append(rows, r.Row())
	}
	return rows, r.Err()
}

// ParseFileName derives labels from a harness result file name of the
// form SCHEDULER_WORKLOAD[_DWON|_DWOFF].csv, such as
// "WEIGHTED_EDF_HEAVY_DWON.csv". The scheduler name may itself contain
// underscores. It reports false if the name has too few parts.
func ParseFileName(name string) (map[string]string, bool) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(base, "_")
	labels := make(map[string]string)
	if n := len(parts); n > 0 {
		if dw, ok := strings.CutPrefix(strings.ToUpper(parts[n-1]), "DW"); ok && (dw == "ON" || dw == "OFF") {
			labels["dynamic_weighting"] = dw
			parts = parts[:n-1]
		}
	}
	if len(parts) < 2 {
		return nil, false
	}
	labels["workload"] = parts[len(parts)-1]
	labels["scheduler"] = strings.Join(parts[:len(parts)-1], "_")
	return labels, true
}
