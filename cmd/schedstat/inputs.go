// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rtsched/schedstat/internal/config"
	"github.com/rtsched/schedstat/internal/input"
	"github.com/rtsched/schedstat/rtresult"
	"github.com/rtsched/schedstat/schedlog"
	"github.com/rtsched/schedstat/schedproc"
	"github.com/rtsched/schedstat/storage/db"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/rtsched/schedstat/storage/db/sqlite3"
)

// classifierFlags select the clock regression policy.
type classifierFlags struct {
	regression string
}

func (f *classifierFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.regression, "regression", "accept", "handling of a backward time marker: accept, session or reject")
}

func (f *classifierFlags) classifier(cmd *cobra.Command, g *globals) (schedlog.Classifier, error) {
	applyString(cmd, "regression", &f.regression, g.file.Classifier.Regression)
	p, err := schedlog.ParseRegressionPolicy(f.regression)
	if err != nil {
		return schedlog.Classifier{}, err
	}
	return schedlog.Classifier{Regression: p}, nil
}

// readLog classifies one log input.
func readLog(in input.Input, c schedlog.Classifier) (*schedlog.Log, error) {
	rc, err := input.Open(in)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	l, err := schedlog.ReadLog(rc, in.Label, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Label, err)
	}
	return l, nil
}

// warnRegressions logs the clock regressions a log recorded.
func warnRegressions(l *schedlog.Log) {
	for _, err := range l.Regressions {
		log.Print(err)
	}
}

// rowFlags control how result files are read.
type rowFlags struct {
	layout   string
	header   string
	fromName bool
	session  string
}

// headers are the -header choices for headerless files.
var headers = map[string][]string{
	"":               nil,
	"harness":        rtresult.HarnessHeader,
	"harness-jitter": rtresult.HarnessJitterHeader,
}

// register adds the row flags to cmd. If stored is set, rows may also
// be read from a stored session.
func (f *rowFlags) register(cmd *cobra.Command, stored bool) {
	cmd.Flags().StringVar(&f.layout, "layout", "activation", "result file layout: activation, summary or harness")
	cmd.Flags().StringVar(&f.header, "header", "", "column order of headerless files: harness or harness-jitter")
	cmd.Flags().BoolVar(&f.fromName, "labels-from-name", true, "take missing scheduler, workload and dw columns from the file name")
	if stored {
		cmd.Flags().StringVar(&f.session, "session", "", "read rows from the stored `session` instead of files")
	}
}

// loadRows reads result rows from the named inputs, or from the store
// if -session was given. A malformed row drops its whole file and the
// error is logged; the other files are still read.
func (f *rowFlags) loadRows(ctx context.Context, cmd *cobra.Command, g *globals, st *storeFlags, args []string) ([]rtresult.ResultRow, error) {
	if f.session != "" {
		d, err := st.open(cmd, g)
		if err != nil {
			return nil, err
		}
		defer d.Close()
		rows, err := d.Results(ctx, db.Query{Session: f.session})
		if err != nil {
			return nil, err
		}
		g.vlogf("read %d rows from session %s", len(rows), f.session)
		return rows, nil
	}

	applyString(cmd, "layout", &f.layout, g.file.Report.Layout)
	layout, err := rtresult.ParseLayout(f.layout)
	if err != nil {
		return nil, err
	}
	header, ok := headers[f.header]
	if !ok {
		return nil, fmt.Errorf("unknown header %q, want harness or harness-jitter", f.header)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no result files given")
	}
	var rows []rtresult.ResultRow
	for _, in := range input.Parse(args, true, true) {
		rc, err := input.Open(in)
		if err != nil {
			return nil, err
		}
		r := rtresult.NewReader(rc, in.Label)
		r.Loader.Layout = layout
		r.Header = header
		if f.fromName && !in.IsStdin {
			if labels, ok := rtresult.ParseFileName(in.Path); ok {
				r.Labels = labels
			}
		}
		n := len(rows)
		for r.Scan() {
			rows = append(rows, r.Row())
		}
		rc.Close()
		var malformed *rtresult.MalformedRowError
		if err := r.Err(); errors.As(err, &malformed) {
			log.Print(err)
			rows = rows[:n]
		} else if err != nil {
			return nil, err
		}
		g.vlogf("%s: %d rows", in.Label, len(rows)-n)
	}
	return rows, nil
}

// records adapts rows for aggregation.
func records(rows []rtresult.ResultRow) []schedproc.Record {
	recs := make([]schedproc.Record, len(rows))
	for i := range rows {
		recs[i] = &rows[i]
	}
	return recs
}

// storeFlags locate the results database.
type storeFlags struct {
	driver string
	dsn    string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, "driver", "sqlite3", "database driver: sqlite3 or mysql")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "database `source`; defaults to "+config.DefaultDBPath()+" for sqlite3")
}

func (f *storeFlags) open(cmd *cobra.Command, g *globals) (*db.DB, error) {
	applyString(cmd, "driver", &f.driver, g.file.Store.Driver)
	applyString(cmd, "dsn", &f.dsn, g.file.Store.DSN)
	dsn := f.dsn
	if dsn == "" {
		if f.driver != "sqlite3" {
			return nil, fmt.Errorf("-dsn is required for driver %s", f.driver)
		}
		dsn = config.DefaultDBPath()
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, err
		}
	}
	g.vlogf("opening %s database %s", f.driver, dsn)
	d, err := db.OpenSQL(f.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return d, nil
}
