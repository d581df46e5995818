// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rtsched/schedstat/internal/input"
	"github.com/rtsched/schedstat/internal/texttab"
	"github.com/rtsched/schedstat/storage/db"
)

type saveOptions struct {
	classifierFlags
	rows   rowFlags
	store  storeFlags
	kind   string
	list   bool
	delete string
}

func newSaveCmd(g *globals) *cobra.Command {
	var o saveOptions
	cmd := &cobra.Command{
		Use:   "save [flags] file ...",
		Short: "Store logs or result files in the results database",
		Long: `Save stores each file as a new session in the results database and
prints the session IDs. With -kind log, files are execution logs and
their events are stored; with -kind results, they are result files and
their rows are stored.

The events and compare commands read a stored session with -session.
-list prints the stored sessions and -delete removes one.`,
		RunE: run(func(cmd *cobra.Command, args []string) error {
			return runSave(cmd, g, &o, args)
		}),
	}
	o.classifierFlags.register(cmd)
	o.rows.register(cmd, false)
	o.store.register(cmd)
	cmd.Flags().StringVar(&o.kind, "kind", "log", "input kind: log or results")
	cmd.Flags().BoolVar(&o.list, "list", false, "list the stored sessions")
	cmd.Flags().StringVar(&o.delete, "delete", "", "delete the stored `session`")
	return cmd
}

func runSave(cmd *cobra.Command, g *globals, o *saveOptions, args []string) error {
	ctx := cmd.Context()
	d, err := o.store.open(cmd, g)
	if err != nil {
		return err
	}
	defer d.Close()
	w := cmd.OutOrStdout()

	switch {
	case o.list:
		return listSessions(cmd, w, d)
	case o.delete != "":
		if err := d.DeleteSession(ctx, o.delete); err != nil {
			return err
		}
		g.vlogf("deleted session %s", o.delete)
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("no files given")
	}

	switch o.kind {
	case "log":
		c, err := o.classifier(cmd, g)
		if err != nil {
			return err
		}
		for _, in := range input.Parse(args, true, false) {
			l, err := readLog(in, c)
			if err != nil {
				return err
			}
			warnRegressions(l)
			s, err := d.NewSession(ctx, in.Label)
			if err != nil {
				return err
			}
			for _, ev := range l.Events {
				if err := s.InsertEvent(ctx, ev); err != nil {
					return err
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%d events\n", s.ID, in.Label, len(l.Events))
		}
	case "results":
		for _, in := range input.Parse(args, true, true) {
			rows, err := o.rows.loadRows(ctx, cmd, g, &o.store, []string{in.Label + "=" + in.Path})
			if err != nil {
				return err
			}
			s, err := d.NewSession(ctx, in.Label)
			if err != nil {
				return err
			}
			for i := range rows {
				if err := s.InsertResult(ctx, &rows[i]); err != nil {
					return err
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%d rows\n", s.ID, in.Label, len(rows))
		}
	default:
		return fmt.Errorf("unknown kind %q, want log or results", o.kind)
	}
	return nil
}

func listSessions(cmd *cobra.Command, w io.Writer, d *db.DB) error {
	sessions, err := d.Sessions(cmd.Context())
	if err != nil {
		return err
	}
	var tab texttab.Table
	tab.Row().Cell("session").Cell("created").Cell("records").Cell("source")
	tab.Rule('-')
	for _, s := range sessions {
		tab.Row().Cell(s.ID).Cell(s.Created).Cell(fmt.Sprint(s.Records), texttab.Right).Cell(s.Source)
	}
	return tab.Format(w)
}
