// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rtsched/schedstat/internal/export"
	"github.com/rtsched/schedstat/internal/input"
	"github.com/rtsched/schedstat/schedlog"
	"github.com/rtsched/schedstat/schedstat"
)

type parseOptions struct {
	classifierFlags
	output      string
	credentials string
}

func newParseCmd(g *globals) *cobra.Command {
	var o parseOptions
	cmd := &cobra.Command{
		Use:   "parse [log ...]",
		Short: "Summarize execution logs or export their events as JSON",
		Long: `Parse classifies every line of each log into typed events.

Without -o it prints a summary of each run: task performance, emergency
events, safety violations, the priority distribution and the timeline.
With -o it writes the events of a single log in the JSON interchange
format to a file, "-" for standard output, or a gs://bucket/object URL.
With no arguments, parse reads standard input.`,
		RunE: run(func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, g, &o, args)
		}),
	}
	o.classifierFlags.register(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the JSON interchange file to `dest`")
	cmd.Flags().StringVar(&o.credentials, "credentials", "", "service account key `file` for gs:// destinations")
	return cmd
}

func runParse(cmd *cobra.Command, g *globals, o *parseOptions, args []string) error {
	c, err := o.classifier(cmd, g)
	if err != nil {
		return err
	}
	inputs := input.Parse(args, true, false)
	if o.output != "" && len(inputs) != 1 {
		return fmt.Errorf("-o takes exactly one log, have %d", len(inputs))
	}

	w := cmd.OutOrStdout()
	for i, in := range inputs {
		l, err := readLog(in, c)
		if err != nil {
			return err
		}
		warnRegressions(l)
		g.vlogf("%s: %d events", in.Label, len(l.Events))

		if o.output != "" {
			return exportLog(cmd, g, o, l)
		}
		if len(inputs) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "==> %s <==\n", in.Label)
		}
		if err := schedstat.FormatSummary(w, l); err != nil {
			return err
		}
	}
	return nil
}

func exportLog(cmd *cobra.Command, g *globals, o *parseOptions, l *schedlog.Log) error {
	applyString(cmd, "credentials", &o.credentials, g.file.Export.Credentials)
	opts := export.Options{
		CredentialsFile: o.credentials,
		ContentType:     "application/json",
		Stdout:          cmd.OutOrStdout(),
	}
	err := export.WriteTo(cmd.Context(), o.output, opts, func(w io.Writer) error {
		return l.Export().Write(w)
	})
	if err != nil {
		return err
	}
	if o.output != "-" {
		g.vlogf("wrote %s", o.output)
	}
	return nil
}
