// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rtsched/schedstat/internal/input"
	"github.com/rtsched/schedstat/schedlog"
)

var (
	statusStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	emergencyStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4F"))
	violationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA940"))
)

func newMonitorCmd(g *globals) *cobra.Command {
	var o classifierFlags
	cmd := &cobra.Command{
		Use:   "monitor [log]",
		Short: "Follow a log and report progress as it is written",
		Long: `Monitor reads a log line by line, typically piped from a running
simulation. It prints the running task counters every time the
simulation clock advances, and each emergency or safety violation as
soon as it is read. It stops at the end of the input or on interrupt.`,
		Args: cobra.MaximumNArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) error {
			c, err := o.classifier(cmd, g)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ins := input.Parse(args, true, false)
			rc, err := input.Open(ins[0])
			if err != nil {
				return err
			}
			defer rc.Close()
			return monitor(ctx, cmd.OutOrStdout(), rc, ins[0].Label, c)
		}),
	}
	o.register(cmd)
	return cmd
}

// monitor folds the events of r into a Tally and prints notices as
// they occur. It returns when r is exhausted or ctx is done.
func monitor(ctx context.Context, w io.Writer, r io.Reader, name string, c schedlog.Classifier) error {
	rd := schedlog.NewReader(r, name)
	rd.Classifier = c
	var t schedlog.Tally
	for rd.Scan() {
		if ctx.Err() != nil {
			break
		}
		switch rec := rd.Record().(type) {
		case *schedlog.ClockRegressionError:
			fmt.Fprintln(w, violationStyle.Render("clock: "+rec.Error()))
		case schedlog.Event:
			switch t.Observe(rec) {
			case schedlog.NoticeStatus:
				fmt.Fprint(w, status(&t))
			case schedlog.NoticeEmergency:
				e := rec.(*schedlog.Emergency)
				fmt.Fprintln(w, emergencyStyle.Render(fmt.Sprintf("EMERGENCY at %ds: %s", e.SimSeconds, e.Message)))
			case schedlog.NoticeViolation:
				fmt.Fprintln(w, violationStyle.Render(fmt.Sprintf("safety violation at %ds", rec.(*schedlog.SafetyViolation).SimSeconds)))
			}
		}
	}
	if err := rd.Err(); err != nil {
		return err
	}
	fmt.Fprintln(w, statusStyle.Render(fmt.Sprintf("monitored %d s: %d emergencies, %d violations, %d fault cycles",
		t.Clock.Seconds, t.Emergencies, t.Violations, t.Faults)))
	return nil
}

// status renders the status block printed on every clock advance.
func status(t *schedlog.Tally) string {
	var b strings.Builder
	head := fmt.Sprintf("simulation time %d s", t.Clock.Seconds)
	if t.Clock.Session > 0 {
		head += fmt.Sprintf(" (session %d)", t.Clock.Session)
	}
	b.WriteString(statusStyle.Render(head))
	b.WriteByte('\n')
	for _, name := range t.Tasks.Names() {
		tc, _ := t.Tasks.Get(name)
		fmt.Fprintf(&b, "  %s %d %s\n", labelStyle.Render(name+":"), tc.Count, tc.Unit)
	}
	fmt.Fprintf(&b, "  %s %d\n", labelStyle.Render("context switches:"), t.ContextSwitches)
	if t.Emergencies+t.Violations > 0 {
		fmt.Fprintf(&b, "  %s %d emergencies, %d violations\n", labelStyle.Render("alerts:"), t.Emergencies, t.Violations)
	}
	return b.String()
}
