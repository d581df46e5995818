// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Schedstat extracts and compares the performance of real-time
// schedulers from the logs and result files of an evaluation harness.
//
// Usage:
//
//	schedstat parse [-o dest] [-regression policy] [log ...]
//	schedstat monitor [log]
//	schedstat events [-kind k] [-by fields] [-session id] [log ...]
//	schedstat compare [-by fields] [-metric m] [-best field] [-toggle field] [-format f] file ...
//	schedstat chart [-x field] [-metric m] -o out.png file ...
//	schedstat save [-list] [-delete id] [file ...]
//
// The parse command classifies each line of an execution log into
// typed events and prints a summary of the run, or writes the events
// in the JSON interchange format to dest. dest may be a file, "-" for
// standard output, or a gs://bucket/object URL.
//
// The monitor command follows a log as it is written, printing a
// status block every time the simulation clock advances and every
// emergency or safety violation as soon as it is seen.
//
// The compare command loads tabular result files, groups their rows
// by the -by attributes and prints one row of statistics per group,
// ordered by -metric. With -best, it instead reports the group with
// the lowest value of each metric in every partition of the named
// attribute. With -toggle, it reports the improvement from turning the
// named attribute OFF to ON, such as dynamic weighting.
//
// The chart command draws the same statistics as a grouped bar chart.
//
// The save command stores logs and result files in a SQL database so
// that later commands can read them back with -session.
//
// Settings default to the values in $XDG_CONFIG_HOME/schedstat/config.toml.
// Flags given on the command line override the file.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtsched/schedstat/internal/config"
)

func main() {
	log.SetPrefix("schedstat: ")
	log.SetFlags(0)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globals are the settings shared by every command.
type globals struct {
	verbose    bool
	configPath string
	file       config.File
}

// vlogf logs a progress message if -v was given.
func (g *globals) vlogf(format string, args ...interface{}) {
	if g.verbose {
		log.Printf(format, args...)
	}
}

func newRootCmd() *cobra.Command {
	g := new(globals)
	rootCmd := &cobra.Command{
		Use:           "schedstat",
		Short:         "Analyze real-time scheduler evaluation logs and results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			f, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			g.file = f
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "print progress messages")
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", config.DefaultPath(), "configuration `file`")

	rootCmd.AddCommand(newParseCmd(g))
	rootCmd.AddCommand(newMonitorCmd(g))
	rootCmd.AddCommand(newEventsCmd(g))
	rootCmd.AddCommand(newCompareCmd(g))
	rootCmd.AddCommand(newChartCmd(g))
	rootCmd.AddCommand(newSaveCmd(g))

	rootCmd.SetErr(os.Stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n%s", err, cmd.UsageString())
	})
	return rootCmd
}

// run is the shared RunE wrapper: it logs the error the way the rest of
// the command's output is logged.
func run(f func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := f(cmd, args)
		if err != nil {
			log.Print(err)
		}
		return err
	}
}

// applyString sets *target to *value unless the flag was given on the
// command line or the file did not set it.
func applyString(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStrings(cmd *cobra.Command, name string, target *[]string, value []string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = value
}
