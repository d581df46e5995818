// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedlog

import (
	"regexp"
	"strconv"
	"strings"
)

// A Classifier turns single log lines into Events.
//
// Classification is a pure function of the line and the Clock passed
// in. The zero Classifier is ready to use and accepts clock
// regressions as-is.
type Classifier struct {
	// Regression decides what a backward time marker does.
	Regression RegressionPolicy
}

// A rule is one line shape. match is a cheap predicate that selects
// the rule; patterns are tried in order to extract fields, strictest
// first. A rule whose patterns all fail produces no event.
type rule struct {
	name     string
	match    func(line string) bool
	patterns []*regexp.Regexp
	build    func(c *Classifier, m []string, h Header, clk Clock) (Event, Clock, error)
}

func contains(substr string) func(string) bool {
	return func(line string) bool { return strings.Contains(line, substr) }
}

var (
	timestampPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\[(\d{2}:\d{2}:\d{2}\.\d{3},\d{3})\]`),
		regexp.MustCompile(`\[(\d{1,2}:\d{2}:\d{2}\.\d+,\d+)\]`),
	}

	memoryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`<inf> timing_analysis: Task (\d+): monitored \(thread ptr: (0x[0-9a-f]+)\)`),
		regexp.MustCompile(`Task (\d+): monitored \(thread ptr: (0x[0-9a-fA-F]+)\)`),
	}
	faultPatterns = []*regexp.Regexp{
		regexp.MustCompile(`<inf> critical_tasks: FAULT: Detection cycle (\d+) - Thread (0x[0-9a-f]+)`),
		regexp.MustCompile(`FAULT: Detection cycle (\d+) - Thread (0x[0-9a-fA-F]+)`),
	}
)

// rules is the fixed dispatch order. The first rule whose predicate
// matches owns the line, even if its patterns then fail.
var rules = []rule{
	{
		name:  "task completion",
		match: contains("Task completed"),
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`<inf> \w+: (\w+(?:\s+\w+)*) Task completed (\d+) (\w+)`),
			regexp.MustCompile(`(?:(\w+(?:\s+\w+)*)\s+)?Task completed (\d+) (\w+)`),
		},
		build: func(_ *Classifier, m []string, h Header, clk Clock) (Event, Clock, error) {
			n, ok := atoi(m[2])
			if !ok {
				return nil, clk, nil
			}
			return &TaskCompletion{Header: h, TaskName: m[1], Count: n, Unit: m[3]}, clk, nil
		},
	},
	{
		name:  "simulation time",
		match: contains("Simulation Time Elapsed"),
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`<inf> mission_critical: Simulation Time Elapsed: (\d+) seconds`),
			regexp.MustCompile(`Simulation Time Elapsed: (\d+) seconds`),
		},
		build: func(c *Classifier, m []string, h Header, clk Clock) (Event, Clock, error) {
			n, ok := atoi(m[1])
			if !ok {
				return nil, clk, nil
			}
			next, ok := clk.advance(n, c.Regression)
			if !ok {
				return nil, clk, &ClockRegressionError{h.File, h.Line, clk.Seconds, n}
			}
			h.SimSeconds, h.Session = next.Seconds, next.Session
			return &TimingCheckpoint{Header: h}, next, nil
		},
	},
	{
		name:  "scheduler state",
		match: contains("Scheduler State"),
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`<inf> mission_critical: Scheduler State: Current Thread (0x[0-9a-f]+), Priority (\d+)`),
			regexp.MustCompile(`Current Thread (0x[0-9a-fA-F]+), Priority (-?\d+)`),
		},
		build: func(_ *Classifier, m []string, h Header, clk Clock) (Event, Clock, error) {
			prio, ok := atoi(m[2])
			if !ok {
				return nil, clk, nil
			}
			return &SchedulerState{Header: h, ThreadID: m[1], Priority: prio}, clk, nil
		},
	},
	{
		name:  "context switch",
		match: contains("Context switch"),
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`<dbg> timing_analysis: Context switch: (0x[0-9a-f]+) -> (0x[0-9a-f]+) \(total: (\d+)\)`),
			regexp.MustCompile(`Context switch: (0x[0-9a-fA-F]+) -> (0x[0-9a-fA-F]+) \(total: (\d+)\)`),
		},
		build: func(_ *Classifier, m []string, h Header, clk Clock) (Event, Clock, error) {
			total, ok := atoi(m[3])
			if !ok {
				return nil, clk, nil
			}
			return &ContextSwitch{Header: h, FromThread: m[1], ToThread: m[2], TotalSwitches: total}, clk, nil
		},
	},
	{
		name:  "emergency",
		match: contains("EMERGENCY:"),
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`<err> critical_tasks: EMERGENCY: (.+)`),
			regexp.MustCompile(`EMERGENCY: (.+)`),
		},
		build: func(_ *Classifier, m []string, h Header, clk Clock) (Event, Clock, error) {
			return &Emergency{Header: h, Message: m[1]}, clk, nil
		},
	},
	{
		name:  "safety violation",
		match: contains("Safety violation detected"),
		build: func(_ *Classifier, _ []string, h Header, clk Clock) (Event, Clock, error) {
			return &SafetyViolation{Header: h}, clk, nil
		},
	},
	{
		name:  "timing report",
		match: contains("TIMING ANALYSIS REPORT"),
		build: func(_ *Classifier, _ []string, h Header, clk Clock) (Event, Clock, error) {
			return &TimingCheckpoint{Header: h, MarksReportBoundary: true}, clk, nil
		},
	},
	{
		name:     "memory",
		match:    matchAny(memoryPatterns),
		patterns: memoryPatterns,
		build: func(_ *Classifier, m []string, h Header, clk Clock) (Event, Clock, error) {
			id, ok := atoi(m[1])
			if !ok {
				return nil, clk, nil
			}
			return &MemorySample{Header: h, TaskID: id, ThreadPtr: m[2]}, clk, nil
		},
	},
	{
		name:     "fault detection",
		match:    matchAny(faultPatterns),
		patterns: faultPatterns,
		build: func(_ *Classifier, m []string, h Header, clk Clock) (Event, Clock, error) {
			cycle, ok := atoi(m[1])
			if !ok {
				return nil, clk, nil
			}
			return &FaultCycle{Header: h, Cycle: cycle, ThreadID: m[2]}, clk, nil
		},
	},
}

func matchAny(res []*regexp.Regexp) func(string) bool {
	return func(line string) bool {
		for _, re := range res {
			if re.MatchString(line) {
				return true
			}
		}
		return false
	}
}

// Classify classifies a single log line under clock clk.
//
// It returns the event the line produces, or nil if the line matches no
// rule or its fields cannot be extracted, together with the clock to
// use for the next line. Only "Simulation Time Elapsed" lines change
// the clock. The error is non-nil only for a *ClockRegressionError
// under RegressionReject, in which case the event is nil and the clock
// is unchanged.
func (c *Classifier) Classify(line string, clk Clock) (Event, Clock, error) {
	return c.classify(line, Header{}, clk)
}

// classify is Classify with a header pre-populated with the source
// position.
func (c *Classifier) classify(line string, h Header, clk Clock) (Event, Clock, error) {
	h.Timestamp = Timestamp(line)
	h.SimSeconds = clk.Seconds
	h.Session = clk.Session
	for i := range rules {
		r := &rules[i]
		if !r.match(line) {
			continue
		}
		var m []string
		if len(r.patterns) > 0 {
			if m = firstSubmatch(r.patterns, line); m == nil {
				return nil, clk, nil
			}
		}
		return r.build(c, m, h, clk)
	}
	return nil, clk, nil
}

// Timestamp returns the bracketed wall-clock prefix of line, such as
// "00:00:01.050,000", or "" if line has none.
func Timestamp(line string) string {
	if m := firstSubmatch(timestampPatterns, line); m != nil {
		return m[1]
	}
	return ""
}

func firstSubmatch(res []*regexp.Regexp, line string) []string {
	for _, re := range res {
		if m := re.FindStringSubmatch(line); m != nil {
			return m
		}
	}
	return nil
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
