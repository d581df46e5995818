// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedlog

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParseWallClock parses a line timestamp such as "00:50:04.004,123"
// into the time of day it denotes. The digits after the dot are a
// fraction of a second, so ".5" and ".500" agree. The part after the
// comma is microseconds and may be omitted.
func ParseWallClock(ts string) (time.Duration, error) {
	bad := func() (time.Duration, error) {
		return 0, fmt.Errorf("malformed wall-clock timestamp %q", ts)
	}
	hms, frac, ok := strings.Cut(ts, ".")
	if !ok {
		return bad()
	}
	parts := strings.Split(hms, ":")
	if len(parts) != 3 {
		return bad()
	}
	var d time.Duration
	for i, unit := range []time.Duration{time.Hour, time.Minute, time.Second} {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return bad()
		}
		d += time.Duration(n) * unit
	}
	sec, us, _ := strings.Cut(frac, ",")
	if sec != "" {
		n, err := strconv.Atoi(sec)
		if err != nil || n < 0 || len(sec) > 9 {
			return bad()
		}
		// The first fraction is a decimal fraction of a second.
		d += time.Duration(n) * time.Duration(math.Pow10(9-len(sec)))
	}
	if us != "" {
		n, err := strconv.Atoi(us)
		if err != nil || n < 0 {
			return bad()
		}
		d += time.Duration(n) * time.Microsecond
	}
	return d, nil
}

// WallElapsed returns the wall-clock time from timestamp a to b. A b
// earlier than a is taken to be on the following day.
func WallElapsed(a, b string) (time.Duration, error) {
	ta, err := ParseWallClock(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseWallClock(b)
	if err != nil {
		return 0, err
	}
	if tb < ta {
		tb += 24 * time.Hour
	}
	return tb - ta, nil
}

// A Timeline relates simulation time to wall-clock time.
type Timeline struct {
	Duration int // final simulation seconds

	// Real and Virtual are the wall-clock and simulated time
	// between the first and last timestamped clock checkpoints.
	Real    time.Duration
	Virtual int

	// SpeedFactor is Virtual seconds per Real second, or 0 if
	// Real is zero.
	SpeedFactor float64
}

// Timeline computes the timeline of l from its clock checkpoints.
func (l *Log) Timeline() Timeline {
	tl := Timeline{Duration: l.Clock.Seconds}
	var marks []*TimingCheckpoint
	for _, t := range l.Timing {
		if !t.MarksReportBoundary && t.Timestamp != "" {
			marks = append(marks, t)
		}
	}
	if len(marks) < 2 {
		return tl
	}
	first, last := marks[0], marks[len(marks)-1]
	wall, err := WallElapsed(first.Timestamp, last.Timestamp)
	if err != nil {
		return tl
	}
	tl.Real = wall
	tl.Virtual = last.SimSeconds - first.SimSeconds
	if wall > 0 {
		tl.SpeedFactor = float64(tl.Virtual) / wall.Seconds()
	}
	return tl
}

// A PriorityClass groups thread priorities the way the kernel
// treats them.
type PriorityClass int

const (
	Cooperative PriorityClass = iota // negative priorities
	Preemptive                       // 0 through 15
	SystemIdle                       // above 15
)

// ClassOf returns the class of priority p.
func ClassOf(p int) PriorityClass {
	switch {
	case p < 0:
		return Cooperative
	case p <= 15:
		return Preemptive
	}
	return SystemIdle
}

func (c PriorityClass) String() string {
	switch c {
	case Cooperative:
		return "cooperative"
	case Preemptive:
		return "preemptive"
	}
	return "system/idle"
}

// A PriorityCount is the number of scheduler state samples observed at
// one priority.
type PriorityCount struct {
	Priority int
	Count    int
	Percent  float64
}

// Priorities returns the distribution of priorities over l's scheduler
// state samples, ordered by priority.
func (l *Log) Priorities() []PriorityCount {
	counts := make(map[int]int)
	total := 0
	for _, ev := range l.Scheduler {
		if s, ok := ev.(*SchedulerState); ok {
			counts[s.Priority]++
			total++
		}
	}
	out := make([]PriorityCount, 0, len(counts))
	for p, n := range counts {
		out = append(out, PriorityCount{p, n, 100 * float64(n) / float64(total)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// A TaskRate is the completion rate of one task between its first and
// last completion records.
type TaskRate struct {
	Task    string
	Unit    string
	PerSec  float64 // completions per simulated second
	Samples int
}

// CompletionRates returns the completion rate of each task with at
// least two completion records spanning nonzero simulated time, in
// order of first appearance.
func (l *Log) CompletionRates() []TaskRate {
	first := make(map[string]*TaskCompletion)
	samples := make(map[string]int)
	for _, tc := range l.Completions {
		if _, ok := first[tc.TaskName]; !ok {
			first[tc.TaskName] = tc
		}
		samples[tc.TaskName]++
	}
	var out []TaskRate
	for _, name := range l.Tasks.Names() {
		a := first[name]
		b, _ := l.Tasks.Get(name)
		dt := b.SimSeconds - a.SimSeconds
		if samples[name] < 2 || dt <= 0 {
			continue
		}
		out = append(out, TaskRate{name, b.Unit, float64(b.Count-a.Count) / float64(dt), samples[name]})
	}
	return out
}

// Health gives per-second event rates over the simulated duration.
type Health struct {
	ViolationsPerSec float64
	SchedulingPerSec float64
	Emergencies      int
}

// Health computes rates over l's simulated duration. Rates are 0 if no
// simulated time has elapsed.
func (l *Log) Health() Health {
	h := Health{Emergencies: len(l.Emergencies)}
	if d := float64(l.Clock.Seconds); d > 0 {
		h.ViolationsPerSec = float64(len(l.Violations)) / d
		h.SchedulingPerSec = float64(len(l.Scheduler)) / d
	}
	return h
}
