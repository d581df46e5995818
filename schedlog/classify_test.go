// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedlog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	clk := Clock{Seconds: 7}
	h := func(ts string) Header { return Header{Timestamp: ts, SimSeconds: 7} }
	for _, test := range []struct {
		line string
		want Event
	}{
		{
			"[00:00:01.050,000] <inf> mod: Navigation Task completed 12 updates",
			&TaskCompletion{h("00:00:01.050,000"), "Navigation", 12, "updates"},
		},
		{
			"[00:00:02.000,000] <inf> critical_tasks: Flight Control Task completed 340 cycles",
			&TaskCompletion{h("00:00:02.000,000"), "Flight Control", 340, "cycles"},
		},
		{
			"Telemetry Task completed 3 messages",
			&TaskCompletion{h(""), "Telemetry", 3, "messages"},
		},
		{
			"Task completed 3 cycles",
			&TaskCompletion{h(""), "", 3, "cycles"},
		},
		{
			"[00:00:03.000,000] <inf> mission_critical: Scheduler State: Current Thread 0x20001a48, Priority 5",
			&SchedulerState{h("00:00:03.000,000"), "0x20001a48", 5},
		},
		{
			"Scheduler State: Current Thread 0x20001A48, Priority -2",
			&SchedulerState{h(""), "0x20001A48", -2},
		},
		{
			"[00:00:03.100,000] <dbg> timing_analysis: Context switch: 0x20001a48 -> 0x20001b90 (total: 118)",
			&ContextSwitch{h("00:00:03.100,000"), "0x20001a48", "0x20001b90", 118},
		},
		{
			"[00:00:01.100,000] <err> critical_tasks: EMERGENCY: thruster fault",
			&Emergency{h("00:00:01.100,000"), "thruster fault"},
		},
		{
			"[00:00:04.000,000] <wrn> critical_tasks: Safety Monitor: Safety violation detected!",
			&SafetyViolation{h("00:00:04.000,000")},
		},
		{
			"[00:00:05.000,000] <inf> timing_analysis: === TIMING ANALYSIS REPORT ===",
			&TimingCheckpoint{h("00:00:05.000,000"), true},
		},
		{
			"[00:00:05.010,000] <inf> timing_analysis: Task 3: monitored (thread ptr: 0x20002c10)",
			&MemorySample{h("00:00:05.010,000"), 3, "0x20002c10"},
		},
		{
			"[00:00:06.000,000] <inf> critical_tasks: FAULT: Detection cycle 4 - Thread 0x20001a48",
			&FaultCycle{h("00:00:06.000,000"), 4, "0x20001a48"},
		},
		{
			// Loose timestamp shape.
			"[0:00:06.5,12] FAULT: Detection cycle 9 - Thread 0xABC",
			&FaultCycle{h("0:00:06.5,12"), 9, "0xABC"},
		},
	} {
		var c Classifier
		got, next, err := c.Classify(test.line, clk)
		if err != nil {
			t.Errorf("Classify(%q): unexpected error %v", test.line, err)
			continue
		}
		if next != clk {
			t.Errorf("Classify(%q) changed clock to %+v", test.line, next)
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Classify(%q): (-want +got)\n%s", test.line, diff)
		}
	}
}

func TestClassifyDropped(t *testing.T) {
	clk := Clock{Seconds: 3}
	for _, line := range []string{
		"",
		"*** Booting Zephyr OS build v3.5.0 ***",
		"[00:00:00.000,000] <inf> main: starting",
		// Predicate matches but fields cannot be extracted.
		"Task completed many cycles",
		"Simulation Time Elapsed: soon",
		"Scheduler State: unknown",
		"Context switch: pending",
		// The memory rule requires its full pattern.
		"Task 3: monitored",
	} {
		var c Classifier
		got, next, err := c.Classify(line, clk)
		if got != nil || err != nil {
			t.Errorf("Classify(%q) = %v, %v, want nil, nil", line, got, err)
		}
		if next != clk {
			t.Errorf("Classify(%q) changed clock to %+v", line, next)
		}
	}
}

func TestClassifyOrder(t *testing.T) {
	// A line containing several markers belongs to the earliest rule.
	var c Classifier
	line := "Navigation Task completed 2 cycles EMERGENCY: late"
	got, _, _ := c.Classify(line, Clock{})
	if _, ok := got.(*TaskCompletion); !ok {
		t.Errorf("Classify(%q) = %T, want *TaskCompletion", line, got)
	}
}

func TestClassifyClock(t *testing.T) {
	lines := []string{
		"Simulation Time Elapsed: 10 seconds",
		"Task completed 3 cycles",
		"Simulation Time Elapsed: 20 seconds",
		"Task completed 4 cycles",
	}
	var c Classifier
	var clk Clock
	var got []int
	for _, line := range lines {
		var ev Event
		var err error
		ev, clk, err = c.Classify(line, clk)
		if err != nil {
			t.Fatal(err)
		}
		if tc, ok := ev.(*TaskCompletion); ok {
			got = append(got, tc.SimSeconds)
		}
	}
	if want := []int{10, 20}; !cmp.Equal(want, got) {
		t.Errorf("completion clocks = %v, want %v", got, want)
	}
	if clk.Seconds != 20 {
		t.Errorf("final clock = %d, want 20", clk.Seconds)
	}
}

func TestClassifyBeforeFirstMarker(t *testing.T) {
	var c Classifier
	ev, _, _ := c.Classify("EMERGENCY: early", Clock{})
	if ev.Head().SimSeconds != 0 {
		t.Errorf("event before first marker stamped %d, want 0", ev.Head().SimSeconds)
	}
}

func TestClassifyRegression(t *testing.T) {
	line := "Simulation Time Elapsed: 4 seconds"
	start := Clock{Seconds: 9}

	t.Run("accept", func(t *testing.T) {
		c := Classifier{Regression: RegressionAccept}
		ev, next, err := c.Classify(line, start)
		if err != nil {
			t.Fatal(err)
		}
		if want := (Clock{Seconds: 4, Regressions: 1}); next != want {
			t.Errorf("clock = %+v, want %+v", next, want)
		}
		if ev.Head().SimSeconds != 4 {
			t.Errorf("checkpoint stamped %d, want 4", ev.Head().SimSeconds)
		}
	})

	t.Run("session", func(t *testing.T) {
		c := Classifier{Regression: RegressionNewSession}
		ev, next, err := c.Classify(line, start)
		if err != nil {
			t.Fatal(err)
		}
		if want := (Clock{Seconds: 4, Session: 1, Regressions: 1}); next != want {
			t.Errorf("clock = %+v, want %+v", next, want)
		}
		if ev.Head().Session != 1 {
			t.Errorf("checkpoint session = %d, want 1", ev.Head().Session)
		}
		ev, _, _ = c.Classify("EMERGENCY: x", next)
		if ev.Head().Session != 1 {
			t.Errorf("later event session = %d, want 1", ev.Head().Session)
		}
	})

	t.Run("reject", func(t *testing.T) {
		c := Classifier{Regression: RegressionReject}
		ev, next, err := c.Classify(line, start)
		if ev != nil {
			t.Errorf("event = %v, want nil", ev)
		}
		if next != start {
			t.Errorf("clock = %+v, want unchanged %+v", next, start)
		}
		want := &ClockRegressionError{From: 9, To: 4}
		if diff := cmp.Diff(want, err); diff != "" {
			t.Errorf("error: (-want +got)\n%s", diff)
		}
	})

	t.Run("equal", func(t *testing.T) {
		c := Classifier{Regression: RegressionReject}
		_, next, err := c.Classify("Simulation Time Elapsed: 9 seconds", start)
		if err != nil || next != start {
			t.Errorf("repeating the clock value: got %+v, %v", next, err)
		}
	})
}

func TestParseRegressionPolicy(t *testing.T) {
	for _, test := range []struct {
		in   string
		want RegressionPolicy
	}{
		{"", RegressionAccept},
		{"accept", RegressionAccept},
		{"session", RegressionNewSession},
		{"reject", RegressionReject},
	} {
		got, err := ParseRegressionPolicy(test.in)
		if err != nil || got != test.want {
			t.Errorf("ParseRegressionPolicy(%q) = %v, %v, want %v", test.in, got, err, test.want)
		}
		if test.in != "" && got.String() != test.in {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), test.in)
		}
	}
	if _, err := ParseRegressionPolicy("rollover"); err == nil {
		t.Errorf("ParseRegressionPolicy(%q): want error", "rollover")
	}
}

func TestTimestamp(t *testing.T) {
	for _, test := range []struct {
		line, want string
	}{
		{"[00:50:04.004,123] <inf> x: y", "00:50:04.004,123"},
		{"[1:02:03.4,5] y", "1:02:03.4,5"},
		{"no stamp", ""},
		{"[00:50:04] truncated", ""},
	} {
		if got := Timestamp(test.line); got != test.want {
			t.Errorf("Timestamp(%q) = %q, want %q", test.line, got, test.want)
		}
	}
}
