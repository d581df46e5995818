// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedlog

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseWallClock(t *testing.T) {
	for _, test := range []struct {
		in   string
		want time.Duration
	}{
		{"00:00:01.050,000", time.Second + 50*time.Millisecond},
		{"01:02:03.004,005", time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond + 5*time.Microsecond},
		{"00:00:02.5", 2*time.Second + 500*time.Millisecond},
		{"00:00:02.25,010", 2*time.Second + 250*time.Millisecond + 10*time.Microsecond},
		{"00:00:00.000001", time.Microsecond},
	} {
		got, err := ParseWallClock(test.in)
		if err != nil || got != test.want {
			t.Errorf("ParseWallClock(%q) = %v, %v, want %v", test.in, got, err, test.want)
		}
	}
	for _, bad := range []string{"", "12:00", "aa:00:00.000,000", "00:00:00.x,000", "00:-1:00.000,000", "00:00:00.1234567890"} {
		if _, err := ParseWallClock(bad); err == nil {
			t.Errorf("ParseWallClock(%q): want error", bad)
		}
	}
}

func TestWallElapsedRollover(t *testing.T) {
	got, err := WallElapsed("23:59:59.000,000", "00:00:01.000,000")
	if err != nil || got != 2*time.Second {
		t.Errorf("WallElapsed across midnight = %v, %v, want 2s", got, err)
	}
}

func TestTimeline(t *testing.T) {
	tl := readSample(t).Timeline()
	want := Timeline{Duration: 10, Real: time.Second, Virtual: 5, SpeedFactor: 5}
	if tl != want {
		t.Errorf("Timeline() = %+v, want %+v", tl, want)
	}

	// A single checkpoint gives no rate.
	one := NewLog([]Event{&TimingCheckpoint{Header: Header{Timestamp: "00:00:01.000,000", SimSeconds: 3}}})
	if tl := one.Timeline(); tl.SpeedFactor != 0 || tl.Duration != 3 {
		t.Errorf("single checkpoint Timeline() = %+v", tl)
	}
}

func TestPriorities(t *testing.T) {
	got := readSample(t).Priorities()
	want := []PriorityCount{{-1, 1, 50}, {5, 1, 50}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
	for _, test := range []struct {
		p    int
		want string
	}{{-3, "cooperative"}, {0, "preemptive"}, {15, "preemptive"}, {16, "system/idle"}} {
		if got := ClassOf(test.p).String(); got != test.want {
			t.Errorf("ClassOf(%d) = %s, want %s", test.p, got, test.want)
		}
	}
}

func TestCompletionRates(t *testing.T) {
	got := readSample(t).CompletionRates()
	want := []TaskRate{{Task: "Navigation", Unit: "updates", PerSec: 18.0 / 5, Samples: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}

func TestHealth(t *testing.T) {
	h := readSample(t).Health()
	if h.Emergencies != 1 || math.Abs(h.ViolationsPerSec-0.1) > 1e-9 || math.Abs(h.SchedulingPerSec-0.3) > 1e-9 {
		t.Errorf("Health() = %+v", h)
	}
	if h := NewLog(nil).Health(); h.ViolationsPerSec != 0 || h.SchedulingPerSec != 0 {
		t.Errorf("empty Health() = %+v, want zero rates", h)
	}
}
