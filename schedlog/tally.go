// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedlog

// A Tally keeps running counters over a live event stream.
//
// It is the streaming counterpart of Log: it retains only the latest
// counter values, so memory stays constant however long the stream
// runs.
type Tally struct {
	Clock Clock

	// Tasks is the latest completion count per task.
	Tasks TaskStore

	// ContextSwitches is the latest cumulative switch total.
	ContextSwitches int

	Emergencies int
	Violations  int
	Faults      int
}

// A Notice says what a caller watching the stream should print after
// an event.
type Notice int

const (
	NoticeNone      Notice = iota
	NoticeStatus           // the clock advanced; print the status block
	NoticeEmergency        // print the emergency immediately
	NoticeViolation        // print the violation immediately
)

// Observe folds ev into the tally.
func (t *Tally) Observe(ev Event) Notice {
	switch ev := ev.(type) {
	case *TimingCheckpoint:
		if ev.MarksReportBoundary {
			return NoticeNone
		}
		if ev.SimSeconds < t.Clock.Seconds {
			t.Clock.Regressions++
		}
		t.Clock.Seconds, t.Clock.Session = ev.SimSeconds, ev.Session
		return NoticeStatus
	case *TaskCompletion:
		t.Tasks.Put(ev)
	case *ContextSwitch:
		t.ContextSwitches = ev.TotalSwitches
	case *Emergency:
		t.Emergencies++
		return NoticeEmergency
	case *SafetyViolation:
		t.Violations++
		return NoticeViolation
	case *FaultCycle:
		t.Faults++
	}
	return NoticeNone
}
