// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedlog

import (
	"io"
)

// A TaskStore holds the latest completion record of each task.
//
// Completion lines report a cumulative counter, so a later record for
// the same task name replaces the earlier one; counts are never summed.
// Names are kept in order of first appearance.
type TaskStore struct {
	names []string
	last  map[string]*TaskCompletion
}

// Put records tc as the latest completion of tc.TaskName.
func (s *TaskStore) Put(tc *TaskCompletion) {
	if s.last == nil {
		s.last = make(map[string]*TaskCompletion)
	}
	if _, ok := s.last[tc.TaskName]; !ok {
		s.names = append(s.names, tc.TaskName)
	}
	s.last[tc.TaskName] = tc
}

// Get returns the latest completion of the named task.
func (s *TaskStore) Get(name string) (*TaskCompletion, bool) {
	tc, ok := s.last[name]
	return tc, ok
}

// Names returns the task names in order of first appearance.
func (s *TaskStore) Names() []string {
	return s.names
}

// Len returns the number of distinct tasks.
func (s *TaskStore) Len() int {
	return len(s.names)
}

// A Log is the collected result of classifying one log.
//
// Events holds every event in input order. The remaining fields are
// per-category views of the same events, in input order, matching the
// sections of the interchange format.
type Log struct {
	Events []Event

	// Tasks keeps the latest completion per task name. Completions
	// keeps every completion record.
	Tasks       TaskStore
	Completions []*TaskCompletion

	Timing      []*TimingCheckpoint
	Scheduler   []Event // *SchedulerState and *ContextSwitch
	Memory      []*MemorySample
	Emergencies []*Emergency
	Violations  []*SafetyViolation

	// Faults accumulates fault detection cycles. Unlike Tasks,
	// nothing is overwritten.
	Faults []*FaultCycle

	// Regressions holds the clock regressions rejected under
	// RegressionReject.
	Regressions []*ClockRegressionError

	// Clock is the simulation clock after the last event.
	Clock Clock
}

// Add appends ev to the log. An event of a variant Log does not know
// is kept in Events only.
func (l *Log) Add(ev Event) {
	l.Events = append(l.Events, ev)
	switch ev := ev.(type) {
	case *TaskCompletion:
		l.Tasks.Put(ev)
		l.Completions = append(l.Completions, ev)
	case *TimingCheckpoint:
		l.Timing = append(l.Timing, ev)
		if !ev.MarksReportBoundary {
			if ev.SimSeconds < l.Clock.Seconds {
				l.Clock.Regressions++
			}
			l.Clock.Seconds = ev.SimSeconds
			l.Clock.Session = ev.Session
		}
	case *SchedulerState, *ContextSwitch:
		l.Scheduler = append(l.Scheduler, ev)
	case *MemorySample:
		l.Memory = append(l.Memory, ev)
	case *Emergency:
		l.Emergencies = append(l.Emergencies, ev)
	case *SafetyViolation:
		l.Violations = append(l.Violations, ev)
	case *FaultCycle:
		l.Faults = append(l.Faults, ev)
	}
}

// AddRecord adds a record read by a Reader.
func (l *Log) AddRecord(rec Record) {
	switch rec := rec.(type) {
	case Event:
		l.Add(rec)
	case *ClockRegressionError:
		l.Regressions = append(l.Regressions, rec)
	}
}

// ReadLog classifies every line of r with c and collects the result.
// fileName is used in positions.
func ReadLog(r io.Reader, fileName string, c Classifier) (*Log, error) {
	rd := NewReader(r, fileName)
	rd.Classifier = c
	l := new(Log)
	for rd.Scan() {
		l.AddRecord(rd.Record())
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	l.Clock = rd.Clock()
	return l, nil
}

// NewLog collects a sequence of events.
func NewLog(events []Event) *Log {
	l := new(Log)
	for _, ev := range events {
		l.Add(ev)
	}
	return l
}

// TimingReports returns the number of timing analysis report banners.
func (l *Log) TimingReports() int {
	n := 0
	for _, t := range l.Timing {
		if t.MarksReportBoundary {
			n++
		}
	}
	return n
}

// A TaskPerformance is the latest completion counter of one task.
type TaskPerformance struct {
	Count          int    `json:"count"`
	Unit           string `json:"unit"`
	CompletionTime string `json:"completion_time,omitempty"`
}

// A Summary gives the headline figures of a Log.
type Summary struct {
	SimulationDuration int                        `json:"simulation_duration"`
	TotalTasks         int                        `json:"total_tasks"`
	TaskPerformance    map[string]TaskPerformance `json:"task_performance"`

	SchedulerEventsCount  int `json:"scheduler_events_count"`
	EmergencyEventsCount  int `json:"emergency_events_count"`
	SafetyViolationsCount int `json:"safety_violations_count"`
	TimingReportsCount    int `json:"timing_reports_count"`
	MemoryEntriesCount    int `json:"memory_entries_count"`
	FaultCyclesCount      int `json:"fault_cycles_count"`
	ClockRegressions      int `json:"clock_regressions,omitempty"`
}

// Summary computes the summary of l. TotalTasks counts distinct task
// names; fault cycles are counted separately.
func (l *Log) Summary() Summary {
	perf := make(map[string]TaskPerformance, l.Tasks.Len())
	for _, name := range l.Tasks.Names() {
		tc, _ := l.Tasks.Get(name)
		perf[name] = TaskPerformance{tc.Count, tc.Unit, tc.Timestamp}
	}
	return Summary{
		SimulationDuration:    l.Clock.Seconds,
		TotalTasks:            l.Tasks.Len(),
		TaskPerformance:       perf,
		SchedulerEventsCount:  len(l.Scheduler),
		EmergencyEventsCount:  len(l.Emergencies),
		SafetyViolationsCount: len(l.Violations),
		TimingReportsCount:    l.TimingReports(),
		MemoryEntriesCount:    len(l.Memory),
		FaultCyclesCount:      len(l.Faults),
		ClockRegressions:      l.Clock.Regressions + len(l.Regressions),
	}
}
