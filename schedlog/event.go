// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schedlog extracts typed events from the free-text execution
// logs of a real-time scheduler evaluation run.
//
// A log is a sequence of loosely structured lines such as
//
//	[00:00:01.000,000] <inf> mission_critical: Simulation Time Elapsed: 5 seconds
//	[00:00:01.050,000] <inf> mod: Navigation Task completed 12 updates
//
// The Classifier recognizes a fixed, ordered set of line shapes and
// turns each recognized line into one Event. Every Event is stamped
// with the simulation clock as it stood when the line was read: the
// clock is set only by "Simulation Time Elapsed" lines and carries
// forward to every later event until the next such line.
//
// The Reader applies a Classifier to a stream, and a Log collects the
// resulting events into the per-category sequences of the interchange
// format (see Export).
package schedlog

import (
	"fmt"
	"strconv"
)

// A Kind identifies an Event variant.
type Kind int

const (
	KindTaskCompletion Kind = iota
	KindSchedulerState
	KindContextSwitch
	KindEmergency
	KindSafetyViolation
	KindTimingCheckpoint
	KindMemorySample
	KindFaultCycle
)

var kindNames = [...]string{
	KindTaskCompletion:   "task_completion",
	KindSchedulerState:   "scheduler_state",
	KindContextSwitch:    "context_switch",
	KindEmergency:        "emergency",
	KindSafetyViolation:  "safety_violation",
	KindTimingCheckpoint: "timing_checkpoint",
	KindMemorySample:     "memory_sample",
	KindFaultCycle:       "fault_cycle",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// A Record is a single record produced by a Reader. It is either an
// Event or a *ClockRegressionError.
type Record interface {
	// Pos returns the position of this record as a file name and a
	// 1-based line number within that file. Records that were not
	// read from a file return "", 0.
	Pos() (fileName string, line int)
}

// An Event is a typed record extracted from one log line.
//
// Events are immutable once produced. The concrete types are
// *TaskCompletion, *SchedulerState, *ContextSwitch, *Emergency,
// *SafetyViolation, *TimingCheckpoint, *MemorySample and *FaultCycle.
type Event interface {
	Record

	// Kind reports the variant of this event.
	Kind() Kind

	// Head returns the fields common to every variant.
	Head() Header

	// Attr and Metric expose the event's fields by name for
	// grouping and aggregation. See package schedproc.
	Attr(name string) (string, bool)
	Metric(name string) (float64, bool)

	isEvent()
}

// Header holds the fields every Event variant carries.
type Header struct {
	// Timestamp is the wall-clock prefix of the line, such as
	// "00:00:01.050,000", or "" if the line had none.
	Timestamp string `json:"wall_clock_timestamp,omitempty"`

	// SimSeconds is the simulation clock when the line was
	// classified.
	SimSeconds int `json:"simulation_seconds"`

	// Session counts the clock regressions treated as new runs
	// under RegressionNewSession. It is 0 otherwise.
	Session int `json:"session,omitempty"`

	// File and Line locate the source line.
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

// Pos returns the source position of the event.
func (h *Header) Pos() (string, int) {
	return h.File, h.Line
}

// Head returns a copy of h.
func (h *Header) Head() Header {
	return *h
}

func (*Header) isEvent() {}

// attr returns the attributes shared by every variant.
func (h *Header) attr(k Kind, name string) (string, bool) {
	switch name {
	case "kind":
		return k.String(), true
	case "session":
		return strconv.Itoa(h.Session), true
	case "file":
		return h.File, h.File != ""
	}
	return "", false
}

func (h *Header) metric(name string) (float64, bool) {
	if name == "simulation_seconds" {
		return float64(h.SimSeconds), true
	}
	return 0, false
}

// TaskCompletion reports a task's cumulative completion counter, as in
// "Navigation Task completed 12 updates".
type TaskCompletion struct {
	Header
	TaskName string `json:"task_name"`
	Count    int    `json:"count"`
	Unit     string `json:"unit"`
}

// SchedulerState reports the running thread and its priority.
type SchedulerState struct {
	Header
	ThreadID string `json:"thread_id"`
	Priority int    `json:"priority"`
}

// ContextSwitch reports a switch between two threads and the running
// total of switches.
type ContextSwitch struct {
	Header
	FromThread    string `json:"from_thread"`
	ToThread      string `json:"to_thread"`
	TotalSwitches int    `json:"total_switches"`
}

// Emergency carries the message following "EMERGENCY: ".
type Emergency struct {
	Header
	Message string `json:"message"`
}

// SafetyViolation marks a "Safety violation detected!" line.
type SafetyViolation struct {
	Header
}

// TimingCheckpoint marks a point on the simulation timeline. A
// "Simulation Time Elapsed" line produces a checkpoint stamped with the
// new clock value; the "TIMING ANALYSIS REPORT" banner produces one
// with MarksReportBoundary set.
type TimingCheckpoint struct {
	Header
	MarksReportBoundary bool `json:"marks_report_boundary"`
}

// MemorySample reports a monitored task and its thread pointer.
type MemorySample struct {
	Header
	TaskID    int    `json:"task_id"`
	ThreadPtr string `json:"thread_ptr"`
}

// FaultCycle reports one fault detection cycle.
type FaultCycle struct {
	Header
	Cycle    int    `json:"cycle"`
	ThreadID string `json:"thread_id"`
}

func (*TaskCompletion) Kind() Kind   { return KindTaskCompletion }
func (*SchedulerState) Kind() Kind   { return KindSchedulerState }
func (*ContextSwitch) Kind() Kind    { return KindContextSwitch }
func (*Emergency) Kind() Kind        { return KindEmergency }
func (*SafetyViolation) Kind() Kind  { return KindSafetyViolation }
func (*TimingCheckpoint) Kind() Kind { return KindTimingCheckpoint }
func (*MemorySample) Kind() Kind     { return KindMemorySample }
func (*FaultCycle) Kind() Kind       { return KindFaultCycle }

func (e *TaskCompletion) Attr(name string) (string, bool) {
	switch name {
	case "task":
		return e.TaskName, e.TaskName != ""
	case "unit":
		return e.Unit, true
	}
	return e.attr(e.Kind(), name)
}

func (e *TaskCompletion) Metric(name string) (float64, bool) {
	if name == "count" {
		return float64(e.Count), true
	}
	return e.metric(name)
}

func (e *SchedulerState) Attr(name string) (string, bool) {
	switch name {
	case "thread":
		return e.ThreadID, true
	case "priority_class":
		return ClassOf(e.Priority).String(), true
	}
	return e.attr(e.Kind(), name)
}

func (e *SchedulerState) Metric(name string) (float64, bool) {
	if name == "priority" {
		return float64(e.Priority), true
	}
	return e.metric(name)
}

func (e *ContextSwitch) Attr(name string) (string, bool) {
	switch name {
	case "thread", "to_thread":
		return e.ToThread, true
	case "from_thread":
		return e.FromThread, true
	}
	return e.attr(e.Kind(), name)
}

func (e *ContextSwitch) Metric(name string) (float64, bool) {
	if name == "total_switches" {
		return float64(e.TotalSwitches), true
	}
	return e.metric(name)
}

func (e *Emergency) Attr(name string) (string, bool) {
	if name == "message" {
		return e.Message, true
	}
	return e.attr(e.Kind(), name)
}

func (e *Emergency) Metric(name string) (float64, bool) { return e.metric(name) }

func (e *SafetyViolation) Attr(name string) (string, bool) { return e.attr(e.Kind(), name) }

func (e *SafetyViolation) Metric(name string) (float64, bool) { return e.metric(name) }

func (e *TimingCheckpoint) Attr(name string) (string, bool) {
	if name == "report" {
		return strconv.FormatBool(e.MarksReportBoundary), true
	}
	return e.attr(e.Kind(), name)
}

func (e *TimingCheckpoint) Metric(name string) (float64, bool) { return e.metric(name) }

func (e *MemorySample) Attr(name string) (string, bool) {
	switch name {
	case "task":
		return strconv.Itoa(e.TaskID), true
	case "thread":
		return e.ThreadPtr, true
	}
	return e.attr(e.Kind(), name)
}

func (e *MemorySample) Metric(name string) (float64, bool) {
	if name == "task_id" {
		return float64(e.TaskID), true
	}
	return e.metric(name)
}

func (e *FaultCycle) Attr(name string) (string, bool) {
	if name == "thread" {
		return e.ThreadID, true
	}
	return e.attr(e.Kind(), name)
}

func (e *FaultCycle) Metric(name string) (float64, bool) {
	if name == "cycle" {
		return float64(e.Cycle), true
	}
	return e.metric(name)
}
