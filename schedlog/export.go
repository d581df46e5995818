// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedlog

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// An Export is the persisted interchange form of a Log.
//
// Each section is an ordered sequence of events serialized field for
// field. Every entry also carries "seq", its ordinal in the original
// event sequence, and "type", its Kind, so that Events can restore the
// exact interleaving across sections.
type Export struct {
	Summary          Summary `json:"summary"`
	Tasks            []Entry `json:"tasks"`
	TimingData       []Entry `json:"timing_data"`
	SchedulerEvents  []Entry `json:"scheduler_events"`
	MemoryData       []Entry `json:"memory_data"`
	EmergencyEvents  []Entry `json:"emergency_events"`
	SafetyViolations []Entry `json:"safety_violations"`
	FaultCycles      []Entry `json:"fault_cycles"`
}

// An Entry is one event in an Export section.
type Entry struct {
	Seq   int
	Event Event
}

// NewExport builds the interchange form of events.
func NewExport(events []Event) *Export {
	return NewLog(events).Export()
}

// Export builds the interchange form of l.
func (l *Log) Export() *Export {
	x := &Export{
		Summary:          l.Summary(),
		Tasks:            []Entry{},
		TimingData:       []Entry{},
		SchedulerEvents:  []Entry{},
		MemoryData:       []Entry{},
		EmergencyEvents:  []Entry{},
		SafetyViolations: []Entry{},
		FaultCycles:      []Entry{},
	}
	for i, ev := range l.Events {
		if sec := x.section(ev.Kind()); sec != nil {
			*sec = append(*sec, Entry{i, ev})
		}
	}
	return x
}

// section returns the section holding events of kind k, or nil.
func (x *Export) section(k Kind) *[]Entry {
	switch k {
	case KindTaskCompletion:
		return &x.Tasks
	case KindTimingCheckpoint:
		return &x.TimingData
	case KindSchedulerState, KindContextSwitch:
		return &x.SchedulerEvents
	case KindMemorySample:
		return &x.MemoryData
	case KindEmergency:
		return &x.EmergencyEvents
	case KindSafetyViolation:
		return &x.SafetyViolations
	case KindFaultCycle:
		return &x.FaultCycles
	}
	return nil
}

// Events returns the events of every section merged back into their
// original order.
func (x *Export) Events() []Event {
	var all []Entry
	for _, sec := range x.sections() {
		all = append(all, sec.entries...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Seq < all[j].Seq })
	evs := make([]Event, len(all))
	for i, e := range all {
		evs[i] = e.Event
	}
	return evs
}

type namedSection struct {
	name    string
	entries []Entry
}

func (x *Export) sections() []namedSection {
	return []namedSection{
		{"tasks", x.Tasks},
		{"timing_data", x.TimingData},
		{"scheduler_events", x.SchedulerEvents},
		{"memory_data", x.MemoryData},
		{"emergency_events", x.EmergencyEvents},
		{"safety_violations", x.SafetyViolations},
		{"fault_cycles", x.FaultCycles},
	}
}

// Write writes x to w as indented JSON.
func (x *Export) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(x)
}

// ReadExport reads an interchange file. It fails if an entry's type
// does not belong to the section it appears in.
func ReadExport(r io.Reader) (*Export, error) {
	var x Export
	if err := json.NewDecoder(r).Decode(&x); err != nil {
		return nil, fmt.Errorf("decoding interchange file: %w", err)
	}
	for _, sec := range x.sections() {
		for _, e := range sec.entries {
			if x.section(e.Event.Kind()) != x.sectionByName(sec.name) {
				return nil, fmt.Errorf("entry seq %d: %v event in section %s", e.Seq, e.Event.Kind(), sec.name)
			}
		}
	}
	return &x, nil
}

func (x *Export) sectionByName(name string) *[]Entry {
	switch name {
	case "tasks":
		return &x.Tasks
	case "timing_data":
		return &x.TimingData
	case "scheduler_events":
		return &x.SchedulerEvents
	case "memory_data":
		return &x.MemoryData
	case "emergency_events":
		return &x.EmergencyEvents
	case "safety_violations":
		return &x.SafetyViolations
	case "fault_cycles":
		return &x.FaultCycles
	}
	return nil
}

// MarshalJSON encodes e as the event's fields plus "seq" and "type".
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Event == nil {
		return nil, fmt.Errorf("entry seq %d has no event", e.Seq)
	}
	b, err := json.Marshal(e.Event)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	fields["seq"], _ = json.Marshal(e.Seq)
	fields["type"], _ = json.Marshal(e.Event.Kind().String())
	return json.Marshal(fields)
}

// UnmarshalJSON decodes an entry written by MarshalJSON.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var tag struct {
		Seq  int    `json:"seq"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &tag); err != nil {
		return err
	}
	var ev Event
	switch tag.Type {
	case KindTaskCompletion.String():
		ev = new(TaskCompletion)
	case KindSchedulerState.String():
		ev = new(SchedulerState)
	case KindContextSwitch.String():
		ev = new(ContextSwitch)
	case KindEmergency.String():
		ev = new(Emergency)
	case KindSafetyViolation.String():
		ev = new(SafetyViolation)
	case KindTimingCheckpoint.String():
		ev = new(TimingCheckpoint)
	case KindMemorySample.String():
		ev = new(MemorySample)
	case KindFaultCycle.String():
		ev = new(FaultCycle)
	default:
		return fmt.Errorf("entry seq %d: unknown event type %q", tag.Seq, tag.Type)
	}
	if err := json.Unmarshal(b, ev); err != nil {
		return fmt.Errorf("entry seq %d: %w", tag.Seq, err)
	}
	e.Seq, e.Event = tag.Seq, ev
	return nil
}
