// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedlog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExportRoundTrip(t *testing.T) {
	events := readSample(t).Events
	var buf bytes.Buffer
	if err := NewExport(events).Write(&buf); err != nil {
		t.Fatal(err)
	}
	x, err := ReadExport(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(events, x.Events()); diff != "" {
		t.Errorf("round trip: (-want +got)\n%s", diff)
	}
}

func TestExportRoundTripSessions(t *testing.T) {
	data := "Simulation Time Elapsed: 8 seconds\nSimulation Time Elapsed: 3 seconds\nEMERGENCY: rerun\n"
	l, err := ReadLog(strings.NewReader(data), "s.log", Classifier{Regression: RegressionNewSession})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := l.Export().Write(&buf); err != nil {
		t.Fatal(err)
	}
	x, err := ReadExport(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(l.Events, x.Events()); diff != "" {
		t.Errorf("round trip: (-want +got)\n%s", diff)
	}
	if x.Summary.ClockRegressions != 1 {
		t.Errorf("summary regressions = %d, want 1", x.Summary.ClockRegressions)
	}
}

func TestExportShape(t *testing.T) {
	var buf bytes.Buffer
	if err := readSample(t).Export().Write(&buf); err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"summary", "tasks", "timing_data", "scheduler_events", "memory_data", "emergency_events", "safety_violations", "fault_cycles"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	var tasks []map[string]any
	if err := json.Unmarshal(doc["tasks"], &tasks); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"seq":                  1.0,
		"type":                 "task_completion",
		"wall_clock_timestamp": "00:00:01.050,000",
		"simulation_seconds":   5.0,
		"file":                 "sample.log",
		"line":                 3.0,
		"task_name":            "Navigation",
		"count":                12.0,
		"unit":                 "updates",
	}
	if diff := cmp.Diff(want, tasks[0]); diff != "" {
		t.Errorf("tasks[0]: (-want +got)\n%s", diff)
	}

	var sum map[string]any
	if err := json.Unmarshal(doc["summary"], &sum); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"simulation_duration", "total_tasks", "task_performance", "scheduler_events_count"} {
		if _, ok := sum[key]; !ok {
			t.Errorf("summary missing %q", key)
		}
	}
}

func TestExportEmptySections(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExport(nil).Write(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"tasks": []`) {
		t.Errorf("empty sections should encode as [], got:\n%s", buf.String())
	}
}

func TestReadExportErrors(t *testing.T) {
	for _, test := range []struct {
		name, doc, want string
	}{
		{"unknown type", `{"tasks": [{"seq": 0, "type": "telepathy"}]}`, `unknown event type "telepathy"`},
		{"wrong section", `{"tasks": [{"seq": 0, "type": "emergency", "message": "x"}]}`, "emergency event in section tasks"},
		{"bad field", `{"tasks": [{"seq": 4, "type": "task_completion", "count": "many"}]}`, "entry seq 4"},
	} {
		_, err := ReadExport(strings.NewReader(test.doc))
		if err == nil || !strings.Contains(err.Error(), test.want) {
			t.Errorf("%s: error %v, want containing %q", test.name, err, test.want)
		}
	}
}
