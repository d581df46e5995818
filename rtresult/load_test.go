// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtresult

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestLoad(t *testing.T) {
	got, err := Load(map[string]string{
		"scheduler":     "EDF",
		"workload":      "Heavy",
		"response_time": "4.5",
		"deadline_met":  "1",
		"miss_rate":     "12.5",
		"jitter_ms":     "0.75",
		"unrelated":     "ignored",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := ResultRow{
		Scheduler:       "EDF",
		Workload:        "Heavy",
		ResponseMs:      4.5,
		DeadlineMet:     true,
		MissRatePercent: 12.5,
		JitterMs:        0.75,
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(ResultRow{})); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
	if got.HasTaskID() || got.HasThreads() {
		t.Errorf("absent optional selector columns reported present")
	}
}

func TestLoadDefaults(t *testing.T) {
	base := map[string]string{
		"scheduler": "RMS", "workload": "Light", "response_time": "1", "deadline_met": "true", "miss_rate": "0",
	}
	// A malformed optional column takes its default.
	row := copyRow(base)
	row["utilization"] = "high"
	row["threads"] = "8"
	got, err := Load(row)
	if err != nil {
		t.Fatal(err)
	}
	if got.Utilization != 0 {
		t.Errorf("Utilization = %v, want default 0", got.Utilization)
	}
	if !got.HasThreads() || got.Threads != 8 {
		t.Errorf("Threads = %d (present %v), want 8", got.Threads, got.HasThreads())
	}

	// An out-of-range integer is unparseable too.
	row = copyRow(base)
	row["threads"] = "1e30"
	got, err = Load(row)
	if err != nil {
		t.Fatal(err)
	}
	if got.Threads != 0 {
		t.Errorf("Threads = %d for 1e30, want default 0", got.Threads)
	}

	for name, def := range Defaults {
		if _, ok := Lookup(name).Kind.parse(def); !ok {
			t.Errorf("default %q for column %s does not parse", def, name)
		}
	}
}

func TestLoadMalformed(t *testing.T) {
	base := map[string]string{
		"scheduler": "RMS", "workload": "Light", "response_time": "1", "deadline_met": "true", "miss_rate": "0",
	}
	for _, test := range []struct {
		edit   func(m map[string]string)
		column string
	}{
		{func(m map[string]string) { delete(m, "scheduler") }, "scheduler"},
		{func(m map[string]string) { m["workload"] = "  " }, "workload"},
		{func(m map[string]string) { m["response_time"] = "fast" }, "response_time"},
		{func(m map[string]string) { m["deadline_met"] = "perhaps" }, "deadline_met"},
		{func(m map[string]string) { delete(m, "miss_rate") }, "miss_rate"},
		{func(m map[string]string) { m["response_time"] = "NaN" }, "response_time"},
		{func(m map[string]string) { m["miss_rate"] = "Inf" }, "miss_rate"},
		{func(m map[string]string) { m["response_time"] = "-Inf" }, "response_time"},
	} {
		row := copyRow(base)
		test.edit(row)
		_, err := Load(row)
		var mre *MalformedRowError
		if !errors.As(err, &mre) {
			t.Errorf("Load(%v): error %v, want *MalformedRowError", row, err)
			continue
		}
		if mre.Column != test.column {
			t.Errorf("Load(%v): column %s, want %s", row, mre.Column, test.column)
		}
	}
}

func TestParseNumeric(t *testing.T) {
	for _, test := range []struct {
		kind Kind
		in   string
		ok   bool
		want float64
	}{
		{Float, "2.5", true, 2.5},
		{Float, "NaN", false, 0},
		{Float, "+Inf", false, 0},
		{Float, "-inf", false, 0},
		{Int, "7.9", true, 7},
		{Int, "-3", true, -3},
		{Int, "1e30", false, 0},
		{Int, "-1e30", false, 0},
		{Int, "9223372036854775808", false, 0},
		{Int, "Inf", false, 0},
	} {
		v, ok := test.kind.parse(test.in)
		if ok != test.ok || (ok && v.f != test.want) {
			t.Errorf("parse(%q) = %v, %v, want %v, %v", test.in, v.f, ok, test.want, test.ok)
		}
	}
}

func TestLoadAliases(t *testing.T) {
	l := Loader{Layout: SummaryLayout, File: "summary.csv"}
	got, err := l.Load(map[string]string{
		"Scheduler":       "WSRT",
		"Load":            "Overload",
		"Threads":         "4",
		"Activations":     "200",
		"Misses":          "30",
		"MissRate":        "15",
		"AvgResponseTime": "7",
		"MaxResponseTime": "19",
		"Jitter":          "2",
		"Utilization":     "0.9",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Scheduler != "WSRT" || got.Workload != "Overload" || got.Threads != 4 ||
		got.Activations != 200 || got.Misses != 30 || got.MissRatePercent != 15 ||
		got.ResponseMs != 7 || got.MaxResponseMs != 19 || got.JitterMs != 2 || got.Utilization != 0.9 {
		t.Errorf("Load = %+v", got)
	}
	if !got.HasActivations() {
		t.Errorf("HasActivations() = false")
	}
}

func TestLoadMicroseconds(t *testing.T) {
	l := Loader{Layout: HarnessLayout}
	got, err := l.Load(map[string]string{
		"scheduler": "EDF", "workload": "HEAVY", "response_time_us": "2500", "deadline_met": "0",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ResponseMs != 2.5 {
		t.Errorf("ResponseMs = %v, want 2.5", got.ResponseMs)
	}
	if got.MissRatePercent != 100 {
		t.Errorf("derived MissRatePercent = %v, want 100", got.MissRatePercent)
	}
}

func TestParseLayout(t *testing.T) {
	if l, err := ParseLayout("summary"); err != nil || l != SummaryLayout {
		t.Errorf("ParseLayout(summary) = %v, %v", l, err)
	}
	_, err := ParseLayout("pivot")
	if err == nil || !strings.Contains(err.Error(), "activation, harness, summary") {
		t.Errorf("ParseLayout(pivot) error = %v", err)
	}
}

func copyRow(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
