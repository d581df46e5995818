// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtresult

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReaderHeadered(t *testing.T) {
	data := `scheduler,workload,avg_response_ms,jitter_ms,miss_rate_percent
EDF,Light,1.5,0.2,0

RMS,Heavy,6.0,1.1,22.5
`
	r := NewReader(strings.NewReader(data), "summary.csv")
	r.Loader.Layout = SummaryLayout
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].Scheduler != "RMS" || rows[1].MissRatePercent != 22.5 || rows[1].Line != 4 {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if rows[0].Source != "summary.csv" {
		t.Errorf("Source = %q", rows[0].Source)
	}
}

func TestReaderHarness(t *testing.T) {
	data := "ACT,1000,1,0,1200,1,0,10,10,1\nACT,2000,2,0,15000,0,5,20,10,2\n"
	labels, ok := ParseFileName("results/WEIGHTED_EDF_HEAVY_DWON.csv")
	if !ok {
		t.Fatal("ParseFileName failed")
	}
	r := NewReader(strings.NewReader(data), "WEIGHTED_EDF_HEAVY_DWON.csv")
	r.Header = HarnessHeader
	r.Labels = labels
	r.Loader.Layout = HarnessLayout
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	got := rows[1]
	if got.Scheduler != "WEIGHTED_EDF" || got.Workload != "HEAVY" || got.DynamicWeighting != "ON" {
		t.Errorf("labels not applied: %+v", got)
	}
	if got.TaskID != 2 || !got.HasTaskID() || got.ResponseMs != 15 || got.DeadlineMet || got.MissRatePercent != 100 {
		t.Errorf("row = %+v", got)
	}
	if v, ok := got.Attr("dw"); !ok || v != "ON" {
		t.Errorf("Attr(dw) = %q, %v", v, ok)
	}
}

func TestReaderLabelsDoNotOverride(t *testing.T) {
	data := "scheduler,workload,response_time,deadline_met,miss_rate\nLLF,Light,1,1,0\n"
	r := NewReader(strings.NewReader(data), "x.csv")
	r.Labels = map[string]string{"scheduler": "EDF", "workload": "Heavy"}
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Scheduler != "LLF" || rows[0].Workload != "Light" {
		t.Errorf("labels overrode columns: %+v", rows[0])
	}
}

func TestReaderMalformedStops(t *testing.T) {
	data := `scheduler,workload,response_time,deadline_met,miss_rate
EDF,Light,1,1,0
EDF,Light,oops,1,0
EDF,Light,2,1,0
`
	r := NewReader(strings.NewReader(data), "bad.csv")
	rows, err := r.ReadAll()
	if len(rows) != 1 {
		t.Errorf("got %d rows before the error, want 1", len(rows))
	}
	var mre *MalformedRowError
	if !errors.As(err, &mre) {
		t.Fatalf("err = %v, want *MalformedRowError", err)
	}
	if want := `bad.csv:3: column response_time: malformed value "oops"`; mre.Error() != want {
		t.Errorf("Error() = %q, want %q", mre.Error(), want)
	}
}

func TestParseFileName(t *testing.T) {
	for _, test := range []struct {
		name string
		want map[string]string
	}{
		{"EDF_HEAVY_DWON.csv", map[string]string{"scheduler": "EDF", "workload": "HEAVY", "dynamic_weighting": "ON"}},
		{"/tmp/RMS_LIGHT_DWOFF.csv", map[string]string{"scheduler": "RMS", "workload": "LIGHT", "dynamic_weighting": "OFF"}},
		{"WEIGHTED_EDF_MEDIUM.csv", map[string]string{"scheduler": "WEIGHTED_EDF", "workload": "MEDIUM"}},
		{"summary.csv", nil},
		{"EDF_DWON.csv", nil},
	} {
		got, ok := ParseFileName(test.name)
		if ok != (test.want != nil) {
			t.Errorf("ParseFileName(%q) ok = %v", test.name, ok)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("ParseFileName(%q): (-want +got)\n%s", test.name, diff)
		}
	}
}
