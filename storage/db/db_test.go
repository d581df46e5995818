// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rtsched/schedstat/rtresult"
	"github.com/rtsched/schedstat/schedlog"
	. "github.com/rtsched/schedstat/storage/db"
	"github.com/rtsched/schedstat/storage/db/dbtest"
)

const runLog = `[00:00:01.000,000] <inf> mission_critical: Simulation Time Elapsed: 5 seconds
[00:00:01.050,000] <inf> mod: Navigation Task completed 12 updates
[00:00:01.100,000] <err> critical_tasks: EMERGENCY: thruster fault
[00:00:02.000,000] <inf> mission_critical: Simulation Time Elapsed: 10 seconds
[00:00:02.050,000] <inf> mod: Navigation Task completed 30 updates
[00:00:02.080,000] <wrn> critical_tasks: Safety Monitor: Safety violation detected!
`

const summary = `scheduler,workload,dw,threads,response_time,miss_rate,activations,misses
EDF,Heavy,ON,8,4.5,12.5,80,10
EDF,Heavy,OFF,8,6.0,25,80,20
RMS,Light,OFF,4,2.0,0,40,0
`

func readEvents(t *testing.T) []schedlog.Event {
	t.Helper()
	l, err := schedlog.ReadLog(strings.NewReader(runLog), "run.log", schedlog.Classifier{})
	if err != nil {
		t.Fatal(err)
	}
	return l.Events
}

func readRows(t *testing.T) []rtresult.ResultRow {
	t.Helper()
	r := rtresult.NewReader(strings.NewReader(summary), "summary.csv")
	r.Loader.Layout = rtresult.SummaryLayout
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func store(t *testing.T, db *DB) (logID, resultsID string) {
	t.Helper()
	ctx := context.Background()

	s, err := db.NewSession(ctx, "run.log")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	for _, ev := range readEvents(t) {
		if err := s.InsertEvent(ctx, ev); err != nil {
			t.Fatalf("InsertEvent: %v", err)
		}
	}
	logID = s.ID

	s, err = db.NewSession(ctx, "summary.csv")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	rows := readRows(t)
	for i := range rows {
		if err := s.InsertResult(ctx, &rows[i]); err != nil {
			t.Fatalf("InsertResult: %v", err)
		}
	}
	return logID, s.ID
}

func TestSessions(t *testing.T) {
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()
	ctx := context.Background()

	logID, resultsID := store(t, db)
	if logID == resultsID {
		t.Fatalf("sessions share ID %s", logID)
	}

	got, err := db.Sessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Sessions = %+v, want 2", got)
	}
	counts := map[string]int{}
	sources := map[string]string{}
	for _, si := range got {
		counts[si.ID] = si.Records
		sources[si.ID] = si.Source
	}
	if counts[logID] != 6 || sources[logID] != "run.log" {
		t.Errorf("log session has %d records from %q, want 6 from run.log", counts[logID], sources[logID])
	}
	if counts[resultsID] != 3 || sources[resultsID] != "summary.csv" {
		t.Errorf("results session has %d records from %q, want 3 from summary.csv", counts[resultsID], sources[resultsID])
	}
	if n, err := db.CountSessions(ctx); err != nil || n != 2 {
		t.Errorf("CountSessions = %d, %v, want 2", n, err)
	}
}

func TestEvents(t *testing.T) {
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()
	ctx := context.Background()

	logID, _ := store(t, db)
	want := readEvents(t)

	got, err := db.Events(ctx, Query{Session: logID})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("Events returned %d events, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i].Kind() != want[i].Kind() {
			t.Errorf("event %d is %v, want %v", i, got[i].Kind(), want[i].Kind())
		}
	}

	got, err = db.Events(ctx, Query{Labels: map[string]string{"task": "Navigation"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Navigation events = %d, want 2", len(got))
	}
	if tc := got[1].(*schedlog.TaskCompletion); tc.Count != 30 || tc.SimSeconds != 10 {
		t.Errorf("second completion = %+v, want count 30 at 10s", tc)
	}

	got, err = db.Events(ctx, Query{Labels: map[string]string{"kind": "emergency"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].(*schedlog.Emergency).Message != "thruster fault" {
		t.Errorf("emergency events = %+v", got)
	}
}

func TestResults(t *testing.T) {
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()
	ctx := context.Background()

	_, resultsID := store(t, db)
	rows := readRows(t)

	got, err := db.Results(ctx, Query{Session: resultsID})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rows, got, cmp.AllowUnexported(rtresult.ResultRow{})); diff != "" {
		t.Errorf("Results (-want +got)\n%s", diff)
	}

	for _, test := range []struct {
		labels map[string]string
		want   []rtresult.ResultRow
	}{
		{map[string]string{"scheduler": "EDF"}, rows[:2]},
		{map[string]string{"scheduler": "EDF", "dynamic_weighting": "OFF"}, rows[1:2]},
		{map[string]string{"threads": "4"}, rows[2:]},
		{map[string]string{"scheduler": "LLF"}, nil},
	} {
		got, err := db.Results(ctx, Query{Labels: test.labels})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(test.want, got, cmp.AllowUnexported(rtresult.ResultRow{})); diff != "" {
			t.Errorf("Results(%v) (-want +got)\n%s", test.labels, diff)
		}
	}

	// Result queries never return events and vice versa.
	if evs, err := db.Events(ctx, Query{Session: resultsID}); err != nil || len(evs) != 0 {
		t.Errorf("Events(results session) = %d events, %v", len(evs), err)
	}
}

func TestDeleteSession(t *testing.T) {
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()
	ctx := context.Background()

	logID, resultsID := store(t, db)
	if err := db.DeleteSession(ctx, logID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	got, err := db.Sessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != resultsID {
		t.Errorf("Sessions after delete = %+v, want only %s", got, resultsID)
	}
	var labels int
	if err := DBSQL(db).QueryRow("SELECT COUNT(*) FROM RecordLabels WHERE SessionID = ?", logID).Scan(&labels); err != nil {
		t.Fatal(err)
	}
	if labels != 0 {
		t.Errorf("%d labels left for deleted session", labels)
	}
	if evs, err := db.Events(ctx, Query{}); err != nil || len(evs) != 0 {
		t.Errorf("Events after delete = %d, %v, want none", len(evs), err)
	}
}
