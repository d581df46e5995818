// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedmath

import (
	"math"
	"math/rand"
	"testing"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 1, 3, 2})
	if s.N != 4 || s.Mean != 2.5 || s.Min != 1 || s.Max != 4 || s.Median != 2.5 {
		t.Errorf("Summarize = %+v", s)
	}
	if want := math.Sqrt(5.0 / 3); math.Abs(s.StdDev-want) > 1e-12 {
		t.Errorf("StdDev = %v, want %v", s.StdDev, want)
	}
	if v, ok := s.Stat("max"); !ok || v != 4 {
		t.Errorf("Stat(max) = %v, %v", v, ok)
	}
	if _, ok := s.Stat("mode"); ok {
		t.Errorf("Stat(mode) succeeded")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Defined() || s.N != 0 {
		t.Errorf("empty summary is defined: %+v", s)
	}
	if !math.IsNaN(s.Mean) || !math.IsNaN(s.Min) || !math.IsNaN(s.Max) {
		t.Errorf("empty summary statistics = %+v, want NaN", s)
	}
	if _, ok := s.Stat("mean"); ok {
		t.Errorf("Stat(mean) of empty summary succeeded")
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	vals := make([]float64, 100)
	for i := range vals {
		vals[i] = rng.Float64() * 1e3
	}
	want := Summarize(vals)
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(vals), func(i, j int) { vals[i], vals[j] = vals[j], vals[i] })
		if got := Summarize(vals); got != want {
			t.Fatalf("shuffled summary %+v != %+v", got, want)
		}
	}
}

func TestNormalizedMissRate(t *testing.T) {
	for _, test := range []struct {
		miss, util float64
		want       Derived
	}{
		{20, 0.5, Value(40)},
		{20, 1.0, Value(20)},
		{0, 0.3, Value(0)},
		{20, 0, Undefined("zero utilization")},
		{20, -1, Undefined("invalid utilization -1")},
	} {
		if got := NormalizedMissRate(test.miss, test.util); got != test.want {
			t.Errorf("NormalizedMissRate(%v, %v) = %+v, want %+v", test.miss, test.util, got, test.want)
		}
	}
}

func TestNormalizedMissRateMonotonic(t *testing.T) {
	prev := math.Inf(-1)
	for miss := 0.0; miss <= 100; miss += 5 {
		v := NormalizedMissRate(miss, 0.7).Value
		if v <= prev {
			t.Errorf("not increasing in miss rate at %v: %v <= %v", miss, v, prev)
		}
		prev = v
	}
	prev = math.Inf(1)
	for util := 0.1; util <= 2; util += 0.1 {
		v := NormalizedMissRate(30, util).Value
		if v >= prev {
			t.Errorf("not decreasing in utilization at %v: %v >= %v", util, v, prev)
		}
		prev = v
	}
}

func TestRate(t *testing.T) {
	for _, test := range []struct {
		v    float64
		want Rating
	}{
		{0, Excellent},
		{9.999, Excellent},
		{10, Good},
		{24.9, Good},
		{25, Acceptable},
		{49.99, Acceptable},
		{50, Poor},
		{400, Poor},
		{math.NaN(), Unrated},
	} {
		if got := Rate(test.v); got != test.want {
			t.Errorf("Rate(%v) = %v, want %v", test.v, got, test.want)
		}
	}
	if got := RateDerived(Undefined("zero utilization")); got != Unrated {
		t.Errorf("RateDerived(undefined) = %v, want unrated", got)
	}
}

func TestMissRate(t *testing.T) {
	if got := MissRate(30, 200); got != Value(15) {
		t.Errorf("MissRate(30, 200) = %+v", got)
	}
	if got := MissRate(0, 0); got.Valid || got.Reason != "no activations" {
		t.Errorf("MissRate(0, 0) = %+v", got)
	}
}

func TestImprovement(t *testing.T) {
	if got := Improvement(20, 15); got != Value(25) {
		t.Errorf("Improvement(20, 15) = %+v, want 25", got)
	}
	if got := Improvement(10, 12); got != Value(-20) {
		t.Errorf("Improvement(10, 12) = %+v, want -20", got)
	}
	if got := Improvement(0, 5); got.Valid {
		t.Errorf("Improvement(0, 5) = %+v, want undefined", got)
	}
}

func TestCompare(t *testing.T) {
	a := NewSample([]float64{10, 11, 10.5, 10.2, 10.8, 11.1})
	b := NewSample([]float64{20, 21, 20.5, 20.2, 20.8, 21.1})
	c := Compare(a, b)
	if !c.Significant() {
		t.Errorf("Compare of distinct samples: %v, want significant", c)
	}
	if c.String()[:2] != "p=" || c.N1 != 6 {
		t.Errorf("String() = %q", c.String())
	}

	one := NewSample([]float64{1})
	if c := Compare(one, one); c.Significant() || len(c.Warnings) == 0 {
		t.Errorf("Compare of single values = %+v, want warning and no significance", c)
	}
}
