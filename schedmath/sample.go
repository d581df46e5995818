// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schedmath computes the statistics used to compare
// schedulers: summaries of measured values, miss rates normalized by
// utilization, and efficiency ratings.
//
// Results that cannot be computed, such as the mean of no values or a
// miss rate normalized by zero utilization, are represented explicitly
// as undefined rather than as zero.
package schedmath

import (
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// A Sample is a set of observations of one metric.
type Sample struct {
	// Values are the observed values, in ascending order.
	Values []float64

	// Warnings is a list of warnings about this sample that
	// should be reported to the user.
	Warnings []error
}

// NewSample constructs a Sample from a set of observations. It sorts
// values in place.
func NewSample(values []float64) *Sample {
	// Sorting first also makes every sum below independent of the
	// order the values were observed in.
	sort.Float64s(values)
	return &Sample{Values: values}
}

func (s *Sample) sample() stats.Sample {
	return stats.Sample{Xs: s.Values, Sorted: true}
}

// A Summary describes a Sample. A Summary of no values is undefined:
// N is 0 and every statistic is NaN.
type Summary struct {
	N int

	Mean   float64
	Min    float64
	Max    float64
	StdDev float64
	Median float64
	P95    float64
}

// Summary summarizes s.
func (s *Sample) Summary() Summary {
	if len(s.Values) == 0 {
		nan := math.NaN()
		return Summary{0, nan, nan, nan, nan, nan, nan}
	}
	sample := s.sample()
	lo, hi := sample.Bounds()
	return Summary{
		N:      len(s.Values),
		Mean:   sample.Mean(),
		Min:    lo,
		Max:    hi,
		StdDev: sample.StdDev(),
		Median: sample.Quantile(0.5),
		P95:    sample.Quantile(0.95),
	}
}

// Summarize summarizes a copy of values.
func Summarize(values []float64) Summary {
	return NewSample(append([]float64(nil), values...)).Summary()
}

// Defined reports whether s summarizes at least one value.
func (s Summary) Defined() bool {
	return s.N > 0
}

// Stat returns the named statistic: "mean", "min", "max", "stddev",
// "median" or "p95". It reports false for an unknown name or an
// undefined summary.
func (s Summary) Stat(name string) (float64, bool) {
	if !s.Defined() {
		return 0, false
	}
	switch name {
	case "mean":
		return s.Mean, true
	case "min":
		return s.Min, true
	case "max":
		return s.Max, true
	case "stddev":
		return s.StdDev, true
	case "median":
		return s.Median, true
	case "p95":
		return s.P95, true
	}
	return 0, false
}

// A Comparison is the result of testing whether two samples come from
// distributions with the same mean.
type Comparison struct {
	// P is the p-value of the null hypothesis that the samples
	// have the same mean.
	P float64

	// N1 and N2 are the sizes of the two samples.
	N1, N2 int

	// Alpha is the threshold below which P rejects the null
	// hypothesis.
	Alpha float64

	Warnings []error
}

// DefaultAlpha is the usual significance threshold.
const DefaultAlpha = 0.05

// Compare compares s1 and s2 with Welch's t-test.
func Compare(s1, s2 *Sample) Comparison {
	c := Comparison{N1: len(s1.Values), N2: len(s2.Values), Alpha: DefaultAlpha}
	t, err := stats.TwoSampleWelchTTest(s1.sample(), s2.sample(), stats.LocationDiffers)
	if err != nil {
		// Too few values or no variance. Report no significant
		// difference, along with the reason.
		c.P = 1
		c.Warnings = []error{err}
		return c
	}
	c.P = t.P
	return c
}

// Significant reports whether the comparison rejects the null
// hypothesis.
func (c Comparison) Significant() bool {
	return c.P < c.Alpha
}

// String summarizes the comparison as "p=0.PPP n=N1+N2".
func (c Comparison) String() string {
	s := fmt.Sprintf("p=%0.3f ", c.P)
	if c.N1 == c.N2 {
		return s + fmt.Sprintf("n=%d", c.N1)
	}
	return s + fmt.Sprintf("n=%d+%d", c.N1, c.N2)
}
