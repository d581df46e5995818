// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedmath

import (
	"errors"
	"fmt"
	"math"
)

// A Derived is a metric computed from other metrics. If the inputs do
// not determine it, Valid is false and Reason says why.
type Derived struct {
	Value  float64
	Valid  bool
	Reason string
}

// Value returns a valid Derived.
func Value(v float64) Derived {
	return Derived{Value: v, Valid: true}
}

// Undefined returns an invalid Derived.
func Undefined(reason string) Derived {
	return Derived{Reason: reason}
}

func (d Derived) String() string {
	if !d.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", d.Value)
}

var (
	errZeroUtilization = errors.New("zero utilization")
	errNoActivations   = errors.New("no activations")
	errZeroBaseline    = errors.New("zero baseline")
)

// derive converts a computation result into a Derived.
func derive(v float64, err error) Derived {
	if err != nil {
		return Undefined(err.Error())
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined("not a number")
	}
	return Value(v)
}

// MissRate returns 100 × misses / activations.
func MissRate(misses, activations int) Derived {
	if activations <= 0 {
		return derive(0, errNoActivations)
	}
	return Value(100 * float64(misses) / float64(activations))
}

// NormalizedMissRate returns missRatePercent / utilization. It is
// undefined when utilization is not positive.
func NormalizedMissRate(missRatePercent, utilization float64) Derived {
	return derive(normalize(missRatePercent, utilization))
}

func normalize(missRatePercent, utilization float64) (float64, error) {
	switch {
	case utilization == 0:
		return 0, errZeroUtilization
	case utilization < 0 || math.IsNaN(utilization):
		return 0, fmt.Errorf("invalid utilization %v", utilization)
	}
	return missRatePercent / utilization, nil
}

// Improvement returns the percentage by which new reduces old. A
// positive result means new is lower. It is undefined when old is 0.
func Improvement(old, new float64) Derived {
	if old == 0 {
		return derive(0, errZeroBaseline)
	}
	return derive((old-new)/old*100, nil)
}

// A Rating classifies a normalized miss rate.
type Rating int

const (
	Unrated Rating = iota
	Excellent
	Good
	Acceptable
	Poor
)

func (r Rating) String() string {
	switch r {
	case Excellent:
		return "excellent"
	case Good:
		return "good"
	case Acceptable:
		return "acceptable"
	case Poor:
		return "poor"
	}
	return "unrated"
}

// Rate classifies a normalized miss rate. Each band includes its lower
// bound: below 10 is excellent, below 25 good, below 50 acceptable, and
// 50 or more poor.
func Rate(normalized float64) Rating {
	switch {
	case math.IsNaN(normalized):
		return Unrated
	case normalized < 10:
		return Excellent
	case normalized < 25:
		return Good
	case normalized < 50:
		return Acceptable
	}
	return Poor
}

// RateDerived rates d, or returns Unrated if d is undefined.
func RateDerived(d Derived) Rating {
	if !d.Valid {
		return Unrated
	}
	return Rate(d.Value)
}
