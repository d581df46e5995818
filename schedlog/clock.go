// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedlog

import "fmt"

// A Clock is the simulation-time context of a parse session.
//
// The zero Clock is the start of a session. Only the classifier's
// time-marker rule produces a new Clock; every other rule reads it to
// stamp the event it produces.
type Clock struct {
	// Seconds is the value of the most recent
	// "Simulation Time Elapsed" line, or 0 if none has been seen.
	Seconds int

	// Session is incremented for each regression accepted under
	// RegressionNewSession.
	Session int

	// Regressions counts time markers whose value was lower than
	// the clock they replaced.
	Regressions int
}

// A RegressionPolicy decides what happens when a time marker would
// move the clock backward.
type RegressionPolicy int

const (
	// RegressionAccept sets the clock to the new value as-is and
	// counts the regression.
	RegressionAccept RegressionPolicy = iota

	// RegressionNewSession sets the clock to the new value and
	// starts a new session: later events carry the incremented
	// Session number. Use this for logs with several runs
	// appended to one file.
	RegressionNewSession

	// RegressionReject keeps the current clock, drops the marker
	// and reports a *ClockRegressionError.
	RegressionReject
)

var regressionNames = map[string]RegressionPolicy{
	"accept":  RegressionAccept,
	"session": RegressionNewSession,
	"reject":  RegressionReject,
}

// ParseRegressionPolicy parses "accept", "session" or "reject".
func ParseRegressionPolicy(s string) (RegressionPolicy, error) {
	if s == "" {
		return RegressionAccept, nil
	}
	p, ok := regressionNames[s]
	if !ok {
		return 0, fmt.Errorf("unknown clock regression policy %q (want accept, session or reject)", s)
	}
	return p, nil
}

func (p RegressionPolicy) String() string {
	for name, q := range regressionNames {
		if p == q {
			return name
		}
	}
	return fmt.Sprintf("RegressionPolicy(%d)", int(p))
}

// advance returns the clock after a time marker reading seconds.
func (c Clock) advance(seconds int, policy RegressionPolicy) (Clock, bool) {
	if seconds >= c.Seconds {
		c.Seconds = seconds
		return c, true
	}
	switch policy {
	case RegressionReject:
		return c, false
	case RegressionNewSession:
		c.Session++
	}
	c.Regressions++
	c.Seconds = seconds
	return c, true
}

// A ClockRegressionError reports a time marker that would have moved
// the clock backward under RegressionReject.
type ClockRegressionError struct {
	FileName string
	Line     int
	From, To int
}

func (e *ClockRegressionError) Pos() (string, int) {
	return e.FileName, e.Line
}

func (e *ClockRegressionError) Error() string {
	return fmt.Sprintf("%s:%d: simulation clock regressed from %ds to %ds", e.FileName, e.Line, e.From, e.To)
}
