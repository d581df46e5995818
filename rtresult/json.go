// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtresult

import "encoding/json"

// rowFields has the fields of ResultRow but not its methods.
type rowFields ResultRow

var presenceNames = []struct {
	flag presence
	name string
}{
	{hasTaskID, "task_id"},
	{hasThreads, "threads"},
	{hasDW, "dynamic_weighting"},
	{hasActivations, "activations"},
	{hasDeadlineMet, "deadline_met"},
}

// MarshalJSON encodes r's fields plus "Present", the optional selector
// columns r carried, so that a decoded row groups like the original.
func (r ResultRow) MarshalJSON() ([]byte, error) {
	var present []string
	for _, p := range presenceNames {
		if r.present&p.flag != 0 {
			present = append(present, p.name)
		}
	}
	return json.Marshal(struct {
		*rowFields
		Present []string `json:",omitempty"`
	}{(*rowFields)(&r), present})
}

// UnmarshalJSON decodes a row written by MarshalJSON.
func (r *ResultRow) UnmarshalJSON(b []byte) error {
	v := struct {
		*rowFields
		Present []string
	}{rowFields: (*rowFields)(r)}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	r.present = 0
	for _, name := range v.Present {
		for _, p := range presenceNames {
			if p.name == name {
				r.present |= p.flag
			}
		}
	}
	return nil
}
