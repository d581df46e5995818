// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedstat

import (
	"encoding/json"
	"io"
)

type jsonTable struct {
	Groups     []jsonGroup `json:"groups"`
	Unassigned int         `json:"unassigned,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
}

type jsonGroup struct {
	Key    map[string]string   `json:"key"`
	Values map[string]*float64 `json:"values"`

	// Undefined maps each undefined statistic to the reason.
	Undefined map[string]string `json:"undefined,omitempty"`

	Rating string `json:"rating"`
}

// FormatJSON writes t as a JSON document. Rows keep their order.
// Undefined statistics are null, with the reason under "undefined".
func FormatJSON(w io.Writer, t *Table) error {
	out := jsonTable{Groups: []jsonGroup{}, Unassigned: t.Unassigned}
	for _, err := range t.Warnings {
		out.Warnings = append(out.Warnings, err.Error())
	}
	for _, r := range t.Rows {
		g := jsonGroup{
			Key:    make(map[string]string, len(t.Fields)),
			Values: make(map[string]*float64, len(t.Columns)),
			Rating: r.Rating.String(),
		}
		for i, f := range t.Fields {
			g.Key[f] = r.Attrs[i]
		}
		for i, c := range t.Columns {
			v := r.Values[i]
			if !v.Valid {
				g.Values[c] = nil
				if g.Undefined == nil {
					g.Undefined = make(map[string]string)
				}
				g.Undefined[c] = v.Reason
				continue
			}
			x := v.Value
			g.Values[c] = &x
		}
		out.Groups = append(out.Groups, g)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
