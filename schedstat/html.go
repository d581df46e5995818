// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedstat

import (
	"io"

	"github.com/google/safehtml/template"
)

var htmlTemplate = template.Must(template.New("").Parse(`
<table class='schedstat'>
<thead>
<tr>{{range .Header}}<th>{{.}}{{end}}
</thead>
<tbody>
{{range .Rows -}}
<tr class='{{.Rating}}'>{{range .Strings}}<td>{{.}}{{end}}
{{end -}}
</tbody>
</table>
{{if .Unassigned}}<p class='note'>{{.Unassigned}} records lack a grouping attribute and were not counted</p>
{{end -}}
{{range .Warnings}}<p class='warning'>{{.}}</p>
{{end -}}
`))

// FormatHTML writes t as an HTML table. Each row's class is its
// rating.
func FormatHTML(w io.Writer, t *Table) error {
	return htmlTemplate.Execute(w, t)
}
