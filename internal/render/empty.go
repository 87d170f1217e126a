package render

import (
	"bytes"

	svg "github.com/ajstarks/svgo"

	"github.com/vizlink/vizlink/internal/chart"
)

// emptyState draws the placeholder artifact shown when the effective
// filter leaves zero rows.
func emptyState(spec chart.Spec) []byte {
	var buf bytes.Buffer
	w, h := spec.Style.Width, spec.Style.Height

	canvas := svg.New(&buf)
	canvas.Start(w, h)
	canvas.Rect(0, 0, w, h, "fill:white;stroke:#cccccc;stroke-width:1")
	if spec.Title != "" {
		canvas.Text(w/2, 24, spec.Title, "text-anchor:middle;font-size:16px;fill:#333333")
	}
	canvas.Text(w/2, h/2, "no rows match the active filters",
		"text-anchor:middle;font-size:13px;fill:#888888")
	canvas.End()

	return buf.Bytes()
}
