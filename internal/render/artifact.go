package render

import (
	"fmt"
	"sort"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/vizlink/vizlink/internal/chart"
	"github.com/vizlink/vizlink/internal/dataset"
	"github.com/vizlink/vizlink/internal/selection"
)

// Artifact is one rendered visual: the SVG bytes plus the provenance a
// display surface or store needs. Identical inputs always produce the
// same fingerprint, which is what makes Render idempotent.
type Artifact struct {
	ViewID      string    `json:"view_id"`
	Dataset     string    `json:"dataset"`
	Version     uint64    `json:"version"`
	Fingerprint string    `json:"fingerprint"`
	RowCount    int       `json:"row_count"`
	Highlighted int       `json:"highlighted"`
	RenderedAt  time.Time `json:"rendered_at"`
	SVG         []byte    `json:"-"`
}

// fingerprint hashes everything that determines an artifact's content:
// the dataset identity, the full channel mapping, and the effective
// selection membership. Key sets are sorted first so map iteration order
// cannot leak into the hash.
func fingerprint(d *dataset.Dataset, spec chart.Spec, sn selection.Snapshot) string {
	h := murmur3.New128()

	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	write(d.Name())
	write(spec.Title)
	write(spec.Mark.String())
	channels := make([]string, 0, len(spec.Channels))
	for ch, col := range spec.Channels {
		channels = append(channels, string(ch)+"="+col)
	}
	sort.Strings(channels)
	for _, c := range channels {
		write(c)
	}
	write(fmt.Sprintf("%dx%d@%g", spec.Style.Width, spec.Style.Height, spec.Style.DimOpacity))

	writeKeys := func(tag string, s dataset.KeySet) {
		write(tag)
		if s == nil {
			write("*")
			return
		}
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		for _, k := range keys {
			write(k)
		}
	}
	writeKeys("visible", sn.Visible)
	writeKeys("highlight", sn.Highlight)

	hi, lo := h.Sum128()
	return fmt.Sprintf("%016x%016x", hi, lo)
}
