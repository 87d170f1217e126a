package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/vizlink/vizlink/internal/chart"
	"github.com/vizlink/vizlink/internal/dataset"
	"github.com/vizlink/vizlink/internal/selection"
)

// Kind classifies a user interaction on a view.
type Kind string

const (
	// Click and lasso interactions carry explicit row keys.
	Click Kind = "click"
	// Brush interactions carry axis-aligned ranges over the x/y
	// channels; the view resolves them to keys.
	Brush Kind = "brush"
	// Clear drops the view's highlight contribution.
	Clear Kind = "clear"
)

// Event is one raw interaction delivered by the display surface.
type Event struct {
	Kind Kind `json:"kind"`
	// Keys for click/lasso selection.
	Keys []dataset.Key `json:"keys,omitempty"`
	// Brush bounds. For a datetime axis the bounds are Unix
	// milliseconds.
	XMin float64 `json:"x_min,omitempty"`
	XMax float64 `json:"x_max,omitempty"`
	YMin float64 `json:"y_min,omitempty"`
	YMax float64 `json:"y_max,omitempty"`
	// HasX/HasY say which axes the brush constrains.
	HasX, HasY bool `json:"-"`
}

// Interact translates a user interaction into a key set and routes it
// through the group's update entry point as a highlight. Highlighting
// chooses rows within the filtered universe; it never alters which rows
// pass the filters.
func (v *View) Interact(ev Event) error {
	if v.group == nil {
		return ErrNotLinked
	}

	switch ev.Kind {
	case Click:
		return v.group.UpdateHighlight(v.id, ev.Keys)
	case Brush:
		keys, err := v.brushKeys(ev)
		if err != nil {
			return err
		}
		return v.group.UpdateHighlight(v.id, keys)
	case Clear:
		err := v.group.Reset(v.id)
		if errors.Is(err, selection.ErrUnknownSource) {
			// Nothing to clear.
			return nil
		}
		return err
	}
	return fmt.Errorf("unknown interaction kind: %q", ev.Kind)
}

// brushKeys resolves an axis-aligned brush to the keys inside it. Only
// rows passing the current effective filter are eligible: brushing an
// empty region of a filtered view selects nothing that a filter already
// hid.
func (v *View) brushKeys(ev Event) ([]dataset.Key, error) {
	eligible := v.snapshot().Visible

	inBrush := v.data.AllKeys()
	if ev.HasX {
		keys, err := v.axisKeys(chart.X, ev.XMin, ev.XMax)
		if err != nil {
			return nil, err
		}
		inBrush = inBrush.Intersect(keys)
	}
	if ev.HasY {
		keys, err := v.axisKeys(chart.Y, ev.YMin, ev.YMax)
		if err != nil {
			return nil, err
		}
		inBrush = inBrush.Intersect(keys)
	}

	var out []dataset.Key
	for _, k := range v.data.Keys() {
		if !inBrush.Has(k) {
			continue
		}
		if eligible != nil && !eligible.Has(k) {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

func (v *View) axisKeys(ch chart.Channel, lo, hi float64) (dataset.KeySet, error) {
	col := v.spec.Column(ch)
	t, err := v.data.ColumnType(col)
	if err != nil {
		return nil, err
	}

	var p selection.Predicate
	if t == dataset.Datetime {
		p = selection.TimeRange{
			Col:  col,
			From: time.UnixMilli(int64(lo)).UTC(),
			To:   time.UnixMilli(int64(hi)).UTC(),
		}
	} else {
		p = selection.Range{Col: col, Min: lo, Max: hi}
	}
	return p.Eval(v.data)
}
