package widget

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/vizlink/vizlink/internal/dataset"
	"github.com/vizlink/vizlink/internal/selection"
)

// Slider is a range control over a numeric column, emitting a
// closed-interval predicate. Its default bounds come from the column's
// observed minimum and maximum.
type Slider struct {
	id     string
	column string
	group  updater

	// Min and Max bound the control.
	Min, Max float64

	mu          sync.Mutex
	lo, hi      float64
	active      bool
	lastVersion uint64
}

type SliderConfig struct {
	// ID is optional; a UUID is assigned when empty.
	ID      string
	Column  string
	Dataset *dataset.Dataset
	Group   updater
}

func (c *SliderConfig) validate() error {
	var errGrp []error
	if c.Column == "" {
		errGrp = append(errGrp, errors.New("column is required"))
	}
	if c.Dataset == nil {
		errGrp = append(errGrp, errors.New("dataset cannot be nil"))
	}
	if c.Group == nil {
		errGrp = append(errGrp, errors.New("group cannot be nil"))
	}
	return errors.Join(errGrp...)
}

// NewSlider builds the widget with bounds from the column's summary and
// attaches it to the group.
func NewSlider(cfg *SliderConfig) (*Slider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	summary, err := cfg.Dataset.NumericSummary(cfg.Column)
	if err != nil {
		return nil, err
	}

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	w := &Slider{
		id:     id,
		column: cfg.Column,
		group:  cfg.Group,
		Min:    summary.Min,
		Max:    summary.Max,
		lo:     summary.Min,
		hi:     summary.Max,
	}
	if err := cfg.Group.Attach(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Slider) ID() string { return w.id }

// Column returns the filtered column.
func (w *Slider) Column() string { return w.column }

// SetRange moves the slider handles and emits the interval predicate. An
// inverted range is rejected by the group and the prior filter stays
// active.
func (w *Slider) SetRange(lo, hi float64) error {
	err := w.group.UpdateFilter(w.id, selection.Range{Col: w.column, Min: lo, Max: hi})
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.lo, w.hi = lo, hi
	w.active = true
	w.mu.Unlock()
	return nil
}

// ResetRange returns the handles to the full extent and removes the
// widget's filter.
func (w *Slider) ResetRange() error {
	w.mu.Lock()
	w.lo, w.hi = w.Min, w.Max
	w.active = false
	w.mu.Unlock()

	return clearFilter(w.group, w.id)
}

// Range returns the current handle positions.
func (w *Slider) Range() (lo, hi float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lo, w.hi
}

// SelectionChanged implements linkgroup.Observer.
func (w *Slider) SelectionChanged(sn selection.Snapshot) {
	w.mu.Lock()
	w.lastVersion = sn.Version
	w.mu.Unlock()
}

// LastVersion returns the most recent selection version the widget
// observed.
func (w *Slider) LastVersion() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastVersion
}
