package widget

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/vizlink/vizlink/internal/dataset"
	"github.com/vizlink/vizlink/internal/selection"
)

// Select is a single-select control emitting an equality predicate over a
// categorical column. Selecting the empty value removes the filter.
type Select struct {
	id      string
	column  string
	group   updater
	options []string

	mu          sync.Mutex
	value       string
	lastVersion uint64
}

type SelectConfig struct {
	// ID is optional; a UUID is assigned when empty.
	ID      string
	Column  string
	Dataset *dataset.Dataset
	Group   updater
}

func (c *SelectConfig) validate() error {
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

// NewSelect builds the widget and attaches it to the group.
func NewSelect(cfg *SelectConfig) (*Select, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	options, err := cfg.Dataset.Levels(cfg.Column)
	if err != nil {
		return nil, err
	}

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	w := &Select{
		id:      id,
		column:  cfg.Column,
		group:   cfg.Group,
		options: options,
	}
	if err := cfg.Group.Attach(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Select) ID() string { return w.id }

// Column returns the filtered column.
func (w *Select) Column() string { return w.column }

// Options returns the values the control offers.
func (w *Select) Options() []string { return w.options }

// SetValue selects a value and emits the equality predicate. The empty
// value removes the widget's filter.
func (w *Select) SetValue(value string) error {
	w.mu.Lock()
	w.value = value
	w.mu.Unlock()

	if value == "" {
		return clearFilter(w.group, w.id)
	}
	return w.group.UpdateFilter(w.id, selection.Equality{Col: w.column, Value: value})
}

// Value returns the current selection.
func (w *Select) Value() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// SelectionChanged implements linkgroup.Observer.
func (w *Select) SelectionChanged(sn selection.Snapshot) {
	w.mu.Lock()
	w.lastVersion = sn.Version
	w.mu.Unlock()
}

// LastVersion returns the most recent selection version the widget
// observed.
func (w *Select) LastVersion() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastVersion
}
