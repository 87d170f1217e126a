package widget

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/vizlink/vizlink/internal/dataset"
	"github.com/vizlink/vizlink/internal/selection"
)

// Checkbox is a checkbox-set control over a categorical column. Checked
// values combine into a membership predicate; an empty check set means
// "no constraint", not "match nothing".
type Checkbox struct {
	id      string
	column  string
	group   updater
	options []string

	mu          sync.Mutex
	checked     []string
	lastVersion uint64
}

type CheckboxConfig struct {
	// ID is optional; a UUID is assigned when empty.
	ID      string
	Column  string
	Dataset *dataset.Dataset
	Group   updater
}

func (c *CheckboxConfig) validate() error {
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

// NewCheckbox builds the widget, deriving its option list from the
// column's distinct values, and attaches it to the group.
func NewCheckbox(cfg *CheckboxConfig) (*Checkbox, error) {
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

	w := &Checkbox{
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

func (w *Checkbox) ID() string { return w.id }

// Column returns the filtered column.
func (w *Checkbox) Column() string { return w.column }

// Options returns the values the control offers.
func (w *Checkbox) Options() []string { return w.options }

// SetChecked records the user's check set and emits the matching
// membership predicate. Unchecking everything removes the widget's
// filter.
func (w *Checkbox) SetChecked(values []string) error {
	w.mu.Lock()
	w.checked = values
	w.mu.Unlock()

	if len(values) == 0 {
		return clearFilter(w.group, w.id)
	}
	return w.group.UpdateFilter(w.id, selection.Membership{Col: w.column, Values: values})
}

// SelectionChanged implements linkgroup.Observer.
func (w *Checkbox) SelectionChanged(sn selection.Snapshot) {
	w.mu.Lock()
	w.lastVersion = sn.Version
	w.mu.Unlock()
}

// LastVersion returns the most recent selection version the widget
// observed.
func (w *Checkbox) LastVersion() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastVersion
}
