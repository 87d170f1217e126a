// Package widget implements the filter controls of a link group. A
// widget reads a raw value change from the UI toolkit, translates it to a
// predicate, and emits it through the group's update entry point. Widgets
// never touch views directly; all communication flows through the shared
// selection state.
package widget

import (
	"errors"

	"github.com/vizlink/vizlink/internal/linkgroup"
	"github.com/vizlink/vizlink/internal/selection"
)

// updater is the slice of the link group a widget writes through.
type updater interface {
	Attach(o linkgroup.Observer) error
	UpdateFilter(sourceID string, p selection.Predicate) error
	Reset(sourceID string) error
}

// clearFilter removes the widget's contribution; a widget that holds no
// contribution clears to a no-op.
func clearFilter(g updater, id string) error {
	err := g.Reset(id)
	if errors.Is(err, selection.ErrUnknownSource) {
		return nil
	}
	return err
}
