// Package linkgroup coordinates the views and filter widgets that share
// one dataset and one selection state. Every selection change flows
// through Update, which recomputes the effective selection and notifies
// all attached observers synchronously, in attachment order, before
// returning.
package linkgroup

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vizlink/vizlink/internal/dataset"
	"github.com/vizlink/vizlink/internal/feed"
	"github.com/vizlink/vizlink/internal/selection"
)

//go:generate mockgen -destination=manager_mock.go -package=linkgroup -source=manager.go

var (
	// ErrGroupClosed is returned for operations on a torn-down group.
	ErrGroupClosed = errors.New("link group is closed")
	// ErrDuplicateObserver is returned when an observer id is attached
	// twice.
	ErrDuplicateObserver = errors.New("observer already attached")
)

// Observer receives synchronous notification after every accepted
// selection change. Views re-render from the snapshot; widgets may update
// their own presentation. Observers must not call back into Update from
// SelectionChanged.
type Observer interface {
	// ID identifies the observer; it doubles as its source id.
	ID() string
	// SelectionChanged delivers the new effective selection.
	SelectionChanged(sn selection.Snapshot)
}

// emitter is the slice of the feed the group needs.
type emitter interface {
	Emit(e *feed.Event)
}

// Manager owns exactly one dataset and one selection state and fans
// selection changes out to its observers.
type Manager struct {
	mu sync.Mutex

	id    string
	data  *dataset.Dataset
	state *selection.State

	// observers in attachment order; notification order follows it.
	observers []Observer

	feed   emitter
	closed bool
}

type Config struct {
	// ID is optional; a UUID is assigned when empty.
	ID      string
	Dataset *dataset.Dataset
	// Feed is optional; when set, accepted updates are broadcast.
	Feed emitter
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Dataset == nil {
		errGrp = append(errGrp, errors.New("dataset cannot be nil"))
	}
	return errors.Join(errGrp...)
}

// New creates a link group around a dataset.
func New(cfg *Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &Manager{
		id:    id,
		data:  cfg.Dataset,
		state: selection.NewState(cfg.Dataset),
		feed:  cfg.Feed,
	}, nil
}

// ID returns the group id.
func (m *Manager) ID() string { return m.id }

// Dataset returns the shared dataset.
func (m *Manager) Dataset() *dataset.Dataset { return m.data }

// Snapshot returns the current effective selection.
func (m *Manager) Snapshot() selection.Snapshot {
	return m.state.Snapshot()
}

// Version returns the current selection version.
func (m *Manager) Version() uint64 {
	return m.state.Version()
}

// Attach registers an observer. Notification order is attachment order.
func (m *Manager) Attach(o Observer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrGroupClosed
	}
	for _, existing := range m.observers {
		if existing.ID() == o.ID() {
			return fmt.Errorf("%w: %s", ErrDuplicateObserver, o.ID())
		}
	}
	m.observers = append(m.observers, o)
	return nil
}

// Detach removes an observer; it receives no further notification. Its
// selection contribution, if any, stays active until Reset.
func (m *Manager) Detach(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.observers {
		if o.ID() == id {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

// UpdateFilter stores a widget's predicate keyed by its source id,
// recomputes the effective selection, and notifies every observer before
// returning. A rejected predicate leaves shared state unchanged.
func (m *Manager) UpdateFilter(sourceID string, p selection.Predicate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrGroupClosed
	}

	if err := m.state.ApplyPredicate(sourceID, p); err != nil {
		return err
	}

	m.notifyLocked()
	m.emitLocked(sourceID, "filter")
	return nil
}

// UpdateHighlight replaces the highlight set with an explicit key set
// from a view's click or brush. Highlighting never alters which rows pass
// the active filters.
func (m *Manager) UpdateHighlight(sourceID string, keys []dataset.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrGroupClosed
	}

	m.state.ApplyHighlight(sourceID, keys)
	m.notifyLocked()
	m.emitLocked(sourceID, "highlight")
	return nil
}

// Reset removes a source's contribution.
func (m *Manager) Reset(sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrGroupClosed
	}

	if err := m.state.Clear(sourceID); err != nil {
		return err
	}

	m.notifyLocked()
	m.emitLocked(sourceID, "reset")
	return nil
}

// Close tears the group down and releases all observers. The dataset is
// shared and outlives the group.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrGroupClosed
	}
	m.closed = true
	m.observers = nil
	return nil
}

// notifyLocked delivers the fresh snapshot to observers in attachment
// order. With no observers attached this is a no-op, not an error.
func (m *Manager) notifyLocked() {
	if len(m.observers) == 0 {
		return
	}
	sn := m.state.Snapshot()
	for _, o := range m.observers {
		o.SelectionChanged(sn)
	}
}

func (m *Manager) emitLocked(sourceID, kind string) {
	if m.feed == nil {
		return
	}
	m.feed.Emit(&feed.Event{
		Group:   m.id,
		Source:  sourceID,
		Kind:    kind,
		Version: m.state.Version(),
		At:      time.Now().UTC(),
	})
}
