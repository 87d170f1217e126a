// Package selection holds the shared mutable state of a link group: the
// filter predicates contributed by widgets and the highlight key set
// contributed by view interactions. Filtering decides which rows exist in
// any view; highlighting decides which of the surviving rows are
// emphasized. The two never conflate.
package selection

import (
	"sync"

	"github.com/vizlink/vizlink/internal/dataset"
)

// State records the active selection of one link group. Only the owning
// link group's update entry point mutates it; views and widgets hold
// read-only references.
type State struct {
	mu sync.RWMutex

	dataset    *dataset.Dataset
	predicates map[string]Predicate
	// order remembers the sequence sources first contributed, so
	// snapshot evaluation is deterministic.
	order []string

	highlight       dataset.KeySet
	highlightSource string

	version uint64
}

// NewState creates selection state bound to one dataset.
func NewState(d *dataset.Dataset) *State {
	return &State{
		dataset:    d,
		predicates: make(map[string]Predicate),
	}
}

// Version returns the current state version. Every accepted mutation
// increments it; renders stamped with an older version are stale.
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// ApplyPredicate stores a filter contribution keyed by source, replacing
// any prior contribution from the same source. The predicate is validated
// first; a rejected predicate leaves state untouched.
func (s *State) ApplyPredicate(source string, p Predicate) error {
	if err := p.Validate(s.dataset); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.predicates[source]; !ok {
		s.order = append(s.order, source)
	}
	s.predicates[source] = p
	s.version++
	return nil
}

// ApplyHighlight replaces the highlight key set. An explicit click or
// brush chooses a highlight within the filtered universe; it never alters
// which rows pass the active filters.
func (s *State) ApplyHighlight(source string, keys []dataset.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(keys) == 0 {
		s.highlight = nil
		s.highlightSource = ""
	} else {
		s.highlight = dataset.NewKeySet(keys...)
		s.highlightSource = source
	}
	s.version++
}

// Clear removes a source's contribution, whether filter or highlight.
func (s *State) Clear(source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleared := false
	if _, ok := s.predicates[source]; ok {
		delete(s.predicates, source)
		for i, id := range s.order {
			if id == source {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		cleared = true
	}
	if s.highlightSource == source {
		s.highlight = nil
		s.highlightSource = ""
		cleared = true
	}
	if !cleared {
		return newError(ErrUnknownSource, "%q has no active contribution", source)
	}
	s.version++
	return nil
}

// Snapshot captures the effective selection at a point in time. Visible is
// nil when no filters are active, meaning the whole dataset is visible.
type Snapshot struct {
	Version   uint64
	Visible   dataset.KeySet
	Highlight dataset.KeySet
}

// VisibleKey reports whether a row passes the effective filter.
func (sn Snapshot) VisibleKey(k dataset.Key) bool {
	if sn.Visible == nil {
		return true
	}
	return sn.Visible.Has(k)
}

// Highlighted reports whether a row is in the highlight set.
func (sn Snapshot) Highlighted(k dataset.Key) bool {
	return sn.Highlight.Has(k)
}

// Snapshot evaluates every active predicate against the dataset and
// intersects the resulting key sets. All filters must pass: this is
// filter semantics, AND across widgets, commutative and associative.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var visible dataset.KeySet
	for _, source := range s.order {
		keys, err := s.predicates[source].Eval(s.dataset)
		if err != nil {
			// Predicates were validated on the way in; an eval failure
			// would mean the dataset schema changed under us, which the
			// immutability contract forbids.
			continue
		}
		if visible == nil {
			visible = keys
		} else {
			visible = visible.Intersect(keys)
		}
	}

	var highlight dataset.KeySet
	if len(s.highlight) > 0 {
		highlight = make(dataset.KeySet, len(s.highlight))
		for k := range s.highlight {
			highlight[k] = struct{}{}
		}
	}

	return Snapshot{
		Version:   s.version,
		Visible:   visible,
		Highlight: highlight,
	}
}
