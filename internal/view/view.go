// Package view binds a chart spec, a dataset, and a link group's
// selection into a renderable visual. A view holds no private copy of the
// selection; it always renders from the group's current snapshot, so two
// views in one group can never diverge.
package view

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vizlink/vizlink/internal/chart"
	"github.com/vizlink/vizlink/internal/dataset"
	"github.com/vizlink/vizlink/internal/linkgroup"
	"github.com/vizlink/vizlink/internal/render"
	"github.com/vizlink/vizlink/internal/selection"
)

// ErrNotLinked is returned when an interaction is sent to a standalone
// view that has no link group.
var ErrNotLinked = errors.New("view is not linked to a group")

// Renderer turns the view's inputs into an artifact.
type Renderer interface {
	Render(viewID string, d *dataset.Dataset, spec chart.Spec, sn selection.Snapshot) (*render.Artifact, error)
}

// Group is the slice of a link group a view needs. A nil Group makes the
// view standalone: Render always uses the full dataset through the same
// code path.
type Group interface {
	Attach(o linkgroup.Observer) error
	Detach(id string)
	Snapshot() selection.Snapshot
	UpdateHighlight(sourceID string, keys []dataset.Key) error
	Reset(sourceID string) error
}

// Sink receives every artifact a view produces. Optional; the artifact
// store implements it.
type Sink interface {
	Save(a *render.Artifact)
}

type View struct {
	id       string
	spec     chart.Spec
	data     *dataset.Dataset
	group    Group
	renderer Renderer
	sink     Sink

	mu   sync.Mutex
	last *render.Artifact
}

type Config struct {
	// ID is optional; a UUID is assigned when empty.
	ID      string
	Spec    chart.Spec
	Dataset *dataset.Dataset
	// Group is optional; nil builds a standalone, non-linked view.
	Group    Group
	Renderer Renderer
	// Sink is optional.
	Sink Sink
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Dataset == nil {
		errGrp = append(errGrp, errors.New("dataset cannot be nil"))
	}
	if c.Renderer == nil {
		errGrp = append(errGrp, errors.New("renderer cannot be nil"))
	}
	return errors.Join(errGrp...)
}

// New constructs a view. The chart spec is checked against the dataset
// schema here: a mapping that references a missing column fails fast with
// chart.ErrInvalidChannelMapping rather than at render time. A linked
// view is attached to its group before New returns.
func New(cfg *Config) (*View, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Spec.Validate(cfg.Dataset); err != nil {
		return nil, err
	}

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	v := &View{
		id:       id,
		spec:     cfg.Spec.WithDefaults(),
		data:     cfg.Dataset,
		group:    cfg.Group,
		renderer: cfg.Renderer,
		sink:     cfg.Sink,
	}

	if v.group != nil {
		if err := v.group.Attach(v); err != nil {
			return nil, fmt.Errorf("failed to attach view %s: %w", id, err)
		}
	}
	return v, nil
}

// ID returns the view id; it doubles as the view's source id in the
// group.
func (v *View) ID() string { return v.id }

// Spec returns the immutable chart spec.
func (v *View) Spec() chart.Spec { return v.spec }

// snapshot returns the current effective selection, or the zero snapshot
// for a standalone view (everything visible, nothing highlighted).
func (v *View) snapshot() selection.Snapshot {
	if v.group == nil {
		return selection.Snapshot{}
	}
	return v.group.Snapshot()
}

// Render produces the artifact for the current selection. It is
// idempotent: with no intervening update, repeated calls return artifacts
// with identical row membership, highlight set, and fingerprint.
func (v *View) Render() (*render.Artifact, error) {
	sn := v.snapshot()

	v.mu.Lock()
	if v.last != nil && v.last.Version == sn.Version {
		cached := v.last
		v.mu.Unlock()
		return cached, nil
	}
	v.mu.Unlock()

	return v.renderTo(sn)
}

func (v *View) renderTo(sn selection.Snapshot) (*render.Artifact, error) {
	a, err := v.renderer.Render(v.id, v.data, v.spec, sn)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	// A render superseded by a newer selection must not clobber a
	// fresher cached one.
	if v.last == nil || v.last.Version <= a.Version {
		v.last = a
	}
	v.mu.Unlock()

	if v.sink != nil {
		v.sink.Save(a)
	}
	return a, nil
}

// SelectionChanged implements linkgroup.Observer: the view re-renders
// from the delivered snapshot without re-fetching data.
func (v *View) SelectionChanged(sn selection.Snapshot) {
	if _, err := v.renderTo(sn); err != nil {
		log.Error().Err(err).Msgf("Failed to re-render view %s", v.id)
	}
}

// Close detaches the view from its group; it receives no further
// notifications.
func (v *View) Close() {
	if v.group != nil {
		v.group.Detach(v.id)
	}
}
