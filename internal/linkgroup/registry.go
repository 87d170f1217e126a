package linkgroup

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vizlink/vizlink/internal/dataset"
)

var (
	// ErrUnknownDataset is returned when a group references a dataset the
	// registry has not loaded.
	ErrUnknownDataset = errors.New("unknown dataset")
	// ErrUnknownGroup is returned when a group id does not exist.
	ErrUnknownGroup = errors.New("unknown group")
	// ErrDuplicateDataset is returned when a dataset name is registered
	// twice.
	ErrDuplicateDataset = errors.New("dataset already registered")
)

// Registry is the process-wide home of datasets and link groups. It runs
// as an application dependency so shutdown tears every group down.
type Registry struct {
	rwMutex  sync.RWMutex
	datasets map[string]*dataset.Dataset
	groups   map[string]*Manager
	feed     emitter
}

type RegistryConfig struct {
	// Feed is optional; when set, every group broadcasts its accepted
	// updates through it.
	Feed emitter
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg *RegistryConfig) (*Registry, error) {
	if cfg == nil {
		cfg = &RegistryConfig{}
	}
	return &Registry{
		datasets: make(map[string]*dataset.Dataset),
		groups:   make(map[string]*Manager),
		feed:     cfg.Feed,
	}, nil
}

func (r *Registry) Start() error {
	return nil
}

func (r *Registry) Stop() error {
	r.rwMutex.Lock()
	defer r.rwMutex.Unlock()
	for id, g := range r.groups {
		if err := g.Close(); err != nil && !errors.Is(err, ErrGroupClosed) {
			log.Error().Err(err).Msgf("Failed to close link group %s", id)
		}
	}
	r.groups = make(map[string]*Manager)
	return nil
}

func (r *Registry) Name() string {
	return "Link Group Registry"
}

// AddDataset registers a loaded dataset under its name.
func (r *Registry) AddDataset(d *dataset.Dataset) error {
	r.rwMutex.Lock()
	defer r.rwMutex.Unlock()
	if _, ok := r.datasets[d.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateDataset, d.Name())
	}
	r.datasets[d.Name()] = d
	log.Info().Msgf("Registered dataset %q: %d rows", d.Name(), d.RowCount())
	return nil
}

// Dataset returns a registered dataset.
func (r *Registry) Dataset(name string) (*dataset.Dataset, error) {
	r.rwMutex.RLock()
	defer r.rwMutex.RUnlock()
	d, ok := r.datasets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	return d, nil
}

// DatasetNames lists registered datasets in sorted order.
func (r *Registry) DatasetNames() []string {
	r.rwMutex.RLock()
	defer r.rwMutex.RUnlock()
	names := make([]string, 0, len(r.datasets))
	for name := range r.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateGroup builds a link group over a registered dataset.
func (r *Registry) CreateGroup(datasetName, groupID string) (*Manager, error) {
	r.rwMutex.Lock()
	defer r.rwMutex.Unlock()

	d, ok := r.datasets[datasetName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, datasetName)
	}

	g, err := New(&Config{ID: groupID, Dataset: d, Feed: r.feed})
	if err != nil {
		return nil, err
	}
	if _, exists := r.groups[g.ID()]; exists {
		return nil, fmt.Errorf("link group already exists: %s", g.ID())
	}

	r.groups[g.ID()] = g
	log.Info().Msgf("Created link group %s over dataset %q", g.ID(), datasetName)
	return g, nil
}

// Group returns a link group by id.
func (r *Registry) Group(id string) (*Manager, error) {
	r.rwMutex.RLock()
	defer r.rwMutex.RUnlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, id)
	}
	return g, nil
}

// RemoveGroup closes and forgets a link group.
func (r *Registry) RemoveGroup(id string) error {
	r.rwMutex.Lock()
	defer r.rwMutex.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGroup, id)
	}
	delete(r.groups, id)
	return g.Close()
}
