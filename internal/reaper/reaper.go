package reaper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// store is anything the reaper can expire artifacts from.
type store interface {
	Prune(olderThan time.Time) (int, error)
}

// Reaper expires old artifact files on an interval so a long-running
// process does not accumulate unbounded render history on disk.
type Reaper struct {
	store store

	ttl          time.Duration
	reapInterval time.Duration

	mutex sync.Mutex

	procCtx context.Context
	cancel  context.CancelFunc
}

type Config struct {
	Store store
	// TTL is how long an artifact lives before it is reaped, in hours.
	TTL int
	// ReapInterval is how often the reaper runs, in seconds.
	ReapInterval int
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Store == nil {
		errGrp = append(errGrp, errors.New("store cannot be nil"))
	}
	if c.TTL <= 0 {
		errGrp = append(errGrp, errors.New("TTL must be greater than 0"))
	}
	if c.ReapInterval <= 0 {
		errGrp = append(errGrp, errors.New("reap interval must be greater than 0"))
	}
	return errors.Join(errGrp...)
}

// New creates a new Reaper.
func New(cfg *Config) (*Reaper, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Reaper{
		store:        cfg.Store,
		ttl:          time.Duration(cfg.TTL) * time.Hour,
		reapInterval: time.Duration(cfg.ReapInterval) * time.Second,
		mutex:        sync.Mutex{},
		procCtx:      ctx,
		cancel:       cancel,
	}, nil
}

func (r *Reaper) Start() error {
	go func() {
		ticker := time.NewTicker(r.reapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.procCtx.Done():
				return
			case <-ticker.C:
				r.reap()
			}
		}
	}()
	return nil
}

func (r *Reaper) Stop() error {
	if r.cancel != nil {
		r.cancel()
	}

	// Wait for an in-flight reap to finish
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return nil
}

func (r *Reaper) Name() string {
	return "Reaper"
}

// reap removes every artifact past its TTL.
func (r *Reaper) reap() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	start := time.Now()
	removed, err := r.store.Prune(time.Now().Add(-r.ttl))
	if err != nil {
		log.Error().Err(err).Msg("artifact reap failed")
		return
	}
	if removed > 0 {
		log.Debug().
			Int("removed", removed).
			Str("duration", time.Since(start).String()).
			Msg("artifact reap complete")
	}
}
