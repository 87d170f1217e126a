package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

//go:generate mockgen -destination=./app_mock.go -package=app -source=app.go

// Dependency is a long-lived component the application supervises.
type Dependency interface {
	// Start is anything a dependency needs to do before it's ready to be used
	Start() error
	// Stop is anything a dependency needs to do before it's ready to be stopped
	Stop() error
	// Name identifies the dependency in logs, nothing more.
	Name() string
}

type App struct {
	serviceName string
	// deps are started in order and stopped in the same order.
	deps []Dependency
	// depFailChan signals when a dependency fails to start.
	depFailChan chan error
	// osSignalChan receives shutdown signals from the OS.
	osSignalChan chan os.Signal
	// stopCalled allows stop to be called once
	stopCalled *atomic.Bool
	// runCalled allows Run to be called once
	runCalled *atomic.Bool
	// stopTimeout bounds how long shutdown waits on dependencies.
	stopTimeout time.Duration
}

type Config struct {
	ServiceName string
	StopTimeout time.Duration
}

func (c *Config) validate() error {
	var errGrp []error
	if c.ServiceName == "" {
		errGrp = append(errGrp, errors.New("service name is required"))
	}
	if c.StopTimeout == 0 {
		errGrp = append(errGrp, errors.New("stop timeout is required"))
	}
	return errors.Join(errGrp...)
}

// CreateApp creates a new application with the provided dependencies.
func CreateApp(cfg *Config, deps ...Dependency) (*App, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &App{
		serviceName:  cfg.ServiceName,
		deps:         deps,
		stopTimeout:  cfg.StopTimeout,
		stopCalled:   &atomic.Bool{},
		runCalled:    &atomic.Bool{},
		depFailChan:  make(chan error, len(deps)),
		osSignalChan: make(chan os.Signal, 1),
	}, nil
}

// Run starts every dependency and blocks until the context is
// cancelled, the OS asks for shutdown, or a dependency fails.
func (a *App) Run(ctx context.Context) error {
	if a.runCalled.Load() {
		return errors.New("run has already been called")
	}
	a.runCalled.Store(true)

	runCtx, cancel := context.WithCancel(ctx)
	defer func() {
		close(a.depFailChan)
		close(a.osSignalChan)
		cancel()
	}()

	// Each dependency runs in its own goroutine. Some, like the HTTP
	// server, block inside Start until shutdown; none may block the
	// supervisor itself.
	for _, dep := range a.deps {
		go func(dep Dependency) {
			defer func() {
				if r := recover(); r != nil {
					a.depFailChan <- fmt.Errorf("panic in Start() for dependency %s: %v", dep.Name(), r)
				}
			}()

			log.Info().Msg("Starting dependency: " + dep.Name())
			if err := dep.Start(); err != nil {
				a.depFailChan <- fmt.Errorf("failure in Start() for dependency %s: %v", dep.Name(), err)
			}
		}(dep)
	}

	signal.Notify(a.osSignalChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-runCtx.Done():
		log.Info().Msg("App context cancelled: shutting down")
	case depErr := <-a.depFailChan:
		log.Error().Msg("Dependency failed to start: " + depErr.Error())
	case sig := <-a.osSignalChan:
		log.Info().Msg("OS signal received: " + sig.String() + " shutdown beginning...")
	}

	signal.Stop(a.osSignalChan)
	if err := a.stop(); err != nil {
		log.Error().Msg("Error stopping application: " + err.Error())
		return err
	}

	return nil
}

// stop attempts a graceful shutdown of each dependency.
func (a *App) stop() error {
	if a.stopCalled.Load() {
		return errors.New("stop has already been called")
	}
	a.stopCalled.Store(true)

	ctxTo, cancel := context.WithTimeout(context.Background(), a.stopTimeout)

	var errGrp []error
	go func() {
		defer cancel()

		for _, dep := range a.deps {
			log.Info().Msg("Stopping dependency: " + dep.Name())
			if err := dep.Stop(); err != nil {
				errGrp = append(errGrp, fmt.Errorf("failure in Stop() for dependency %s: %v", dep.Name(), err))
			}
		}
	}()

	// Block until every dependency stopped or the timeout fired.
	<-ctxTo.Done()

	if err := ctxTo.Err(); errors.Is(err, context.DeadlineExceeded) {
		errGrp = append(errGrp, err)
	}

	return errors.Join(errGrp...)
}
