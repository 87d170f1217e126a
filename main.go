package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/vizlink/vizlink/internal/app"
	"github.com/vizlink/vizlink/internal/artifact"
	"github.com/vizlink/vizlink/internal/config"
	"github.com/vizlink/vizlink/internal/feed"
	"github.com/vizlink/vizlink/internal/linkgroup"
	"github.com/vizlink/vizlink/internal/reaper"
	"github.com/vizlink/vizlink/internal/render"
	"github.com/vizlink/vizlink/internal/server"
)

func main() {
	application, err := initialize()
	if err != nil {
		panic(err)
	}

	if err = application.Run(context.Background()); err != nil {
		panic(err)
	}
}

func initialize() (*app.App, error) {
	var deps []app.Dependency

	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// every rendered artifact lands here, compressed, bounded per view
	store, err := artifact.New(&artifact.Config{
		RootDir:       cfg.ArtifactDir,
		FlushInterval: cfg.FlushTimer,
		MaxPerView:    cfg.MaxArtifactLimit,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, store)

	// the reaper expires artifacts past their TTL
	reaperGC, err := reaper.New(&reaper.Config{
		Store:        store,
		TTL:          cfg.ArtifactTTL,
		ReapInterval: cfg.ReapTimer,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, reaperGC)

	// selection changes stream to external subscribers over TCP
	selectionFeed, err := feed.New(&feed.Config{
		Port:    cfg.FeedPort,
		Address: cfg.ServerAddress,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, selectionFeed)

	// the registry owns every dataset and link group
	registry, err := linkgroup.NewRegistry(&linkgroup.RegistryConfig{
		Feed: selectionFeed,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, registry)

	handler, err := server.NewHandler(&server.HandlerConfig{
		Registry: registry,
		Renderer: render.New(),
		Sink:     store,
	})
	if err != nil {
		return nil, err
	}

	srv, err := server.New(&server.Config{
		Address: cfg.ServerAddress,
		Port:    cfg.ServerPort,
		Handler: handler,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, srv)

	return app.CreateApp(&app.Config{
		ServiceName: "vizlink",
		StopTimeout: 15 * time.Second,
	}, deps...)
}
