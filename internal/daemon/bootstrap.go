// SPDX-License-Identifier: MIT

// Package daemon provides the core daemon bootstrapping and lifecycle management.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/endoverdosing/vyla-api/internal/api"
	"github.com/endoverdosing/vyla-api/internal/config"
	"github.com/endoverdosing/vyla-api/internal/health"
	"github.com/endoverdosing/vyla-api/internal/log"
	"github.com/endoverdosing/vyla-api/internal/metrics"
	"github.com/endoverdosing/vyla-api/internal/player"
	"github.com/endoverdosing/vyla-api/internal/telemetry"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

// Runtime is a fully wired service ready to Run.
type Runtime struct {
	Config  config.AppConfig
	App     *App
	Manager Manager
	API     *api.Server
	Metrics *metrics.Registry
	Catalog *player.Catalog
	Health  *health.Manager
}

// BuildOption customises Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	fs      afero.Fs
	tmdbOps []tmdb.Option
}

// WithFs sets the filesystem the player source table is read from.
func WithFs(fs afero.Fs) BuildOption {
	return func(o *buildOptions) { o.fs = fs }
}

// WithTMDBOptions appends options to the upstream client.
func WithTMDBOptions(opts ...tmdb.Option) BuildOption {
	return func(o *buildOptions) { o.tmdbOps = append(o.tmdbOps, opts...) }
}

// ConfigureLogging applies the log section of cfg to the global logger.
func ConfigureLogging(cfg config.AppConfig) {
	log.Configure(log.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		File:    cfg.Log.File,
		Service: "vyla",
		Version: cfg.Version,
	})
}

// Build wires every component from cfg. Resources acquired here are released
// by the returned manager's shutdown hooks.
func Build(ctx context.Context, cfg config.AppConfig, opts ...BuildOption) (*Runtime, error) {
	o := buildOptions{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := log.WithComponent("daemon")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	catalog, err := player.Load(o.fs, cfg.Player.SourcesFile)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("load player catalog: %w", err)
	}

	reg := metrics.New(metrics.WithRuntimeCollectors())

	clientOpts := append([]tmdb.Option{tmdb.WithMetrics(reg)}, o.tmdbOps...)
	client := tmdb.New(tmdb.Config{
		BaseURL:          cfg.TMDB.BaseURL,
		ImageBaseURL:     cfg.TMDB.ImageBaseURL,
		APIKey:           cfg.TMDB.APIKey,
		AccessToken:      cfg.TMDB.AccessToken,
		Language:         cfg.TMDB.Language,
		Timeout:          cfg.TMDB.Timeout,
		ImageTimeout:     cfg.TMDB.ImageTimeout,
		BreakerThreshold: cfg.TMDB.BreakerThreshold,
		BreakerReset:     cfg.TMDB.BreakerReset,
	}, clientOpts...)

	probe := func(ctx context.Context) error {
		_, err := client.Configuration(ctx)
		return err
	}
	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewUpstreamChecker("tmdb", probe, 0))

	srv, err := api.New(cfg, api.Deps{
		Provider: client,
		Catalog:  catalog,
		Metrics:  reg,
		Health:   hm,
	})
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("build api server: %w", err)
	}

	deps := Deps{
		Logger:     logger,
		APIHandler: srv.Handler(),
	}
	if cfg.Metrics.Enabled {
		deps.MetricsHandler = reg.Handler()
		deps.MetricsAddr = cfg.Metrics.ListenAddr
	}

	mgr, err := NewManager(cfg.Server, deps)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	mgr.RegisterShutdownHook("log", func(context.Context) error { return log.Close() })
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)

	logger.Info().
		Str(log.FieldEvent, "daemon.built").
		Str("environment", cfg.Environment).
		Str("listen", cfg.Server.ListenAddr).
		Str("base_path", cfg.Server.BasePath).
		Str("image_mode", cfg.Images.Mode).
		Int("player_sources", catalog.Len()).
		Bool("metrics", cfg.Metrics.Enabled).
		Bool("telemetry", tp.Enabled()).
		Msg("service wired")

	return &Runtime{
		Config:  cfg,
		App:     NewApp(logger, mgr, probe),
		Manager: mgr,
		API:     srv,
		Metrics: reg,
		Catalog: catalog,
		Health:  hm,
	}, nil
}

// WaitForShutdown returns a context cancelled on SIGINT or SIGTERM.
func WaitForShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
