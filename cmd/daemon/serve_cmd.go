package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/endoverdosing/vyla-api/internal/config"
	"github.com/endoverdosing/vyla-api/internal/daemon"
	"github.com/endoverdosing/vyla-api/internal/log"
	"github.com/endoverdosing/vyla-api/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(parent context.Context, opts *rootOptions) error {
	if parent == nil {
		parent = context.Background()
	}

	// Safe defaults until the config is loaded.
	log.Configure(log.Config{
		Level:   "info",
		Service: "vyla",
		Version: version.Version,
	})
	logger := log.WithComponent("daemon")

	cfg, err := opts.load()
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "config.invalid").Str("path", opts.resolvedConfigPath()).Msg("failed to load configuration")
		return fmt.Errorf("load config: %w", err)
	}
	daemon.ConfigureLogging(cfg)
	logger = log.WithComponent("daemon")

	logger.Info().
		Str(log.FieldEvent, "daemon.starting").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("tmdb_base_url", maskURL(cfg.TMDB.BaseURL)).
		Interface("config", config.MaskSecrets(cfg)).
		Msg("starting vyla")

	ctx, stop := daemon.WaitForShutdown(parent)
	defer stop()

	rt, err := daemon.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	if err := rt.App.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Str(log.FieldEvent, "daemon.failed").Msg("daemon stopped with error")
		return err
	}
	logger.Info().Str(log.FieldEvent, "daemon.stopped").Msg("daemon stopped")
	return nil
}
