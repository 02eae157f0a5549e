package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/endoverdosing/vyla-api/internal/health"
	"github.com/endoverdosing/vyla-api/internal/log"
)

const startupProbeTimeout = 5 * time.Second

// App owns the runtime lifecycle and delegates server management to Manager.
type App struct {
	logger  zerolog.Logger
	manager Manager
	probe   health.ProbeFunc
}

// NewApp creates a new App orchestrator. probe is optional; when set it runs
// once after startup and only logs its outcome.
func NewApp(logger zerolog.Logger, manager Manager, probe health.ProbeFunc) *App {
	return &App{
		logger:  logger,
		manager: manager,
		probe:   probe,
	}
}

// Run starts the servers and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.probe != nil {
		g.Go(func() error {
			a.checkUpstream(gctx)
			return nil
		})
	}

	g.Go(func() error {
		return a.manager.Start(gctx)
	})

	return g.Wait()
}

func (a *App) checkUpstream(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, startupProbeTimeout)
	defer cancel()

	start := time.Now()
	if err := a.probe(probeCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		a.logger.Warn().
			Err(err).
			Str(log.FieldEvent, "upstream.probe_failed").
			Dur("duration", time.Since(start)).
			Msg("upstream not reachable at startup; serving anyway")
		return
	}
	a.logger.Info().
		Str(log.FieldEvent, "upstream.probe_ok").
		Dur("duration", time.Since(start)).
		Msg("upstream reachable")
}
