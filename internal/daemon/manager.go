package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/endoverdosing/vyla-api/internal/config"
	"github.com/endoverdosing/vyla-api/internal/log"
)

// fatalShutdownTimeout bounds the shutdown that follows a server failure.
const fatalShutdownTimeout = 30 * time.Second

// ShutdownHook is a function that performs cleanup during graceful shutdown.
// Hooks are executed in reverse registration order (LIFO).
type ShutdownHook func(ctx context.Context) error

// Manager manages the daemon lifecycle: starting servers, handling shutdown.
type Manager interface {
	// Start starts all configured servers and blocks until shutdown
	Start(ctx context.Context) error

	// Shutdown gracefully shuts down all servers
	Shutdown(ctx context.Context) error

	// RegisterShutdownHook registers a function to be called during shutdown
	RegisterShutdownHook(name string, hook ShutdownHook)
}

type manager struct {
	serverCfg config.ServerConfig
	deps      Deps

	// servers in start order; they are shut down in the same order.
	servers []*namedServer

	shutdownHooks []namedHook

	started  bool
	stopping bool
	mu       sync.Mutex

	logger zerolog.Logger
}

type namedHook struct {
	name string
	hook ShutdownHook
}

// namedServer is one HTTP listener owned by the manager.
type namedServer struct {
	name string // "API" or "metrics"
	srv  *http.Server
}

// NewManager creates a new daemon manager with the given configuration and dependencies.
func NewManager(serverCfg config.ServerConfig, deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	return &manager{
		serverCfg:     serverCfg,
		deps:          deps,
		logger:        deps.Logger.With().Str(log.FieldComponent, "manager").Logger(),
		shutdownHooks: make([]namedHook, 0),
	}, nil
}

// Start binds the configured listeners and blocks until ctx is cancelled or a
// server fails. Either way the manager is shut down before Start returns.
func (m *manager) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("start context is nil")
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("manager already started")
	}
	m.started = true
	m.mu.Unlock()

	m.logger.Info().
		Str("listen", m.serverCfg.ListenAddr).
		Dur("read_timeout", m.serverCfg.ReadTimeout).
		Dur("write_timeout", m.serverCfg.WriteTimeout).
		Dur("shutdown_timeout", m.serverCfg.ShutdownTimeout).
		Bool("metrics", m.metricsEnabled()).
		Msg("Starting daemon manager")

	specs := []*http.Server{m.apiServer()}
	names := []string{"API"}
	if m.metricsEnabled() {
		specs = append(specs, m.metricsServer())
		names = append(names, "metrics")
	}

	errChan := make(chan error, len(specs))
	for i, srv := range specs {
		if err := m.serve(names[i], srv, errChan); err != nil {
			_ = m.shutdownDetached(ctx)
			return fmt.Errorf("failed to start %s server: %w", names[i], err)
		}
	}

	var runErr error
	select {
	case runErr = <-errChan:
		m.logger.Error().Err(runErr).Msg("Server error, initiating shutdown")
	case <-ctx.Done():
		m.logger.Info().Msg("Shutdown signal received")
	}

	if err := m.shutdownDetached(ctx); err != nil {
		if runErr != nil {
			return fmt.Errorf("server error and shutdown failure: %w", errors.Join(runErr, err))
		}
		return err
	}
	return runErr
}

func (m *manager) metricsEnabled() bool {
	return m.deps.MetricsHandler != nil && m.deps.MetricsAddr != ""
}

func (m *manager) apiServer() *http.Server {
	readHeaderTimeout := m.serverCfg.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = m.serverCfg.ReadTimeout / 2
	}
	return &http.Server{
		Addr:              m.serverCfg.ListenAddr,
		Handler:           m.deps.APIHandler,
		ReadTimeout:       m.serverCfg.ReadTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      m.serverCfg.WriteTimeout,
		IdleTimeout:       m.serverCfg.IdleTimeout,
		MaxHeaderBytes:    m.serverCfg.MaxHeaderBytes,
	}
}

func (m *manager) metricsServer() *http.Server {
	return &http.Server{
		Addr:              m.deps.MetricsAddr,
		Handler:           m.deps.MetricsHandler,
		ReadHeaderTimeout: m.serverCfg.ReadTimeout / 2,
	}
}

// serve binds srv.Addr synchronously so bind errors surface from Start, then
// serves in the background. Later failures are sent to errChan.
func (m *manager) serve(name string, srv *http.Server, errChan chan<- error) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("%w: listen %s: %w", ErrServerStartFailed, srv.Addr, err)
	}
	srv.Addr = ln.Addr().String()

	m.mu.Lock()
	m.servers = append(m.servers, &namedServer{name: name, srv: srv})
	m.mu.Unlock()

	event := strings.ToLower(name) + ".server.failed"
	go func() {
		m.logger.Info().Str("addr", srv.Addr).Msgf("%s server listening", name)

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().
				Err(err).
				Str(log.FieldEvent, event).
				Msgf("%s server failed", name)
			errChan <- fmt.Errorf("%s server: %w", name, err)
		}
	}()
	return nil
}

// shutdownDetached shuts down on a context that survives cancellation of ctx.
func (m *manager) shutdownDetached(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fatalShutdownTimeout)
	defer cancel()
	return m.Shutdown(shutdownCtx)
}

func (m *manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("shutdown context is nil")
	}

	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	servers := append([]*namedServer(nil), m.servers...)
	hooks := append([]namedHook(nil), m.shutdownHooks...)
	m.mu.Unlock()

	m.logger.Info().Int("servers", len(servers)).Int("hooks", len(hooks)).Msg("Shutting down daemon manager")

	timeout := m.serverCfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = fatalShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var errs []error
	for _, s := range servers {
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s server shutdown: %w", s.name, err))
		}
	}

	for i := len(hooks) - 1; i >= 0; i-- {
		if err := m.runHook(shutdownCtx, hooks[i]); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		m.logger.Error().
			Int("error_count", len(errs)).
			Msg("Shutdown completed with errors")
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	m.logger.Info().Msg("Daemon manager stopped cleanly")
	return nil
}

func (m *manager) runHook(ctx context.Context, h namedHook) error {
	start := time.Now()
	err := h.hook(ctx)
	ev := m.logger.Debug()
	if err != nil {
		ev = m.logger.Error().Err(err)
	}
	ev.Str("hook", h.name).Dur("duration", time.Since(start)).Msg("Shutdown hook finished")
	if err != nil {
		return fmt.Errorf("hook %s: %w", h.name, err)
	}
	return nil
}
// RegisterShutdownHook registers a cleanup function to be called during shutdown.
// Hooks are executed in reverse registration order (LIFO).
func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shutdownHooks = append(m.shutdownHooks, namedHook{
		name: name,
		hook: hook,
	})
	m.logger.Debug().Str("hook", name).Msg("Registered shutdown hook")
}
