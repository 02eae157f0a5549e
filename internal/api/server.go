// Package api serves the public HTTP interface: route handlers, parameter
// validation, the error envelope, the image proxy and the static frontend.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/endoverdosing/vyla-api/internal/api/middleware"
	"github.com/endoverdosing/vyla-api/internal/config"
	"github.com/endoverdosing/vyla-api/internal/health"
	"github.com/endoverdosing/vyla-api/internal/images"
	"github.com/endoverdosing/vyla-api/internal/log"
	"github.com/endoverdosing/vyla-api/internal/metrics"
	"github.com/endoverdosing/vyla-api/internal/player"
	"github.com/endoverdosing/vyla-api/internal/shape"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
	"github.com/endoverdosing/vyla-api/internal/version"
)

// Provider is the subset of the upstream client the handlers use.
type Provider interface {
	Details(ctx context.Context, kind tmdb.MediaType, id int64) (*tmdb.Details, error)
	Credits(ctx context.Context, kind tmdb.MediaType, id int64) (*tmdb.Credits, error)
	Recommendations(ctx context.Context, kind tmdb.MediaType, id int64) (*tmdb.Page, error)
	Videos(ctx context.Context, kind tmdb.MediaType, id int64) (*tmdb.Videos, error)
	Person(ctx context.Context, id int64) (*tmdb.Person, error)
	CombinedCredits(ctx context.Context, id int64) (*tmdb.CombinedCredits, error)
	SearchMulti(ctx context.Context, p tmdb.SearchParams) (*tmdb.Page, error)
	Trending(ctx context.Context, scope, window string) (*tmdb.Page, error)
	TopRated(ctx context.Context, kind tmdb.MediaType) (*tmdb.Page, error)
	Discover(ctx context.Context, kind tmdb.MediaType, p tmdb.DiscoverParams) (*tmdb.Page, error)
	GenreList(ctx context.Context, kind tmdb.MediaType) (*tmdb.GenreList, error)
	Season(ctx context.Context, tvID int64, season int) (*tmdb.Season, error)
	Episode(ctx context.Context, tvID int64, season, episode int) (*tmdb.Episode, error)
	List(ctx context.Context, path string, query url.Values) (*tmdb.Page, error)
	OpenImage(ctx context.Context, size, file string) (*tmdb.Image, error)
}

var _ Provider = (*tmdb.Client)(nil)

// Deps are the collaborators a Server is built from.
type Deps struct {
	Provider Provider
	Catalog  *player.Catalog

	// Optional
	Images  *images.Builder
	Metrics *metrics.Registry
	Health  *health.Manager
	Static  afero.Fs
	Clock   func() time.Time
}

// Server wires handlers to their dependencies.
type Server struct {
	cfg      config.AppConfig
	basePath string
	debug    bool

	provider Provider
	catalog  *player.Catalog
	shaper   *shape.Shaper
	metrics  *metrics.Registry
	health   *health.Manager
	static   afero.Fs
	logger   zerolog.Logger
}

// New builds a Server. Provider and Catalog are required.
func New(cfg config.AppConfig, deps Deps) (*Server, error) {
	if deps.Provider == nil {
		return nil, errors.New("api: provider is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("api: player catalog is required")
	}

	basePath := strings.TrimRight(cfg.Server.BasePath, "/")
	if basePath == "" {
		basePath = shape.DefaultLinkPrefix
	}

	builder := deps.Images
	if builder == nil {
		builder = images.New(images.Mode(cfg.Images.Mode), cfg.TMDB.ImageBaseURL, cfg.Images.ProxyPrefix)
	}

	shapeOpts := []shape.Option{shape.WithLinkPrefix(basePath)}
	if deps.Clock != nil {
		shapeOpts = append(shapeOpts, shape.WithClock(deps.Clock))
	}

	hm := deps.Health
	if hm == nil {
		hm = health.NewManager(version.Version)
	}

	static := deps.Static
	if static == nil && cfg.Server.StaticDir != "" {
		static = afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), cfg.Server.StaticDir))
	}

	return &Server{
		cfg:      cfg,
		basePath: basePath,
		debug:    cfg.IsDevelopment(),
		provider: deps.Provider,
		catalog:  deps.Catalog,
		shaper:   shape.New(builder, shapeOpts...),
		metrics:  deps.Metrics,
		health:   hm,
		static:   static,
		logger:   log.WithComponent("api"),
	}, nil
}

// Handler returns the root handler with the ingress middleware stack.
func (s *Server) Handler() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		Debug:                 s.debug,
		EnableCORS:            true,
		AllowedOrigins:        s.cfg.Server.AllowedOrigins,
		CORSAllowCredentials:  s.cfg.Server.AllowCredentials,
		EnableSecurityHeaders: true,
		Metrics:               s.metrics,
		TracingService:        tracingService(s.cfg),
		EnableLogging:         true,
	})
	s.registerRoutes(r)
	return r
}

func tracingService(cfg config.AppConfig) string {
	if !cfg.Telemetry.Enabled {
		return ""
	}
	if cfg.Telemetry.ServiceName == "" {
		return "vyla"
	}
	return cfg.Telemetry.ServiceName
}
