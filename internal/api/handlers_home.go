package api

import (
	"context"
	"net/http"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/trace"

	"github.com/endoverdosing/vyla-api/internal/log"
	"github.com/endoverdosing/vyla-api/internal/shape"
	"github.com/endoverdosing/vyla-api/internal/telemetry"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

// homeSection is one curated category and the upstream call that fills it.
type homeSection struct {
	shape.Category
	fetch func(ctx context.Context, p Provider) (*tmdb.Page, error)
}

func genreSection(title, genreID string) homeSection {
	return homeSection{
		Category: shape.Category{Title: title, Kind: tmdb.MediaMovie},
		fetch: func(ctx context.Context, p Provider) (*tmdb.Page, error) {
			return p.Discover(ctx, tmdb.MediaMovie, tmdb.DiscoverParams{WithGenres: genreID})
		},
	}
}

var homeSections = []homeSection{
	{
		Category: shape.Category{Title: "Trending Now", Layout: shape.LayoutCarousel},
		fetch: func(ctx context.Context, p Provider) (*tmdb.Page, error) {
			return p.Trending(ctx, "all", "day")
		},
	},
	{
		Category: shape.Category{Title: "Trending Movies", Kind: tmdb.MediaMovie},
		fetch: func(ctx context.Context, p Provider) (*tmdb.Page, error) {
			return p.Trending(ctx, "movie", "week")
		},
	},
	{
		Category: shape.Category{Title: "Top Rated Movies", Kind: tmdb.MediaMovie},
		fetch: func(ctx context.Context, p Provider) (*tmdb.Page, error) {
			return p.TopRated(ctx, tmdb.MediaMovie)
		},
	},
	{
		Category: shape.Category{Title: "Top Rated TV Shows", Kind: tmdb.MediaTV},
		fetch: func(ctx context.Context, p Provider) (*tmdb.Page, error) {
			return p.TopRated(ctx, tmdb.MediaTV)
		},
	},
	{
		Category: shape.Category{Title: "Netflix Originals", Kind: tmdb.MediaTV},
		fetch: func(ctx context.Context, p Provider) (*tmdb.Page, error) {
			return p.Discover(ctx, tmdb.MediaTV, tmdb.DiscoverParams{WithNetworks: "213"})
		},
	},
	genreSection("Action Movies", "28"),
	genreSection("Comedy Movies", "35"),
	genreSection("Horror Movies", "27"),
	genreSection("Romance Movies", "10749"),
	genreSection("Documentaries", "99"),
	genreSection("Animation", "16"),
	genreSection("Science Fiction", "878"),
}

// handleHome fetches every category concurrently. A failed category is
// logged and left out of the feed; the request itself never fails on it.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.WithComponentFromContext(ctx, "api")

	feeds := make([]shape.Feed, len(homeSections))
	errs := make([]error, len(homeSections))

	p := pool.New().WithMaxGoroutines(len(homeSections))
	for i, sec := range homeSections {
		feeds[i].Category = sec.Category
		p.Go(func() {
			feeds[i].Page, errs[i] = sec.fetch(ctx, s.provider)
		})
	}
	p.Wait()

	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		feeds[i].Page = nil
		logger.Warn().Err(err).
			Str(log.FieldEvent, "home.section_failed").
			Str("section", feeds[i].Title).
			Msg("home section unavailable")
	}

	trace.SpanFromContext(ctx).SetAttributes(telemetry.FanoutAttributes(len(homeSections), failed)...)
	writeJSON(w, http.StatusOK, s.shaper.Home(feeds))
}
