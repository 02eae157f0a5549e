package api

import (
	"context"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/endoverdosing/vyla-api/internal/log"
	"github.com/endoverdosing/vyla-api/internal/telemetry"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

// secondary runs an optional fetch inside g. Its failure is logged and
// leaves *out nil so the matching section renders empty.
func secondary[T any](ctx context.Context, g *errgroup.Group, name string, out **T, fetch func(context.Context) (*T, error)) {
	g.Go(func() error {
		v, err := fetch(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger := log.WithComponentFromContext(ctx, "api")
				logger.Warn().Err(err).
					Str(log.FieldEvent, "fanout.degraded").
					Str("call", name).
					Msg("optional upstream call failed")
			}
			return nil
		}
		*out = v
		return nil
	})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	req := Request{"type": chiParam(r, "type"), "id": chiParam(r, "id")}

	kind, verr := mediaTypeParam(r, req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	id, verr := positiveIDParam(r, "id", req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	trace.SpanFromContext(r.Context()).SetAttributes(telemetry.MediaAttributes(string(kind), id, 0, 0)...)

	var (
		details *tmdb.Details
		credits *tmdb.Credits
		related *tmdb.Page
		videos  *tmdb.Videos
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		details, err = s.provider.Details(ctx, kind, id)
		return err
	})
	secondary(ctx, g, "credits", &credits, func(ctx context.Context) (*tmdb.Credits, error) {
		return s.provider.Credits(ctx, kind, id)
	})
	secondary(ctx, g, "recommendations", &related, func(ctx context.Context) (*tmdb.Page, error) {
		return s.provider.Recommendations(ctx, kind, id)
	})
	secondary(ctx, g, "videos", &videos, func(ctx context.Context) (*tmdb.Videos, error) {
		return s.provider.Videos(ctx, kind, id)
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, fromUpstream(err, req, "Content not found", "Failed to fetch details"))
		return
	}
	if details == nil || details.ID == 0 {
		s.writeError(w, r, notFoundError(req, "Content not found"))
		return
	}

	writeJSON(w, http.StatusOK, s.shaper.Details(kind, details, credits, related, videos))
}

func (s *Server) handleCast(w http.ResponseWriter, r *http.Request) {
	req := Request{"id": chiParam(r, "id")}

	id, verr := positiveIDParam(r, "id", req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	trace.SpanFromContext(r.Context()).SetAttributes(telemetry.MediaAttributes(string(tmdb.MediaPerson), id, 0, 0)...)

	var (
		person  *tmdb.Person
		credits *tmdb.CombinedCredits
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		person, err = s.provider.Person(ctx, id)
		return err
	})
	secondary(ctx, g, "combined_credits", &credits, func(ctx context.Context) (*tmdb.CombinedCredits, error) {
		return s.provider.CombinedCredits(ctx, id)
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, fromUpstream(err, req, "Person not found", "Failed to fetch cast details"))
		return
	}
	if person == nil || person.ID == 0 {
		s.writeError(w, r, notFoundError(req, "Person not found"))
		return
	}

	writeJSON(w, http.StatusOK, s.shaper.Person(person, credits))
}
