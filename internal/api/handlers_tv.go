package api

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/endoverdosing/vyla-api/internal/telemetry"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	req := Request{"tvId": chiParam(r, "tvId"), "seasonNumber": chiParam(r, "seasonNumber")}

	tvID, verr := positiveIDParam(r, "tvId", req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	seasonNumber, verr := intParam(chiParam(r, "seasonNumber"), "seasonNumber", 0, req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	trace.SpanFromContext(r.Context()).SetAttributes(telemetry.MediaAttributes(string(tmdb.MediaTV), tvID, seasonNumber, 0)...)

	var (
		season *tmdb.Season
		show   *tmdb.Details
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		season, err = s.provider.Season(ctx, tvID, seasonNumber)
		return err
	})
	secondary(ctx, g, "tv_details", &show, func(ctx context.Context) (*tmdb.Details, error) {
		return s.provider.Details(ctx, tmdb.MediaTV, tvID)
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, fromUpstream(err, req, "Season not found", "Failed to fetch season"))
		return
	}
	if season == nil || season.ID == 0 {
		s.writeError(w, r, notFoundError(req, "Season not found"))
		return
	}

	writeJSON(w, http.StatusOK, s.shaper.Season(tvID, seasonNumber, season, show))
}

func (s *Server) handleEpisode(w http.ResponseWriter, r *http.Request) {
	req := Request{
		"tvId":          chiParam(r, "tvId"),
		"seasonNumber":  chiParam(r, "seasonNumber"),
		"episodeNumber": chiParam(r, "episodeNumber"),
	}

	tvID, verr := positiveIDParam(r, "tvId", req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	seasonNumber, verr := intParam(chiParam(r, "seasonNumber"), "seasonNumber", 0, req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	episodeNumber, verr := intParam(chiParam(r, "episodeNumber"), "episodeNumber", 1, req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	trace.SpanFromContext(r.Context()).SetAttributes(telemetry.MediaAttributes(string(tmdb.MediaTV), tvID, seasonNumber, episodeNumber)...)

	ep, err := s.provider.Episode(r.Context(), tvID, seasonNumber, episodeNumber)
	if err != nil {
		s.writeError(w, r, fromUpstream(err, req, "Episode not found", "Failed to fetch episode details"))
		return
	}
	if ep.ID == 0 {
		s.writeError(w, r, notFoundError(req, "Episode not found"))
		return
	}
	writeJSON(w, http.StatusOK, s.shaper.Episode(tvID, seasonNumber, episodeNumber, ep))
}
