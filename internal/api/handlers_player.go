package api

import (
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/endoverdosing/vyla-api/internal/telemetry"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

// handlePlayer lists the embed sources for a title. It makes no upstream
// call; tv requests must name both season and episode.
func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := Request{"type": chiParam(r, "type"), "id": chiParam(r, "id")}

	kind, verr := mediaTypeParam(r, req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	if kind == tmdb.MediaTV {
		req["season"] = q.Get("s")
		req["episode"] = q.Get("e")
	}
	id, verr := positiveIDParam(r, "id", req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}

	var season, episode int
	if kind == tmdb.MediaTV {
		if q.Get("s") == "" || q.Get("e") == "" {
			s.writeError(w, r, validationError(req, "Season (s) and episode (e) are required for TV shows"))
			return
		}
		if season, verr = intParam(q.Get("s"), "season", 1, req); verr != nil {
			s.writeError(w, r, verr)
			return
		}
		if episode, verr = intParam(q.Get("e"), "episode", 1, req); verr != nil {
			s.writeError(w, r, verr)
			return
		}
	}
	trace.SpanFromContext(r.Context()).SetAttributes(telemetry.MediaAttributes(string(kind), id, season, episode)...)

	entries := s.catalog.Generate(kind, id, season, episode)
	writeJSON(w, http.StatusOK, s.shaper.Player(kind, id, season, episode, entries))
}
