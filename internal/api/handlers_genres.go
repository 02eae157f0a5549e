package api

import (
	"net/http"
	"strconv"

	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

func (s *Server) handleGenreList(w http.ResponseWriter, r *http.Request) {
	req := Request{"type": chiParam(r, "type")}

	kind, verr := mediaTypeParam(r, req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}

	res, err := s.provider.GenreList(r.Context(), kind)
	if err != nil {
		s.writeError(w, r, fromUpstream(err, req, "Genres not found", "Failed to fetch genres"))
		return
	}
	writeJSON(w, http.StatusOK, s.shaper.GenreList(kind, res))
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := Request{"type": chiParam(r, "type"), "genreId": chiParam(r, "genreId"), "page": q.Get("page")}

	kind, verr := mediaTypeParam(r, req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	genreID, verr := positiveIDParam(r, "genreId", req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	page, verr := pageParam(r, req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	sortBy, verr := sortByParam(r, req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}

	res, err := s.provider.Discover(r.Context(), kind, tmdb.DiscoverParams{
		WithGenres: strconv.FormatInt(genreID, 10),
		SortBy:     sortBy,
		Page:       page,
	})
	if err != nil {
		s.writeError(w, r, fromUpstream(err, req, "Genre not found", "Failed to fetch genre content"))
		return
	}
	writeJSON(w, http.StatusOK, s.shaper.Browse(kind, genreID, page, sortBy, res))
}
