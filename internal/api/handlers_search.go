package api

import (
	"net/http"
	"strconv"

	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := Request{"query": q.Get("q"), "page": q.Get("page")}

	query, verr := searchQuery(r, req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	page, verr := pageParam(r, req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}

	res, err := s.provider.SearchMulti(r.Context(), tmdb.SearchParams{Query: query, Page: page})
	if err != nil {
		s.writeError(w, r, fromUpstream(err, req, "No results found", "Search failed"))
		return
	}
	writeJSON(w, http.StatusOK, s.shaper.Search(query, page, res))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := Request{"endpoint": q.Get("endpoint"), "params": q.Get("params"), "page": q.Get("page")}

	endpoint, verr := listEndpoint(q.Get("endpoint"), req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	params, verr := listParams(q.Get("params"), req)
	if verr != nil {
		s.writeError(w, r, verr)
		return
	}
	if q.Has("page") {
		page, verr := pageParam(r, req)
		if verr != nil {
			s.writeError(w, r, verr)
			return
		}
		params.Set("page", strconv.Itoa(page))
	}

	res, err := s.provider.List(r.Context(), endpoint, params)
	if err != nil {
		s.writeError(w, r, fromUpstream(err, req, "List not found", "Failed to fetch list"))
		return
	}
	writeJSON(w, http.StatusOK, s.shaper.List(res))
}
