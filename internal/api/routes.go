package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) registerRoutes(r chi.Router) {
	// Orchestrator probes live outside the API prefix.
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)

	r.Route(s.basePath, func(r chi.Router) {
		r.Get("/", s.handleIndex)
		r.Get("/openapi.yaml", s.handleOpenAPI)

		r.Get("/home", s.handleHome)
		r.Get("/search", s.handleSearch)
		r.Get("/details/{type}/{id}", s.handleDetails)
		r.Get("/cast/{id}", s.handleCast)
		r.Get("/player/{type}/{id}", s.handlePlayer)
		r.Get("/genres/{type}", s.handleGenreList)
		r.Get("/genres/{type}/{genreId}", s.handleBrowse)
		r.Get("/tv/{tvId}/season/{seasonNumber}", s.handleSeason)
		r.Get("/episodes/{tvId}/{seasonNumber}/{episodeNumber}", s.handleEpisode)
		r.Get("/list", s.handleList)
		r.Get("/image/{size}/{file}", s.handleImage)

		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.NotFound(s.handleAPINotFound)
		r.MethodNotAllowed(s.handleMethodNotAllowed)
	})

	r.NotFound(s.handleStatic)
	r.MethodNotAllowed(s.handleMethodNotAllowed)
}

func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, notFoundError(Request{"path": r.URL.Path}, "Endpoint not found"))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, &Error{
		Kind:    KindValidation,
		Status:  http.StatusMethodNotAllowed,
		Message: "Method not allowed",
		Request: Request{"method": r.Method, "path": r.URL.Path},
	})
}
