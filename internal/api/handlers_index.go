package api

import (
	_ "embed"
	"net/http"

	"github.com/endoverdosing/vyla-api/internal/version"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPISpec returns the embedded OpenAPI document.
func OpenAPISpec() []byte { return openAPISpec }

type endpointDoc struct {
	Path        string            `json:"path"`
	Method      string            `json:"method"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters,omitempty"`
}

type indexResponse struct {
	Success       bool                   `json:"success"`
	Name          string                 `json:"name"`
	Version       string                 `json:"version"`
	APIVersion    string                 `json:"api_version"`
	Status        string                 `json:"status"`
	Documentation string                 `json:"documentation"`
	Endpoints     map[string]endpointDoc `json:"endpoints"`
	Examples      map[string]string      `json:"examples"`
	Timestamp     string                 `json:"timestamp"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	b := s.basePath
	typeParam := "Media type: movie or tv (required)"
	pageParam := "Page number (optional, default: 1)"

	writeJSON(w, http.StatusOK, indexResponse{
		Success:       true,
		Name:          "Vyla Media API",
		Version:       version.Version,
		APIVersion:    version.APIVersion,
		Status:        "active",
		Documentation: b + "/openapi.yaml",
		Endpoints: map[string]endpointDoc{
			"home": {Path: b + "/home", Method: http.MethodGet, Description: "Get curated home page content"},
			"search": {Path: b + "/search", Method: http.MethodGet, Description: "Search movies and TV shows",
				Parameters: map[string]string{"q": "Search query, at least 2 characters (required)", "page": pageParam}},
			"details": {Path: b + "/details/{type}/{id}", Method: http.MethodGet, Description: "Get media details",
				Parameters: map[string]string{"type": typeParam, "id": "TMDB media ID (required)"}},
			"cast": {Path: b + "/cast/{id}", Method: http.MethodGet, Description: "Get cast/actor details",
				Parameters: map[string]string{"id": "TMDB person ID (required)"}},
			"player": {Path: b + "/player/{type}/{id}", Method: http.MethodGet, Description: "Get streaming sources",
				Parameters: map[string]string{"type": typeParam, "id": "TMDB media ID (required)",
					"s": "Season number (required for TV)", "e": "Episode number (required for TV)"}},
			"genres": {Path: b + "/genres/{type}", Method: http.MethodGet, Description: "List genres",
				Parameters: map[string]string{"type": typeParam}},
			"browse": {Path: b + "/genres/{type}/{genreId}", Method: http.MethodGet, Description: "Browse titles by genre",
				Parameters: map[string]string{"type": typeParam, "genreId": "TMDB genre ID (required)",
					"page": pageParam, "sort_by": "Sort order such as popularity.desc (optional)"}},
			"season": {Path: b + "/tv/{tvId}/season/{seasonNumber}", Method: http.MethodGet, Description: "Get a season with its episodes"},
			"episode": {Path: b + "/episodes/{tvId}/{seasonNumber}/{episodeNumber}", Method: http.MethodGet, Description: "Get episode details"},
			"list": {Path: b + "/list", Method: http.MethodGet, Description: "Fetch custom TMDB lists",
				Parameters: map[string]string{"endpoint": "TMDB endpoint path (required)",
					"params": "Additional parameters as a JSON object (optional)", "page": pageParam}},
			"image": {Path: b + "/image/{size}/{file}", Method: http.MethodGet, Description: "Proxy TMDB images",
				Parameters: map[string]string{"size": "Image size token such as w500 or original", "file": "Image filename from TMDB"}},
			"health": {Path: b + "/health", Method: http.MethodGet, Description: "Health check endpoint"},
			"status": {Path: b + "/status", Method: http.MethodGet, Description: "Process counters"},
		},
		Examples: map[string]string{
			"home":          b + "/home",
			"search":        b + "/search?q=avengers",
			"movie_details": b + "/details/movie/299534",
			"tv_details":    b + "/details/tv/1668",
			"cast":          b + "/cast/3223",
			"movie_player":  b + "/player/movie/299534",
			"tv_player":     b + "/player/tv/1668?s=1&e=1",
			"genres":        b + "/genres/movie",
			"browse":        b + "/genres/movie/28?sort_by=vote_average.desc",
			"season":        b + "/tv/1668/season/1",
			"episode":       b + "/episodes/1668/1/1",
			"custom_list":   b + "/list?endpoint=/movie/top_rated",
			"image":         b + "/image/w500/poster.jpg",
		},
		Timestamp: s.shaper.Timestamp(),
	})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}
