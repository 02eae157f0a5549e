package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/stretchr/testify/require"

	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

var (
	openapiOnce sync.Once
	openapiDoc  *openapi3.T
	openapiErr  error
)

func loadOpenAPIDoc(t *testing.T) *openapi3.T {
	t.Helper()
	openapiOnce.Do(func() {
		doc, err := openapi3.NewLoader().LoadFromData(OpenAPISpec())
		if err != nil {
			openapiErr = err
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			openapiErr = err
			return
		}
		openapiDoc = doc
	})
	if openapiErr != nil {
		t.Fatalf("openapi load failed: %v", openapiErr)
	}
	return openapiDoc
}

func validateOpenAPIResponse(t *testing.T, doc *openapi3.T, req *http.Request, rr *httptest.ResponseRecorder, opts *openapi3filter.Options) {
	t.Helper()
	router, err := legacy.NewRouter(doc)
	require.NoError(t, err, "openapi router init")

	route, pathParams, err := router.FindRoute(req)
	require.NoError(t, err, "openapi route lookup")

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status:  rr.Code,
		Header:  rr.Header(),
		Options: opts,
	}
	input.SetBodyBytes(rr.Body.Bytes())

	require.NoError(t, openapi3filter.ValidateResponse(context.Background(), input), "openapi response validation: %s", rr.Body.String())
}

func seedContractFixtures(m *tmdb.MockServer) {
	m.Handle("/trending/all/day", tmdb.Page{Page: 1, Results: []tmdb.Item{movieItem(1, "Trending", 5)}})
	m.Handle("/tv/top_rated", tmdb.Page{Page: 1, Results: []tmdb.Item{{ID: 2, Name: "Show", PosterPath: "/s.jpg"}}})
	m.Handle("/search/multi", tmdb.Page{Page: 1, TotalPages: 1, TotalResults: 1, Results: []tmdb.Item{movieItem(3, "Found", 1)}})
	m.Handle("/movie/299534", tmdb.Details{Item: movieItem(299534, "Endgame", 9), Genres: []tmdb.Genre{{ID: 28, Name: "Action"}},
		ProductionCompanies: []tmdb.Company{{ID: 420, Name: "Marvel Studios", LogoPath: "/marvel.png"}}})
	m.Handle("/movie/299534/credits", tmdb.Credits{Cast: []tmdb.CastCredit{{ID: 3223, Name: "Robert Downey Jr.", Character: "Tony Stark"}}})
	m.Handle("/tv/1668", tmdb.Details{Item: tmdb.Item{ID: 1668, Name: "Friends"}, NumberOfSeasons: 1,
		CreatedBy: []tmdb.Creator{{ID: 1, Name: "David Crane"}},
		Seasons:   []tmdb.SeasonSummary{{SeasonNumber: 1, EpisodeCount: 24}}})
	m.Handle("/person/3223", tmdb.Person{ID: 3223, Name: "Robert Downey Jr."})
	m.Handle("/person/3223/combined_credits", tmdb.CombinedCredits{Cast: []tmdb.Item{{ID: 1726, MediaType: tmdb.MediaMovie, Title: "Iron Man"}}})
	m.Handle("/genre/movie/list", tmdb.GenreList{Genres: []tmdb.Genre{{ID: 28, Name: "Action"}}})
	m.Handle("/discover/movie", tmdb.Page{Page: 1, TotalPages: 2, Results: []tmdb.Item{movieItem(5, "Browse", 1)}})
	m.Handle("/tv/1668/season/1", tmdb.Season{ID: 3, SeasonNumber: 1, Episodes: []tmdb.Episode{{ID: 9, EpisodeNumber: 1, Name: "Pilot"}}})
	m.Handle("/tv/1668/season/1/episode/1", tmdb.Episode{ID: 9, EpisodeNumber: 1, SeasonNumber: 1, Name: "Pilot",
		GuestStars: []tmdb.CastCredit{{ID: 7, Name: "Guest"}}})
	m.Handle("/movie/popular", tmdb.Page{Page: 1, TotalPages: 1, Results: []tmdb.Item{movieItem(6, "Popular", 1)}})
	m.SetImage("w500", "poster.jpg", "image/jpeg", []byte("\xff\xd8\xff"))
}

func TestOpenAPIContract(t *testing.T) {
	doc := loadOpenAPIDoc(t)
	a := newTestAPI(t)
	seedContractFixtures(a.mock)

	bodyless := &openapi3filter.Options{ExcludeResponseBody: true}
	tests := []struct {
		target string
		status int
		opts   *openapi3filter.Options
	}{
		{target: "/api", status: http.StatusOK},
		{target: "/api/openapi.yaml", status: http.StatusOK, opts: bodyless},
		{target: "/api/home", status: http.StatusOK},
		{target: "/api/search?q=found", status: http.StatusOK},
		{target: "/api/search?q=x", status: http.StatusBadRequest},
		{target: "/api/details/movie/299534", status: http.StatusOK},
		{target: "/api/details/tv/1668", status: http.StatusOK},
		{target: "/api/details/movie/1", status: http.StatusNotFound},
		{target: "/api/cast/3223", status: http.StatusOK},
		{target: "/api/player/movie/299534", status: http.StatusOK},
		{target: "/api/player/tv/1668?s=1&e=1", status: http.StatusOK},
		{target: "/api/player/tv/1668", status: http.StatusBadRequest},
		{target: "/api/genres/movie", status: http.StatusOK},
		{target: "/api/genres/movie/28?sort_by=popularity.desc", status: http.StatusOK},
		{target: "/api/tv/1668/season/1", status: http.StatusOK},
		{target: "/api/episodes/1668/1/1", status: http.StatusOK},
		{target: "/api/list?endpoint=/movie/popular", status: http.StatusOK},
		{target: "/api/list", status: http.StatusBadRequest},
		{target: "/api/image/w500/poster.jpg", status: http.StatusOK, opts: bodyless},
		{target: "/api/image/w500/none.jpg", status: http.StatusNotFound, opts: bodyless},
		{target: "/api/health", status: http.StatusOK},
		{target: "/api/status", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			a.handler.ServeHTTP(rec, req)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			validateOpenAPIResponse(t, doc, req, rec, tt.opts)
		})
	}
}
