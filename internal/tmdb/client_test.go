package tmdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/endoverdosing/vyla-api/internal/metrics"
	"github.com/endoverdosing/vyla-api/internal/version"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func newTestClient(t *testing.T, cfg Config, opts ...Option) (*Client, *MockServer) {
	t.Helper()
	mock := NewMockServer()
	t.Cleanup(mock.Close)

	cfg.BaseURL = mock.APIBaseURL()
	cfg.ImageBaseURL = mock.ImageBaseURL()
	if cfg.APIKey == "" && cfg.AccessToken == "" {
		cfg.APIKey = "test-key"
	}
	opts = append([]Option{
		WithHTTPClient(mock.Client()),
		WithImageHTTPClient(mock.Client()),
	}, opts...)
	return New(cfg, opts...), mock
}

func TestFetchAddsDefaultQuery(t *testing.T) {
	c, mock := newTestClient(t, Config{Language: "fr-FR"})
	mock.Handle("/movie/550", map[string]any{"id": 550, "title": "Fight Club"})

	d, err := c.Details(context.Background(), MediaMovie, 550)
	require.NoError(t, err)
	assert.Equal(t, int64(550), d.ID)
	assert.Equal(t, "Fight Club", d.Title)

	q := mock.LastQuery("/movie/550")
	assert.Equal(t, "test-key", q.Get("api_key"))
	assert.Equal(t, "fr-FR", q.Get("language"))

	h := mock.LastHeader("/movie/550")
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.Equal(t, "vyla/"+version.Version, h.Get("User-Agent"))
	assert.Empty(t, h.Get("Authorization"))
}

func TestFetchCallerQueryOverridesDefaults(t *testing.T) {
	c, mock := newTestClient(t, Config{})
	mock.Handle("/movie/top_rated", Page{Page: 2})

	_, err := c.List(context.Background(), "/movie/top_rated", map[string][]string{
		"language": {"de-DE"},
		"page":     {"2"},
	})
	require.NoError(t, err)

	q := mock.LastQuery("/movie/top_rated")
	assert.Equal(t, "de-DE", q.Get("language"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "test-key", q.Get("api_key"))
}

func TestAccessTokenSentAsBearer(t *testing.T) {
	c, mock := newTestClient(t, Config{AccessToken: "tok"})
	mock.Handle("/configuration", map[string]any{"images": map[string]any{}})

	_, err := c.Configuration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", mock.LastHeader("/configuration").Get("Authorization"))
	assert.Empty(t, mock.LastQuery("/configuration").Get("api_key"))
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ErrUpstream},
		{"server error", http.StatusBadGateway, ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := newTestClient(t, Config{})
			mock.HandleStatus("/tv/1", tt.status, "upstream says no")

			_, err := c.Details(context.Background(), MediaTV, 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.status, StatusCode(err))
			assert.Equal(t, "upstream says no", UpstreamMessage(err))
		})
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	c, _ := newTestClient(t, Config{})

	_, err := c.Person(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestMalformedBodyIsBadResponse(t *testing.T) {
	c, mock := newTestClient(t, Config{})
	mock.HandleRaw("/movie/1", http.StatusOK, []byte("<html>"))

	_, err := c.Details(context.Background(), MediaMovie, 1)
	require.ErrorIs(t, err, ErrBadResponse)
}

func TestWrongShapeIsBadResponse(t *testing.T) {
	c, mock := newTestClient(t, Config{})
	mock.HandleRaw("/movie/1", http.StatusOK, []byte(`{"id":"not-a-number"}`))

	_, err := c.Details(context.Background(), MediaMovie, 1)
	require.ErrorIs(t, err, ErrBadResponse)
}

func TestTimeout(t *testing.T) {
	mock := NewMockServer()
	t.Cleanup(mock.Close)
	mock.Handle("/movie/1", map[string]any{"id": 1})
	mock.SetDelay("/movie/1", time.Second)

	hc := mock.Client()
	hc.Timeout = 50 * time.Millisecond
	c := New(Config{BaseURL: mock.APIBaseURL(), APIKey: "k"}, WithHTTPClient(hc))

	_, err := c.Details(context.Background(), MediaMovie, 1)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Zero(t, StatusCode(err))
}

func TestCanceledContextDoesNotTripBreaker(t *testing.T) {
	c, mock := newTestClient(t, Config{BreakerThreshold: 1, BreakerReset: time.Minute})
	mock.Handle("/movie/1", map[string]any{"id": 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Details(ctx, MediaMovie, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = c.Details(context.Background(), MediaMovie, 1)
	require.NoError(t, err)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	reg := metrics.New()
	c, mock := newTestClient(t, Config{BreakerThreshold: 2, BreakerReset: time.Minute}, WithMetrics(reg))
	mock.HandleStatus("/trending/all/day", http.StatusInternalServerError, "boom")

	for range 2 {
		_, err := c.Trending(context.Background(), "all", "day")
		require.ErrorIs(t, err, ErrUpstream)
	}

	_, err := c.Trending(context.Background(), "all", "day")
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, mock.Calls("/trending/all/day"))

	snap := reg.Snapshot()
	assert.Equal(t, "open", snap.BreakerStates["tmdb"])
	assert.Equal(t, uint64(3), snap.UpstreamCalls)
	assert.Equal(t, uint64(3), snap.UpstreamFailures)
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	c, mock := newTestClient(t, Config{BreakerThreshold: 1, BreakerReset: time.Minute})
	mock.Handle("/movie/2", map[string]any{"id": 2})

	_, err := c.Details(context.Background(), MediaMovie, 1)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.Details(context.Background(), MediaMovie, 2)
	require.NoError(t, err)
}

func TestSearchEncodesParams(t *testing.T) {
	c, mock := newTestClient(t, Config{})
	mock.Handle("/search/multi", Page{Page: 1, TotalPages: 1})

	_, err := c.SearchMulti(context.Background(), SearchParams{Query: "the office", Page: 3})
	require.NoError(t, err)

	q := mock.LastQuery("/search/multi")
	assert.Equal(t, "the office", q.Get("query"))
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "false", q.Get("include_adult"))
}

func TestDiscoverEncodesParams(t *testing.T) {
	c, mock := newTestClient(t, Config{})
	mock.Handle("/discover/tv", Page{Page: 1})

	_, err := c.Discover(context.Background(), MediaTV, DiscoverParams{WithNetworks: "213"})
	require.NoError(t, err)

	q := mock.LastQuery("/discover/tv")
	assert.Equal(t, "213", q.Get("with_networks"))
	assert.False(t, q.Has("with_genres"))
	assert.False(t, q.Has("sort_by"))
}

func TestSeasonAndEpisodePaths(t *testing.T) {
	c, mock := newTestClient(t, Config{})
	mock.Handle("/tv/1668/season/1", Season{SeasonNumber: 1, Episodes: []Episode{{EpisodeNumber: 1}}})
	mock.Handle("/tv/1668/season/1/episode/2", Episode{EpisodeNumber: 2, SeasonNumber: 1})

	s, err := c.Season(context.Background(), 1668, 1)
	require.NoError(t, err)
	assert.Len(t, s.Episodes, 1)

	e, err := c.Episode(context.Background(), 1668, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, e.EpisodeNumber)
}

func TestOpenImage(t *testing.T) {
	c, mock := newTestClient(t, Config{})
	mock.SetImage("w500", "poster.jpg", "image/png", []byte("png-bytes"))

	img, err := c.OpenImage(context.Background(), "w500", "poster.jpg")
	require.NoError(t, err)
	defer img.Body.Close()

	data, err := io.ReadAll(img.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "image/*", mock.LastHeader("/t/p/w500/poster.jpg").Get("Accept"))
}

func TestOpenImageMissing(t *testing.T) {
	c, _ := newTestClient(t, Config{})

	_, err := c.OpenImage(context.Background(), "w500", "missing.jpg")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/movie/{id}", endpointLabel("/movie/550"))
	assert.Equal(t, "/tv/{id}/season/{id}/episode/{id}", endpointLabel("/tv/1668/season/1/episode/2"))
	assert.Equal(t, "/trending/all/day", endpointLabel("/trending/all/day"))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Sentinel: ErrNotFound, Operation: "/movie/1", Status: 404, Message: "gone"}
	assert.Equal(t, "tmdb: /movie/1: tmdb: resource not found (HTTP 404): gone", err.Error())

	wrapped := &Error{Sentinel: ErrUnavailable, Operation: "/x", Err: errors.New("dial")}
	assert.ErrorIs(t, wrapped, ErrUnavailable)
	assert.ErrorContains(t, wrapped, "dial")
	assert.NotErrorIs(t, wrapped, ErrTimeout)
}

func TestParseMediaType(t *testing.T) {
	mt, err := ParseMediaType("tv")
	require.NoError(t, err)
	assert.Equal(t, MediaTV, mt)

	_, err = ParseMediaType("person")
	assert.Error(t, err)
}
