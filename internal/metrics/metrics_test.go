package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	r := New()
	r.ObserveRequest(http.MethodGet, "/api/home", http.StatusOK, 10*time.Millisecond)
	r.ObserveRequest(http.MethodGet, "/api/home", http.StatusOK, 20*time.Millisecond)
	r.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(r.httpRequests.WithLabelValues("GET", "/api/home", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.httpRequests.WithLabelValues("GET", "unmatched", "404")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(r.httpDuration))
}

func TestRequestStartedTracksInFlight(t *testing.T) {
	r := New()
	done1 := r.RequestStarted()
	done2 := r.RequestStarted()
	assert.InDelta(t, 2, testutil.ToFloat64(r.httpInFlight), 0)

	done1()
	done2()
	assert.InDelta(t, 0, testutil.ToFloat64(r.httpInFlight), 0)
}

func TestCircuitBreakerState(t *testing.T) {
	r := New()
	r.SetCircuitBreakerState("tmdb", "open")

	assert.InDelta(t, 1, testutil.ToFloat64(r.breakerState.WithLabelValues("tmdb", "open")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(r.breakerState.WithLabelValues("tmdb", "closed")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(r.breakerState.WithLabelValues("tmdb", "half-open")), 0)

	r.RecordCircuitBreakerTrip("tmdb", "threshold_exceeded")
	assert.InDelta(t, 1, testutil.ToFloat64(r.breakerTrips.WithLabelValues("tmdb", "threshold_exceeded")), 0)
}

func TestSnapshot(t *testing.T) {
	started := time.Now().Add(-90 * time.Second)
	r := New(WithStartTime(started))

	r.ObserveRequest("GET", "/api/search", 200, time.Millisecond)
	r.ObserveRequest("GET", "/api/search", 400, time.Millisecond)
	r.ObserveRequest("GET", "/api/details/{type}/{id}", 404, time.Millisecond)
	r.RecordError("validation")
	r.RecordError("not_found")
	r.RecordError("validation")
	r.ObserveUpstream("/search/multi", "ok", time.Millisecond)
	r.ObserveUpstream("/movie/{id}", "not_found", time.Millisecond)
	r.SetCircuitBreakerState("tmdb", "closed")
	done := r.RequestStarted()
	defer done()

	s := r.Snapshot()
	assert.Equal(t, uint64(3), s.Requests)
	assert.Equal(t, uint64(3), s.Errors)
	assert.Equal(t, map[string]int64{"validation": 2, "not_found": 1}, s.ErrorsByKind)
	assert.Equal(t, int64(1), s.InFlight)
	assert.Equal(t, uint64(2), s.UpstreamCalls)
	assert.Equal(t, uint64(1), s.UpstreamFailures)
	assert.Equal(t, map[string]string{"tmdb": "closed"}, s.BreakerStates)
	assert.GreaterOrEqual(t, s.UptimeSeconds, int64(90))
	assert.Equal(t, started.UTC(), s.StartedAt)
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RecordError("internal")

	assert.Equal(t, uint64(1), a.Snapshot().Errors)
	assert.Equal(t, uint64(0), b.Snapshot().Errors)
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveRequest("GET", "/", 200, time.Millisecond)
		r.RecordError("internal")
		r.ObserveUpstream("/x", "ok", time.Millisecond)
		r.RecordImage("tmdb")
		r.SetCircuitBreakerState("tmdb", "open")
		r.RecordCircuitBreakerTrip("tmdb", "threshold_exceeded")
		r.RequestStarted()()
	})
	assert.Equal(t, uint64(0), r.Snapshot().Requests)
	assert.Zero(t, r.Uptime())
}

func TestHandlerExposition(t *testing.T) {
	r := New(WithRuntimeCollectors())
	r.RecordImage("fallback")

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `vyla_image_proxy_responses_total{source="fallback"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
