package tmdb

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	mockAPIPrefix   = "/3"
	mockImagePrefix = "/t/p/"
)

// MockServer provides a configurable provider fake for testing. API routes
// live under /3 and images under /t/p/{size}/{file}. Unknown API paths answer
// 404 with the provider's error body.
type MockServer struct {
	*httptest.Server

	mu      sync.RWMutex
	routes  map[string]mockResponse
	images  map[string]mockImage
	delay   map[string]time.Duration
	calls   map[string]int
	queries map[string]url.Values
	headers map[string]http.Header
}

type mockResponse struct {
	status int
	body   []byte
}

type mockImage struct {
	contentType string
	data        []byte
}

// NewMockServer starts a new provider fake.
func NewMockServer() *MockServer {
	m := &MockServer{}
	m.resetNoLock()
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// APIBaseURL is the value to use as Config.BaseURL.
func (m *MockServer) APIBaseURL() string { return m.URL + mockAPIPrefix }

// ImageBaseURL is the value to use as Config.ImageBaseURL.
func (m *MockServer) ImageBaseURL() string { return m.URL + strings.TrimSuffix(mockImagePrefix, "/") }

// Handle answers path with 200 and body encoded as JSON.
func (m *MockServer) Handle(path string, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		panic("tmdb mock: marshal " + path + ": " + err.Error())
	}
	m.HandleRaw(path, http.StatusOK, data)
}

// HandleStatus answers path with status and a provider error body.
func (m *MockServer) HandleStatus(path string, status int, message string) {
	data, _ := json.Marshal(statusBody{StatusCode: status, StatusMessage: message})
	m.HandleRaw(path, status, data)
}

// HandleRaw answers path with status and an arbitrary body.
func (m *MockServer) HandleRaw(path string, status int, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[path] = mockResponse{status: status, body: body}
}

// SetDelay delays every answer for path. Client cancellation ends the wait.
func (m *MockServer) SetDelay(path string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay[path] = d
}

// SetImage serves data at /t/p/{size}/{file}. An empty content type omits the header.
func (m *MockServer) SetImage(size, file, contentType string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[size+"/"+file] = mockImage{contentType: contentType, data: data}
}

// Calls returns how many times path was requested.
func (m *MockServer) Calls(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[path]
}

// TotalCalls returns the number of requests served, images included.
func (m *MockServer) TotalCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// LastQuery returns the query of the most recent request to path.
func (m *MockServer) LastQuery(path string) url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queries[path]
}

// LastHeader returns the headers of the most recent request to path.
func (m *MockServer) LastHeader(path string) http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.headers[path]
}

// Reset clears routes, images and recorded calls.
func (m *MockServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetNoLock()
}

func (m *MockServer) resetNoLock() {
	m.routes = make(map[string]mockResponse)
	m.images = make(map[string]mockImage)
	m.delay = make(map[string]time.Duration)
	m.calls = make(map[string]int)
	m.queries = make(map[string]url.Values)
	m.headers = make(map[string]http.Header)
}

func (m *MockServer) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	isImage := strings.HasPrefix(path, mockImagePrefix)
	if !isImage {
		path = strings.TrimPrefix(path, mockAPIPrefix)
	}

	m.mu.Lock()
	m.calls[path]++
	m.queries[path] = r.URL.Query()
	m.headers[path] = r.Header.Clone()
	delay := m.delay[path]
	route, routed := m.routes[path]
	img, imaged := m.images[strings.TrimPrefix(path, mockImagePrefix)]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if isImage {
		if !imaged {
			http.NotFound(w, r)
			return
		}
		if img.contentType != "" {
			w.Header().Set("Content-Type", img.contentType)
		} else {
			// Suppress net/http content sniffing so callers see no type.
			w.Header()["Content-Type"] = nil
		}
		_, _ = w.Write(img.data)
		return
	}

	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	if !routed {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(statusBody{
			StatusCode:    34,
			StatusMessage: "The resource you requested could not be found.",
		})
		return
	}
	w.WriteHeader(route.status)
	_, _ = w.Write(route.body)
}
