package log

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLevel(t *testing.T) {
	t.Cleanup(func() { Configure(Config{}) })

	Configure(Config{Level: "WARN", Output: &bytes.Buffer{}})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	Configure(Config{Level: "not-a-level", Output: &bytes.Buffer{}})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestConfigureVersionField(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf, Service: "vyla", Version: "v9.9.9"})
	t.Cleanup(func() { Configure(Config{}) })

	L().Info().Msg("boot")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "vyla", entries[0][FieldService])
	assert.Equal(t, "v9.9.9", entries[0][FieldVersion])
}

func TestConfigureConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf, Format: "console"})
	t.Cleanup(func() { Configure(Config{}) })

	L().Info().Msg("human readable")
	assert.Contains(t, buf.String(), "human readable")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestConfigureFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vyla.log")
	var buf bytes.Buffer
	Configure(Config{Output: &buf, File: path})
	t.Cleanup(func() {
		_ = Close()
		Configure(Config{})
	})

	L().Info().Str(FieldEvent, "file.test").Msg("to file")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file.test")
	assert.Contains(t, buf.String(), "file.test")
}

func TestMiddlewareLogsRequest(t *testing.T) {
	buf := captureBase(t)

	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/details/{type}/{id}", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Debug().Msg("inside handler")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/details/movie/1", nil)
	req = req.WithContext(ContextWithRequestID(req.Context(), "rid-1"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "inside handler", entries[0]["message"])
	assert.Equal(t, "rid-1", entries[0][FieldRequestID])

	access := entries[1]
	assert.Equal(t, "request.handled", access[FieldEvent])
	assert.Equal(t, "warn", access["level"])
	assert.Equal(t, "/api/details/{type}/{id}", access[FieldRoute])
	assert.Equal(t, "/api/details/movie/1", access[FieldPath])
	assert.EqualValues(t, http.StatusNotFound, access[FieldStatus])
	assert.EqualValues(t, 4, access[FieldBytes])
	assert.Equal(t, "rid-1", access[FieldRequestID])
}
