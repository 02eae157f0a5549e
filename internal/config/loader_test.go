package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T, path string) *Loader {
	t.Helper()
	l := NewLoader(path, "v-test")
	l.DotEnvPath = ""
	return l
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "k")

	cfg, err := newTestLoader(t, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "v-test", cfg.Version)
	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.Equal(t, ":3001", cfg.Server.ListenAddr)
	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "en-US", cfg.TMDB.Language)
	assert.Equal(t, 10*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, 0, cfg.TMDB.BreakerThreshold)
	assert.Equal(t, ImageModeDirect, cfg.Images.Mode)
	assert.Equal(t, "/api/image", cfg.Images.ProxyPrefix)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadMissingCredential(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("TMDB_ACCESS_TOKEN", "")

	_, err := newTestLoader(t, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tmdb.api_key")
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	path := writeFile(t, "vyla.yaml", `
environment: development
server:
  listen_addr: ":8080"
  base_path: /v1
  allowed_origins: ["https://vyla.example"]
tmdb:
  access_token: file-token
  language: fr-FR
  timeout: 3s
images:
  mode: proxy
`)
	t.Setenv("VYLA_LISTEN", ":9000")
	t.Setenv("VYLA_TMDB_LANGUAGE", "de-DE")

	cfg, err := newTestLoader(t, path).Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, ":9000", cfg.Server.ListenAddr, "env wins over file")
	assert.Equal(t, "/v1", cfg.Server.BasePath)
	assert.Equal(t, []string{"https://vyla.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "file-token", cfg.TMDB.AccessToken)
	assert.Equal(t, "de-DE", cfg.TMDB.Language)
	assert.Equal(t, 3*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, ImageModeProxy, cfg.Images.Mode)
	assert.Equal(t, "/v1/image", cfg.Images.ProxyPrefix, "proxy prefix follows the base path")
	assert.Equal(t, "console", cfg.Log.Format, "development defaults to console output")
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL, "unset file keys keep defaults")
}

func TestLoadPortFallback(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "k")
	t.Setenv("PORT", "4000")

	cfg, err := newTestLoader(t, "").Load()
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Server.ListenAddr)
}

func TestLoadNodeEnvFallback(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "k")
	t.Setenv("NODE_ENV", "development")

	cfg, err := newTestLoader(t, "").Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
}

func TestLoadStrictUnknownField(t *testing.T) {
	path := writeFile(t, "vyla.yaml", "tmdb:\n  api_key: k\n  cache_ttl: 5m\n")

	_, err := newTestLoader(t, path).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField))
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	path := writeFile(t, "vyla.yaml", "tmdb:\n  api_key: k\n---\nenvironment: production\n")

	_, err := newTestLoader(t, path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoadRejectsNonYAML(t *testing.T) {
	path := writeFile(t, "vyla.json", "{}")

	_, err := newTestLoader(t, path).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoadEmptyFile(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "k")
	path := writeFile(t, "vyla.yaml", "")

	cfg, err := newTestLoader(t, path).Load()
	require.NoError(t, err)
	assert.Equal(t, ":3001", cfg.Server.ListenAddr)
}

func TestLoadDotEnv(t *testing.T) {
	dotenv := writeFile(t, ".env", "TMDB_API_KEY=from-dotenv\nVYLA_IMAGE_MODE=proxy\n")
	t.Setenv("VYLA_IMAGE_MODE", "direct")
	// godotenv sets variables on the process; register cleanup for the new one.
	t.Setenv("TMDB_API_KEY", "")
	require.NoError(t, os.Unsetenv("TMDB_API_KEY"))

	l := NewLoader("", "v-test")
	l.DotEnvPath = dotenv
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.TMDB.APIKey)
	assert.Equal(t, ImageModeDirect, cfg.Images.Mode, "existing environment wins over .env")
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "k")

	l := NewLoader("", "v-test")
	l.DotEnvPath = filepath.Join(t.TempDir(), "missing.env")
	_, err := l.Load()
	require.NoError(t, err)
}

func TestConsumedEnvKeysTracked(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "k")

	l := newTestLoader(t, "")
	_, err := l.Load()
	require.NoError(t, err)

	for _, key := range []string{"VYLA_ENV", "TMDB_API_KEY", "VYLA_IMAGE_MODE", "VYLA_PLAYER_SOURCES", "PORT"} {
		assert.Contains(t, l.ConsumedEnvKeys, key)
	}
}

func TestServerLocalURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:3001", ServerConfig{ListenAddr: ":3001"}.LocalURL())
	assert.Equal(t, "http://10.0.0.2:80", ServerConfig{ListenAddr: "10.0.0.2:80"}.LocalURL())
	assert.Equal(t, "http://127.0.0.1:3001", ServerConfig{ListenAddr: "garbage"}.LocalURL())
}
