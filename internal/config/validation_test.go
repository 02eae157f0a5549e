package config

import (
	"errors"
	"testing"
	"time"

	"github.com/endoverdosing/vyla-api/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() AppConfig {
	cfg := Defaults()
	cfg.TMDB.APIKey = "k"
	cfg.Log.Format = "json"
	cfg.Images.ProxyPrefix = "/api/image"
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"unknown environment", func(c *AppConfig) { c.Environment = "staging" }, "environment"},
		{"relative base path", func(c *AppConfig) { c.Server.BasePath = "api" }, "server.base_path"},
		{"root base path", func(c *AppConfig) { c.Server.BasePath = "/" }, "server.base_path"},
		{"bad listen", func(c *AppConfig) { c.Server.ListenAddr = "3001" }, "server.listen_addr"},
		{"short shutdown", func(c *AppConfig) { c.Server.ShutdownTimeout = time.Second }, "server.shutdown_timeout"},
		{"bad origin", func(c *AppConfig) { c.Server.AllowedOrigins = []string{"localhost"} }, "server.allowed_origins"},
		{"wildcard with credentials", func(c *AppConfig) {
			c.Server.AllowedOrigins = []string{"*"}
			c.Server.AllowCredentials = true
		}, "server.allowed_origins"},
		{"no credential", func(c *AppConfig) { c.TMDB.APIKey = "" }, "tmdb.api_key"},
		{"bad language", func(c *AppConfig) { c.TMDB.Language = "english please" }, "tmdb.language"},
		{"bad base url", func(c *AppConfig) { c.TMDB.BaseURL = "api.themoviedb.org" }, "tmdb.base_url"},
		{"zero timeout", func(c *AppConfig) { c.TMDB.Timeout = 0 }, "tmdb.timeout"},
		{"negative breaker", func(c *AppConfig) { c.TMDB.BreakerThreshold = -1 }, "tmdb.breaker_threshold"},
		{"breaker without reset", func(c *AppConfig) {
			c.TMDB.BreakerThreshold = 5
			c.TMDB.BreakerReset = 0
		}, "tmdb.breaker_reset"},
		{"bad image mode", func(c *AppConfig) { c.Images.Mode = "cdn" }, "images.mode"},
		{"relative proxy prefix", func(c *AppConfig) { c.Images.ProxyPrefix = "image" }, "images.proxy_prefix"},
		{"metrics on api port", func(c *AppConfig) {
			c.Metrics.Enabled = true
			c.Metrics.ListenAddr = c.Server.ListenAddr
		}, "metrics.listen_addr"},
		{"bad exporter", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.Exporter = "zipkin"
		}, "telemetry.exporter"},
		{"bad sampling", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.SamplingRate = 2
		}, "telemetry.sampling_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var verr validate.ValidationError
			require.True(t, errors.As(err, &verr))
			fields := make([]string, 0, len(verr.Errors()))
			for _, e := range verr.Errors() {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateAccessTokenOnly(t *testing.T) {
	cfg := validConfig()
	cfg.TMDB.APIKey = ""
	cfg.TMDB.AccessToken = "token"
	assert.NoError(t, Validate(cfg))
}
