package config

import (
	"strings"

	"github.com/endoverdosing/vyla-api/internal/validate"
)

// Validate checks a resolved AppConfig and reports every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.OneOf("environment", cfg.Environment, []string{EnvProduction, EnvDevelopment})
	v.OneOf("log.level", strings.ToLower(cfg.Log.Level), []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"})
	v.OneOf("log.format", cfg.Log.Format, []string{"json", "console"})

	// Server
	v.ListenAddr("server.listen_addr", cfg.Server.ListenAddr)
	v.AbsolutePath("server.base_path", cfg.Server.BasePath)
	if cfg.Server.BasePath == "/" {
		v.AddError("server.base_path", "base path must not be the root", cfg.Server.BasePath)
	}
	validate.Positive(v, "server.read_timeout", cfg.Server.ReadTimeout)
	validate.Positive(v, "server.read_header_timeout", cfg.Server.ReadHeaderTimeout)
	validate.Positive(v, "server.write_timeout", cfg.Server.WriteTimeout)
	validate.Positive(v, "server.idle_timeout", cfg.Server.IdleTimeout)
	validate.Positive(v, "server.max_header_bytes", cfg.Server.MaxHeaderBytes)
	if cfg.Server.ShutdownTimeout < minShutdownTimeout {
		v.AddError("server.shutdown_timeout", "shutdown timeout must be at least 3s", cfg.Server.ShutdownTimeout)
	}
	for _, origin := range cfg.Server.AllowedOrigins {
		if origin == "*" {
			if cfg.Server.AllowCredentials {
				v.AddError("server.allowed_origins", "wildcard origin cannot be combined with credentials", origin)
			}
			continue
		}
		v.URL("server.allowed_origins", origin, []string{"http", "https"})
	}

	// TMDB
	if strings.TrimSpace(cfg.TMDB.APIKey) == "" && strings.TrimSpace(cfg.TMDB.AccessToken) == "" {
		v.AddError("tmdb.api_key", "either tmdb.api_key or tmdb.access_token is required", "")
	}
	v.URL("tmdb.base_url", cfg.TMDB.BaseURL, []string{"http", "https"})
	v.URL("tmdb.image_base_url", cfg.TMDB.ImageBaseURL, []string{"http", "https"})
	v.Language("tmdb.language", cfg.TMDB.Language)
	validate.Positive(v, "tmdb.timeout", cfg.TMDB.Timeout)
	validate.Positive(v, "tmdb.image_timeout", cfg.TMDB.ImageTimeout)
	v.Range("tmdb.breaker_threshold", cfg.TMDB.BreakerThreshold, 0, 1000)
	if cfg.TMDB.BreakerThreshold > 0 {
		validate.Positive(v, "tmdb.breaker_reset", cfg.TMDB.BreakerReset)
	}

	// Images
	v.OneOf("images.mode", cfg.Images.Mode, []string{ImageModeDirect, ImageModeProxy})
	v.AbsolutePath("images.proxy_prefix", cfg.Images.ProxyPrefix)

	// Metrics
	if cfg.Metrics.Enabled {
		v.ListenAddr("metrics.listen_addr", cfg.Metrics.ListenAddr)
		if cfg.Metrics.ListenAddr == cfg.Server.ListenAddr {
			v.AddError("metrics.listen_addr", "metrics listener must differ from the API listener", cfg.Metrics.ListenAddr)
		}
	}

	// Telemetry
	if cfg.Telemetry.Enabled {
		v.NotEmpty("telemetry.service_name", cfg.Telemetry.ServiceName)
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("telemetry.sampling_rate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}
