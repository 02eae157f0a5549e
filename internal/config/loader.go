package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/endoverdosing/vyla-api/internal/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath string
	version    string

	// DotEnvPath is loaded into the process environment before anything else.
	// Variables that are already set win. Empty disables .env loading.
	DotEnvPath string

	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		DotEnvPath:      ".env",
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Wrapper methods for mechanical connection tracking

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}

func (l *Loader) envLookup(key string) (string, bool) {
	l.ConsumedEnvKeys[key] = struct{}{}
	return os.LookupEnv(key)
}

// Load loads configuration with precedence: ENV > File > Defaults
// It enforces Strict Validated Order: Parse File (Strict) -> Apply Env -> Validate
func (l *Loader) Load() (AppConfig, error) {
	if err := l.loadDotEnv(); err != nil {
		return AppConfig{}, fmt.Errorf("load dotenv: %w", err)
	}

	// 1. Defaults
	cfg := Defaults()

	// 2. File (if provided)
	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	// 3. Environment variables (highest priority)
	l.mergeEnvConfig(&cfg)

	// 4. Derived values
	resolveDerived(&cfg)
	cfg.Version = l.version

	// 5. Validate final configuration
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (l *Loader) loadDotEnv() error {
	if l.DotEnvPath == "" {
		return nil
	}
	err := godotenv.Load(l.DotEnvPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil {
		logger := log.WithComponent("config")
		logger.Info().
			Str("path", l.DotEnvPath).
			Msg("loaded environment from dotenv file")
	}
	return err
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
// Unknown fields cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	env := l.envString("VYLA_ENV", "")
	if env == "" {
		// NODE_ENV is honoured for deployments that share one env file with the frontend.
		env = l.envString("NODE_ENV", "")
	}
	if env != "" {
		cfg.Environment = strings.ToLower(env)
	}

	// Logging
	cfg.Log.Level = l.envString("VYLA_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = l.envString("VYLA_LOG_FORMAT", cfg.Log.Format)
	cfg.Log.File = l.envString("VYLA_LOG_FILE", cfg.Log.File)

	// Server
	if listen, ok := l.envLookup("VYLA_LISTEN"); ok && strings.TrimSpace(listen) != "" {
		cfg.Server.ListenAddr = strings.TrimSpace(listen)
	} else if port, ok := l.envLookup("PORT"); ok && strings.TrimSpace(port) != "" {
		cfg.Server.ListenAddr = listenFromPort(port)
	}
	cfg.Server.BasePath = l.envString("VYLA_BASE_PATH", cfg.Server.BasePath)
	cfg.Server.StaticDir = l.envString("VYLA_STATIC_DIR", cfg.Server.StaticDir)
	cfg.Server.AllowedOrigins = l.envList("VYLA_ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)
	cfg.Server.AllowCredentials = l.envBool("VYLA_ALLOW_CREDENTIALS", cfg.Server.AllowCredentials)
	cfg.Server.ReadTimeout = l.envDuration("VYLA_SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = l.envDuration("VYLA_SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = l.envDuration("VYLA_SERVER_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = l.envDuration("VYLA_SERVER_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.MaxHeaderBytes = l.envInt("VYLA_SERVER_MAX_HEADER_BYTES", cfg.Server.MaxHeaderBytes)

	// TMDB
	cfg.TMDB.APIKey = l.envString("TMDB_API_KEY", cfg.TMDB.APIKey)
	cfg.TMDB.AccessToken = l.envString("TMDB_ACCESS_TOKEN", cfg.TMDB.AccessToken)
	cfg.TMDB.BaseURL = l.envString("TMDB_BASE_URL", cfg.TMDB.BaseURL)
	cfg.TMDB.ImageBaseURL = l.envString("TMDB_IMAGE_BASE_URL", cfg.TMDB.ImageBaseURL)
	cfg.TMDB.Language = l.envString("VYLA_TMDB_LANGUAGE", cfg.TMDB.Language)
	cfg.TMDB.Timeout = l.envDuration("VYLA_TMDB_TIMEOUT", cfg.TMDB.Timeout)
	cfg.TMDB.ImageTimeout = l.envDuration("VYLA_TMDB_IMAGE_TIMEOUT", cfg.TMDB.ImageTimeout)
	cfg.TMDB.BreakerThreshold = l.envInt("VYLA_TMDB_BREAKER_THRESHOLD", cfg.TMDB.BreakerThreshold)
	cfg.TMDB.BreakerReset = l.envDuration("VYLA_TMDB_BREAKER_RESET", cfg.TMDB.BreakerReset)

	// Images
	cfg.Images.Mode = strings.ToLower(l.envString("VYLA_IMAGE_MODE", cfg.Images.Mode))
	cfg.Images.ProxyPrefix = l.envString("VYLA_IMAGE_PROXY_PREFIX", cfg.Images.ProxyPrefix)

	// Player
	cfg.Player.SourcesFile = l.envString("VYLA_PLAYER_SOURCES", cfg.Player.SourcesFile)

	// Metrics
	cfg.Metrics.Enabled = l.envBool("VYLA_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.ListenAddr = l.envString("VYLA_METRICS_ADDR", cfg.Metrics.ListenAddr)

	// Telemetry
	cfg.Telemetry.Enabled = l.envBool("VYLA_TRACING_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString("VYLA_TRACING_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString("VYLA_TRACING_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat("VYLA_TRACING_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
}

// resolveDerived fills values that default from other settings.
func resolveDerived(cfg *AppConfig) {
	cfg.Server.BasePath = strings.TrimSpace(cfg.Server.BasePath)
	if cfg.Images.ProxyPrefix == "" {
		cfg.Images.ProxyPrefix = cfg.Server.BasePath + "/image"
	}
	cfg.TMDB.BaseURL = strings.TrimRight(cfg.TMDB.BaseURL, "/")
	cfg.TMDB.ImageBaseURL = strings.TrimRight(cfg.TMDB.ImageBaseURL, "/")
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
		if cfg.IsDevelopment() {
			cfg.Log.Format = "console"
		}
	}
}
