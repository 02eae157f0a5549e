// Package config loads and validates the service configuration.
//
// Values are resolved with the precedence ENV > YAML file > defaults.
package config

import "time"

// Environments understood by the service.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Image URL modes.
const (
	ImageModeDirect = "direct"
	ImageModeProxy  = "proxy"
)

// AppConfig is the fully resolved service configuration.
type AppConfig struct {
	// Version is the binary version; it is never read from the file.
	Version string `yaml:"-"`

	Environment string          `yaml:"environment"`
	Log         LogConfig       `yaml:"log"`
	Server      ServerConfig    `yaml:"server"`
	TMDB        TMDBConfig      `yaml:"tmdb"`
	Images      ImagesConfig    `yaml:"images"`
	Player      PlayerConfig    `yaml:"player"`
	Metrics     MetricsConfig   `yaml:"metrics"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
}

// IsDevelopment reports whether debug payloads may be exposed to clients.
func (c AppConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// TMDBConfig holds the upstream provider settings.
type TMDBConfig struct {
	APIKey       string        `yaml:"api_key"`
	AccessToken  string        `yaml:"access_token"`
	BaseURL      string        `yaml:"base_url"`
	ImageBaseURL string        `yaml:"image_base_url"`
	Language     string        `yaml:"language"`
	Timeout      time.Duration `yaml:"timeout"`
	ImageTimeout time.Duration `yaml:"image_timeout"`

	// BreakerThreshold is the number of consecutive upstream failures that
	// open the circuit breaker. Zero disables the breaker.
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerReset     time.Duration `yaml:"breaker_reset"`
}

// ImagesConfig selects how image URLs are rendered in responses.
type ImagesConfig struct {
	Mode        string `yaml:"mode"`
	ProxyPrefix string `yaml:"proxy_prefix"`
}

// PlayerConfig points at an optional operator-supplied source table.
type PlayerConfig struct {
	SourcesFile string `yaml:"sources_file"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"service_name"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

const (
	defaultListenAddr        = ":3001"
	defaultBasePath          = "/api"
	defaultTMDBBaseURL       = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL  = "https://image.tmdb.org/t/p"
	defaultTMDBLanguage      = "en-US"
	defaultTMDBTimeout       = 10 * time.Second
	defaultTMDBImageTimeout  = 15 * time.Second
	defaultBreakerReset      = 30 * time.Second
	defaultMetricsListenAddr = ":9091"
	defaultOTLPEndpoint      = "localhost:4317"
)

// Defaults returns the configuration used when neither file nor environment
// override a value.
func Defaults() AppConfig {
	return AppConfig{
		Environment: EnvProduction,
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			ListenAddr:        defaultListenAddr,
			BasePath:          defaultBasePath,
			AllowedOrigins:    []string{"http://localhost:3000", "http://localhost:3001"},
			ReadTimeout:       defaultReadTimeout,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
			MaxHeaderBytes:    defaultMaxHeaderBytes,
			ShutdownTimeout:   defaultShutdownTimeout,
		},
		TMDB: TMDBConfig{
			BaseURL:      defaultTMDBBaseURL,
			ImageBaseURL: defaultTMDBImageBaseURL,
			Language:     defaultTMDBLanguage,
			Timeout:      defaultTMDBTimeout,
			ImageTimeout: defaultTMDBImageTimeout,
			BreakerReset: defaultBreakerReset,
		},
		Images: ImagesConfig{
			Mode: ImageModeDirect,
		},
		Metrics: MetricsConfig{
			ListenAddr: defaultMetricsListenAddr,
		},
		Telemetry: TelemetryConfig{
			ServiceName:  "vyla",
			Exporter:     "grpc",
			Endpoint:     defaultOTLPEndpoint,
			SamplingRate: 1.0,
		},
	}
}
