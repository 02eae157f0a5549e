package config

import (
	"net"
	"strings"
	"time"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g., ":3001")
	ListenAddr string `yaml:"listen_addr"`

	// BasePath prefixes every API route (e.g., "/api")
	BasePath string `yaml:"base_path"`

	// StaticDir optionally serves a built frontend with SPA fallback
	StaticDir string `yaml:"static_dir"`

	// AllowedOrigins is the CORS allow-list
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// ReadHeaderTimeout bounds the time spent reading request headers
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header's keys and values
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

const (
	// Default server timeouts
	defaultReadTimeout       = 30 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultWriteTimeout      = 60 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1 MB
	defaultShutdownTimeout   = 15 * time.Second
	minShutdownTimeout       = 3 * time.Second
)

// listenFromPort turns a bare PORT value into a listen address.
func listenFromPort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ""
	}
	if strings.Contains(port, ":") {
		return port
	}
	return net.JoinHostPort("", port)
}

// LocalURL returns an http URL that reaches the listener from the same host.
func (s ServerConfig) LocalURL() string {
	host, port, err := net.SplitHostPort(s.ListenAddr)
	if err != nil {
		return "http://127.0.0.1" + defaultListenAddr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
