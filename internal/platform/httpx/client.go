// Package httpx builds the hardened outbound HTTP clients used for upstream
// calls and operational probes.
package httpx

import (
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultClientTimeout         = 5 * time.Second
	defaultDialTimeout           = 3 * time.Second
	defaultResponseHeaderTimeout = 8 * time.Second
	defaultIdleConnTimeout       = 90 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
	defaultMaxIdleConns          = 64
	defaultMaxIdleConnsPerHost   = 16
)

// Option customises a client built by NewClient.
type Option func(*options)

type options struct {
	spanName string
	traced   bool
}

// WithTracing wraps the transport with otelhttp so every outbound request
// becomes a client span named after the operation prefix.
func WithTracing(operation string) Option {
	return func(o *options) {
		o.traced = true
		o.spanName = operation
	}
}

// NewClient returns a hardened HTTP client for upstream calls and ops probes.
// The overall timeout bounds the whole exchange, including reading the body.
func NewClient(timeout time.Duration, opts ...Option) *http.Client {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dialTimeout := min(timeout, defaultDialTimeout)
	responseHeaderTimeout := min(timeout, defaultResponseHeaderTimeout)

	var transport http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   dialTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
	}

	if o.traced {
		prefix := o.spanName
		transport = otelhttp.NewTransport(transport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if prefix == "" {
					return r.Method
				}
				return prefix + " " + r.Method
			}),
		)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
