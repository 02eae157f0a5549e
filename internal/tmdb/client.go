// Package tmdb is the upstream client for The Movie Database REST API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/endoverdosing/vyla-api/internal/log"
	"github.com/endoverdosing/vyla-api/internal/metrics"
	"github.com/endoverdosing/vyla-api/internal/platform/httpx"
	"github.com/endoverdosing/vyla-api/internal/resilience"
	"github.com/endoverdosing/vyla-api/internal/version"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	DefaultLanguage     = "en-US"

	defaultTimeout      = 10 * time.Second
	defaultImageTimeout = 15 * time.Second
	maxBodyBytes        = 8 << 20
	maxErrorBodyBytes   = 4 << 10
	breakerName         = "tmdb"
)

// Config holds the connection settings for a Client.
type Config struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string // v3 key, sent as api_key
	AccessToken  string // v4 read token, sent as a bearer token
	Language     string
	Timeout      time.Duration
	ImageTimeout time.Duration

	// BreakerThreshold enables the circuit breaker when > 0.
	BreakerThreshold int
	BreakerReset     time.Duration
}

// Client talks to the provider. It is safe for concurrent use.
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	accessToken  string
	language     string
	userAgent    string

	http    *http.Client
	images  *http.Client
	logger  zerolog.Logger
	metrics *metrics.Registry
	breaker *resilience.CircuitBreaker
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the API client (tests, custom transports).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithImageHTTPClient replaces the client used for CDN image downloads.
func WithImageHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.images = c }
}

// WithMetrics records upstream calls and breaker state in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(cl *Client) { cl.metrics = reg }
}

// New builds a Client. Empty config fields fall back to the provider defaults.
func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ImageTimeout <= 0 {
		cfg.ImageTimeout = defaultImageTimeout
	}

	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		apiKey:       cfg.APIKey,
		accessToken:  cfg.AccessToken,
		language:     cfg.Language,
		userAgent:    "vyla/" + version.Version,
		logger:       log.WithComponent("tmdb"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpx.NewClient(cfg.Timeout, httpx.WithTracing("tmdb"))
	}
	if c.images == nil {
		c.images = httpx.NewClient(cfg.ImageTimeout, httpx.WithTracing("tmdb.image"))
	}
	if cfg.BreakerThreshold > 0 {
		c.breaker = resilience.NewCircuitBreaker(breakerName, cfg.BreakerThreshold, cfg.BreakerReset,
			resilience.WithMetrics(c.metrics),
			resilience.WithFailureClassifier(tripsBreaker),
		)
	}
	return c
}

// Language returns the default language sent with every call.
func (c *Client) Language() string { return c.language }

// Fetch issues a GET to path and returns the raw JSON body. Caller query
// values are merged over the defaults and may override them.
func (c *Client) Fetch(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	start := time.Now()

	var body json.RawMessage
	call := func() error {
		var err error
		body, err = c.do(ctx, path, query)
		return err
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(call)
		if errors.Is(err, resilience.ErrCircuitOpen) {
			err = &Error{Sentinel: ErrCircuitOpen, Operation: path, Err: err}
		}
	} else {
		err = call()
	}

	dur := time.Since(start)
	c.metrics.ObserveUpstream(endpointLabel(path), outcomeLabel(err), dur)

	logger := log.WithContext(ctx, c.logger)
	if err != nil {
		ev := logger.Warn()
		if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
			ev = logger.Debug()
		}
		ev.Err(err).
			Str(log.FieldUpstreamPath, path).
			Int(log.FieldUpstreamStatus, StatusCode(err)).
			Dur("duration", dur).
			Msg("upstream call failed")
		return nil, err
	}

	logger.Debug().
		Str(log.FieldUpstreamPath, path).
		Dur("duration", dur).
		Msg("upstream call ok")
	return body, nil
}

// Get fetches path and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	raw, err := c.Fetch(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Sentinel: ErrBadResponse, Operation: path, Status: http.StatusOK, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, query), nil)
	if err != nil {
		return nil, &Error{Sentinel: ErrUnavailable, Operation: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Sentinel: sentinelForTransport(err), Operation: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		te := &Error{Sentinel: sentinelForStatus(resp.StatusCode), Operation: path, Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		var sb statusBody
		if json.Unmarshal(raw, &sb) == nil {
			te.Message = sb.StatusMessage
		}
		return nil, te
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &Error{Sentinel: sentinelForTransport(err), Operation: path, Status: resp.StatusCode, Err: err}
	}
	if len(raw) > maxBodyBytes {
		return nil, &Error{Sentinel: ErrBadResponse, Operation: path, Status: resp.StatusCode, Message: "response body too large"}
	}
	if !json.Valid(raw) {
		return nil, &Error{Sentinel: ErrBadResponse, Operation: path, Status: resp.StatusCode, Message: "response is not JSON"}
	}
	return raw, nil
}

// buildURL composes the request URL with default parameters merged under
// the caller's query.
func (c *Client) buildURL(path string, query url.Values) string {
	q := url.Values{}
	q.Set("language", c.language)
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	for k, vs := range query {
		q[k] = append([]string(nil), vs...)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path + "?" + q.Encode()
}

// Image is a streamed CDN asset. The caller must close Body.
type Image struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// OpenImage streams {image_base_url}/{size}/{file} from the image CDN.
func (c *Client) OpenImage(ctx context.Context, size, file string) (*Image, error) {
	start := time.Now()
	op := "/" + size + "/" + file

	img, err := c.openImage(ctx, op)
	c.metrics.ObserveUpstream("image", outcomeLabel(err), time.Since(start))
	if err != nil {
		logger := log.WithContext(ctx, c.logger)
		logger.Debug().Err(err).Str(log.FieldUpstreamPath, op).Msg("image fetch failed")
		return nil, err
	}
	return img, nil
}

func (c *Client) openImage(ctx context.Context, op string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.imageBaseURL+op, nil)
	if err != nil {
		return nil, &Error{Sentinel: ErrUnavailable, Operation: op, Err: err}
	}
	req.Header.Set("Accept", "image/*")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.images.Do(req)
	if err != nil {
		return nil, &Error{Sentinel: sentinelForTransport(err), Operation: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		_ = resp.Body.Close()
		return nil, &Error{Sentinel: sentinelForStatus(resp.StatusCode), Operation: op, Status: resp.StatusCode}
	}
	return &Image{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

var numericSegment = regexp.MustCompile(`/\d+`)

// endpointLabel keeps metric label cardinality bounded by collapsing ids.
func endpointLabel(path string) string {
	return numericSegment.ReplaceAllString(path, "/{id}")
}
