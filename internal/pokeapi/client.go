package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public PokeAPI root.
	DefaultBaseURL = "https://pokeapi.co/api/v2/"

	defaultUserAgent   = "shinyhunt/0.1"
	requestTimeout     = 10 * time.Second
	defaultRetries     = 3
	defaultRetryDelay  = 100 * time.Millisecond
	defaultCacheSize   = 4096
	defaultCacheTTL    = 2 * 365 * 24 * time.Hour
	defaultRatePerSec  = 20
	defaultConcurrency = 8
	maxBodyBytes       = 8 << 20
)

// Fetch results reported to an Observer.
const (
	ResultOK     = "ok"
	ResultError  = "error"
	ResultCached = "cached"
)

// Observer receives fetch outcomes. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveFetch(result string, elapsed time.Duration)
	ObserveRetry(reason string)
}

// Fetcher is implemented by *Client and can be faked in tests.
type Fetcher interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Batch(ctx context.Context, paths []string) ([]json.RawMessage, error)
}

var _ Fetcher = (*Client)(nil)

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL string
	// Proxied marks BaseURL as the local proxy, enabling one-request batches.
	Proxied       bool
	Retries       int
	RetryDelay    time.Duration
	CacheSize     int
	CacheTTL      time.Duration
	RatePerSecond float64
	Concurrency   int
	HTTPClient    *http.Client
	Observer      Observer
	Logger        *slog.Logger
}

// StatusError reports an unsuccessful HTTP status.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pokeapi %s returned status %d", e.Path, e.Code)
}

// Client fetches PokeAPI resources. Safe for concurrent use.
type Client struct {
	baseURL     *url.URL
	proxied     bool
	http        *http.Client
	userAgent   string
	retries     int
	retryDelay  time.Duration
	concurrency int
	limiter     *rate.Limiter
	cache       *expirable.LRU[string, json.RawMessage]
	flight      singleflight.Group
	observer    Observer
	logger      *slog.Logger
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:     base,
		proxied:     opts.Proxied,
		http:        opts.HTTPClient,
		userAgent:   defaultUserAgent,
		retries:     opts.Retries,
		retryDelay:  opts.RetryDelay,
		concurrency: opts.Concurrency,
		observer:    opts.Observer,
		logger:      opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: requestTimeout}
	}
	if c.retries <= 0 {
		c.retries = defaultRetries
	}
	if c.retryDelay <= 0 {
		c.retryDelay = defaultRetryDelay
	}
	if c.concurrency <= 0 {
		c.concurrency = defaultConcurrency
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	perSec := opts.RatePerSecond
	if perSec <= 0 {
		perSec = defaultRatePerSec
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSec), max(1, int(perSec)))

	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	c.cache = expirable.NewLRU[string, json.RawMessage](size, nil, ttl)
	return c, nil
}

// BaseURL returns the normalized base the client resolves paths against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get returns the JSON body for path. The returned slice is shared with
// the cache and must not be modified.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	key, err := NormalizePath(path)
	if err != nil {
		return nil, err
	}
	if body, ok := c.cache.Get(key); ok {
		c.observe(ResultCached, 0)
		return body, nil
	}
	// The shared fetch outlives any single caller; each attempt is still
	// bounded by the HTTP client timeout.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (any, error) {
		if body, ok := c.cache.Get(key); ok {
			return body, nil
		}
		body, err := c.fetchWithRetry(fetchCtx, key)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, body)
		return body, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	}
}

// Batch fetches paths and returns results in the same order. Failed paths
// yield nil entries; an error is returned only when ctx ends or the proxy
// batch request itself fails.
func (c *Client) Batch(ctx context.Context, paths []string) ([]json.RawMessage, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	results := make([]json.RawMessage, len(paths))
	if len(paths) == 0 {
		return results, nil
	}
	if c.proxied {
		return results, c.batchViaProxy(ctx, paths, results)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			body, err := c.Get(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.logger.Warn("batch item failed", "path", path, "error", err)
				return nil
			}
			results[i] = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) batchViaProxy(ctx context.Context, paths []string, results []json.RawMessage) error {
	var pending []int
	var keys []string
	for i, path := range paths {
		key, err := NormalizePath(path)
		if err != nil {
			c.logger.Warn("batch item skipped", "path", path, "error", err)
			continue
		}
		if body, ok := c.cache.Get(key); ok {
			c.observe(ResultCached, 0)
			results[i] = body
			continue
		}
		pending = append(pending, i)
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil
	}

	rel := &url.URL{Path: "batch", RawQuery: "urls=" + url.QueryEscape(strings.Join(keys, ","))}
	body, err := c.fetchWithRetry(ctx, rel.String())
	if err != nil {
		return err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return fmt.Errorf("decode batch response: %w", err)
	}
	if len(items) != len(keys) {
		return fmt.Errorf("batch response has %d items, want %d", len(items), len(keys))
	}
	for j, item := range items {
		if len(item) == 0 || string(item) == "null" {
			continue
		}
		c.cache.Add(keys[j], item)
		results[pending[j]] = item
	}
	return nil
}

func (c *Client) fetchWithRetry(ctx context.Context, path string) (json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		start := time.Now()
		body, err := c.fetch(ctx, path)
		if err == nil {
			c.observe(ResultOK, time.Since(start))
			return body, nil
		}
		c.observe(ResultError, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		reason, retryable := retryReason(err)
		if !retryable {
			return nil, err
		}
		lastErr = err
		if attempt == c.retries {
			break
		}
		if c.observer != nil {
			c.observer.ObserveRetry(reason)
		}
		c.logger.Debug("retrying pokeapi request", "path", path, "attempt", attempt, "reason", reason)
		timer := time.NewTimer(c.retryDelay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("fetch %s: giving up after %d attempts: %w", path, c.retries, lastErr)
}

func retryReason(err error) (string, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Code == http.StatusTooManyRequests:
			return "rate_limited", true
		case statusErr.Code >= 500:
			return "server_error", true
		default:
			return "", false
		}
	}
	return "transport", true
}

func (c *Client) fetch(ctx context.Context, path string) (json.RawMessage, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Path: path, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode response: invalid JSON from %s", path)
	}
	return json.RawMessage(body), nil
}

func (c *Client) observe(result string, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveFetch(result, elapsed)
	}
}

// NormalizePath turns an absolute PokeAPI URL or a relative path into
// the relative form used as cache key, e.g. "pokemon/25/".
func NormalizePath(path string) (string, error) {
	p := strings.TrimSpace(path)
	if i := strings.Index(p, "/api/v2/"); i >= 0 {
		p = p[i+len("/api/v2/"):]
	}
	p = strings.TrimLeft(p, "/")
	if p == "" || strings.Contains(p, "://") || strings.Contains(p, "..") {
		return "", fmt.Errorf("invalid pokeapi path %q", path)
	}
	return p, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_base %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
