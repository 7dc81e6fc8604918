// Package remote reads the catalog from a hosted Supabase (PostgREST) project.
// It is read-only: only the section and product listings are served from it.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout           = 10 * time.Second
	defaultRequestsPerSecond = 5
	maxBodyBytes             = 8 << 20
)

// ErrHostNotAllowed is returned when a request targets a host outside the allowlist.
var ErrHostNotAllowed = errors.New("host not allowed")

// Config configures the REST client.
type Config struct {
	ProjectURL string
	APIKey     string
	// Optional explicit allowlist; if empty, derived from ProjectURL host.
	AllowedHosts []string
	// RequestsPerSecond bounds outgoing requests. Zero uses the default.
	RequestsPerSecond float64
	Timeout           time.Duration
	// Optional additional headers to send on every request.
	DefaultHeaders map[string]string
}

// Client performs PostgREST reads.
type Client struct {
	http    *http.Client
	prefix  string
	apiKey  string
	headers map[string]string
	allowed map[string]struct{}
	limiter *rate.Limiter
}

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.StatusCode, e.Body)
}

// New creates a client. ProjectURL and APIKey are required.
func New(cfg Config) (*Client, error) {
	if cfg.ProjectURL == "" {
		return nil, fmt.Errorf("project URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	u, err := url.Parse(cfg.ProjectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid project URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid project URL scheme %q", u.Scheme)
	}

	allowed := make(map[string]struct{})
	if len(cfg.AllowedHosts) == 0 {
		if u.Hostname() != "" {
			allowed[u.Hostname()] = struct{}{}
		}
	} else {
		for _, h := range cfg.AllowedHosts {
			if h != "" {
				allowed[h] = struct{}{}
			}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	headers := map[string]string{"Accept": "application/json"}
	for k, v := range cfg.DefaultHeaders {
		if v != "" {
			headers[k] = v
		}
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		prefix:  strings.TrimRight(cfg.ProjectURL, "/") + "/rest/v1",
		apiKey:  cfg.APIKey,
		headers: headers,
		allowed: allowed,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Select performs a GET on a table with an optional, already encoded query
// string and returns the raw JSON body.
func (c *Client) Select(ctx context.Context, table, query string) ([]byte, error) {
	if table == "" {
		return nil, fmt.Errorf("table is required")
	}
	target := c.prefix + "/" + url.PathEscape(table)
	if query != "" {
		target += "?" + query
	}
	if err := c.ensureAllowed(target); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", table, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

func (c *Client) ensureAllowed(rawURL string) error {
	if len(c.allowed) == 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("invalid url host")
	}
	if _, ok := c.allowed[host]; !ok {
		return fmt.Errorf("%w: %s", ErrHostNotAllowed, host)
	}
	return nil
}
