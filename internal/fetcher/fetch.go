package fetcher

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Pager fetches a site page by path. A page that does not exist is returned
// as empty text with a nil error.
type Pager interface {
	Fetch(ctx context.Context, path string) (string, error)
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RPS caps requests per second to the site. Zero or negative means unlimited.
	RPS float64
}

// Client fetches pimpletv pages over HTTP.
type Client struct {
	base      *url.URL
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient returns a Client for the site at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https: %q", opts.BaseURL)
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	return &Client{
		base:      base,
		userAgent: opts.UserAgent,
		http:      &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(limit, 1),
	}, nil
}

// URL returns the absolute URL of path on the site.
func (c *Client) URL(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// Fetch GETs path and returns the HTML-unescaped body. 404 yields ("", nil).
func (c *Client) Fetch(ctx context.Context, path string) (string, error) {
	u, err := c.URL(path)
	if err != nil {
		return "", err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("NewRequest: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("Do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ReadAll: %w", err)
	}
	return html.UnescapeString(string(body)), nil
}
