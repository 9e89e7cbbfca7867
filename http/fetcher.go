// Package http implements the network collaborators of sitescout on top of
// net/http: page fetching, robots.txt resolution and sitemap discovery.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/sitescout"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodySize caps the number of body bytes read from a response.
const DefaultMaxBodySize = 10 << 20

// DefaultUserAgent identifies sitescout to the servers it talks to.
const DefaultUserAgent = "sitescout/1.0 (+https://github.com/fwojciec/sitescout)"

// Ensure Fetcher implements sitescout.Fetcher at compile time.
var _ sitescout.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves documents using HTTP requests and decodes them to UTF-8.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	maxBodySize int64
	userAgent   string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize caps the number of body bytes read. Longer bodies are
// truncated.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		maxBodySize: DefaultMaxBodySize,
		userAgent:   DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves url and decodes its body using the charset declared in
// the Content-Type header or the document itself.
// Returns ENOTFOUND if the server responds with 404.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*sitescout.Page, error) {
	resp, err := get(ctx, f.client, url, f.userAgent)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, url); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	_, name, _ := charset.DetermineEncoding(raw, contentType)
	r, err := charset.NewReaderLabel(name, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding %s as %s: %w", url, name, err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s as %s: %w", url, name, err)
	}

	return &sitescout.Page{
		URL:      resp.Request.URL.String(),
		Body:     string(body),
		Encoding: name,
	}, nil
}

// get issues a GET request with the given user agent.
func get(ctx context.Context, client *http.Client, url, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, sitescout.Errorf(sitescout.EINVALID, "creating request: %v", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return client.Do(req)
}

// checkStatus maps a non-200 response to an error, using ENOTFOUND for 404.
func checkStatus(resp *http.Response, url string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return sitescout.Errorf(sitescout.ENOTFOUND, "HTTP 404 for %s", url)
	default:
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
}
