package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sitescout"
	"github.com/fwojciec/sitescout/bloom"
	"github.com/fwojciec/sitescout/etree"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"
)

// Sitemap discovery defaults.
const (
	DefaultMaxDepth    = 5
	DefaultConcurrency = 4

	// maxSitemapSize is the largest uncompressed sitemap the protocol allows.
	maxSitemapSize = 50 << 20
)

// Ensure SitemapService implements sitescout.SitemapService.
var _ sitescout.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from website sitemaps via HTTP.
type SitemapService struct {
	client      *http.Client
	robots      sitescout.RobotsService
	userAgent   string
	maxDepth    int
	concurrency int
	alternates  bool
}

// SitemapOption configures a SitemapService.
type SitemapOption func(*SitemapService)

// WithRobotsService sets the service used to read Sitemap directives.
// Defaults to a RobotsService sharing the sitemap client.
func WithRobotsService(rs sitescout.RobotsService) SitemapOption {
	return func(s *SitemapService) {
		s.robots = rs
	}
}

// WithMaxDepth bounds how many sitemap indexes deep discovery descends.
func WithMaxDepth(n int) SitemapOption {
	return func(s *SitemapService) {
		s.maxDepth = n
	}
}

// WithConcurrency limits how many child sitemaps of an index are fetched
// at once.
func WithConcurrency(n int) SitemapOption {
	return func(s *SitemapService) {
		s.concurrency = max(n, 1)
	}
}

// WithAlternates includes the alternate-language links of each entry.
func WithAlternates(enabled bool) SitemapOption {
	return func(s *SitemapService) {
		s.alternates = enabled
	}
}

// WithSitemapUserAgent sets the User-Agent header sent when fetching sitemaps.
func WithSitemapUserAgent(ua string) SitemapOption {
	return func(s *SitemapService) {
		s.userAgent = ua
	}
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client, opts ...SitemapOption) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	s := &SitemapService{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxDepth:    DefaultMaxDepth,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.robots == nil {
		s.robots = NewRobotsService(client, WithRobotsUserAgent(s.userAgent))
	}
	return s
}

// DiscoverURLs finds all URLs from a site's sitemap.
// Returns an empty slice (not nil) if no sitemaps are found.
//
// When baseURL has a non-root path (e.g., https://example.com/docs/),
// only URLs with paths starting with that prefix are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *sitescout.URLFilter) ([]string, error) {
	// Check for context cancellation early
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, sitescout.Errorf(sitescout.EINVALID, "invalid base URL %q", baseURL)
	}

	// Extract path prefix for filtering (empty or "/" means no prefix filtering)
	pathPrefix := base.Path
	if pathPrefix == "/" {
		pathPrefix = ""
	}

	// For sitemap discovery, use the root of the domain (strip any path)
	sitemapBase := *base
	sitemapBase.Path = ""
	sitemapBase.RawQuery = ""
	sitemapBase.Fragment = ""

	sitemapURLs, err := s.findSitemapURLs(ctx, &sitemapBase)
	if err != nil {
		return nil, err
	}
	if len(sitemapURLs) == 0 {
		return []string{}, nil
	}

	d := &discovery{
		svc:     s,
		visited: make(map[string]bool),
		digests: make(map[uint64]bool),
	}
	found, err := d.processAll(ctx, sitemapURLs, 0)
	if err != nil {
		return nil, err
	}

	// Deduplicate URLs across sitemaps
	seen := bloom.NewFilter(uint(len(found))+1, 1e-9)
	urls := []string{}
	for _, u := range found {
		if seen.TestAndAdd(u) {
			continue
		}
		if pathPrefix != "" && !matchesPathPrefix(u, pathPrefix) {
			continue
		}
		if !filter.Match(u) {
			continue
		}
		urls = append(urls, u)
	}

	return urls, nil
}

// matchesPathPrefix checks if a URL's path starts with the given prefix,
// respecting path boundaries. If prefix doesn't end with /, it's normalized
// to do so for matching (e.g., /docs matches /docs/ and /docs/intro but not /documentation).
func matchesPathPrefix(rawURL, prefix string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(parsed.Path+"/", prefix)
}

// findSitemapURLs discovers sitemap URLs from robots.txt or falls back to /sitemap.xml.
func (s *SitemapService) findSitemapURLs(ctx context.Context, base *url.URL) ([]string, error) {
	policy, err := s.robots.Policy(ctx, base.String())
	if err == nil {
		var sitemaps []string
		for _, raw := range policy.Sitemaps() {
			ref, err := url.Parse(raw)
			if err != nil {
				continue
			}
			sitemaps = append(sitemaps, base.ResolveReference(ref).String())
		}
		if len(sitemaps) > 0 {
			return sitemaps, nil
		}
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Fall back to /sitemap.xml
	sitemapURL := base.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.urlExists(ctx, sitemapURL.String())
	if err != nil {
		// Propagate context errors, treat other errors as "not found"
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}

	return nil, nil
}

// discovery holds the state of a single DiscoverURLs call.
type discovery struct {
	svc *SitemapService

	mu      sync.Mutex
	visited map[string]bool
	digests map[uint64]bool
}

// processAll processes sitemaps concurrently and returns their URLs in the
// order the sitemaps were given.
func (d *discovery) processAll(ctx context.Context, sitemapURLs []string, depth int) ([]string, error) {
	// Avoid processing the same sitemap twice. Claiming URLs before fanning
	// out keeps the result order independent of scheduling.
	d.mu.Lock()
	var pending []string
	for _, u := range sitemapURLs {
		if !d.visited[u] {
			d.visited[u] = true
			pending = append(pending, u)
		}
	}
	d.mu.Unlock()
	sitemapURLs = pending

	results := make([][]string, len(sitemapURLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.svc.concurrency)
	for i, sitemapURL := range sitemapURLs {
		g.Go(func() error {
			urls, err := d.process(gctx, sitemapURL, depth)
			results[i] = urls
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []string
	for _, urls := range results {
		all = append(all, urls...)
	}
	return all, nil
}

// process fetches and parses a sitemap, handling both urlset and sitemapindex.
func (d *discovery) process(ctx context.Context, sitemapURL string, depth int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if depth > d.svc.maxDepth {
		return nil, nil
	}

	body, err := d.svc.fetchSitemap(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	// Mirrors serving identical content are read once.
	digest := xxhash.Sum64(body)
	d.mu.Lock()
	dup := d.digests[digest]
	d.digests[digest] = true
	d.mu.Unlock()
	if dup {
		return nil, nil
	}

	doc, err := etree.NewSitemap(string(body))
	if sitescout.ErrorCode(err) == sitescout.EMALFORMED {
		// An empty document lists nothing.
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", sitemapURL, err)
	}

	switch doc.Kind() {
	case sitescout.SitemapKindIndex:
		return d.processAll(ctx, doc.Locs(), depth+1)
	case sitescout.SitemapKindURLSet:
		var urls []string
		for entry := range doc.Entries() {
			urls = append(urls, entry.Loc)
			if d.svc.alternates {
				urls = append(urls, entry.Alternates...)
			}
		}
		return urls, nil
	default:
		return nil, nil
	}
}

// fetchSitemap fetches a sitemap, transparently decompressing gzip payloads.
func (s *SitemapService) fetchSitemap(ctx context.Context, sitemapURL string) ([]byte, error) {
	resp, err := get(ctx, s.client, sitemapURL, s.userAgent)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, sitemapURL); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSitemapSize))
	if err != nil {
		return nil, fmt.Errorf("reading sitemap %s: %w", sitemapURL, err)
	}
	if !isGzip(body) {
		return body, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decompressing sitemap %s: %w", sitemapURL, err)
	}
	defer zr.Close()

	body, err = io.ReadAll(io.LimitReader(zr, maxSitemapSize))
	if err != nil {
		return nil, fmt.Errorf("decompressing sitemap %s: %w", sitemapURL, err)
	}
	return body, nil
}

func isGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

// urlExists checks if a URL returns 200 OK.
func (s *SitemapService) urlExists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
