package sitescout

import (
	"context"
	"time"
)

// Directive is the verb of a robots.txt rule.
type Directive int

// Robots rule directives.
const (
	Disallow Directive = iota
	Allow
)

// String returns the directive as written in robots.txt.
func (d Directive) String() string {
	if d == Allow {
		return "Allow"
	}
	return "Disallow"
}

// RobotsRule is a single Allow or Disallow line of a robots exclusion record.
type RobotsRule struct {
	Directive Directive
	Path      string
}

// RobotsPolicy answers whether a user agent may fetch a path.
// Implementations are immutable once parsed and safe for concurrent use.
type RobotsPolicy interface {
	// Allowed reports whether agent may fetch path. The path may also be
	// given as an absolute URL, in which case its path and query are used.
	Allowed(path, agent string) bool

	// Sitemaps returns the Sitemap directives in the order they appeared.
	Sitemaps() []string

	// CrawlDelay returns the Crawl-delay that applies to agent, or 0.
	CrawlDelay(agent string) time.Duration
}

// RobotsService resolves the robots.txt policy that governs a URL.
type RobotsService interface {
	// Policy fetches and parses robots.txt for the origin of rawURL.
	// A missing robots.txt yields a policy that allows everything.
	Policy(ctx context.Context, rawURL string) (RobotsPolicy, error)
}
