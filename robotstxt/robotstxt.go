// Package robotstxt provides a sitescout.RobotsPolicy backed by
// github.com/temoto/robotstxt.
package robotstxt

import (
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/sitescout"
	"github.com/temoto/robotstxt"
)

// Ensure Policy implements sitescout.RobotsPolicy at compile time.
var _ sitescout.RobotsPolicy = (*Policy)(nil)

// Policy wraps parsed robots.txt data.
type Policy struct {
	data *robotstxt.RobotsData
}

// Parse reads a robots.txt body from r. A nil reader returns EINVALID and
// content the library rejects returns EMALFORMED.
func Parse(r io.Reader) (*Policy, error) {
	if r == nil {
		return nil, sitescout.Errorf(sitescout.EINVALID, "robots.txt source required")
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, sitescout.Errorf(sitescout.EMALFORMED, "parsing robots.txt: %v", err)
	}
	return &Policy{data: data}, nil
}

// Allowed reports whether agent may fetch path.
func (p *Policy) Allowed(path, agent string) bool {
	return p.data.TestAgent(sitescout.RequestPath(path), agent)
}

// Sitemaps returns the Sitemap directives in file order.
func (p *Policy) Sitemaps() []string {
	return append([]string(nil), p.data.Sitemaps...)
}

// CrawlDelay returns the Crawl-delay of the group governing agent.
func (p *Policy) CrawlDelay(agent string) time.Duration {
	if g := p.data.FindGroup(agent); g != nil {
		return g.CrawlDelay
	}
	return 0
}
