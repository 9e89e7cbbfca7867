package mock

import (
	"context"
	"time"

	"github.com/fwojciec/sitescout"
)

var _ sitescout.RobotsPolicy = (*RobotsPolicy)(nil)

// RobotsPolicy is a mock implementation of sitescout.RobotsPolicy.
type RobotsPolicy struct {
	AllowedFn    func(path, agent string) bool
	SitemapsFn   func() []string
	CrawlDelayFn func(agent string) time.Duration
}

func (p *RobotsPolicy) Allowed(path, agent string) bool {
	return p.AllowedFn(path, agent)
}

func (p *RobotsPolicy) Sitemaps() []string {
	return p.SitemapsFn()
}

func (p *RobotsPolicy) CrawlDelay(agent string) time.Duration {
	return p.CrawlDelayFn(agent)
}

var _ sitescout.RobotsService = (*RobotsService)(nil)

// RobotsService is a mock implementation of sitescout.RobotsService.
type RobotsService struct {
	PolicyFn func(ctx context.Context, rawURL string) (sitescout.RobotsPolicy, error)
}

func (s *RobotsService) Policy(ctx context.Context, rawURL string) (sitescout.RobotsPolicy, error) {
	return s.PolicyFn(ctx, rawURL)
}
