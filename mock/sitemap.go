package mock

import (
	"context"
	"iter"

	"github.com/fwojciec/sitescout"
)

var _ sitescout.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of sitescout.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *sitescout.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *sitescout.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}

var _ sitescout.SitemapDocument = (*SitemapDocument)(nil)

// SitemapDocument is a mock implementation of sitescout.SitemapDocument.
type SitemapDocument struct {
	KindFn    func() sitescout.SitemapKind
	EntriesFn func() iter.Seq[sitescout.SitemapEntry]
}

func (d *SitemapDocument) Kind() sitescout.SitemapKind {
	return d.KindFn()
}

func (d *SitemapDocument) Entries() iter.Seq[sitescout.SitemapEntry] {
	return d.EntriesFn()
}
