package mock

import (
	"context"

	"github.com/fwojciec/sitescout"
)

var _ sitescout.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of sitescout.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*sitescout.Page, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*sitescout.Page, error) {
	return f.FetchFn(ctx, url)
}
