package mock

import "github.com/fwojciec/sitescout"

var _ sitescout.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of sitescout.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(body string, baseURL string) ([]sitescout.ExtractedLink, error)
}

func (e *LinkExtractor) ExtractLinks(body string, baseURL string) ([]sitescout.ExtractedLink, error) {
	return e.ExtractLinksFn(body, baseURL)
}
