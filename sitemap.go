package sitescout

import (
	"context"
	"iter"
	"regexp"
)

// SitemapKind identifies the root element of a sitemap document.
type SitemapKind int

// Sitemap document kinds.
const (
	SitemapKindUnknown SitemapKind = iota
	SitemapKindURLSet
	SitemapKindIndex
)

// String returns the root element name for the kind.
func (k SitemapKind) String() string {
	switch k {
	case SitemapKindURLSet:
		return "urlset"
	case SitemapKindIndex:
		return "sitemapindex"
	default:
		return "unknown"
	}
}

// SitemapEntry is one <url> of a urlset or one <sitemap> of a sitemap index.
// Loc is always set; the remaining fields are empty when absent. Loc is not
// validated: callers parse it before use.
type SitemapEntry struct {
	Loc        string
	LastMod    string
	ChangeFreq string
	Priority   string

	// Alternates holds hrefs of <xhtml:link rel="alternate"> children.
	Alternates []string
}

// SitemapDocument is a parsed sitemap. Its kind never changes and its
// entries can be iterated any number of times without reparsing.
type SitemapDocument interface {
	Kind() SitemapKind
	Entries() iter.Seq[SitemapEntry]
}

// SitemapService discovers URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs finds all URLs from a site's sitemap.
	// It first checks robots.txt for sitemap directives, then falls back
	// to /sitemap.xml. Sitemap indexes are resolved recursively.
	//
	// The filter can be used to include/exclude URLs by pattern.
	// If filter is nil, all URLs are returned.
	DiscoverURLs(ctx context.Context, baseURL string, filter *URLFilter) ([]string, error)
}

// URLFilter specifies patterns for including/excluding URLs.
type URLFilter struct {
	// Include patterns - if set, only URLs matching at least one pattern are included.
	Include []*regexp.Regexp

	// Exclude patterns - URLs matching any pattern are excluded.
	// Exclude is applied after Include.
	Exclude []*regexp.Regexp
}

// Match returns true if the URL passes the filter.
// If the filter is nil, all URLs pass.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}

	if len(f.Include) > 0 {
		matched := false
		for _, re := range f.Include {
			if re.MatchString(url) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, re := range f.Exclude {
		if re.MatchString(url) {
			return false
		}
	}

	return true
}
