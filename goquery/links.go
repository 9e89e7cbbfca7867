package goquery

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitescout"
	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

// Ensure LinkExtractor implements sitescout.LinkExtractor at compile time.
var _ sitescout.LinkExtractor = (*LinkExtractor)(nil)

// urlParser resolves references the way browsers do, tolerating stray
// whitespace, backslashes and lone percent signs.
var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// DefaultDenyExtensions lists file extensions that do not lead to pages.
var DefaultDenyExtensions = []string{
	// images
	"mng", "pct", "bmp", "gif", "jpg", "jpeg", "png", "pst", "psp", "tif",
	"tiff", "ai", "drw", "dxf", "eps", "ps", "svg", "cdr", "ico", "webp", "avif",
	// audio
	"mp3", "wma", "ogg", "wav", "ra", "aac", "mid", "au", "aiff", "flac", "m4a",
	// video
	"3gp", "asf", "asx", "avi", "mov", "mp4", "mpg", "qt", "rm", "swf", "wmv",
	"m4v", "flv", "webm", "mkv",
	// office suites
	"xls", "xlsm", "xlsx", "xltm", "xltx", "potm", "potx", "ppt", "pptm",
	"pptx", "pps", "doc", "docb", "docm", "docx", "dotm", "dotx", "odt", "ods",
	"odg", "odp",
	// other
	"css", "pdf", "exe", "bin", "rss", "dmg", "iso", "apk", "jar", "sh", "rb",
	"js", "zip", "tar", "gz", "tgz", "bz2", "xz", "rar", "7z",
}

// Option configures a LinkExtractor.
type Option func(*LinkExtractor)

// WithTags sets the element names scanned for links.
func WithTags(tags ...string) Option {
	return func(e *LinkExtractor) { e.tags = lower(tags) }
}

// WithAttrs sets the attribute names read from matching elements.
func WithAttrs(attrs ...string) Option {
	return func(e *LinkExtractor) { e.attrs = lower(attrs) }
}

// WithDenyExtensions replaces the list of path extensions that are dropped.
// Pass no arguments to keep links regardless of extension.
func WithDenyExtensions(exts ...string) Option {
	return func(e *LinkExtractor) {
		e.denyExtensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			e.denyExtensions[strings.TrimPrefix(strings.ToLower(ext), ".")] = true
		}
	}
}

// WithAllowDomains keeps only links whose host is one of domains or a
// subdomain of one.
func WithAllowDomains(domains ...string) Option {
	return func(e *LinkExtractor) { e.allowDomains = lower(domains) }
}

// WithDenyDomains drops links whose host is one of domains or a subdomain
// of one.
func WithDenyDomains(domains ...string) Option {
	return func(e *LinkExtractor) { e.denyDomains = lower(domains) }
}

// WithDuplicates keeps repeated links instead of reporting each URL once.
func WithDuplicates() Option {
	return func(e *LinkExtractor) { e.unique = false }
}

// LinkExtractor extracts links from HTML documents. It is immutable after
// construction and safe for concurrent use.
type LinkExtractor struct {
	tags           []string
	attrs          []string
	denyExtensions map[string]bool
	allowDomains   []string
	denyDomains    []string
	unique         bool
}

// NewLinkExtractor returns an extractor reading href from <a> and <area>
// elements, dropping links to non-page resources and duplicate URLs.
func NewLinkExtractor(opts ...Option) *LinkExtractor {
	e := &LinkExtractor{
		tags:   []string{"a", "area"},
		attrs:  []string{"href"},
		unique: true,
	}
	WithDenyExtensions(DefaultDenyExtensions...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractLinks returns the links of body in document order, resolved
// against baseURL. Links that do not resolve to an http, https or file URL
// are dropped. Each link's fragment is split off into Fragment.
//
// A baseURL that is not absolute, such as a relative <base href> or an
// empty string, resolves nothing: hrefs that are absolute on their own are
// kept and relative ones dropped. A body without links yields an empty,
// non-nil slice.
func (e *LinkExtractor) ExtractLinks(body string, baseURL string) ([]sitescout.ExtractedLink, error) {
	var base string
	if u, err := sitescout.ParseURL(strings.TrimSpace(baseURL)); err == nil && sitescout.IsURL(u.String()) {
		base = u.String()
	}

	links := []sitescout.ExtractedLink{}
	if strings.TrimSpace(body) == "" {
		return links, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	seen := make(map[string]bool)
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		if !slices.Contains(e.tags, goquery.NodeName(sel)) {
			return
		}
		for _, attr := range e.attrs {
			href, exists := sel.Attr(attr)
			if !exists {
				continue
			}
			link, ok := e.resolve(base, href)
			if !ok {
				continue
			}
			if e.unique {
				key := link.URL.String()
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			link.Text = strings.Join(strings.Fields(sel.Text()), " ")
			link.NoFollow = hasNoFollow(sel)
			links = append(links, link)
		}
	})

	return links, nil
}

// resolve turns a raw attribute value into a link, reporting false when the
// value must be dropped.
func (e *LinkExtractor) resolve(base, href string) (sitescout.ExtractedLink, bool) {
	href = strings.TrimSpace(href)
	if href == "" || isNonHTTPLink(href) {
		return sitescout.ExtractedLink{}, false
	}

	var ref *whatwgUrl.Url
	var err error
	if base == "" {
		ref, err = urlParser.Parse(href)
	} else {
		ref, err = urlParser.ParseRef(base, href)
	}
	if err != nil {
		return sitescout.ExtractedLink{}, false
	}
	resolved, fragment, _ := strings.Cut(ref.Href(false), "#")
	if !sitescout.IsURL(resolved) {
		return sitescout.ExtractedLink{}, false
	}

	u, err := sitescout.ParseURL(resolved)
	if err != nil {
		return sitescout.ExtractedLink{}, false
	}
	switch u.Scheme() {
	case "http", "https", "file":
	default:
		return sitescout.ExtractedLink{}, false
	}
	if e.denyExtensions[strings.ToLower(strings.TrimPrefix(path.Ext(u.Path()), "."))] {
		return sitescout.ExtractedLink{}, false
	}
	host := strings.ToLower(u.Hostname())
	if len(e.allowDomains) > 0 && !matchesDomain(host, e.allowDomains) {
		return sitescout.ExtractedLink{}, false
	}
	if matchesDomain(host, e.denyDomains) {
		return sitescout.ExtractedLink{}, false
	}

	return sitescout.ExtractedLink{URL: u, Fragment: fragment}, true
}

// matchesDomain reports whether host equals one of domains or is a
// subdomain of one.
func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func hasNoFollow(sel *goquery.Selection) bool {
	rel, _ := sel.Attr("rel")
	for _, v := range strings.Fields(rel) {
		if strings.EqualFold(v, "nofollow") {
			return true
		}
	}
	return false
}

// isNonHTTPLink checks if a href is a non-navigational link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

func lower(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
