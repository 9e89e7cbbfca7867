// Package etree parses sitemap documents using github.com/beevik/etree.
package etree

import (
	"fmt"
	"io"
	"iter"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/sitescout"
	"golang.org/x/net/html/charset"
)

// Ensure Sitemap implements sitescout.SitemapDocument at compile time.
var _ sitescout.SitemapDocument = (*Sitemap)(nil)

// firstElementPattern finds the first element name in raw markup, skipping
// processing instructions and declarations.
var firstElementPattern = regexp.MustCompile(`<(?:[A-Za-z_][\w.\-]*:)?([A-Za-z_][\w.\-]*)`)

// entryFields maps the local name of an entry child to the field it fills.
// Children with other names are ignored.
var entryFields = map[string]func(*sitescout.SitemapEntry, *etree.Element){
	"loc":        func(e *sitescout.SitemapEntry, el *etree.Element) { e.Loc = strings.TrimSpace(el.Text()) },
	"lastmod":    func(e *sitescout.SitemapEntry, el *etree.Element) { e.LastMod = strings.TrimSpace(el.Text()) },
	"changefreq": func(e *sitescout.SitemapEntry, el *etree.Element) { e.ChangeFreq = strings.TrimSpace(el.Text()) },
	"priority":   func(e *sitescout.SitemapEntry, el *etree.Element) { e.Priority = strings.TrimSpace(el.Text()) },
	"link": func(e *sitescout.SitemapEntry, el *etree.Element) {
		if !strings.EqualFold(el.SelectAttrValue("rel", ""), "alternate") {
			return
		}
		if href := strings.TrimSpace(el.SelectAttrValue("href", "")); href != "" {
			e.Alternates = append(e.Alternates, href)
		}
	},
}

// Sitemap is a parsed sitemap document. It is immutable after construction.
type Sitemap struct {
	kind sitescout.SitemapKind
	root *etree.Element
}

// NewSitemap parses a sitemap document.
//
// Empty input returns EMALFORMED. Any other input yields a document:
// parsing is permissive, and when the markup breaks off the elements read
// up to that point are kept. If no root element could be built the kind is
// taken from the first element name in the text, defaulting to a urlset
// with no entries.
func NewSitemap(xml string) (*Sitemap, error) {
	if strings.TrimSpace(xml) == "" {
		return nil, sitescout.Errorf(sitescout.EMALFORMED, "empty sitemap document")
	}

	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		Permissive:    true,
		CharsetReader: charset.NewReaderLabel,
	}
	// A parse error leaves the partially built tree in place, which is all
	// a best-effort reader needs.
	_ = doc.ReadFromString(xml)

	s := &Sitemap{root: doc.Root()}
	if s.root != nil {
		s.kind = kindOf(s.root.Tag)
		return s, nil
	}

	s.kind = sitescout.SitemapKindURLSet
	if m := firstElementPattern.FindStringSubmatch(xml); m != nil {
		s.kind = kindOf(m[1])
	}
	return s, nil
}

// NewSitemapFromReader reads r to the end and parses it with NewSitemap.
func NewSitemapFromReader(r io.Reader) (*Sitemap, error) {
	if r == nil {
		return nil, sitescout.Errorf(sitescout.EINVALID, "sitemap source required")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading sitemap: %w", err)
	}
	return NewSitemap(string(b))
}

func kindOf(name string) sitescout.SitemapKind {
	switch strings.ToLower(name) {
	case "urlset":
		return sitescout.SitemapKindURLSet
	case "sitemapindex":
		return sitescout.SitemapKindIndex
	}
	return sitescout.SitemapKindUnknown
}

// Kind returns the document kind.
func (s *Sitemap) Kind() sitescout.SitemapKind {
	return s.kind
}

// Entries yields one entry per <url> of a urlset or <sitemap> of an index,
// in document order. Children without a <loc> are skipped.
func (s *Sitemap) Entries() iter.Seq[sitescout.SitemapEntry] {
	return func(yield func(sitescout.SitemapEntry) bool) {
		if s.root == nil {
			return
		}

		var want string
		switch s.kind {
		case sitescout.SitemapKindURLSet:
			want = "url"
		case sitescout.SitemapKindIndex:
			want = "sitemap"
		default:
			return
		}

		for _, child := range s.root.ChildElements() {
			if !strings.EqualFold(child.Tag, want) {
				continue
			}
			var entry sitescout.SitemapEntry
			for _, field := range child.ChildElements() {
				if fill, ok := entryFields[strings.ToLower(field.Tag)]; ok {
					fill(&entry, field)
				}
			}
			if entry.Loc == "" {
				continue
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// Locs returns the Loc of every entry.
func (s *Sitemap) Locs() []string {
	var locs []string
	for e := range s.Entries() {
		locs = append(locs, e.Loc)
	}
	return locs
}
