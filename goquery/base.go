// Package goquery extracts links and document metadata from HTML using
// github.com/PuerkitoBio/goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// BaseURL returns the href of the first <base> element in body, trimmed of
// surrounding whitespace. It returns documentURL unchanged when body has no
// usable <base>, including when body is empty. Markup inside comments is not
// considered.
func BaseURL(body, documentURL string) string {
	if strings.TrimSpace(body) == "" {
		return documentURL
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return documentURL
	}

	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return documentURL
	}
	if href = strings.TrimSpace(href); href == "" {
		return documentURL
	}
	return href
}
