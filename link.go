package sitescout

// ExtractedLink is an absolute link found in a document.
type ExtractedLink struct {
	// URL is the resolved absolute URL without its fragment.
	URL URL

	// Text is the whitespace-normalized text of the element.
	Text string

	// Fragment is the fragment of the original reference, if any.
	Fragment string

	// NoFollow is true when the element carries rel="nofollow".
	NoFollow bool
}

// LinkExtractor finds links in a document body.
type LinkExtractor interface {
	// ExtractLinks returns the valid, deduplicated links of body in
	// document order. Relative references are resolved against baseURL;
	// when baseURL is not absolute only absolute references are kept.
	// A body without links yields an empty slice, not an error.
	ExtractLinks(body string, baseURL string) ([]ExtractedLink, error)
}
