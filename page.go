package sitescout

import "context"

// Page is a fetched document whose body has been decoded to UTF-8.
type Page struct {
	// URL is the final URL the body was served from.
	URL string

	// Body is the decoded document text.
	Body string

	// Encoding is the character encoding the body was declared in.
	Encoding string
}

// Fetcher retrieves documents over the network.
type Fetcher interface {
	// Fetch retrieves url and decodes its body.
	// Returns ENOTFOUND if the server responds with 404.
	Fetch(ctx context.Context, url string) (*Page, error)
}
