package types

import (
	"fmt"
	"net/http"
	"net/url"
)

// Request tags.
const (
	TagSitemap = "sitemap"
	TagArticle = "article"
)

// Request is one page fetch.
type Request struct {
	URL *url.URL

	// Tag says what the page is for (TagSitemap, TagArticle, or a free-form
	// label). The fetcher picks its Accept header from it.
	Tag string

	// Headers override the fetcher defaults.
	Headers http.Header
}

// NewRequest creates a Request for an absolute http(s) URL.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w %q: unsupported scheme", ErrInvalidURL, rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w %q: missing host", ErrInvalidURL, rawURL)
	}
	return &Request{URL: u, Headers: make(http.Header)}, nil
}

// URLString returns the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}
