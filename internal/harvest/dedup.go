package harvest

import (
	"net/url"
	"strings"
)

// urlSet remembers canonical candidate URLs. Daily news sitemaps repeat
// articles that were updated on a later day; only the first sighting is
// scraped. Not safe for concurrent use; discovery is sequential.
type urlSet struct {
	seen map[string]struct{}
}

func newURLSet(capacity int) *urlSet {
	return &urlSet{seen: make(map[string]struct{}, capacity)}
}

// add records rawURL and reports whether it was new.
func (s *urlSet) add(rawURL string) bool {
	key := canonicalURL(rawURL)
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// canonicalURL normalizes a URL for deduplication:
// - lowercases scheme and host
// - removes fragment and default ports
// - removes trailing slash (except root)
func canonicalURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = u.Hostname()
	}

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
