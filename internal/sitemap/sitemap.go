// Package sitemap decodes sitemap protocol documents, including the Google
// news extension that carries publication dates.
package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/IshaanNene/unioncorpus/internal/fetcher"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

const (
	// NamespaceSitemap is the sitemap protocol namespace.
	NamespaceSitemap = "http://www.sitemaps.org/schemas/sitemap/0.9"
	// NamespaceNews is the news sitemap extension namespace.
	NamespaceNews = "http://www.google.com/schemas/sitemap-news/0.9"
)

// Entry is one <url> element of a sitemap.
type Entry struct {
	Loc             string
	LastMod         string
	PublicationDate string
	Title           string
}

type urlset struct {
	XMLName xml.Name   `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	URLs    []urlEntry `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 url"`
}

type urlEntry struct {
	Loc     string     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 loc"`
	LastMod string     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 lastmod"`
	News    *newsEntry `xml:"http://www.google.com/schemas/sitemap-news/0.9 news"`
}

type newsEntry struct {
	PublicationDate string `xml:"http://www.google.com/schemas/sitemap-news/0.9 publication_date"`
	Title           string `xml:"http://www.google.com/schemas/sitemap-news/0.9 title"`
}

// Parse decodes a urlset document. Entries without a <loc> are skipped;
// anything that is not a well-formed, namespaced urlset is an error.
func Parse(r io.Reader) ([]Entry, error) {
	var set urlset
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode urlset: %w", err)
	}

	entries := make([]Entry, 0, len(set.URLs))
	for _, u := range set.URLs {
		loc := strings.TrimSpace(u.Loc)
		if loc == "" {
			continue
		}
		e := Entry{
			Loc:     loc,
			LastMod: strings.TrimSpace(u.LastMod),
		}
		if u.News != nil {
			e.PublicationDate = strings.TrimSpace(u.News.PublicationDate)
			e.Title = strings.TrimSpace(u.News.Title)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Fetch downloads and parses the sitemap at rawURL. Both transport and
// decode failures are reported as *types.SitemapError.
func Fetch(ctx context.Context, f fetcher.Fetcher, rawURL string) ([]Entry, error) {
	resp, err := fetcher.Get(ctx, f, rawURL, types.TagSitemap)
	if err != nil {
		return nil, &types.SitemapError{URL: rawURL, Err: err}
	}
	entries, err := Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &types.SitemapError{URL: rawURL, Err: err}
	}
	return entries, nil
}
