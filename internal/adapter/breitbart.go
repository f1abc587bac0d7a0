package adapter

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/IshaanNene/unioncorpus/internal/fetcher"
	"github.com/IshaanNene/unioncorpus/internal/parser"
	"github.com/IshaanNene/unioncorpus/internal/sitemap"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// breitbartExcluded are path segments of non-news sections.
var breitbartExcluded = []string{"/sports/", "/clips/", "/europe/", "/asia/", "/middle-east/"}

// Breitbart reads the daily news sitemaps.
type Breitbart struct {
	site
}

// NewBreitbart creates the Breitbart adapter rooted at base.
func NewBreitbart(base string, f fetcher.Fetcher, logger *slog.Logger) *Breitbart {
	fields := []parser.Field{
		{Name: "title", Within: "section#MainW", Selector: "h1", Sentinel: types.NoTitle},
		{Name: "content", Within: "section#MainW div.entry-content", Selector: "p", All: true, Sentinel: types.NoContent},
	}
	return &Breitbart{
		site: newSite("breitbart", base, f, parser.NewCSSExtractor(logger), fields, logger),
	}
}

// SitemapURLs returns one news sitemap per calendar day of the period.
func (b *Breitbart) SitemapURLs(p Period) []string {
	var urls []string
	for _, m := range p.MonthList() {
		days := time.Date(p.Year, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC).Day()
		for d := 1; d <= days; d++ {
			urls = append(urls, fmt.Sprintf("%s/sitemap_news-%04d-%02d-%02d.xml", b.base, p.Year, m, d))
		}
	}
	return urls
}

// DiscoverURLs implements Adapter.
func (b *Breitbart) DiscoverURLs(ctx context.Context, p Period) iter.Seq2[Candidate, error] {
	year := strconv.Itoa(p.Year)
	keep := func(e sitemap.Entry) (string, bool) {
		for _, seg := range breitbartExcluded {
			if strings.Contains(e.Loc, seg) {
				return "", false
			}
		}
		return e.PublicationDate, strings.Contains(e.PublicationDate, year)
	}
	return b.discover(ctx, b.SitemapURLs(p), keep, nil)
}

// ScrapeArticle implements Adapter.
func (b *Breitbart) ScrapeArticle(ctx context.Context, url string) (string, string, error) {
	v, err := b.extract(ctx, url)
	if err != nil {
		return "", "", err
	}
	return v["title"], v["content"], nil
}
