package adapter

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/IshaanNene/unioncorpus/internal/fetcher"
	"github.com/IshaanNene/unioncorpus/internal/parser"
	"github.com/IshaanNene/unioncorpus/internal/sitemap"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Vox reads the monthly entry sitemaps, dated by lastmod.
type Vox struct {
	site
}

// NewVox creates the Vox adapter rooted at base.
func NewVox(base string, f fetcher.Fetcher, logger *slog.Logger) *Vox {
	fields := []parser.Field{
		{Name: "title", Selector: "h1.c-page-title", Sentinel: types.NoTitle},
		{Name: "summary", Selector: "p.c-entry-summary", Sentinel: types.NoSummary},
		{Name: "body", Within: "div.c-entry-content", Selector: "p", All: true, Sentinel: types.NoContent},
	}
	return &Vox{
		site: newSite("vox", base, f, parser.NewCSSExtractor(logger), fields, logger),
	}
}

// SitemapURLs returns one sitemap per month. Months are not zero padded.
func (v *Vox) SitemapURLs(p Period) []string {
	var urls []string
	for _, m := range p.MonthList() {
		urls = append(urls, fmt.Sprintf("%s/sitemaps/entries/%d/%d", v.base, p.Year, m))
	}
	return urls
}

// DiscoverURLs implements Adapter.
func (v *Vox) DiscoverURLs(ctx context.Context, p Period) iter.Seq2[Candidate, error] {
	keep := func(e sitemap.Entry) (string, bool) {
		return e.LastMod, true
	}
	return v.discover(ctx, v.SitemapURLs(p), keep, nil)
}

// ScrapeArticle implements Adapter. Content is the standfirst followed by
// the body paragraphs.
func (v *Vox) ScrapeArticle(ctx context.Context, url string) (string, string, error) {
	vals, err := v.extract(ctx, url)
	if err != nil {
		return "", "", err
	}
	return vals["title"], v.joinFound(vals, "summary", "body"), nil
}
