package adapter

import (
	"context"
	"iter"
	"log/slog"
	"strconv"
	"strings"

	"github.com/IshaanNene/unioncorpus/internal/fetcher"
	"github.com/IshaanNene/unioncorpus/internal/parser"
	"github.com/IshaanNene/unioncorpus/internal/sitemap"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// DemocracyNow reads the single story sitemap. Pages are queried with XPath.
type DemocracyNow struct {
	site
}

// NewDemocracyNow creates the Democracy Now! adapter rooted at base.
func NewDemocracyNow(base string, f fetcher.Fetcher, logger *slog.Logger) *DemocracyNow {
	fields := []parser.Field{
		{Name: "title", Selector: "//div[@id='story_content']//h1", Sentinel: types.NoTitle},
		{
			Name:     "summary",
			Selector: "//div[@id='story_text']//div[contains(concat(' ', normalize-space(@class), ' '), ' story_summary ')]//p",
			Sentinel: types.NoSummary,
		},
		{Name: "transcript", Selector: "//div[@id='transcript']//p", All: true, Sentinel: types.NoTranscript},
	}
	return &DemocracyNow{
		site: newSite("democracynow", base, f, parser.NewXPathExtractor(logger), fields, logger),
	}
}

// SitemapURLs returns the story sitemap; it covers every year.
func (d *DemocracyNow) SitemapURLs(Period) []string {
	return []string{d.base + "/sitemap_story.xml"}
}

// DiscoverURLs implements Adapter. The year must appear in both the story
// path and its lastmod.
func (d *DemocracyNow) DiscoverURLs(ctx context.Context, p Period) iter.Seq2[Candidate, error] {
	year := strconv.Itoa(p.Year)
	keep := func(e sitemap.Entry) (string, bool) {
		return e.LastMod, strings.Contains(e.Loc, year) && strings.Contains(e.LastMod, year)
	}
	var inPeriod func(Candidate) bool
	if len(p.Months) > 0 {
		inPeriod = func(c Candidate) bool { return p.Includes(c.PublishedAt) }
	}
	return d.discover(ctx, d.SitemapURLs(p), keep, inPeriod)
}

// ScrapeArticle implements Adapter. Content is the summary followed by the
// transcript.
func (d *DemocracyNow) ScrapeArticle(ctx context.Context, url string) (string, string, error) {
	vals, err := d.extract(ctx, url)
	if err != nil {
		return "", "", err
	}
	return vals["title"], d.joinFound(vals, "summary", "transcript"), nil
}
