package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/fetcher"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const emptyURLSet = `<?xml version="1.0"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`

func newsURL(loc, published string) string {
	return fmt.Sprintf(`<url><loc>%s</loc><news:news><news:publication_date>%s</news:publication_date></news:news></url>`, loc, published)
}

func lastmodURL(loc, lastmod string) string {
	return fmt.Sprintf(`<url><loc>%s</loc><lastmod>%s</lastmod></url>`, loc, lastmod)
}

func urlset(urls ...string) string {
	return `<?xml version="1.0"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" ` +
		`xmlns:news="http://www.google.com/schemas/sitemap-news/0.9">` + strings.Join(urls, "") + `</urlset>`
}

func newFetcher(t *testing.T) fetcher.Fetcher {
	t.Helper()
	f, err := fetcher.NewHTTPFetcher(config.DefaultConfig(), testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func collect(t *testing.T, a Adapter, p Period) ([]Candidate, error) {
	t.Helper()
	var out []Candidate
	for c, err := range a.DiscoverURLs(context.Background(), p) {
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

func TestPeriod(t *testing.T) {
	assert.Len(t, Period{Year: 2023}.MonthList(), 12)
	assert.Equal(t, []int{11}, Period{Year: 2023, Months: []int{11}}.MonthList())

	p := Period{Year: 2023, Months: []int{3}}
	assert.True(t, p.Includes(time.Date(2023, 3, 9, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Includes(time.Date(2023, 4, 9, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Includes(time.Date(2022, 3, 9, 0, 0, 0, 0, time.UTC)))

	assert.NoError(t, p.Validate())
	assert.Error(t, Period{Year: 2023, Months: []int{13}}.Validate())
	assert.Error(t, Period{Year: 0}.Validate())
}

func TestBreitbartSitemapURLs(t *testing.T) {
	b := NewBreitbart("https://www.breitbart.com/", nil, testLogger)
	urls := b.SitemapURLs(Period{Year: 2023, Months: []int{2, 11}})
	require.Len(t, urls, 28+30)
	assert.Equal(t, "https://www.breitbart.com/sitemap_news-2023-02-01.xml", urls[0])
	assert.Equal(t, "https://www.breitbart.com/sitemap_news-2023-11-30.xml", urls[len(urls)-1])
}

func TestBreitbart(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/sitemap_news-2023-11-02.xml":
			fmt.Fprint(w, urlset(
				newsURL(srvURL+"/politics/2023/11/02/uaw-deal/", "2023-11-02T10:00:00-04:00"),
				newsURL(srvURL+"/sports/2023/11/02/game/", "2023-11-02T11:00:00-04:00"),
				newsURL(srvURL+"/middle-east/2023/11/02/x/", "2023-11-02T11:00:00-04:00"),
				newsURL(srvURL+"/politics/2022/11/02/old/", "2022-11-02T11:00:00-04:00"),
				newsURL(srvURL+"/economy/2023/11/02/teamsters/", "2023-11-02T12:00:00-04:00"),
			))
		case strings.HasPrefix(r.URL.Path, "/sitemap_news-"):
			fmt.Fprint(w, emptyURLSet)
		case r.URL.Path == "/politics/2023/11/02/uaw-deal/":
			fmt.Fprint(w, `<html><body><section id="MainW"><h1> UAW Deal </h1>
				<div class="entry-content"><p>The union ratified.</p><p>Workers cheered.</p></div></section></body></html>`)
		case r.URL.Path == "/moved/":
			http.Redirect(w, r, "/politics/2023/11/02/uaw-deal/", http.StatusMovedPermanently)
		case r.URL.Path == "/economy/2023/11/02/teamsters/":
			fmt.Fprint(w, `<html><body><section id="Other"><h1>Elsewhere</h1></section></body></html>`)
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	b := NewBreitbart(srv.URL, newFetcher(t), testLogger)
	assert.Equal(t, "breitbart", b.Outlet())

	got, err := collect(t, b, Period{Year: 2023, Months: []int{11}})
	require.NoError(t, err)
	require.Len(t, got, 2, "excluded sections and other years are filtered")
	assert.Equal(t, srv.URL+"/politics/2023/11/02/uaw-deal/", got[0].URL)
	assert.Equal(t, time.Date(2023, 11, 2, 14, 0, 0, 0, time.UTC), got[0].PublishedAt.UTC())

	title, content, err := b.ScrapeArticle(context.Background(), got[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "UAW Deal", title)
	assert.Equal(t, "The union ratified. Workers cheered.", content)

	title, content, err = b.ScrapeArticle(context.Background(), got[1].URL)
	require.NoError(t, err, "missing anchors are sentinels, not errors")
	assert.Equal(t, types.NoTitle, title)
	assert.Equal(t, types.NoContent, content)

	title, _, err = b.ScrapeArticle(context.Background(), srv.URL+"/moved/")
	require.NoError(t, err, "redirects are followed")
	assert.Equal(t, "UAW Deal", title)

	_, _, err = b.ScrapeArticle(context.Background(), srv.URL+"/gone/")
	var fe *types.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

func TestBreitbartSkipsMissingSitemapDay(t *testing.T) {
	var srvURL string
	var served atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		served.Add(1)
		switch r.URL.Path {
		case "/sitemap_news-2023-11-01.xml":
			fmt.Fprint(w, urlset(newsURL(srvURL+"/politics/2023/11/01/strike/", "2023-11-01T10:00:00-04:00")))
		case "/sitemap_news-2023-11-02.xml":
			http.NotFound(w, r)
		case "/sitemap_news-2023-11-03.xml":
			fmt.Fprint(w, urlset(newsURL(srvURL+"/economy/2023/11/03/uaw/", "2023-11-03T10:00:00-04:00")))
		default:
			fmt.Fprint(w, emptyURLSet)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	b := NewBreitbart(srv.URL, newFetcher(t), testLogger)
	got, err := collect(t, b, Period{Year: 2023, Months: []int{11}})
	require.NoError(t, err, "an unavailable day is skipped")
	require.Len(t, got, 2)
	assert.Equal(t, srv.URL+"/politics/2023/11/01/strike/", got[0].URL)
	assert.Equal(t, srv.URL+"/economy/2023/11/03/uaw/", got[1].URL)
	assert.EqualValues(t, 30, served.Load(), "every day of the month is read")
}

func TestVox(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemaps/entries/2023/3", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, urlset(
			lastmodURL(srvURL+"/a", "2023-03-05T09:30:00-05:00"),
			lastmodURL(srvURL+"/b", "not a date"),
			lastmodURL(srvURL+"/c", "2023-03-06"),
		))
	})
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1 class="c-page-title">Strike</h1>
			<p class="c-entry-summary">Summary text.</p>
			<div class="c-entry-content"><p>Body one.</p><p>Body two.</p></div>
			<aside><div class="c-entry-content"><p>Related story.</p></div></aside></body></html>`)
	})
	mux.HandleFunc("/c", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1 class="c-page-title">No standfirst</h1>
			<div class="c-entry-content"><p>Only body.</p></div></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	v := NewVox(srv.URL, newFetcher(t), testLogger)
	assert.Equal(t, []string{srv.URL + "/sitemaps/entries/2023/3"}, v.SitemapURLs(Period{Year: 2023, Months: []int{3}}))

	got, err := collect(t, v, Period{Year: 2023, Months: []int{3}})
	require.NoError(t, err)
	require.Len(t, got, 2, "unparseable lastmod is skipped")

	title, content, err := v.ScrapeArticle(context.Background(), got[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "Strike", title)
	assert.Equal(t, "Summary text. Body one. Body two.", content)

	_, content, err = v.ScrapeArticle(context.Background(), got[1].URL)
	require.NoError(t, err)
	assert.Equal(t, "Only body.", content, "summary sentinel never leaks into content")
}

func TestVoxMalformedSitemapStopsDiscovery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemaps/entries/2023/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<urlset><url>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	v := NewVox(srv.URL, newFetcher(t), testLogger)
	got, err := collect(t, v, Period{Year: 2023, Months: []int{1, 2}})
	assert.Empty(t, got)
	var se *types.SitemapError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, srv.URL+"/sitemaps/entries/2023/1", se.URL)
}

func TestDemocracyNow(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap_story.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, urlset(
			lastmodURL(srvURL+"/2023/5/1/teachers", "2023-05-01T12:00:00Z"),
			lastmodURL("https://www.democracynow.org/2022/5/1/old", "2023-05-01T12:00:00Z"),
			lastmodURL(srvURL+"/2023/6/2/nurses", "2023-06-02T12:00:00Z"),
			lastmodURL(srvURL+"/2023/7/3/summary-only", "2023-07-03T12:00:00Z"),
		))
	})
	mux.HandleFunc("/2023/5/1/teachers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<div id="story_content"><h1>Teachers Strike</h1></div>
			<div id="story_text"><div class="story_summary text-lg"><p>Teachers walked out.</p></div></div>
			<div id="transcript"><p>AMY GOODMAN: Welcome.</p><p>GUEST: Thanks.</p></div>
			</body></html>`)
	})
	mux.HandleFunc("/2023/7/3/summary-only", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div id="story_text"><div class="story_summary"><p>Just this.</p></div></div></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	d := NewDemocracyNow(srv.URL, newFetcher(t), testLogger)

	all, err := collect(t, d, Period{Year: 2023})
	require.NoError(t, err)
	assert.Len(t, all, 3, "year must be in both loc and lastmod")

	may, err := collect(t, d, Period{Year: 2023, Months: []int{5}})
	require.NoError(t, err)
	require.Len(t, may, 1)

	title, content, err := d.ScrapeArticle(context.Background(), may[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "Teachers Strike", title)
	assert.Equal(t, "Teachers walked out. AMY GOODMAN: Welcome. GUEST: Thanks.", content)

	title, content, err = d.ScrapeArticle(context.Background(), srv.URL+"/2023/7/3/summary-only")
	require.NoError(t, err)
	assert.Equal(t, types.NoTitle, title)
	assert.Equal(t, "Just this.", content)
}

func TestDiscoveryStopsEarly(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap_story.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, urlset(
			lastmodURL(srvURL+"/2023/1/1/a", "2023-01-01"),
			lastmodURL(srvURL+"/2023/1/2/b", "2023-01-02"),
		))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	d := NewDemocracyNow(srv.URL, newFetcher(t), testLogger)
	n := 0
	for _, err := range d.DiscoverURLs(context.Background(), Period{Year: 2023}) {
		require.NoError(t, err)
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestRegistry(t *testing.T) {
	r := Default(config.DefaultConfig().Sources, nil, testLogger)
	assert.Equal(t, []string{"breitbart", "democracynow", "vox"}, r.Names())

	a, err := r.Get("vox")
	require.NoError(t, err)
	assert.Equal(t, "vox", a.Outlet())

	_, err = r.Get("cnn")
	assert.ErrorIs(t, err, types.ErrUnknownAdapter)

	sel, err := r.Select([]string{"democracynow"})
	require.NoError(t, err)
	require.Len(t, sel, 1)

	sel, err = r.Select(nil)
	require.NoError(t, err)
	assert.Len(t, sel, 3)

	_, err = r.Select([]string{"vox", "nope"})
	assert.Error(t, err)
}
