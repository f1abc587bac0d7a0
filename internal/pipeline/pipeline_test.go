package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/IshaanNene/unioncorpus/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func article(url, title, content string, year int) types.Article {
	return types.Article{
		URL:         url,
		PublishedAt: time.Date(year, 6, 1, 12, 0, 0, 0, time.UTC),
		Title:       title,
		Content:     content,
		Outlet:      "nytimes",
	}
}

func TestPipelineBasic(t *testing.T) {
	p := New(testLogger)
	p.Use(&TrimMiddleware{})

	a := article("  https://example.com ", "  Hello World  ", " body ", 2020)
	a.Outlet = " NYTimes "

	result, err := p.Process(&a)
	if err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if result.Title != "Hello World" || result.Content != "body" || result.URL != "https://example.com" {
		t.Errorf("expected trimmed fields, got %+v", result)
	}
	if result.Outlet != "nytimes" {
		t.Errorf("expected lowercased outlet, got %q", result.Outlet)
	}
}

func TestRequiredFieldsMiddleware(t *testing.T) {
	m := &RequiredFieldsMiddleware{RequireIdentity: true}

	ok := article("https://a", "Title", "Body", 2020)
	if result, _ := m.Process(&ok); result == nil {
		t.Error("complete article should pass")
	}

	for name, a := range map[string]types.Article{
		"empty title":      article("https://a", "", "Body", 2020),
		"empty content":    article("https://a", "Title", "", 2020),
		"sentinel title":   article("https://a", types.NoTitle, "Body", 2020),
		"sentinel content": article("https://a", "Title", types.NoContent, 2020),
		"no url":           article("", "Title", "Body", 2020),
	} {
		if result, _ := m.Process(&a); result != nil {
			t.Errorf("%s: article should be dropped", name)
		}
	}
}

func TestTitleDedupKeepsFirst(t *testing.T) {
	p := New(testLogger)
	p.Use(NewDedupMiddleware("title"))

	in := []types.Article{
		article("https://a/1", "Same", "first", 2020),
		article("https://a/2", "Other", "x", 2020),
		article("https://a/3", "Same", "second", 2020),
	}
	out, err := p.Run(in)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(out))
	}
	if out[0].URL != "https://a/1" || out[0].Content != "first" {
		t.Errorf("first occurrence should win, got %+v", out[0])
	}
	if out[1].URL != "https://a/2" {
		t.Errorf("order should be preserved, got %+v", out[1])
	}
	if in[0].Title != "Same" {
		t.Error("input slice must not be modified")
	}
}

func TestDedupByURL(t *testing.T) {
	m := NewDedupMiddleware("url")
	a := article("https://a/1", "One", "x", 2020)
	b := article("https://a/1", "Two", "y", 2020)
	if r, _ := m.Process(&a); r == nil {
		t.Fatal("first should pass")
	}
	if r, _ := m.Process(&b); r != nil {
		t.Error("same url should be dropped")
	}
	if m.Name() != "dedup_url" {
		t.Errorf("unexpected name %q", m.Name())
	}
}

func TestDateExclusion(t *testing.T) {
	m := NewDateExclusionMiddleware([]int{2006, 2007}, []int{12})

	tests := []struct {
		when time.Time
		keep bool
	}{
		{time.Date(2006, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2007, 12, 31, 23, 0, 0, 0, time.UTC), false},
		{time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2019, 12, 5, 0, 0, 0, 0, time.UTC), false},
		// 2008-01-01 01:00 in +05:00 is still 2007 in UTC.
		{time.Date(2008, 1, 1, 1, 0, 0, 0, time.FixedZone("x", 5*3600)), false},
	}
	for _, tt := range tests {
		a := article("https://a", "t", "c", 2000)
		a.PublishedAt = tt.when
		result, _ := m.Process(&a)
		if (result != nil) != tt.keep {
			t.Errorf("%v: keep=%v, want %v", tt.when, result != nil, tt.keep)
		}
	}
}

func TestHTMLSanitizeMiddleware(t *testing.T) {
	m := NewHTMLSanitizeMiddleware()
	a := article("https://a", "<b>Strike</b> &amp; Vote", `<p>Hello <b>World</b></p> &amp; <a href="x">link</a>`, 2020)

	result, err := m.Process(&a)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if result.Content != "Hello World & link" {
		t.Errorf("expected 'Hello World & link', got %q", result.Content)
	}
	if result.Title != "Strike & Vote" {
		t.Errorf("unexpected title %q", result.Title)
	}

	b := article("https://b", "t", `<style>p{}</style>Union<script>var x = "<b>";</script> vote`, 2020)
	result, _ = m.Process(&b)
	if result.Content != "Union vote" {
		t.Errorf("expected script and style dropped, got %q", result.Content)
	}
}

type failingMiddleware struct{}

func (failingMiddleware) Name() string { return "failing" }

func (failingMiddleware) Process(a *types.Article) (*types.Article, error) {
	return nil, errors.New("boom")
}

func TestPipelineErrorCarriesStage(t *testing.T) {
	p := New(testLogger)
	p.Use(&TrimMiddleware{})
	p.Use(failingMiddleware{})

	_, err := p.Run([]types.Article{article("https://a", "t", "c", 2020)})
	var pe *types.PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if pe.Stage != "failing" || pe.Article == nil {
		t.Errorf("unexpected error %+v", pe)
	}
	if p.Len() != 2 {
		t.Errorf("expected 2 middlewares, got %d", p.Len())
	}
}
