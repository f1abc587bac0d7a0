package pipeline

import (
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/IshaanNene/unioncorpus/internal/types"
)

// --- Corpus Middleware ---

// DateExclusionMiddleware drops articles published in an excluded year or
// month (UTC).
type DateExclusionMiddleware struct {
	years  []int
	months []int
}

func NewDateExclusionMiddleware(years, months []int) *DateExclusionMiddleware {
	return &DateExclusionMiddleware{years: years, months: months}
}

func (m *DateExclusionMiddleware) Name() string { return "date_exclusion" }

func (m *DateExclusionMiddleware) Process(a *types.Article) (*types.Article, error) {
	t := a.PublishedAt.UTC()
	if slices.Contains(m.years, t.Year()) {
		return nil, nil
	}
	if slices.Contains(m.months, int(t.Month())) {
		return nil, nil
	}
	return a, nil
}

// HTMLSanitizeMiddleware strips markup left in archival title and content
// text. Script and style bodies are dropped with their tags.
type HTMLSanitizeMiddleware struct{}

func NewHTMLSanitizeMiddleware() *HTMLSanitizeMiddleware {
	return &HTMLSanitizeMiddleware{}
}

func (m *HTMLSanitizeMiddleware) Name() string { return "html_sanitize" }

func (m *HTMLSanitizeMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Title = m.clean(a.Title)
	a.Content = m.clean(a.Content)
	return a, nil
}

func (m *HTMLSanitizeMiddleware) clean(s string) string {
	if s == "" {
		return s
	}
	var parts []string
	skip := 0
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				parts = append(parts, string(z.Text()))
			}
		}
	}
}

func isRawText(tag []byte) bool {
	return string(tag) == "script" || string(tag) == "style"
}
