package parser

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/unioncorpus/internal/types"
)

// CSSExtractor extracts fields using CSS selectors via goquery.
type CSSExtractor struct {
	logger *slog.Logger
}

// NewCSSExtractor creates a new CSS selector extractor.
func NewCSSExtractor(logger *slog.Logger) *CSSExtractor {
	return &CSSExtractor{
		logger: logger.With("component", "css_extractor"),
	}
}

// Extract implements Extractor.
func (p *CSSExtractor) Extract(resp *types.Response, fields []Field) (map[string]string, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{
			URL: resp.Request.URLString(),
			Err: err,
		}
	}

	out := make(map[string]string, len(fields))
	for _, f := range fields {
		val := extractCSS(doc.Selection, f)
		if val == "" {
			p.logger.Debug("anchor not found", "url", resp.Request.URLString(), "field", f.Name, "selector", f.Selector)
			val = f.Sentinel
		}
		out[f.Name] = val
	}
	return out, nil
}

// extractCSS applies a single field rule and returns the matched text.
func extractCSS(root *goquery.Selection, f Field) string {
	if f.Within != "" {
		root = root.Find(f.Within).First()
	}
	sel := root.Find(f.Selector)
	if sel.Length() == 0 {
		return ""
	}
	if !f.All {
		return strings.TrimSpace(sel.First().Text())
	}

	var parts []string
	sel.Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}
