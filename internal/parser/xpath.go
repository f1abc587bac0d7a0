package parser

import (
	"log/slog"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/unioncorpus/internal/types"
)

// XPathExtractor extracts fields using XPath expressions.
type XPathExtractor struct {
	logger *slog.Logger
}

// NewXPathExtractor creates a new XPath extractor.
func NewXPathExtractor(logger *slog.Logger) *XPathExtractor {
	return &XPathExtractor{
		logger: logger.With("component", "xpath_extractor"),
	}
}

// Extract implements Extractor. An invalid expression is a ParseError since
// it is a programming error in the adapter, not a page problem.
func (p *XPathExtractor) Extract(resp *types.Response, fields []Field) (map[string]string, error) {
	doc, err := resp.Node()
	if err != nil {
		return nil, &types.ParseError{
			URL: resp.Request.URLString(),
			Err: err,
		}
	}

	out := make(map[string]string, len(fields))
	for _, f := range fields {
		val, err := extractXPath(doc, f)
		if err != nil {
			return nil, &types.ParseError{
				URL:      resp.Request.URLString(),
				Selector: f.Selector,
				Err:      err,
			}
		}
		if val == "" {
			p.logger.Debug("anchor not found", "url", resp.Request.URLString(), "field", f.Name, "xpath", f.Selector)
			val = f.Sentinel
		}
		out[f.Name] = val
	}
	return out, nil
}

// extractXPath applies a single XPath field rule.
func extractXPath(doc *html.Node, f Field) (string, error) {
	if f.Within != "" {
		scope, err := htmlquery.Query(doc, f.Within)
		if err != nil || scope == nil {
			return "", err
		}
		doc = scope
	}
	nodes, err := htmlquery.QueryAll(doc, f.Selector)
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", nil
	}
	if !f.All {
		return strings.TrimSpace(htmlquery.InnerText(nodes[0])), nil
	}

	parts := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if text := strings.TrimSpace(htmlquery.InnerText(node)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
