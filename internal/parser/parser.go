package parser

import (
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Field describes how one article field is located on a page.
type Field struct {
	// Name is the output key ("title", "summary", ...).
	Name string

	// Selector is a CSS selector or an XPath expression, depending on the
	// extractor it is handed to.
	Selector string

	// Within, when set, scopes Selector to the first element it matches, so
	// a page with several matching containers only contributes the first.
	// Scoped XPath selectors must be relative (".//p").
	Within string

	// All joins the text of every match with single spaces (paragraph
	// bodies); otherwise only the first match is used.
	All bool

	// Sentinel is returned when nothing matches.
	Sentinel string
}

// Extractor pulls named fields out of a fetched page. A missing anchor
// yields the field's sentinel; only an unparseable document is an error.
type Extractor interface {
	Extract(resp *types.Response, fields []Field) (map[string]string, error)
}

// Found reports whether an extracted value came from the page rather than
// from the field's sentinel.
func Found(value string, f Field) bool {
	return value != "" && value != f.Sentinel
}
