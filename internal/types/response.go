package types

import (
	"bytes"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Response is a fetched page. The CSS and XPath views of the body are
// parsed on first use and cached, so a Response must not be shared between
// goroutines.
type Response struct {
	StatusCode  int
	Headers     http.Header
	Body        []byte // decoded
	Request     *Request
	ContentType string

	// FinalURL is the URL after redirects.
	FinalURL string

	doc  *goquery.Document
	node *html.Node
}

// NewResponse wraps a completed HTTP exchange.
func NewResponse(req *Request, httpResp *http.Response, body []byte) *Response {
	return &Response{
		StatusCode:  httpResp.StatusCode,
		Headers:     httpResp.Header,
		Body:        body,
		Request:     req,
		ContentType: httpResp.Header.Get("Content-Type"),
		FinalURL:    httpResp.Request.URL.String(),
	}
}

// Document returns the goquery view of the body.
func (r *Response) Document() (*goquery.Document, error) {
	if r.doc == nil {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			return nil, err
		}
		r.doc = doc
	}
	return r.doc, nil
}

// Node returns the parsed tree for XPath queries.
func (r *Response) Node() (*html.Node, error) {
	if r.node == nil {
		node, err := htmlquery.Parse(bytes.NewReader(r.Body))
		if err != nil {
			return nil, err
		}
		r.node = node
	}
	return r.node, nil
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
