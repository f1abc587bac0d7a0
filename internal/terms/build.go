package terms

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// usListXPath selects the items of the first <ul> that follows the block
// holding the AFL-CIO heading anchor.
const usListXPath = `//*[@id='AFL-CIO']/parent::*/following-sibling::ul[1]/li`

// caNameSelector matches the affiliate name blocks on the Canadian page.
const caNameSelector = "div.affiliate__name"

// ExtractUS pulls union names and acronyms from the AFL-CIO affiliates page.
// Each list item contributes its first two child nodes (typically the name
// and the parenthesised acronym), lowercased with parentheses removed.
func ExtractUS(r io.Reader) ([]string, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse US affiliates page: %w", err)
	}
	items, err := htmlquery.QueryAll(doc, usListXPath)
	if err != nil {
		return nil, fmt.Errorf("query US affiliates: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("US affiliates page: no list after #AFL-CIO")
	}

	var out []string
	for _, li := range items {
		n := 0
		for c := li.FirstChild; c != nil && n < 2; c = c.NextSibling {
			n++
			t := nodeText(c)
			t = strings.NewReplacer("(", "", ")", "").Replace(strings.ToLower(strings.TrimSpace(t)))
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	return htmlquery.InnerText(n)
}

// ExtractCA pulls union names and acronyms from the Canadian affiliates
// page, where each block reads "Name (ACRONYM)".
func ExtractCA(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse CA affiliates page: %w", err)
	}

	var out []string
	doc.Find(caNameSelector).Each(func(i int, s *goquery.Selection) {
		name, acronym, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s.Text())), " (")
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
		if ok {
			acronym = strings.TrimSpace(strings.TrimSuffix(acronym, ")"))
			if acronym != "" {
				out = append(out, acronym)
			}
		}
	})
	return out, nil
}

// Build combines the US and Canadian pages into one raw term slice, US
// first. A nil reader skips that page.
func Build(us, ca io.Reader) ([]string, error) {
	var out []string
	if us != nil {
		t, err := ExtractUS(us)
		if err != nil {
			return nil, err
		}
		out = append(out, t...)
	}
	if ca != nil {
		t, err := ExtractCA(ca)
		if err != nil {
			return nil, err
		}
		out = append(out, t...)
	}
	return out, nil
}

// Write emits terms one per line.
func Write(w io.Writer, terms []string) error {
	if _, err := io.WriteString(w, strings.Join(terms, "\n")); err != nil {
		return fmt.Errorf("write term list: %w", err)
	}
	return nil
}
