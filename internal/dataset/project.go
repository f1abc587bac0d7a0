package dataset

import (
	"fmt"
	"strings"

	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Accepted source column names for each article field, in preference order.
var (
	urlColumns     = []string{"url"}
	titleColumns   = []string{"title"}
	contentColumns = []string{"content", "body"}
	outletColumns  = []string{"actual_domain", "domain", "outlet"}
	dateColumns    = []string{"date", "created_utc", "published_at"}
)

// RowError reports a row that could not be projected.
type RowError struct {
	Table string
	Row   int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Table, e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Project maps table rows onto articles. Rows whose date cannot be parsed
// are returned as RowErrors alongside the articles that could be built.
func Project(t *Table) ([]types.Article, []error, error) {
	cols := make(map[string]int, 5)
	for name, candidates := range map[string][]string{
		"url":     urlColumns,
		"title":   titleColumns,
		"content": contentColumns,
		"outlet":  outletColumns,
		"date":    dateColumns,
	} {
		i, ok := t.Column(candidates...)
		if !ok {
			return nil, nil, fmt.Errorf("%s: missing column %s (accepted: %s)", t.Name, name, strings.Join(candidates, ", "))
		}
		cols[name] = i
	}

	articles := make([]types.Article, 0, len(t.Rows))
	var rowErrs []error
	for n, row := range t.Rows {
		published, err := types.ParseDate(row[cols["date"]])
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Table: t.Name, Row: n + 1, Err: err})
			continue
		}
		articles = append(articles, types.Article{
			URL:         row[cols["url"]],
			PublishedAt: published,
			Title:       row[cols["title"]],
			Content:     row[cols["content"]],
			Outlet:      row[cols["outlet"]],
		})
	}
	return articles, rowErrs, nil
}
