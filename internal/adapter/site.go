package adapter

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/IshaanNene/unioncorpus/internal/fetcher"
	"github.com/IshaanNene/unioncorpus/internal/parser"
	"github.com/IshaanNene/unioncorpus/internal/sitemap"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// site carries what every concrete adapter shares: the fetcher, the page
// extractor and its field rules.
type site struct {
	outlet    string
	base      string
	fetcher   fetcher.Fetcher
	extractor parser.Extractor
	fields    []parser.Field
	logger    *slog.Logger
}

func newSite(outlet, base string, f fetcher.Fetcher, ex parser.Extractor, fields []parser.Field, logger *slog.Logger) site {
	return site{
		outlet:    outlet,
		base:      strings.TrimRight(base, "/"),
		fetcher:   f,
		extractor: ex,
		fields:    fields,
		logger:    logger.With("component", "adapter", "outlet", outlet),
	}
}

// Outlet implements Adapter.
func (s *site) Outlet() string { return s.outlet }

// keepFunc decides whether a sitemap entry is a candidate and which of its
// dates to record.
type keepFunc func(e sitemap.Entry) (date string, ok bool)

// discover walks the sitemaps in order, yielding the entries keep accepts.
// Entries whose date cannot be parsed are skipped, and so is a sitemap that
// cannot be fetched (a missing day, a future date). A sitemap that arrives
// but does not decode ends discovery.
func (s *site) discover(ctx context.Context, sitemaps []string, keep keepFunc, inPeriod func(Candidate) bool) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		for _, sm := range sitemaps {
			if err := ctx.Err(); err != nil {
				yield(Candidate{}, err)
				return
			}
			entries, err := sitemap.Fetch(ctx, s.fetcher, sm)
			var fe *types.FetchError
			switch {
			case err == nil:
			case ctx.Err() != nil:
				yield(Candidate{}, ctx.Err())
				return
			case errors.As(err, &fe):
				s.logger.Warn("sitemap unavailable, skipping", "url", sm, "status", fe.StatusCode, "error", fe.Err)
				continue
			default:
				yield(Candidate{}, err)
				return
			}
			s.logger.Debug("sitemap read", "url", sm, "entries", len(entries))

			for _, e := range entries {
				raw, ok := keep(e)
				if !ok {
					continue
				}
				published, err := types.ParseDate(raw)
				if err != nil {
					s.logger.Debug("skipping entry with unparseable date", "url", e.Loc, "date", raw)
					continue
				}
				c := Candidate{URL: e.Loc, PublishedAt: published}
				if inPeriod != nil && !inPeriod(c) {
					continue
				}
				if !yield(c, nil) {
					return
				}
			}
		}
	}
}

// extract fetches url and applies the field rules. Panics inside the HTML
// libraries are turned into a ParseError for this URL.
func (s *site) extract(ctx context.Context, url string) (fields map[string]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			fields = nil
			err = &types.ParseError{URL: url, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	resp, err := fetcher.Get(ctx, s.fetcher, url, types.TagArticle)
	if err != nil {
		return nil, err
	}
	if resp.FinalURL != "" && resp.FinalURL != url {
		s.logger.Info("article redirected", "url", url, "final_url", resp.FinalURL)
	}
	return s.extractor.Extract(resp, s.fields)
}

// field returns the rule named name.
func (s *site) field(name string) parser.Field {
	for _, f := range s.fields {
		if f.Name == name {
			return f
		}
	}
	return parser.Field{Name: name}
}

// joinFound joins the named extracted values that were actually found on the
// page. When none were, the content sentinel is returned.
func (s *site) joinFound(values map[string]string, names ...string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if v := values[n]; parser.Found(v, s.field(n)) {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return types.NoContent
	}
	return strings.Join(parts, " ")
}
