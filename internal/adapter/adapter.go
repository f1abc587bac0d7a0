// Package adapter defines the per-outlet site adapters that discover article
// URLs from sitemaps and scrape title/content from article pages.
package adapter

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/fetcher"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Adapter is implemented by every outlet.
type Adapter interface {
	// Outlet returns the taxonomy identifier records are tagged with.
	Outlet() string

	// DiscoverURLs lazily yields candidate articles for the period in
	// sitemap order. A sitemap that cannot be fetched or decoded is yielded
	// as an error once and ends the sequence.
	DiscoverURLs(ctx context.Context, period Period) iter.Seq2[Candidate, error]

	// ScrapeArticle fetches one article. Missing page elements come back as
	// the types.NoTitle / types.NoContent sentinels; only fetch and parse
	// failures are errors.
	ScrapeArticle(ctx context.Context, url string) (title, content string, err error)
}

// Candidate is a discovered article URL with its sitemap date.
type Candidate struct {
	URL         string
	PublishedAt time.Time
}

// Period selects the sitemaps to read.
type Period struct {
	Year int
	// Months restricts discovery to these months (1-12). Empty means all.
	Months []int
}

// MonthList returns the requested months, or 1..12 when none were given.
func (p Period) MonthList() []int {
	if len(p.Months) == 0 {
		all := make([]int, 12)
		for i := range all {
			all[i] = i + 1
		}
		return all
	}
	return p.Months
}

// Includes reports whether t falls in the period.
func (p Period) Includes(t time.Time) bool {
	t = t.UTC()
	if t.Year() != p.Year {
		return false
	}
	return len(p.Months) == 0 || slices.Contains(p.Months, int(t.Month()))
}

// Validate checks the period bounds.
func (p Period) Validate() error {
	if p.Year < 1990 || p.Year > 2100 {
		return fmt.Errorf("year %d out of range", p.Year)
	}
	for _, m := range p.Months {
		if m < 1 || m > 12 {
			return fmt.Errorf("month %d out of range", m)
		}
	}
	return nil
}

// Registry holds adapters keyed by outlet.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds or replaces an adapter.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Outlet()] = a
}

// Get returns the adapter for outlet.
func (r *Registry) Get(outlet string) (Adapter, error) {
	a, ok := r.adapters[outlet]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownAdapter, outlet)
	}
	return a, nil
}

// Names returns the registered outlets in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for n := range r.adapters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Select resolves the named outlets, or every adapter when names is empty.
func (r *Registry) Select(names []string) ([]Adapter, error) {
	if len(names) == 0 {
		names = r.Names()
	}
	out := make([]Adapter, 0, len(names))
	for _, n := range names {
		a, err := r.Get(n)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Default registers the built-in outlet adapters against the configured
// sitemap hosts.
func Default(src config.SourcesConfig, f fetcher.Fetcher, logger *slog.Logger) *Registry {
	r := NewRegistry()
	r.Register(NewBreitbart(src.Breitbart, f, logger))
	r.Register(NewVox(src.Vox, f, logger))
	r.Register(NewDemocracyNow(src.DemocracyNow, f, logger))
	return r
}
