package dataset

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"

	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/observability"
	"github.com/IshaanNene/unioncorpus/internal/pipeline"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Normalizer turns raw tables into the canonical, deduplicated article set.
type Normalizer struct {
	cfg     config.NormalizeConfig
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewNormalizer creates a Normalizer. metrics may be nil.
func NewNormalizer(cfg config.NormalizeConfig, metrics *observability.Metrics, logger *slog.Logger) *Normalizer {
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}
	return &Normalizer{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.With("component", "normalizer"),
	}
}

// Normalize joins each table with meta (when given), projects the rows to
// articles and runs them, in table order, through the record pipeline:
// required fields (including url and outlet), title dedup (first wins) and
// date exclusion. A sample is drawn last when sample_size is set.
func (n *Normalizer) Normalize(tables []*Table, meta *Table) ([]types.Article, error) {
	var raw []types.Article
	for _, t := range tables {
		if meta != nil {
			before := t.Len()
			joined, err := Join(t, meta)
			if err != nil {
				return nil, fmt.Errorf("join metadata: %w", err)
			}
			n.logger.Debug("metadata joined", "table", t.Name, "rows", before, "matched", joined.Len())
			t = joined
		}

		arts, rowErrs, err := Project(t)
		if err != nil {
			return nil, err
		}
		for _, e := range rowErrs {
			n.logger.Warn("skipping row", "error", e)
		}
		n.logger.Info("table loaded", "table", t.Name, "rows", t.Len(), "articles", len(arts))
		raw = append(raw, arts...)
	}
	n.metrics.RecordsLoaded.Add(int64(len(raw)))

	out, err := n.Pipeline().Run(raw)
	if err != nil {
		return nil, err
	}

	if n.cfg.SampleSize > 0 {
		out = Sample(out, n.cfg.SampleSize, n.cfg.SampleSeed)
		n.logger.Info("restricted to sample", "size", len(out), "seed", n.cfg.SampleSeed)
	}
	n.metrics.RecordsNormalized.Add(int64(len(out)))
	return out, nil
}

// Pipeline builds the record pipeline. Each call returns a fresh pipeline
// so dedup state never leaks between runs.
func (n *Normalizer) Pipeline() *pipeline.Pipeline {
	p := pipeline.New(n.logger)
	p.Use(&pipeline.TrimMiddleware{})
	if n.cfg.StripHTML {
		p.Use(pipeline.NewHTMLSanitizeMiddleware())
	}
	// A record without an outlet could never be classified.
	p.Use(&pipeline.RequiredFieldsMiddleware{RequireIdentity: true})
	p.Use(pipeline.NewDedupMiddleware("title"))
	p.Use(pipeline.NewDateExclusionMiddleware(n.cfg.ExcludedYears, n.cfg.ExcludedMonths))
	n.logger.Debug("record pipeline built", "middlewares", p.Len())
	return p
}

// Sample returns size articles chosen with a seeded generator, kept in
// their input order. The same seed always picks the same articles.
func Sample(articles []types.Article, size int, seed int64) []types.Article {
	if size >= len(articles) {
		return articles
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	idx := rng.Perm(len(articles))[:size]
	sort.Ints(idx)

	out := make([]types.Article, size)
	for i, j := range idx {
		out[i] = articles[j]
	}
	return out
}
