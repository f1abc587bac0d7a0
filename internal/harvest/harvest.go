// Package harvest drives site adapters: it drains discovery, scrapes each
// candidate through a bounded worker pool and tags the surviving articles.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/unioncorpus/internal/adapter"
	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/observability"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Aggregator runs adapters and collects their articles.
type Aggregator struct {
	cfg      config.HarvestConfig
	metrics  *observability.Metrics
	logger   *slog.Logger
	progress io.Writer

	progressMu sync.Mutex
	throttle   throttle
}

// New creates an Aggregator. Progress lines go to progress; a nil writer
// disables them.
func New(cfg config.HarvestConfig, metrics *observability.Metrics, progress io.Writer, logger *slog.Logger) *Aggregator {
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Aggregator{
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger.With("component", "harvest"),
		progress: progress,
		throttle: throttle{delay: cfg.PolitenessDelay},
	}
}

// Metrics returns the counters this aggregator updates.
func (h *Aggregator) Metrics() *observability.Metrics {
	return h.metrics
}

// Harvest discovers and scrapes every candidate of one adapter. Articles are
// returned in discovery order. A discovery failure aborts the adapter and
// is returned; per-article failures are logged and skipped. On
// cancellation the articles finished so far are returned with ctx.Err().
func (h *Aggregator) Harvest(ctx context.Context, a adapter.Adapter, p adapter.Period) ([]types.Article, error) {
	logger := h.logger.With("outlet", a.Outlet())

	var candidates []adapter.Candidate
	seen := newURLSet(1024)
	duplicates := 0
	for c, err := range a.DiscoverURLs(ctx, p) {
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", a.Outlet(), err)
		}
		if !seen.add(c.URL) {
			duplicates++
			continue
		}
		candidates = append(candidates, c)
	}
	n := len(candidates)
	h.metrics.ArticlesDiscovered.Add(int64(n))
	logger.Info("discovery complete", "year", p.Year, "months", p.Months, "candidates", n, "duplicates", duplicates)
	if n == 0 {
		return nil, nil
	}

	results := make([]*types.Article, n)
	jobs := make(chan int)
	var done atomic.Int64
	var wg sync.WaitGroup

	workers := min(h.concurrency(), n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			wlog := logger.With("worker_id", id)
			for i := range jobs {
				h.metrics.ActiveWorkers.Add(1)
				results[i] = h.scrape(ctx, wlog, a, candidates[i])
				h.metrics.ActiveWorkers.Add(-1)
				h.reportProgress(done.Add(1), n)
			}
		}(w)
	}

feed:
	for i := range candidates {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	out := make([]types.Article, 0, n)
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	if err := ctx.Err(); err != nil {
		logger.Warn("harvest interrupted", "completed", done.Load(), "candidates", n)
		return out, err
	}
	fmt.Fprintln(h.progress, "All done!")
	logger.Info("harvest complete", "articles", len(out), "candidates", n)
	return out, nil
}

// HarvestAll runs each adapter in turn and concatenates the results. An
// adapter that fails discovery is logged and contributes nothing; only
// cancellation stops the batch.
func (h *Aggregator) HarvestAll(ctx context.Context, adapters []adapter.Adapter, p adapter.Period) ([]types.Article, error) {
	var out []types.Article
	for _, a := range adapters {
		arts, err := h.Harvest(ctx, a, p)
		out = append(out, arts...)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			h.logger.Error("adapter failed", "outlet", a.Outlet(), "error", err)
			continue
		}
		if len(arts) == 0 {
			h.logger.Info("adapter produced no articles", "outlet", a.Outlet())
		}
	}
	return out, nil
}

// scrape fetches one candidate, retrying retryable fetch errors. It returns
// nil when the article is skipped.
func (h *Aggregator) scrape(ctx context.Context, logger *slog.Logger, a adapter.Adapter, c adapter.Candidate) *types.Article {
	logger = logger.With("url", c.URL)

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil
		}
		if err := h.throttle.wait(ctx); err != nil {
			return nil
		}

		title, content, err := h.scrapeOnce(ctx, a, c.URL)
		if err != nil {
			var fe *types.FetchError
			if errors.As(err, &fe) && fe.IsRetryable() && attempt < h.cfg.MaxRetries {
				h.metrics.ScrapesRetried.Add(1)
				delay := h.backoff(attempt, fe.RetryAfter)
				logger.Warn("retrying article", "retry", attempt+1, "max_retries", h.cfg.MaxRetries, "delay", delay, "error", err)
				if !sleep(ctx, delay) {
					return nil
				}
				continue
			}
			if ctx.Err() == nil {
				h.metrics.ScrapesFailed.Add(1)
				logger.Warn("scrape failed", "error", err, "retries", attempt)
			}
			return nil
		}

		art := &types.Article{
			URL:         c.URL,
			PublishedAt: c.PublishedAt,
			Title:       title,
			Content:     content,
			Outlet:      a.Outlet(),
		}
		if !art.Complete() {
			h.metrics.ArticlesDropped.Add(1)
			logger.Debug("dropping article", "error", types.ErrSentinelField, "title", title)
			return nil
		}
		h.metrics.ArticlesScraped.Add(1)
		return art
	}
}

func (h *Aggregator) scrapeOnce(ctx context.Context, a adapter.Adapter, url string) (string, string, error) {
	if h.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.RequestTimeout)
		defer cancel()
	}
	return a.ScrapeArticle(ctx, url)
}

// backoff doubles the retry delay each attempt; a server Retry-After wins.
func (h *Aggregator) backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}
	return h.cfg.RetryDelay << attempt
}

func (h *Aggregator) concurrency() int {
	if h.cfg.Concurrency < 1 {
		return 1
	}
	return h.cfg.Concurrency
}

// reportProgress prints "<pct>% done!" every n/steps completions.
func (h *Aggregator) reportProgress(done int64, n int) {
	steps := h.cfg.ProgressSteps
	if steps <= 0 {
		return
	}
	interval := int64(n / steps)
	if interval == 0 {
		interval = 1
	}
	if done%interval != 0 {
		return
	}
	h.progressMu.Lock()
	defer h.progressMu.Unlock()
	fmt.Fprintf(h.progress, "%.2f%% done!\n", 100*float64(done)/float64(n))
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// throttle spaces out article fetches for one outlet.
type throttle struct {
	delay     time.Duration
	mu        sync.Mutex
	lastFetch time.Time
}

func (t *throttle) wait(ctx context.Context) error {
	if t.delay <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if elapsed := time.Since(t.lastFetch); elapsed < t.delay {
		if !sleep(ctx, t.delay-elapsed) {
			return ctx.Err()
		}
	}
	t.lastFetch = time.Now()
	return nil
}
