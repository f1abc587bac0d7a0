package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters for harvest and cleaning runs.
type Metrics struct {
	// Harvest metrics
	ArticlesDiscovered atomic.Int64
	ArticlesScraped    atomic.Int64
	ScrapesFailed      atomic.Int64
	ScrapesRetried     atomic.Int64
	ArticlesDropped    atomic.Int64
	ActiveWorkers      atomic.Int32

	// Pipeline metrics
	RecordsLoaded     atomic.Int64
	RecordsNormalized atomic.Int64
	RecordsKept       atomic.Int64
	RecordsEliminated atomic.Int64
	RecordsStored     atomic.Int64

	logger *slog.Logger
	server *http.Server
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

type metric struct {
	name  string
	help  string
	kind  string
	value int64
}

func (m *Metrics) collect() []metric {
	return []metric{
		{"unioncorpus_articles_discovered_total", "Candidate article URLs discovered", "counter", m.ArticlesDiscovered.Load()},
		{"unioncorpus_articles_scraped_total", "Articles scraped with title and content", "counter", m.ArticlesScraped.Load()},
		{"unioncorpus_scrapes_failed_total", "Article scrapes that failed", "counter", m.ScrapesFailed.Load()},
		{"unioncorpus_scrapes_retried_total", "Article scrape retries", "counter", m.ScrapesRetried.Load()},
		{"unioncorpus_articles_dropped_total", "Scraped articles dropped for missing fields", "counter", m.ArticlesDropped.Load()},
		{"unioncorpus_active_workers", "Currently active harvest workers", "gauge", int64(m.ActiveWorkers.Load())},
		{"unioncorpus_records_loaded_total", "Raw records loaded", "counter", m.RecordsLoaded.Load()},
		{"unioncorpus_records_normalized_total", "Records surviving normalization", "counter", m.RecordsNormalized.Load()},
		{"unioncorpus_records_kept_total", "Records matching the term list", "counter", m.RecordsKept.Load()},
		{"unioncorpus_records_eliminated_total", "Records eliminated by the content filter", "counter", m.RecordsEliminated.Load()},
		{"unioncorpus_records_stored_total", "Records written to output sinks", "counter", m.RecordsStored.Load()},
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	for _, metric := range m.collect() {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", metric.name, metric.kind)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer starts the metrics HTTP server in the background.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}

// Shutdown stops the metrics server if it was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"articles_discovered": m.ArticlesDiscovered.Load(),
		"articles_scraped":    m.ArticlesScraped.Load(),
		"scrapes_failed":      m.ScrapesFailed.Load(),
		"scrapes_retried":     m.ScrapesRetried.Load(),
		"articles_dropped":    m.ArticlesDropped.Load(),
		"active_workers":      int64(m.ActiveWorkers.Load()),
		"records_loaded":      m.RecordsLoaded.Load(),
		"records_normalized":  m.RecordsNormalized.Load(),
		"records_kept":        m.RecordsKept.Load(),
		"records_eliminated":  m.RecordsEliminated.Load(),
		"records_stored":      m.RecordsStored.Load(),
	}
}

// LogSummary writes the non-zero counters at info level.
func (m *Metrics) LogSummary() {
	args := make([]any, 0, 24)
	for _, metric := range m.collect() {
		if metric.value != 0 {
			args = append(args, metric.name, metric.value)
		}
	}
	m.logger.Info("run metrics", args...)
}
