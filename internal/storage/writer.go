package storage

import (
	"fmt"
	"log/slog"

	"github.com/IshaanNene/unioncorpus/internal/classify"
	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/observability"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Writer opens one destination per output set: a file under the output
// path and, when configured, a MongoDB collection of the same name.
type Writer struct {
	cfg     config.StorageConfig
	mongo   *MongoDB
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a writer. mongo may be nil.
func NewWriter(cfg config.StorageConfig, mongo *MongoDB, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}
	return &Writer{
		cfg:     cfg,
		mongo:   mongo,
		metrics: metrics,
		logger:  logger.With("component", "writer"),
	}
}

// Open returns the storage for the named output set.
func (w *Writer) Open(name string, labelled bool) (Storage, error) {
	file, err := NewFileStorage(w.cfg.Type, w.cfg.OutputPath, name, labelled, w.logger)
	if err != nil {
		return nil, &types.StorageError{Backend: w.cfg.Type, Err: err}
	}
	if w.mongo == nil {
		return file, nil
	}
	return NewMultiStorage([]Storage{file, w.mongo.Collection(name, labelled)}, w.logger), nil
}

// Write stores records as the named output set and closes it.
func (w *Writer) Write(name string, labelled bool, records []types.ClassifiedArticle) error {
	s, err := w.Open(name, labelled)
	if err != nil {
		return err
	}
	if err := s.Store(records); err != nil {
		s.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	w.metrics.RecordsStored.Add(int64(len(records)))
	w.logger.Info("output written", "name", name, "records", len(records))
	return nil
}

// WriteArticles stores unlabelled articles, as harvested or normalized.
func (w *Writer) WriteArticles(name string, articles []types.Article) error {
	return w.Write(name, false, Unlabelled(articles))
}

// WritePartitions writes every partition to its own destination.
func (w *Writer) WritePartitions(parts []classify.Partition) error {
	for _, p := range parts {
		if err := w.Write(p.Name, p.Labelled, p.Records); err != nil {
			return err
		}
	}
	return nil
}
