package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/IshaanNene/unioncorpus/internal/types"
)

// DateLayout is the date format written to every output file.
const DateLayout = time.RFC3339

var (
	baseHeader     = []string{"", "url", "date", "title", "content", "outlet"}
	labelledHeader = []string{"leaning", "far"}
)

// --- CSV Storage ---

// CSVStorage writes records as CSV rows with a leading row-index column.
// The header is written even when no record is ever stored.
type CSVStorage struct {
	path     string
	file     *os.File
	writer   *csv.Writer
	labelled bool
	mu       sync.Mutex
	count    int
	logger   *slog.Logger
}

// NewCSVStorage creates a new CSV file storage. Labelled storages carry the
// leaning and far columns.
func NewCSVStorage(outputPath string, labelled bool, logger *slog.Logger) (*CSVStorage, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	s := &CSVStorage{
		path:     outputPath,
		file:     f,
		writer:   csv.NewWriter(f),
		labelled: labelled,
		logger:   logger.With("component", "csv_storage"),
	}

	header := baseHeader
	if labelled {
		header = append(append([]string{}, baseHeader...), labelledHeader...)
	}
	if err := s.writer.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	return s, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(records []types.ClassifiedArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		row := []string{
			strconv.Itoa(s.count),
			r.URL,
			r.PublishedAt.UTC().Format(DateLayout),
			r.Title,
			r.Content,
			r.Outlet,
		}
		if s.labelled {
			row = append(row, string(r.Leaning), string(r.Far))
		}
		if err := s.writer.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
		s.count++
	}

	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVStorage) Close() error {
	s.logger.Debug("CSV written", "path", s.path, "records", s.count)
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return fmt.Errorf("flush CSV: %w", err)
	}
	return s.file.Close()
}

// --- JSONL Storage ---

// jsonRecord is the line shape of JSONL output.
type jsonRecord struct {
	URL     string `json:"url"`
	Date    string `json:"date"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Outlet  string `json:"outlet"`
	Leaning string `json:"leaning,omitempty"`
	Far     string `json:"far,omitempty"`
}

// JSONLStorage writes records as newline-delimited JSON (one object per line).
type JSONLStorage struct {
	path     string
	file     *os.File
	enc      *json.Encoder
	labelled bool
	mu       sync.Mutex
	count    int
	logger   *slog.Logger
}

// NewJSONLStorage creates a new JSONL file storage (streaming writes).
func NewJSONLStorage(outputPath string, labelled bool, logger *slog.Logger) (*JSONLStorage, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	return &JSONLStorage{
		path:     outputPath,
		file:     f,
		enc:      json.NewEncoder(f),
		labelled: labelled,
		logger:   logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(records []types.ClassifiedArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		rec := jsonRecord{
			URL:     r.URL,
			Date:    r.PublishedAt.UTC().Format(DateLayout),
			Title:   r.Title,
			Content: r.Content,
			Outlet:  r.Outlet,
		}
		if s.labelled {
			rec.Leaning = string(r.Leaning)
			rec.Far = string(r.Far)
		}
		if err := s.enc.Encode(rec); err != nil {
			return fmt.Errorf("encode JSONL: %w", err)
		}
		s.count++
	}
	return nil
}

func (s *JSONLStorage) Close() error {
	s.logger.Debug("JSONL written", "path", s.path, "records", s.count)
	return s.file.Close()
}

// NewFileStorage creates the file storage for storageType at
// <outputDir>/<name>.<storageType>.
func NewFileStorage(storageType, outputDir, name string, labelled bool, logger *slog.Logger) (Storage, error) {
	path := filepath.Join(outputDir, name+"."+storageType)
	switch storageType {
	case "csv":
		return NewCSVStorage(path, labelled, logger)
	case "jsonl":
		return NewJSONLStorage(path, labelled, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
