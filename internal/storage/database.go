package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/unioncorpus/internal/types"
)

// MongoDB is a connected client shared by the per-partition collections.
type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
	runID  string
	logger *slog.Logger
}

// OpenMongo connects to uri and pings the server. Every document written
// through the returned handle carries runID.
func OpenMongo(ctx context.Context, uri, database, runID string, logger *slog.Logger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoDB{
		client: client,
		db:     client.Database(database),
		runID:  runID,
		logger: logger.With("component", "mongo_storage", "database", database),
	}, nil
}

// Collection returns a storage backend writing to the named collection.
func (m *MongoDB) Collection(name string, labelled bool) *MongoStorage {
	return &MongoStorage{
		collection: m.db.Collection(name),
		runID:      m.runID,
		labelled:   labelled,
		logger:     m.logger.With("collection", name),
	}
}

// Close disconnects the client.
func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// MongoStorage writes records to a MongoDB collection.
type MongoStorage struct {
	collection *mongo.Collection
	runID      string
	labelled   bool
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(records []types.ClassifiedArticle) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]any, len(records))
	for i, r := range records {
		docs[i] = document(r, s.runID, s.labelled)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("mongodb insert: %w", err)
	}

	s.count += len(records)
	s.logger.Debug("records stored in mongodb", "count", len(records), "total", s.count)
	return nil
}

// Close is a no-op; the shared client is closed by MongoDB.Close.
func (s *MongoStorage) Close() error {
	s.logger.Debug("mongodb collection closing", "total_records", s.count)
	return nil
}

func document(r types.ClassifiedArticle, runID string, labelled bool) bson.D {
	doc := bson.D{
		{Key: "run_id", Value: runID},
		{Key: "url", Value: r.URL},
		{Key: "date", Value: r.PublishedAt.UTC()},
		{Key: "title", Value: r.Title},
		{Key: "content", Value: r.Content},
		{Key: "outlet", Value: r.Outlet},
	}
	if labelled {
		doc = append(doc,
			bson.E{Key: "leaning", Value: string(r.Leaning)},
			bson.E{Key: "far", Value: string(r.Far)},
		)
	}
	return doc
}

// --- Multi-Storage Fan-Out ---

// MultiStorage writes records to multiple backends simultaneously.
type MultiStorage struct {
	backends []Storage
	logger   *slog.Logger
}

// NewMultiStorage creates a storage that fans out to multiple backends.
func NewMultiStorage(backends []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string { return "multi" }

func (s *MultiStorage) Store(records []types.ClassifiedArticle) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Store(records); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = &types.StorageError{Backend: backend.Name(), Err: err}
			}
		}
	}
	return firstErr
}

func (s *MultiStorage) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil {
			if firstErr == nil {
				firstErr = &types.StorageError{Backend: backend.Name(), Err: err}
			}
		}
	}
	return firstErr
}
