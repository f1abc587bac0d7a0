// Package storage writes articles and classified partitions to output sinks.
package storage

import (
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a batch of records.
	Store(records []types.ClassifiedArticle) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// Unlabelled wraps harvested or normalized articles for a storage backend
// opened without classification columns.
func Unlabelled(articles []types.Article) []types.ClassifiedArticle {
	out := make([]types.ClassifiedArticle, len(articles))
	for i, a := range articles {
		out[i] = types.ClassifiedArticle{Article: a}
	}
	return out
}
