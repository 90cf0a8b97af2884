// Package store provides the persistent memory index and its SQLite implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/deskmate/internal/model"
)

// ErrUnavailable is returned when the backing index could not be opened.
var ErrUnavailable = errors.New("memory store unavailable")

// AddParams holds parameters for appending a memory.
type AddParams struct {
	Category  model.Category
	Content   string
	Metadata  map[string]string
	Embedding []float32
	// CreatedAt is the entry's creation time. Zero means now; the store then
	// guarantees strictly increasing timestamps within the process.
	CreatedAt time.Time
}

// SearchParams holds parameters for a similarity search.
type SearchParams struct {
	Query    string
	Category model.Category
	Limit    int
	// QueryEmbedding enables vector ranking for entries that carry an
	// embedding. Entries without one are ranked lexically.
	QueryEmbedding []float32
}

// SearchResult wraps a memory with its distance from the query
// (0 is an exact match, 1 is unrelated).
type SearchResult struct {
	model.Memory
	Distance float64 `json:"distance"`
}

// RecentParams holds parameters for listing recent memories.
type RecentParams struct {
	Category model.Category
	Limit    int
}

// Store defines the memory index interface.
type Store interface {
	// Add appends a memory and returns it with its generated ID. Adding an
	// entry whose ID already exists is a no-op that returns the existing ID.
	// The timestamp metadata key is always written from the creation time.
	Add(ctx context.Context, p AddParams) (*model.Memory, bool, error)

	// Search ranks memories by similarity to the query, best first.
	Search(ctx context.Context, p SearchParams) ([]SearchResult, error)

	// Recent lists memories newest first.
	Recent(ctx context.Context, p RecentParams) ([]model.Memory, error)

	// Stats returns counts per category.
	Stats(ctx context.Context) (*Stats, error)

	// DeleteOlderThan hard-deletes entries created before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// ExportAll returns every entry, oldest first.
	ExportAll(ctx context.Context) ([]model.Memory, error)

	// Close closes the store.
	Close() error
}
