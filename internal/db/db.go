package db

import (
	"context"
	"time"
)

// Store is the database facade for the externally maintained vector index.
// Consumers use the narrow sub-interfaces (ISP).
type Store interface {
	Pinger
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher provides KNN search over an FT index.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit. Distance is the raw cosine
// distance reported by the index (__vector_score), ascending order.
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
