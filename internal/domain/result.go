package domain

import "context"

// Candidate is a raw vector-index hit before score fusion.
type Candidate struct {
	Content  string
	Metadata map[string]string
	Distance float64
}

// SearchResult is a ranked retrieval candidate after hybrid fusion.
type SearchResult struct {
	Content     string
	Metadata    map[string]string
	VectorScore float64
	HybridScore float64
}

// VectorIndex is the external similarity-search contract.
// Implementations must return candidates ordered by ascending distance.
// An empty slice is a valid, non-error response.
type VectorIndex interface {
	SimilaritySearch(ctx context.Context, query string, limit int) ([]Candidate, error)
}
