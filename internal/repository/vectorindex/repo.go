// Package vectorindex adapts the Redis FT.SEARCH store to the domain's
// similarity-search contract. The index itself is maintained by the
// ingestion side; this repository only reads from it.
package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/db"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
)

// Embedder is the consumer contract for query vectorization.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// contentField is the hash field holding the chunk text. Every other
// non-reserved field rides along as opaque metadata.
const contentField = "content"

// reservedFields never surface as candidate metadata.
var reservedFields = map[string]struct{}{
	contentField: {},
	"vector":     {},
}

// Repository implements domain.VectorIndex over a Redis search store.
type Repository struct {
	store     db.Searcher
	embedder  Embedder
	indexName string
	logger    *zap.Logger
}

func New(store db.Searcher, embedder Embedder, indexName string, logger *zap.Logger) *Repository {
	return &Repository{
		store:     store,
		embedder:  embedder,
		indexName: indexName,
		logger:    logger,
	}
}

// SimilaritySearch embeds the query and returns up to limit candidates in
// ascending distance order. A missing index is treated as an empty corpus,
// not an error; any other store failure is reported as index unavailability.
func (r *Repository) SimilaritySearch(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: r.indexName,
		Vector:    vector,
		K:         limit,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			r.logger.Warn("Vector index missing, returning no candidates",
				zap.String("index", r.indexName))
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	candidates := make([]domain.Candidate, 0, len(res.Entries))
	for _, entry := range res.Entries {
		candidates = append(candidates, toCandidate(entry))
	}

	r.logger.Debug("Similarity search completed",
		zap.String("index", r.indexName),
		zap.Int("limit", limit),
		zap.Int("candidates", len(candidates)),
	)

	return candidates, nil
}

func toCandidate(entry db.SearchEntry) domain.Candidate {
	var metadata map[string]string
	for field, value := range entry.Fields {
		if _, reserved := reservedFields[field]; reserved {
			continue
		}
		if metadata == nil {
			metadata = make(map[string]string)
		}
		metadata[field] = value
	}
	return domain.Candidate{
		Content:  entry.Fields[contentField],
		Metadata: metadata,
		Distance: entry.Distance,
	}
}
