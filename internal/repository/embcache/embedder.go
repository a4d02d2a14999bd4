// Package embcache is the deduplicating, batching front-end over the
// embedding provider. It keeps two independent in-memory LRU namespaces,
// one for document embeddings and one for query embeddings, because a
// provider may encode the same text differently depending on role.
package embcache

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/cache"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
)

const (
	nsDocument = "document"
	nsQuery    = "query"
)

// CachedEmbedder caches embeddings in bounded LRU maps and batches
// provider calls for the texts it cannot resolve locally.
type CachedEmbedder struct {
	inner      domain.Embedder
	documents  *cache.Cache[[]float32]
	queries    *cache.Cache[[]float32]
	batchSize  int
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching embedder front-end.
// cacheTotal is a counter vec with labels ("namespace", "result"), passed explicitly.
func New(
	inner domain.Embedder,
	capacity, batchSize int,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	if capacity <= 0 {
		capacity = domain.DefaultCacheCapacity
	}
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}
	return &CachedEmbedder{
		inner:      inner,
		documents:  cache.New[[]float32](capacity, 0),
		queries:    cache.New[[]float32](capacity, 0),
		batchSize:  batchSize,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// EmbedDocuments vectorizes texts in input order. Texts are processed in
// batches of the configured size; within a batch, cached texts resolve
// locally and the misses go to the provider in one call, in their original
// relative order. A provider failure propagates and nothing from the failed
// batch is cached.
func (c *CachedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vecs, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		out = append(out, vecs...)
	}

	return out, nil
}

// embedBatch resolves a single batch, merging cache hits with one provider
// call for the misses and restoring original index order.
func (c *CachedEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	results := make([][]float32, len(batch))

	var missIdx []int
	var missTexts []string
	for i, text := range batch {
		if vec, ok := c.documents.Get(text); ok {
			c.incCache(nsDocument, "hit")
			results[i] = vec
			continue
		}
		c.incCache(nsDocument, "miss")
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	res, err := c.batchEmbed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) != len(missTexts) {
		return nil, fmt.Errorf("provider returned %d embeddings for %d texts: %w",
			len(res.Embeddings), len(missTexts), domain.ErrEmbeddingProviderError)
	}

	for j, vec := range res.Embeddings {
		results[missIdx[j]] = vec
		c.documents.Put(missTexts[j], vec)
	}

	c.logger.Debug("Embedded document batch",
		zap.Int("batch", len(batch)),
		zap.Int("misses", len(missTexts)),
		zap.Int("tokens", res.TotalTokens),
	)

	return results, nil
}

// EmbedQuery vectorizes a single query text, memoized in the query
// namespace. Queries arrive one at a time, so there is no batching.
func (c *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.queries.Get(text); ok {
		c.incCache(nsQuery, "hit")
		return vec, nil
	}
	c.incCache(nsQuery, "miss")

	res, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	c.queries.Put(text, res.Embedding)
	return res.Embedding, nil
}

// HealthCheck delegates to the inner provider when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

func (c *CachedEmbedder) batchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := c.inner.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, c.inner, texts)
}

func (c *CachedEmbedder) incCache(namespace, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(namespace, result).Inc()
	}
}
