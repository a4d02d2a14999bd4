// Package rank runs hybrid retrieval: vector similarity candidates from the
// index are re-scored with keyword overlap against the analyzed question,
// fused into a single hybrid score, and reduced to the top k.
package rank

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
)

// Service implements hybrid search over a vector index.
type Service struct {
	index         domain.VectorIndex
	analyzer      domain.Analyzer
	topK          int
	vectorWeight  float64
	keywordWeight float64
	concurrency   int
	logger        *zap.Logger
}

// Config holds the ranking parameters.
type Config struct {
	TopK          int
	VectorWeight  float64
	KeywordWeight float64
	// Concurrency bounds parallel keyword scoring. Defaults to GOMAXPROCS.
	Concurrency int
}

func NewService(index domain.VectorIndex, analyzer domain.Analyzer, cfg Config, logger *zap.Logger) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	if cfg.VectorWeight == 0 && cfg.KeywordWeight == 0 {
		cfg.VectorWeight = domain.DefaultVectorWeight
		cfg.KeywordWeight = domain.DefaultKeywordWeight
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	return &Service{
		index:         index,
		analyzer:      analyzer,
		topK:          cfg.TopK,
		vectorWeight:  cfg.VectorWeight,
		keywordWeight: cfg.KeywordWeight,
		concurrency:   cfg.Concurrency,
		logger:        logger,
	}
}

// Search retrieves an oversampled candidate set for the enhanced query,
// scores each candidate, and returns the top k by hybrid score in
// descending order. k of 0 or less falls back to the configured default.
// The candidate pool is larger than k so keyword overlap can promote
// results past their raw vector rank.
func (s *Service) Search(ctx context.Context, query string, analysis *domain.Analysis, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = s.topK
	}
	limit := k * domain.CandidateMultiplier

	candidates, err := s.index.SimilaritySearch(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	keywords := analysis.KeywordSet()

	results := make([]domain.SearchResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			kwScore, err := s.keywordScore(gctx, cand.Content, keywords)
			if err != nil {
				return err
			}
			vecScore := 1 - cand.Distance
			results[i] = domain.SearchResult{
				Content:     cand.Content,
				Metadata:    cand.Metadata,
				VectorScore: vecScore,
				HybridScore: s.vectorWeight*vecScore + s.keywordWeight*kwScore,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	top := selectTop(results, k)

	s.logger.Debug("Hybrid search completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(top)),
	)

	return top, nil
}

// keywordScore is the share of query keywords found in the candidate text.
// Every matching candidate token counts, so repeated mentions can push the
// score above 1.
func (s *Service) keywordScore(ctx context.Context, content string, keywords map[string]struct{}) (float64, error) {
	if len(keywords) == 0 {
		return 0, nil
	}

	analysis, err := s.analyzer.Analyze(ctx, strings.ToLower(content))
	if err != nil {
		return 0, fmt.Errorf("analyze candidate: %w", err)
	}

	matches := 0
	for _, tok := range analysis.Tokens {
		if _, ok := keywords[tok.Text]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(keywords)), nil
}
