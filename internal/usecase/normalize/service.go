// Package normalize turns a raw user question into the enhanced query the
// retrieval stages operate on: linguistic analysis filters the question down
// to its content words, and the result is memoized per question.
package normalize

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/cache"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
)

// Result is the normalized form of one question. Analysis is retained so
// keyword scoring never re-runs linguistic analysis.
type Result struct {
	Query    string
	Analysis *domain.Analysis
}

// Service normalizes questions with a linguistic analyzer and memoizes the
// outcome. Analysis is deterministic, so entries never expire.
type Service struct {
	analyzer domain.Analyzer
	memo     *cache.Cache[Result]
	logger   *zap.Logger
}

func NewService(analyzer domain.Analyzer, capacity int, logger *zap.Logger) *Service {
	if capacity <= 0 {
		capacity = domain.DefaultCacheCapacity
	}
	return &Service{
		analyzer: analyzer,
		memo:     cache.New[Result](capacity, 0),
		logger:   logger,
	}
}

// Normalize returns the enhanced query for a raw question. A question that
// is empty after trimming is rejected. When every token is filtered out,
// the trimmed question itself becomes the query.
func (s *Service) Normalize(ctx context.Context, question string) (Result, error) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return Result{}, domain.ErrEmptyQuestion
	}

	if res, ok := s.memo.Get(trimmed); ok {
		return res, nil
	}

	analysis, err := s.analyzer.Analyze(ctx, trimmed)
	if err != nil {
		return Result{}, fmt.Errorf("normalize question: %w", err)
	}

	var kept []string
	for _, tok := range analysis.Tokens {
		if tok.Keep() {
			kept = append(kept, tok.Text)
		}
	}

	query := trimmed
	if len(kept) > 0 {
		query = strings.Join(kept, " ")
	}

	res := Result{Query: query, Analysis: analysis}
	s.memo.Put(trimmed, res)

	s.logger.Debug("Normalized question",
		zap.Int("tokens", len(analysis.Tokens)),
		zap.Int("kept", len(kept)),
	)

	return res, nil
}
