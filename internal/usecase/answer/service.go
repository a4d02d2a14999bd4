// Package answer orchestrates the full question-answering flow: response
// cache probe, hybrid retrieval, context assembly, and streamed generation
// with write-back caching of the finished answer.
package answer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/usecase/normalize"
)

// Normalizer produces the enhanced query and its analysis.
type Normalizer interface {
	Normalize(ctx context.Context, question string) (normalize.Result, error)
}

// Ranker runs hybrid retrieval for an enhanced query.
type Ranker interface {
	Search(ctx context.Context, query string, analysis *domain.Analysis, k int) ([]domain.SearchResult, error)
}

// ResponseCache stores finished answers keyed by the raw question.
type ResponseCache interface {
	Get(question string) (domain.Answer, bool)
	Put(question string, ans domain.Answer)
}

// Service implements the answer stream.
type Service struct {
	normalizer Normalizer
	ranker     Ranker
	generator  domain.Generator
	cache      ResponseCache
	logger     *zap.Logger
}

func NewService(
	normalizer Normalizer,
	ranker Ranker,
	generator domain.Generator,
	cache ResponseCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		normalizer: normalizer,
		ranker:     ranker,
		generator:  generator,
		cache:      cache,
		logger:     logger,
	}
}

// Stream answers a question as a channel of units. A cached answer or the
// no-results fallback arrives as a single unit; otherwise generation chunks
// stream through, each carrying the metadata and hybrid scores of the
// retrieved context. The channel closes when the answer is complete. A unit
// with Err set is terminal and the partial answer is not cached.
//
// Validation failures (an empty question) are reported synchronously.
//
// The cache is probed before any query analysis; a hit answers without
// touching the normalizer or the index.
func (s *Service) Stream(ctx context.Context, question string, k int, useCache bool) (<-chan domain.Unit, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}

	if useCache {
		if ans, ok := s.cache.Get(question); ok {
			s.logger.Info("Answer served from cache", zap.Int("question_len", len(question)))
			out := make(chan domain.Unit, 1)
			out <- domain.Unit{Chunk: ans.Text, Metadata: ans.Metadata, Scores: ans.Scores}
			close(out)
			return out, nil
		}
	}

	norm, err := s.normalizer.Normalize(ctx, question)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.Unit)
	go s.run(ctx, out, norm, question, k, useCache)
	return out, nil
}

func (s *Service) run(ctx context.Context, out chan<- domain.Unit, norm normalize.Result, question string, k int, useCache bool) {
	defer close(out)

	results, err := s.ranker.Search(ctx, norm.Query, norm.Analysis, k)
	if err != nil {
		s.logger.Error("Hybrid search failed", zap.Error(err))
		s.emit(ctx, out, domain.Unit{Err: err})
		return
	}

	if len(results) == 0 {
		ans := domain.Answer{Text: domain.FallbackAnswer, Metadata: []map[string]string{}, Scores: []float64{}}
		if useCache {
			s.cache.Put(question, ans)
		}
		s.emit(ctx, out, domain.Unit{Chunk: ans.Text, Metadata: ans.Metadata, Scores: ans.Scores})
		return
	}

	contents := make([]string, len(results))
	metadata := make([]map[string]string, len(results))
	scores := make([]float64, len(results))
	for i, r := range results {
		contents[i] = r.Content
		metadata[i] = r.Metadata
		scores[i] = r.HybridScore
	}

	chunks, err := s.generator.Generate(ctx, strings.Join(contents, "\n\n"), question)
	if err != nil {
		s.logger.Error("Generation failed to start", zap.Error(err))
		s.emit(ctx, out, domain.Unit{Err: err})
		return
	}

	var full strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			s.logger.Error("Generation failed mid-stream", zap.Error(chunk.Err))
			s.emit(ctx, out, domain.Unit{Err: chunk.Err})
			return
		}
		full.WriteString(chunk.Text)
		if !s.emit(ctx, out, domain.Unit{Chunk: chunk.Text, Metadata: metadata, Scores: scores}) {
			return
		}
	}

	if ctx.Err() != nil {
		return
	}
	if useCache {
		s.cache.Put(question, domain.Answer{Text: full.String(), Metadata: metadata, Scores: scores})
	}
}

// emit delivers a unit unless the caller has gone away.
func (s *Service) emit(ctx context.Context, out chan<- domain.Unit, u domain.Unit) bool {
	select {
	case out <- u:
		return true
	case <-ctx.Done():
		return false
	}
}
