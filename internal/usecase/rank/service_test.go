package rank

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
)

type fakeIndex struct {
	gotQuery   string
	gotLimit   int
	candidates []domain.Candidate
	err        error
}

func (f *fakeIndex) SimilaritySearch(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	f.gotQuery = query
	f.gotLimit = limit
	return f.candidates, f.err
}

// wordAnalyzer splits on whitespace; every token is a noun.
type wordAnalyzer struct {
	err error
}

func (w *wordAnalyzer) Analyze(ctx context.Context, text string) (*domain.Analysis, error) {
	if w.err != nil {
		return nil, w.err
	}
	var tokens []domain.Token
	for _, word := range strings.Fields(text) {
		tokens = append(tokens, domain.Token{Text: word, POS: domain.POSNoun})
	}
	return &domain.Analysis{Tokens: tokens}, nil
}

func analysisOf(words ...string) *domain.Analysis {
	tokens := make([]domain.Token, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, domain.Token{Text: w, POS: domain.POSNoun})
	}
	return &domain.Analysis{Tokens: tokens}
}

func newService(index domain.VectorIndex, cfg Config) *Service {
	return NewService(index, &wordAnalyzer{}, cfg, zap.NewNop())
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSearch_OversamplesCandidates(t *testing.T) {
	index := &fakeIndex{}
	svc := newService(index, Config{TopK: 3})

	if _, err := svc.Search(context.Background(), "query", analysisOf(), 0); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if index.gotLimit != 9 {
		t.Errorf("limit = %d, want 9 for k=3", index.gotLimit)
	}
	if index.gotQuery != "query" {
		t.Errorf("query = %q", index.gotQuery)
	}
}

func TestSearch_ExplicitK(t *testing.T) {
	index := &fakeIndex{candidates: []domain.Candidate{
		{Content: "a", Distance: 0.1},
		{Content: "b", Distance: 0.2},
		{Content: "c", Distance: 0.3},
	}}
	svc := newService(index, Config{TopK: 3})

	results, err := svc.Search(context.Background(), "q", analysisOf(), 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if index.gotLimit != 3 {
		t.Errorf("limit = %d, want 3 for k=1", index.gotLimit)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestSearch_HybridScoring(t *testing.T) {
	index := &fakeIndex{candidates: []domain.Candidate{
		{Content: "paris capital france", Distance: 0.2},
		{Content: "nothing relevant here", Distance: 0.1},
	}}
	svc := newService(index, Config{TopK: 2})

	results, err := svc.Search(context.Background(), "capital france", analysisOf("capital", "france"), 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	// First candidate: vector 0.8, keyword 2/2 = 1.0, hybrid 0.86.
	// Second candidate: vector 0.9, keyword 0, hybrid 0.63.
	// Keyword overlap promotes the first past its raw vector rank.
	if results[0].Content != "paris capital france" {
		t.Fatalf("top result = %q", results[0].Content)
	}
	if !almostEqual(results[0].VectorScore, 0.8) {
		t.Errorf("VectorScore = %v, want 0.8", results[0].VectorScore)
	}
	if !almostEqual(results[0].HybridScore, 0.7*0.8+0.3*1.0) {
		t.Errorf("HybridScore = %v", results[0].HybridScore)
	}
	if !almostEqual(results[1].HybridScore, 0.7*0.9) {
		t.Errorf("second HybridScore = %v", results[1].HybridScore)
	}
}

func TestSearch_VectorScoreNotClamped(t *testing.T) {
	index := &fakeIndex{candidates: []domain.Candidate{
		{Content: "far away", Distance: 1.4},
	}}
	svc := newService(index, Config{TopK: 1})

	results, err := svc.Search(context.Background(), "q", analysisOf(), 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !almostEqual(results[0].VectorScore, -0.4) {
		t.Errorf("VectorScore = %v, want -0.4 (no clamping)", results[0].VectorScore)
	}
}

func TestSearch_DuplicateMatchesCount(t *testing.T) {
	index := &fakeIndex{candidates: []domain.Candidate{
		{Content: "paris paris paris", Distance: 0.5},
	}}
	svc := newService(index, Config{TopK: 1})

	results, err := svc.Search(context.Background(), "paris", analysisOf("paris"), 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Three mentions against a one-keyword set: keyword score 3.0.
	want := 0.7*0.5 + 0.3*3.0
	if !almostEqual(results[0].HybridScore, want) {
		t.Errorf("HybridScore = %v, want %v", results[0].HybridScore, want)
	}
}

func TestSearch_EmptyKeywordSet(t *testing.T) {
	index := &fakeIndex{candidates: []domain.Candidate{
		{Content: "some text", Distance: 0.3},
	}}
	svc := newService(index, Config{TopK: 1})

	results, err := svc.Search(context.Background(), "q", analysisOf(), 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !almostEqual(results[0].HybridScore, 0.7*0.7) {
		t.Errorf("HybridScore = %v, want vector component only", results[0].HybridScore)
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	svc := newService(&fakeIndex{}, Config{TopK: 3})

	results, err := svc.Search(context.Background(), "q", analysisOf(), 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
}

func TestSearch_IndexError(t *testing.T) {
	wantErr := errors.New("index down")
	svc := newService(&fakeIndex{err: wantErr}, Config{TopK: 3})

	_, err := svc.Search(context.Background(), "q", analysisOf(), 0)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped index error", err)
	}
}

func TestSearch_AnalyzerError(t *testing.T) {
	index := &fakeIndex{candidates: []domain.Candidate{{Content: "text", Distance: 0.1}}}
	wantErr := errors.New("analyzer broken")
	svc := NewService(index, &wordAnalyzer{err: wantErr}, Config{TopK: 1}, zap.NewNop())

	_, err := svc.Search(context.Background(), "q", analysisOf("text"), 0)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped analyzer error", err)
	}
}

func TestSelectTop(t *testing.T) {
	mk := func(score float64) domain.SearchResult {
		return domain.SearchResult{HybridScore: score}
	}

	t.Run("PartialSelection", func(t *testing.T) {
		results := []domain.SearchResult{mk(0.1), mk(0.9), mk(0.5), mk(0.7), mk(0.3)}
		top := selectTop(results, 3)
		want := []float64{0.9, 0.7, 0.5}
		if len(top) != 3 {
			t.Fatalf("got %d results", len(top))
		}
		for i, w := range want {
			if top[i].HybridScore != w {
				t.Errorf("top[%d] = %v, want %v", i, top[i].HybridScore, w)
			}
		}
	})

	t.Run("KLargerThanInput", func(t *testing.T) {
		top := selectTop([]domain.SearchResult{mk(0.2), mk(0.8)}, 5)
		if len(top) != 2 {
			t.Fatalf("got %d results, want 2", len(top))
		}
		if top[0].HybridScore != 0.8 {
			t.Errorf("top[0] = %v", top[0].HybridScore)
		}
	})

	t.Run("StableTies", func(t *testing.T) {
		results := []domain.SearchResult{
			{Content: "first", HybridScore: 0.5},
			{Content: "second", HybridScore: 0.5},
			{Content: "third", HybridScore: 0.5},
		}
		top := selectTop(results, 2)
		if top[0].Content != "first" || top[1].Content != "second" {
			t.Errorf("ties should keep candidate order, got %q then %q", top[0].Content, top[1].Content)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if top := selectTop(nil, 3); top != nil {
			t.Errorf("got %v, want nil", top)
		}
		if top := selectTop([]domain.SearchResult{mk(1)}, 0); top != nil {
			t.Errorf("got %v, want nil", top)
		}
	})
}
