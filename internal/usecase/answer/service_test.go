package answer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/usecase/normalize"
)

type fakeNormalizer struct {
	calls int
	err   error
}

func (f *fakeNormalizer) Normalize(ctx context.Context, question string) (normalize.Result, error) {
	f.calls++
	if f.err != nil {
		return normalize.Result{}, f.err
	}
	return normalize.Result{
		Query:    strings.TrimSpace(question),
		Analysis: &domain.Analysis{},
	}, nil
}

type fakeRanker struct {
	gotQuery string
	gotK     int
	results  []domain.SearchResult
	err      error
}

func (f *fakeRanker) Search(ctx context.Context, query string, analysis *domain.Analysis, k int) ([]domain.SearchResult, error) {
	f.gotQuery = query
	f.gotK = k
	return f.results, f.err
}

type fakeGenerator struct {
	gotContext  string
	gotQuestion string
	chunks      []domain.Chunk
	err         error
}

func (f *fakeGenerator) Generate(ctx context.Context, contextText, question string) (<-chan domain.Chunk, error) {
	f.gotContext = contextText
	f.gotQuestion = question
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan domain.Chunk, len(f.chunks))
	for _, c := range f.chunks {
		out <- c
	}
	close(out)
	return out, nil
}

type fakeCache struct {
	entries map[string]domain.Answer
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]domain.Answer{}}
}

func (f *fakeCache) Get(question string) (domain.Answer, bool) {
	ans, ok := f.entries[question]
	return ans, ok
}

func (f *fakeCache) Put(question string, ans domain.Answer) {
	f.puts++
	f.entries[question] = ans
}

func drain(t *testing.T, ch <-chan domain.Unit) []domain.Unit {
	t.Helper()
	var units []domain.Unit
	timeout := time.After(2 * time.Second)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return units
			}
			units = append(units, u)
		case <-timeout:
			t.Fatal("stream did not close")
		}
	}
}

func newService(n Normalizer, r Ranker, g domain.Generator, c ResponseCache) *Service {
	return NewService(n, r, g, c, zap.NewNop())
}

func TestStream_GeneratesAndCaches(t *testing.T) {
	ranker := &fakeRanker{results: []domain.SearchResult{
		{Content: "Paris is the capital.", Metadata: map[string]string{"source": "geo.pdf"}, HybridScore: 0.9},
		{Content: "France is in Europe.", HybridScore: 0.6},
	}}
	gen := &fakeGenerator{chunks: []domain.Chunk{{Text: "Paris "}, {Text: "it is."}}}
	cache := newFakeCache()
	svc := newService(&fakeNormalizer{}, ranker, gen, cache)

	ch, err := svc.Stream(context.Background(), "What is the capital?", 2, true)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	units := drain(t, ch)

	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
	for _, u := range units {
		if u.Err != nil {
			t.Fatalf("unexpected error unit: %v", u.Err)
		}
		if len(u.Metadata) != 2 || len(u.Scores) != 2 {
			t.Errorf("unit metadata/scores = %d/%d, want 2/2", len(u.Metadata), len(u.Scores))
		}
		if u.Scores[0] != 0.9 {
			t.Errorf("Scores[0] = %v", u.Scores[0])
		}
	}

	if gen.gotContext != "Paris is the capital.\n\nFrance is in Europe." {
		t.Errorf("context = %q", gen.gotContext)
	}
	if gen.gotQuestion != "What is the capital?" {
		t.Errorf("question = %q", gen.gotQuestion)
	}
	if ranker.gotK != 2 {
		t.Errorf("k = %d, want 2", ranker.gotK)
	}

	cached, ok := cache.Get("What is the capital?")
	if !ok {
		t.Fatal("finished answer should be cached under the raw question")
	}
	if cached.Text != "Paris it is." {
		t.Errorf("cached text = %q", cached.Text)
	}
}

func TestStream_CacheHitSingleUnit(t *testing.T) {
	cache := newFakeCache()
	cache.entries["q"] = domain.Answer{
		Text:     "cached answer",
		Metadata: []map[string]string{{"source": "a"}},
		Scores:   []float64{0.5},
	}
	ranker := &fakeRanker{}
	svc := newService(&fakeNormalizer{}, ranker, &fakeGenerator{}, cache)

	ch, err := svc.Stream(context.Background(), "q", 3, true)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	units := drain(t, ch)

	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if units[0].Chunk != "cached answer" {
		t.Errorf("Chunk = %q", units[0].Chunk)
	}
	if ranker.gotQuery != "" {
		t.Error("cache hit must not reach the ranker")
	}
}

func TestStream_CacheDisabled(t *testing.T) {
	cache := newFakeCache()
	cache.entries["q"] = domain.Answer{Text: "stale"}
	gen := &fakeGenerator{chunks: []domain.Chunk{{Text: "fresh"}}}
	ranker := &fakeRanker{results: []domain.SearchResult{{Content: "doc", HybridScore: 1}}}
	svc := newService(&fakeNormalizer{}, ranker, gen, cache)

	ch, err := svc.Stream(context.Background(), "q", 1, false)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	units := drain(t, ch)

	if len(units) != 1 || units[0].Chunk != "fresh" {
		t.Fatalf("units = %+v, want one fresh chunk", units)
	}
	if cache.puts != 0 {
		t.Errorf("puts = %d, want 0 with caching disabled", cache.puts)
	}
}

func TestStream_NoResultsFallback(t *testing.T) {
	cache := newFakeCache()
	svc := newService(&fakeNormalizer{}, &fakeRanker{}, &fakeGenerator{}, cache)

	ch, err := svc.Stream(context.Background(), "unknown topic", 3, true)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	units := drain(t, ch)

	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	u := units[0]
	if u.Chunk != "No relevant information found." {
		t.Errorf("Chunk = %q", u.Chunk)
	}
	if u.Metadata == nil || len(u.Metadata) != 0 {
		t.Errorf("Metadata = %v, want empty non-nil", u.Metadata)
	}
	if u.Scores == nil || len(u.Scores) != 0 {
		t.Errorf("Scores = %v, want empty non-nil", u.Scores)
	}

	if cached, ok := cache.Get("unknown topic"); !ok || cached.Text != domain.FallbackAnswer {
		t.Error("fallback answer should be cached")
	}
}

func TestStream_EmptyQuestion(t *testing.T) {
	norm := &fakeNormalizer{}
	svc := newService(norm, &fakeRanker{}, &fakeGenerator{}, newFakeCache())

	for _, question := range []string{"", "   ", "\t\n"} {
		_, err := svc.Stream(context.Background(), question, 3, true)
		if !errors.Is(err, domain.ErrEmptyQuestion) {
			t.Fatalf("Stream(%q) err = %v, want ErrEmptyQuestion", question, err)
		}
	}
	if norm.calls != 0 {
		t.Errorf("normalizer calls = %d, want 0 for blank questions", norm.calls)
	}
}

func TestStream_CacheHitBeforeNormalization(t *testing.T) {
	cache := newFakeCache()
	cache.entries["q"] = domain.Answer{Text: "cached answer"}
	norm := &fakeNormalizer{err: errors.New("analyzer down")}
	svc := newService(norm, &fakeRanker{}, &fakeGenerator{}, cache)

	ch, err := svc.Stream(context.Background(), "q", 1, true)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	units := drain(t, ch)

	if len(units) != 1 || units[0].Chunk != "cached answer" {
		t.Fatalf("units = %+v, want the cached answer", units)
	}
	if norm.calls != 0 {
		t.Errorf("normalizer calls = %d, want 0 on a cache hit", norm.calls)
	}
}

func TestStream_SearchErrorUnit(t *testing.T) {
	wantErr := errors.New("index down")
	cache := newFakeCache()
	svc := newService(&fakeNormalizer{}, &fakeRanker{err: wantErr}, &fakeGenerator{}, cache)

	ch, err := svc.Stream(context.Background(), "q", 3, true)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	units := drain(t, ch)

	if len(units) != 1 || !errors.Is(units[0].Err, wantErr) {
		t.Fatalf("units = %+v, want single error unit", units)
	}
	if cache.puts != 0 {
		t.Error("nothing should be cached after a search failure")
	}
}

func TestStream_GenerationErrorNotCached(t *testing.T) {
	genErr := errors.New("model overloaded")
	gen := &fakeGenerator{chunks: []domain.Chunk{{Text: "partial "}, {Err: genErr}}}
	ranker := &fakeRanker{results: []domain.SearchResult{{Content: "doc", HybridScore: 1}}}
	cache := newFakeCache()
	svc := newService(&fakeNormalizer{}, ranker, gen, cache)

	ch, err := svc.Stream(context.Background(), "q", 1, true)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	units := drain(t, ch)

	last := units[len(units)-1]
	if !errors.Is(last.Err, genErr) {
		t.Fatalf("last unit err = %v, want generation error", last.Err)
	}
	if cache.puts != 0 {
		t.Error("partial answer must not be cached")
	}
}

func TestStream_CancellationNotCached(t *testing.T) {
	blocked := make(chan domain.Chunk)
	gen := &blockingGenerator{ch: blocked}
	ranker := &fakeRanker{results: []domain.SearchResult{{Content: "doc", HybridScore: 1}}}
	cache := newFakeCache()
	svc := newService(&fakeNormalizer{}, ranker, gen, cache)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := svc.Stream(ctx, "q", 1, true)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	blocked <- domain.Chunk{Text: "first"}
	<-ch
	cancel()
	close(blocked)

	drain(t, ch)
	if cache.puts != 0 {
		t.Error("cancelled stream must not be cached")
	}
}

type blockingGenerator struct {
	ch chan domain.Chunk
}

func (b *blockingGenerator) Generate(ctx context.Context, contextText, question string) (<-chan domain.Chunk, error) {
	return b.ch, nil
}
