package docchat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/db"
	dbRedis "github.com/Ruchi2117/Doc-Chat-bot/internal/db/redis"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/repository/embcache"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/repository/respcache"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/repository/vectorindex"
	proseTransport "github.com/Ruchi2117/Doc-Chat-bot/internal/transport/prose"
	answeruc "github.com/Ruchi2117/Doc-Chat-bot/internal/usecase/answer"
	healthuc "github.com/Ruchi2117/Doc-Chat-bot/internal/usecase/health"
	normalizeuc "github.com/Ruchi2117/Doc-Chat-bot/internal/usecase/normalize"
	rankuc "github.com/Ruchi2117/Doc-Chat-bot/internal/usecase/rank"
)

const defaultReadinessTimeout = 10 * time.Second

const defaultIndexName = "docchat_chunks"

// Internal interfaces so tests can substitute the pipeline.
type answerUseCase interface {
	Stream(ctx context.Context, question string, k int, useCache bool) (<-chan domain.Unit, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type documentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Unit is a single element of an answer stream. Metadata and Scores
// describe the whole answer, not the chunk. A unit with Err set is
// terminal; end-of-stream is channel close.
type Unit struct {
	Chunk    string
	Metadata []map[string]string
	Scores   []float64
	Err      error
}

// Answer is a complete response with its retrieval provenance.
type Answer struct {
	Text     string
	Metadata []map[string]string
	Scores   []float64
}

// Client is the docchat embedded pipeline entry point.
type Client struct {
	store    db.Store
	answers  answerUseCase
	health   healthUseCase
	embedder documentEmbedder
	obs      *observer
}

// New creates a docchat Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		indexName:    defaultIndexName,
		respCacheTTL: time.Duration(domain.DefaultResponseTTLSec) * time.Second,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("docchat: database address required (use WithRedis)")
	}
	if cfg.embedder == nil {
		return nil, errors.New("docchat: embedder required (use WithEmbedder)")
	}
	if cfg.generator == nil {
		return nil, errors.New("docchat: generator required (use WithGenerator)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("docchat: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("docchat: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	// Internal layers log through zap; client-level logging goes through
	// the observer instead.
	noplog := zap.NewNop()

	embedder := embcache.New(
		adaptEmbedder(cfg.embedder),
		cfg.embedCacheCapacity,
		cfg.batchSize,
		nil,
		noplog,
	)
	generator := &generatorAdapter{inner: cfg.generator}
	analyzer := proseTransport.New()

	index := vectorindex.New(store, embedder, cfg.indexName, noplog)

	normalizeSvc := normalizeuc.NewService(analyzer, 0, noplog)
	rankSvc := rankuc.NewService(index, analyzer, rankuc.Config{
		TopK:          cfg.topK,
		VectorWeight:  cfg.vectorWeight,
		KeywordWeight: cfg.keywordWeight,
	}, noplog)
	responses := respcache.New(cfg.respCacheCapacity, cfg.respCacheTTL, nil, noplog)

	return &Client{
		store:    store,
		answers:  answeruc.NewService(normalizeSvc, rankSvc, generator, responses, noplog),
		health:   healthuc.New(store, healthCheckerOf(cfg.embedder), healthCheckerOf(cfg.generator)),
		embedder: embedder,
		obs:      obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Ask streams the answer to a question. The response cache is used unless
// WithoutCache is given.
func (c *Client) Ask(ctx context.Context, question string, opts ...AskOption) (<-chan Unit, error) {
	ac := askConfig{useCache: true}
	for _, o := range opts {
		o.applyAsk(&ac)
	}

	start := time.Now()
	units, err := c.answers.Stream(ctx, question, ac.k, ac.useCache)
	c.obs.observe("ask", start, err)
	if err != nil {
		return nil, err
	}

	out := make(chan Unit)
	go func() {
		defer close(out)
		for u := range units {
			select {
			case out <- Unit(u):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// AskText answers a question and collects the stream into one Answer.
func (c *Client) AskText(ctx context.Context, question string, opts ...AskOption) (Answer, error) {
	units, err := c.Ask(ctx, question, opts...)
	if err != nil {
		return Answer{}, err
	}

	var sb strings.Builder
	var ans Answer
	for u := range units {
		if u.Err != nil {
			return Answer{}, u.Err
		}
		sb.WriteString(u.Chunk)
		ans.Metadata = u.Metadata
		ans.Scores = u.Scores
	}
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}
	ans.Text = sb.String()
	return ans, nil
}

// EmbedDocuments vectorizes passages for index ingestion, in input order.
// Embeddings go through the same batching and per-text cache as the
// query path, so re-ingesting unchanged passages is cheap.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := c.embedder.EmbedDocuments(ctx, texts)
	c.obs.observe("embed_documents", start, err)
	if err != nil {
		return nil, err
	}
	return vecs, nil
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component name to "ok"/"error"
}

// adaptEmbedder wraps the public Embedder to satisfy internal contracts,
// preserving native batch support when the provider has it.
func adaptEmbedder(e Embedder) domain.Embedder {
	base := &embedderAdapter{inner: e}
	if be, ok := e.(BatchEmbedder); ok {
		return &batchEmbedderAdapter{embedderAdapter: base, batch: be}
	}
	return base
}

type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

type batchEmbedderAdapter struct {
	*embedderAdapter
	batch BatchEmbedder
}

func (a *batchEmbedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	r, err := a.batch.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, contextText, question string) (<-chan domain.Chunk, error) {
	chunks, err := a.inner.Generate(ctx, contextText, question)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	out := make(chan domain.Chunk)
	go func() {
		defer close(out)
		for c := range chunks {
			select {
			case out <- domain.Chunk(c):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// healthCheckerOf extracts an optional health check from a provider.
func healthCheckerOf(v any) interface{ HealthCheck(context.Context) error } {
	if hc, ok := v.(interface{ HealthCheck(context.Context) error }); ok {
		return hc
	}
	return nil
}
