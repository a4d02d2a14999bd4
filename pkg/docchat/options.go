package docchat

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	embedder  Embedder
	generator Generator

	indexName     string
	topK          int
	vectorWeight  float64
	keywordWeight float64

	batchSize          int
	embedCacheCapacity int
	respCacheCapacity  int
	respCacheTTL       time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets the answer generation provider. Required.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithIndex sets the search index name. Default: "docchat_chunks".
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexName = name
	})
}

// WithTopK sets the default number of context chunks per answer. Default: 3.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithWeights sets the vector and keyword score weights for hybrid
// ranking. Defaults: 0.7 and 0.3.
func WithWeights(vector, keyword float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorWeight = vector
		c.keywordWeight = keyword
	})
}

// WithBatchSize sets the embedding batch size. Default: 32.
func WithBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = size
	})
}

// WithResponseCache configures the answer cache. Defaults: capacity 1000,
// TTL one hour. A ttl of 0 keeps answers until evicted.
func WithResponseCache(capacity int, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.respCacheCapacity = capacity
		c.respCacheTTL = ttl
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// AskOption adjusts a single Ask call.
type AskOption interface {
	applyAsk(*askConfig)
}

type askOptionFunc func(*askConfig)

func (f askOptionFunc) applyAsk(c *askConfig) { f(c) }

type askConfig struct {
	k        int
	useCache bool
}

// WithK overrides the number of context chunks for one question.
func WithK(k int) AskOption {
	return askOptionFunc(func(c *askConfig) {
		c.k = k
	})
}

// WithoutCache bypasses the response cache for one question.
func WithoutCache() AskOption {
	return askOptionFunc(func(c *askConfig) {
		c.useCache = false
	})
}
