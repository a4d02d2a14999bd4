// Package respcache stores complete answers keyed by the question exactly
// as asked, so repeated questions stream back instantly without touching
// the analyzer, the index, or the language model.
package respcache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/cache"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
)

// Cache holds finished answers with LRU eviction and a TTL so stale
// answers age out after the underlying index changes.
type Cache struct {
	answers    *cache.Cache[domain.Answer]
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates an answer cache. ttl of 0 keeps entries until evicted.
// cacheTotal is a counter vec with a single "result" label.
func New(capacity int, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if capacity <= 0 {
		capacity = domain.DefaultCacheCapacity
	}
	return &Cache{
		answers:    cache.New[domain.Answer](capacity, ttl),
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Get returns the cached answer for a question, if present and not
// expired. Keys are raw questions; callers probe before any analysis.
func (c *Cache) Get(question string) (domain.Answer, bool) {
	ans, ok := c.answers.Get(question)
	if ok {
		c.incResult("hit")
		c.logger.Debug("Response cache hit", zap.Int("question_len", len(question)))
	} else {
		c.incResult("miss")
	}
	return ans, ok
}

// Put stores a finished answer under its normalized question.
func (c *Cache) Put(question string, ans domain.Answer) {
	c.answers.Put(question, ans)
}

// Len returns the number of cached answers.
func (c *Cache) Len() int {
	return c.answers.Len()
}

func (c *Cache) incResult(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
