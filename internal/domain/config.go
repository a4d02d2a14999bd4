package domain

// Fixed design constants of the pipeline, exposed as adjustable
// configuration parameters.
const (
	// DefaultTopK is the number of passages supplied to generation.
	DefaultTopK = 3
	// CandidateMultiplier oversamples the vector index before re-ranking,
	// so keyword-relevant passages buried by pure vector similarity can
	// still reach the top-k.
	CandidateMultiplier = 3
	// DefaultBatchSize is the embedding batch size.
	DefaultBatchSize = 32
	// DefaultCacheCapacity bounds each of the pipeline caches.
	DefaultCacheCapacity = 1000
	// DefaultResponseTTLSec is the response cache time-to-live.
	DefaultResponseTTLSec = 3600

	// DefaultVectorWeight and DefaultKeywordWeight are the score-fusion weights.
	DefaultVectorWeight  = 0.7
	DefaultKeywordWeight = 0.3
)

// FallbackAnswer is emitted when the vector index returns no candidates.
const FallbackAnswer = "No relevant information found."
