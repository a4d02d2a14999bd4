package docchat

import "context"

// Embedder converts text to vector embeddings. Required.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single API call.
// Optional, if the provided Embedder also implements BatchEmbedder,
// document embedding will use it for significantly better throughput.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// Generator produces answer text for a question against retrieved context.
// The channel yields chunks lazily and is closed when generation completes;
// a failure surfaces as one Chunk with Err set. Required.
type Generator interface {
	Generate(ctx context.Context, contextText, question string) (<-chan Chunk, error)
}

// Chunk is one piece of generated text.
type Chunk struct {
	Text string
	Err  error
}
