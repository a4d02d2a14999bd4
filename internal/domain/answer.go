package domain

import "context"

// Answer is a complete response triple as stored by the response cache.
type Answer struct {
	Text     string
	Metadata []map[string]string
	Scores   []float64
}

// Unit is a single element of the caller-facing answer stream.
// Metadata and Scores describe the whole answer, not the chunk.
// A unit with Err set is terminal; end-of-stream is channel close.
type Unit struct {
	Chunk    string
	Metadata []map[string]string
	Scores   []float64
	Err      error
}

// Chunk is one piece of generated text.
type Chunk struct {
	Text string
	Err  error
}

// Generator is the text-generation contract. The returned channel yields
// chunks lazily (possibly a single one for non-streaming backends) and is
// closed when generation completes; a failure surfaces as one Chunk with
// Err set.
type Generator interface {
	Generate(ctx context.Context, contextText, question string) (<-chan Chunk, error)
}
