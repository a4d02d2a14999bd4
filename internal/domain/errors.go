package domain

import "errors"

var (
	// ErrEmptyQuestion signals an empty or whitespace-only question.
	// Rejected before the pipeline runs.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals a text-generation backend failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrIndexUnavailable signals a vector index failure.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)
