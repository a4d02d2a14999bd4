package docchat

import "github.com/Ruchi2117/Doc-Chat-bot/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuestion          = domain.ErrEmptyQuestion
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrGenerationFailed       = domain.ErrGenerationFailed
	ErrIndexUnavailable       = domain.ErrIndexUnavailable
)
