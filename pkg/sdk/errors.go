package matchdex

import (
	"errors"

	"github.com/kailas-cloud/matchdex/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrInvalidConfig          = domain.ErrInvalidConfig
	ErrUnknownVertical        = domain.ErrUnknownVertical
	ErrCollaborator           = domain.ErrCollaborator
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
)

// ErrNoStore is returned by operations that need WithRedis.
var ErrNoStore = errors.New("matchdex: no database configured (use WithRedis)")

// ErrNoEmbedder is returned by operations that need WithEmbedder.
var ErrNoEmbedder = errors.New("matchdex: embedder not configured (use WithEmbedder)")
