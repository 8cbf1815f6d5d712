package profile

import (
	"context"

	"github.com/kailas-cloud/matchdex/internal/domain"
)

// Embedder vectorizes composite profile documents.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// EmbeddingWriter persists or clears a client's profile vector.
type EmbeddingWriter interface {
	SetEmbedding(ctx context.Context, clientID string, vec []float32) error
	ClearEmbedding(ctx context.Context, clientID string) error
}
