package match

import (
	"context"

	"github.com/kailas-cloud/matchdex/internal/domain"
)

// Embedder vectorizes candidate remarks.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// FeedbackReader returns embeddings of candidates a client dismissed.
type FeedbackReader interface {
	DismissedEmbeddings(ctx context.Context, clientID string) ([][]float32, error)
}
