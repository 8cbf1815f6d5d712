package semantic

import (
	"context"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/client"
	"github.com/kailas-cloud/matchdex/internal/index"
)

// Embedder vectorizes search queries.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ProfileLister lists every client profile.
type ProfileLister interface {
	List(ctx context.Context) ([]client.Profile, error)
}

// Index is the nearest-neighbor index the service maintains.
type Index interface {
	Rebuild(profiles []client.Profile) error
	Search(query []float32, k int, floor float64) ([]index.Hit, error)
	Size() int
}
