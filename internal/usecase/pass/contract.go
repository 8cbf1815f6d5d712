package pass

import (
	"context"

	"github.com/kailas-cloud/matchdex/internal/domain/client"
	"github.com/kailas-cloud/matchdex/internal/domain/resource"
	domslate "github.com/kailas-cloud/matchdex/internal/domain/slate"
)

// CandidateStore holds the active candidate pool.
type CandidateStore interface {
	Active(ctx context.Context) ([]resource.Candidate, error)
	Put(ctx context.Context, candidates ...resource.Candidate) error
}

// ProfileStore reads client profiles.
type ProfileStore interface {
	List(ctx context.Context) ([]client.Profile, error)
	Get(ctx context.Context, id string) (client.Profile, error)
}

// IndexRebuilder republishes the semantic index.
type IndexRebuilder interface {
	RebuildIndex(ctx context.Context, profiles []client.Profile) error
}

// Curator produces slates in batch, consolidated and incremental modes.
type Curator interface {
	CurateBatch(ctx context.Context, clients []client.Profile, candidates []resource.Candidate) ([]domslate.Slate, error)
	Consolidate(ctx context.Context, c client.Profile, pool []resource.Candidate) (domslate.Slate, error)
	Merge(ctx context.Context, existing domslate.Slate, c client.Profile, arrivals []resource.Candidate) (domslate.Slate, error)
}

// SlateStore persists each client's current slate.
type SlateStore interface {
	Save(ctx context.Context, s domslate.Slate) error
	Get(ctx context.Context, clientID string) (domslate.Slate, error)
}
