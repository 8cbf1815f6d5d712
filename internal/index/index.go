// Package index is an in-memory nearest-neighbor index over client profile
// embeddings. Readers see an immutable snapshot published by atomic swap.
package index

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/client"
	"github.com/kailas-cloud/matchdex/internal/domain/vector"
)

// DefaultFloor drops hits with similarity below this value.
const DefaultFloor = 0.35

// Hit is one query match.
type Hit struct {
	ClientID   string
	Similarity float64
}

type snapshot struct {
	ids     []string
	vectors [][]float32 // unit length, ids[i] owns vectors[i]
	dim     int
}

// Index holds the current snapshot. The zero value is an empty index.
type Index struct {
	current atomic.Pointer[snapshot]
	writeMu sync.Mutex
}

// New creates an empty index.
func New() *Index {
	return &Index{}
}

// Rebuild builds a fresh snapshot from profiles and publishes it.
// Profiles without an embedding are skipped. On a dimension mismatch the
// previous snapshot stays in place.
func (x *Index) Rebuild(profiles []client.Profile) error {
	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	next := &snapshot{}
	for _, p := range profiles {
		if !p.HasEmbedding() {
			continue
		}
		emb := p.Embedding()
		if next.dim == 0 {
			next.dim = len(emb)
		} else if len(emb) != next.dim {
			return fmt.Errorf("client %s has %d dimensions, index has %d: %w",
				p.ID(), len(emb), next.dim, domain.ErrVectorDimMismatch)
		}
		next.ids = append(next.ids, p.ID())
		next.vectors = append(next.vectors, vector.Normalize(emb))
	}

	x.current.Store(next)
	return nil
}

// Size returns the number of indexed profiles.
func (x *Index) Size() int {
	if s := x.current.Load(); s != nil {
		return len(s.ids)
	}
	return 0
}

// Ready reports whether a snapshot has been published.
func (x *Index) Ready() bool {
	return x.current.Load() != nil
}

// Search returns up to k hits above floor, most similar first.
// It returns ErrIndexUnavailable before the first rebuild and
// ErrVectorDimMismatch for a query of the wrong length.
func (x *Index) Search(query []float32, k int, floor float64) ([]Hit, error) {
	s := x.current.Load()
	if s == nil || len(s.ids) == 0 {
		return nil, domain.ErrIndexUnavailable
	}
	if len(query) != s.dim {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w",
			len(query), s.dim, domain.ErrVectorDimMismatch)
	}
	if k <= 0 {
		return nil, nil
	}

	q := vector.Normalize(query)
	hits := make([]Hit, 0, min(k, len(s.ids)))
	for i, v := range s.vectors {
		sim := vector.Dot(q, v)
		if sim < floor {
			continue
		}
		hits = append(hits, Hit{ClientID: s.ids[i], Similarity: sim})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Query is Search with every failure mapped to an empty result.
func (x *Index) Query(query []float32, k int, floor float64) []Hit {
	hits, err := x.Search(query, k, floor)
	if err != nil {
		return nil
	}
	return hits
}
