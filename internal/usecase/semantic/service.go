package semantic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/client"
	"github.com/kailas-cloud/matchdex/internal/index"
	"github.com/kailas-cloud/matchdex/internal/logger"
	"github.com/kailas-cloud/matchdex/internal/metrics"
)

// Service rebuilds and queries the client semantic index.
type Service struct {
	idx      Index
	embed    Embedder
	profiles ProfileLister
	floor    float64
	logger   *zap.Logger
}

// New creates a semantic search service. floor <= 0 uses index.DefaultFloor.
func New(idx Index, embed Embedder, floor float64, logger *zap.Logger) *Service {
	if floor <= 0 {
		floor = index.DefaultFloor
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{idx: idx, embed: embed, floor: floor, logger: logger}
}

// WithProfiles sets the profile source used by RebuildFromStore.
func (s *Service) WithProfiles(p ProfileLister) *Service {
	s.profiles = p
	return s
}

// RebuildIndex replaces the index contents with profiles.
func (s *Service) RebuildIndex(ctx context.Context, profiles []client.Profile) error {
	start := time.Now()
	if err := s.idx.Rebuild(profiles); err != nil {
		metrics.IndexRebuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("rebuild index: %w", err)
	}
	metrics.IndexRebuildsTotal.WithLabelValues("ok").Inc()
	metrics.IndexRebuildDuration.Observe(time.Since(start).Seconds())
	metrics.IndexSize.Set(float64(s.idx.Size()))

	logger.FromContext(ctx, s.logger).Info("Semantic index rebuilt",
		zap.Int("profiles", len(profiles)),
		zap.Int("indexed", s.idx.Size()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// RebuildFromStore lists all profiles and rebuilds the index from them.
func (s *Service) RebuildFromStore(ctx context.Context) error {
	if s.profiles == nil {
		return fmt.Errorf("no profile source configured: %w", domain.ErrInvalidConfig)
	}
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	return s.RebuildIndex(ctx, profiles)
}

// SemanticSearch embeds text and returns up to k client IDs, most similar first.
// An empty or unbuilt index yields no IDs and no error.
func (s *Service) SemanticSearch(ctx context.Context, text string, k int) ([]string, error) {
	if strings.TrimSpace(text) == "" || k <= 0 {
		return nil, nil
	}
	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w: %w", domain.ErrCollaborator, err)
	}

	hits, err := s.idx.Search(emb.Embedding, k, s.floor)
	switch {
	case errors.Is(err, domain.ErrIndexUnavailable):
		metrics.IndexQueriesTotal.WithLabelValues("unavailable").Inc()
		return nil, nil
	case errors.Is(err, domain.ErrVectorDimMismatch):
		metrics.IndexQueriesTotal.WithLabelValues("unavailable").Inc()
		logger.FromContext(ctx, s.logger).Warn("Query embedding does not fit the index", zap.Error(err))
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("search index: %w", err)
	}

	if len(hits) == 0 {
		metrics.IndexQueriesTotal.WithLabelValues("empty").Inc()
		return nil, nil
	}
	metrics.IndexQueriesTotal.WithLabelValues("ok").Inc()

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ClientID
	}
	return ids, nil
}
