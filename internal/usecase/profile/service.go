package profile

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/logger"
)

// DefaultConcurrency bounds parallel refreshes in RefreshAll.
const DefaultConcurrency = 4

// Service keeps client profile embeddings in sync with their documents.
type Service struct {
	embed       Embedder
	store       EmbeddingWriter
	dim         int
	concurrency int
	logger      *zap.Logger
}

// New creates a composer. dim > 0 enforces the deployment vector length.
func New(embed Embedder, store EmbeddingWriter, dim int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embed: embed, store: store, dim: dim, concurrency: DefaultConcurrency, logger: logger}
}

// WithConcurrency sets the RefreshAll parallelism (values < 1 are ignored).
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Refresh recomposes the client's document and stores its embedding.
// A blank document clears the stored vector and returns nil. On an
// embedding failure the stored vector is left untouched.
func (s *Service) Refresh(ctx context.Context, in Input) ([]float32, error) {
	id := in.Profile.ID()
	doc := Compose(in)
	if doc == "" {
		if err := s.store.ClearEmbedding(ctx, id); err != nil {
			return nil, fmt.Errorf("clear embedding for %s: %w", id, err)
		}
		logger.FromContext(ctx, s.logger).Debug("Cleared profile embedding", zap.String("client_id", id))
		return nil, nil
	}

	res, err := s.embed.Embed(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("embed profile %s: %w: %w", id, domain.ErrCollaborator, err)
	}
	if s.dim > 0 && len(res.Embedding) != s.dim {
		return nil, fmt.Errorf("profile %s embedding has %d dimensions, want %d: %w",
			id, len(res.Embedding), s.dim, domain.ErrVectorDimMismatch)
	}
	if err := s.store.SetEmbedding(ctx, id, res.Embedding); err != nil {
		return nil, fmt.Errorf("store embedding for %s: %w", id, err)
	}
	return res.Embedding, nil
}

// RefreshAll refreshes many profiles with bounded concurrency.
// A failure for one client never stops the others; failures are returned
// keyed by client ID. The error is non-nil only when ctx ends.
func (s *Service) RefreshAll(ctx context.Context, inputs []Input) (map[string]error, error) {
	var (
		mu       sync.Mutex
		failures = make(map[string]error)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if _, err := s.Refresh(gctx, in); err != nil {
				mu.Lock()
				failures[in.Profile.ID()] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		logger.FromContext(ctx, s.logger).Warn("Some profile embeddings were not refreshed",
			zap.Int("failed", len(failures)),
			zap.Int("total", len(inputs)),
		)
	}
	if err := ctx.Err(); err != nil {
		return failures, fmt.Errorf("refresh profiles: %w", err)
	}
	return failures, nil
}
