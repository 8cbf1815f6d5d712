package slate

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain/client"
	dommatch "github.com/kailas-cloud/matchdex/internal/domain/match"
	"github.com/kailas-cloud/matchdex/internal/domain/resource"
	domslate "github.com/kailas-cloud/matchdex/internal/domain/slate"
	"github.com/kailas-cloud/matchdex/internal/domain/vertical"
	"github.com/kailas-cloud/matchdex/internal/logger"
	"github.com/kailas-cloud/matchdex/internal/metrics"
)

// Curation modes, used as metric labels.
const (
	ModeBatch        = "batch"
	ModeConsolidated = "consolidated"
	ModeIncremental  = "incremental"
)

// Service curates ranked, capped recommendation slates.
type Service struct {
	scorer Scorer
	policy vertical.ScoringPolicy
	cfg    Config
	pool   *ants.Pool
	logger *zap.Logger
}

// New creates a curator backed by a worker pool of cfg.Workers goroutines.
// Call Release when done.
func New(scorer Scorer, policy vertical.ScoringPolicy, cfg Config, logger *zap.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Service{scorer: scorer, policy: policy, cfg: cfg, pool: pool, logger: logger}, nil
}

// Release stops the worker pool.
func (s *Service) Release() {
	s.pool.Release()
}

// Curate builds one client's slate from candidates.
// ok is false when nothing qualifies or ctx ends mid-scoring.
func (s *Service) Curate(ctx context.Context, c client.Profile, candidates []resource.Candidate) (domslate.Slate, bool) {
	qualified, err := s.qualify(ctx, c, candidates)
	if err != nil || len(qualified) == 0 {
		return domslate.Slate{}, false
	}
	return domslate.Rank(c.ID(), qualified, s.cfg.Cap), true
}

// CurateBatch curates slates for many clients concurrently.
// Clients with no qualifying match get no slate. When ctx ends, no new
// clients are dispatched and the slates finished so far are returned in
// client order together with ctx.Err().
func (s *Service) CurateBatch(
	ctx context.Context, clients []client.Profile, candidates []resource.Candidate,
) ([]domslate.Slate, error) {
	log := logger.FromContext(ctx, s.logger)
	done := make([]*domslate.Slate, len(clients))
	if ce, ok := s.scorer.(CandidateEmbedder); ok && len(clients) > 0 {
		candidates = ce.EmbedCandidates(ctx, candidates)
	}

	var (
		wg        sync.WaitGroup
		submitErr error
	)
	for i, c := range clients {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if sl, ok := s.Curate(ctx, c, candidates); ok {
				done[i] = &sl
			}
		})
		if err != nil {
			wg.Done()
			submitErr = fmt.Errorf("submit client %s: %w", c.ID(), err)
			break
		}
	}
	wg.Wait()

	out := make([]domslate.Slate, 0, len(clients))
	for _, sl := range done {
		if sl != nil {
			out = append(out, *sl)
		}
	}
	metrics.SlatesEmittedTotal.WithLabelValues(ModeBatch).Add(float64(len(out)))

	if submitErr != nil {
		return out, submitErr
	}
	if err := ctx.Err(); err != nil {
		log.Warn("Batch curation interrupted",
			zap.Int("clients", len(clients)),
			zap.Int("slates", len(out)),
			zap.Error(err),
		)
		return out, fmt.Errorf("curate batch: %w", err)
	}
	return out, nil
}

// Consolidate recomputes a client's slate from the full active pool.
// The result replaces any existing slate and may be empty, which clears
// stale recommendations. Repeated calls with the same pool are identical.
func (s *Service) Consolidate(
	ctx context.Context, c client.Profile, pool []resource.Candidate,
) (domslate.Slate, error) {
	qualified, err := s.qualify(ctx, c, pool)
	if err != nil {
		return domslate.Slate{}, err
	}
	metrics.SlatesEmittedTotal.WithLabelValues(ModeConsolidated).Inc()
	if len(qualified) == 0 {
		return domslate.Empty(c.ID(), s.cfg.Cap), nil
	}
	return domslate.Rank(c.ID(), qualified, s.cfg.Cap), nil
}

// Merge scores only newly arrived candidates and folds them into existing.
// A zero-value existing slate is treated as empty.
func (s *Service) Merge(
	ctx context.Context, existing domslate.Slate, c client.Profile, arrivals []resource.Candidate,
) (domslate.Slate, error) {
	if existing.ClientID() == "" {
		existing = domslate.Empty(c.ID(), s.cfg.Cap)
	}
	qualified, err := s.qualify(ctx, c, arrivals)
	if err != nil {
		return domslate.Slate{}, err
	}
	metrics.SlatesEmittedTotal.WithLabelValues(ModeIncremental).Inc()
	return existing.Merge(qualified), nil
}

// qualify scores candidates in presentation order and keeps those at or
// above the threshold.
func (s *Service) qualify(
	ctx context.Context, c client.Profile, candidates []resource.Candidate,
) ([]dommatch.Result, error) {
	var qualified []dommatch.Result
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("score client %s: %w", c.ID(), err)
		}
		r := s.scorer.Score(ctx, c, cand, s.policy)
		if r.Score() >= s.cfg.MinScore {
			qualified = append(qualified, r)
		}
	}
	return qualified, nil
}
