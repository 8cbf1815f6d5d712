// Package pass runs curation passes: load, index, curate, persist.
package pass

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/resource"
	domslate "github.com/kailas-cloud/matchdex/internal/domain/slate"
	"github.com/kailas-cloud/matchdex/internal/logger"
	"github.com/kailas-cloud/matchdex/internal/metrics"
)

// DefaultTimeout bounds the curation stage of a pass.
const DefaultTimeout = 5 * time.Minute

// Report summarizes one pass.
type Report struct {
	ID         string        `json:"id"`
	Clients    int           `json:"clients"`
	Candidates int           `json:"candidates"`
	Slates     int           `json:"slates"`
	Failures   int           `json:"failures"`
	Duration   time.Duration `json:"duration"`
	Partial    bool          `json:"partial"`
	// EmbeddingCalls and EmbeddingTokens count the embedder traffic of the pass.
	EmbeddingCalls  int64 `json:"embedding_calls"`
	EmbeddingTokens int64 `json:"embedding_tokens"`
}

// Service orchestrates curation passes.
type Service struct {
	candidates CandidateStore
	profiles   ProfileStore
	index      IndexRebuilder
	curator    Curator
	slates     SlateStore
	timeout    time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a pass runner. index may be nil, in which case passes run
// without refreshing the semantic index.
func New(
	candidates CandidateStore, profiles ProfileStore, index IndexRebuilder,
	curator Curator, slates SlateStore, logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		candidates: candidates,
		profiles:   profiles,
		index:      index,
		curator:    curator,
		slates:     slates,
		timeout:    DefaultTimeout,
		now:        time.Now,
		logger:     logger,
	}
}

// WithTimeout sets the curation deadline. Non-positive keeps the default.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Run executes one batch pass. Hitting the curation deadline is not an
// error: the slates finished in time are saved and Report.Partial is set.
func (s *Service) Run(ctx context.Context) (Report, error) {
	start := s.now()
	rep := Report{ID: strconv.FormatInt(start.UnixNano(), 36)}
	ctx = logger.WithPass(ctx, s.logger, rep.ID)
	ctx, usage := domain.NewContextWithUsage(ctx)
	log := logger.FromContext(ctx, s.logger)

	pool, err := s.candidates.Active(ctx)
	if err != nil {
		metrics.CurationPassesTotal.WithLabelValues("error").Inc()
		return rep, fmt.Errorf("load candidates: %w", err)
	}
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		metrics.CurationPassesTotal.WithLabelValues("error").Inc()
		return rep, fmt.Errorf("load profiles: %w", err)
	}
	rep.Candidates, rep.Clients = len(pool), len(profiles)

	if s.index != nil {
		if err := s.index.RebuildIndex(ctx, profiles); err != nil {
			log.Warn("Index rebuild failed, keeping previous snapshot", zap.Error(err))
		}
	}

	curateCtx, cancel := context.WithTimeout(ctx, s.timeout)
	slates, err := s.curator.CurateBatch(curateCtx, profiles, pool)
	cancel()
	var runErr error
	if err != nil {
		rep.Partial = true
		if !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			runErr = fmt.Errorf("pass %s: curate: %w", rep.ID, err)
		}
	}

	saveCtx := context.WithoutCancel(ctx)
	for _, sl := range slates {
		if err := s.slates.Save(saveCtx, sl); err != nil {
			rep.Failures++
			log.Warn("Failed to save slate", zap.String("client_id", sl.ClientID()), zap.Error(err))
			continue
		}
		rep.Slates++
	}

	rep.Duration = s.now().Sub(start)
	rep.EmbeddingCalls, rep.EmbeddingTokens = usage.Calls(), usage.Tokens()
	metrics.CurationPassDuration.Observe(rep.Duration.Seconds())
	status := "ok"
	switch {
	case runErr != nil:
		status = "error"
	case rep.Partial:
		status = "partial"
	}
	metrics.CurationPassesTotal.WithLabelValues(status).Inc()

	log.Info("Curation pass finished",
		zap.Int("clients", rep.Clients),
		zap.Int("candidates", rep.Candidates),
		zap.Int("slates", rep.Slates),
		zap.Int("failures", rep.Failures),
		zap.Bool("partial", rep.Partial),
		zap.Int64("embedding_tokens", rep.EmbeddingTokens),
		zap.Duration("duration", rep.Duration),
	)
	return rep, runErr
}

// Arrive adds new candidates to the pool and folds them into every
// client's existing slate without rescoring the rest of the pool.
func (s *Service) Arrive(ctx context.Context, arrivals []resource.Candidate) (Report, error) {
	start := s.now()
	rep := Report{ID: "arrive-" + strconv.FormatInt(start.UnixNano(), 36), Candidates: len(arrivals)}
	if len(arrivals) == 0 {
		return rep, nil
	}
	ctx = logger.WithPass(ctx, s.logger, rep.ID)
	log := logger.FromContext(ctx, s.logger)

	if err := s.candidates.Put(ctx, arrivals...); err != nil {
		return rep, fmt.Errorf("store arrivals: %w", err)
	}
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return rep, fmt.Errorf("load profiles: %w", err)
	}
	rep.Clients = len(profiles)

	for _, c := range profiles {
		existing, err := s.slates.Get(ctx, c.ID())
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			rep.Failures++
			log.Warn("Failed to load slate", zap.String("client_id", c.ID()), zap.Error(err))
			continue
		}
		merged, err := s.curator.Merge(ctx, existing, c, arrivals)
		if err != nil {
			rep.Partial = true
			return rep, fmt.Errorf("merge %s: %w", c.ID(), err)
		}
		if merged.IsEmpty() {
			continue
		}
		if err := s.slates.Save(ctx, merged); err != nil {
			rep.Failures++
			log.Warn("Failed to save slate", zap.String("client_id", c.ID()), zap.Error(err))
			continue
		}
		rep.Slates++
	}

	rep.Duration = s.now().Sub(start)
	log.Info("Arrivals merged",
		zap.Int("arrivals", len(arrivals)),
		zap.Int("slates", rep.Slates),
		zap.Int("failures", rep.Failures),
	)
	return rep, nil
}

// Reconsolidate recomputes one client's slate from the full active pool
// and replaces the stored one, even when the result is empty.
func (s *Service) Reconsolidate(ctx context.Context, clientID string) (domslate.Slate, error) {
	c, err := s.profiles.Get(ctx, clientID)
	if err != nil {
		return domslate.Slate{}, fmt.Errorf("load client: %w", err)
	}
	pool, err := s.candidates.Active(ctx)
	if err != nil {
		return domslate.Slate{}, fmt.Errorf("load candidates: %w", err)
	}
	sl, err := s.curator.Consolidate(ctx, c, pool)
	if err != nil {
		return domslate.Slate{}, fmt.Errorf("consolidate %s: %w", clientID, err)
	}
	if err := s.slates.Save(ctx, sl); err != nil {
		return domslate.Slate{}, fmt.Errorf("save slate: %w", err)
	}
	return sl, nil
}
