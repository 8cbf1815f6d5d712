package match

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain/client"
	dommatch "github.com/kailas-cloud/matchdex/internal/domain/match"
	"github.com/kailas-cloud/matchdex/internal/domain/resource"
	"github.com/kailas-cloud/matchdex/internal/domain/vector"
	"github.com/kailas-cloud/matchdex/internal/domain/vertical"
	"github.com/kailas-cloud/matchdex/internal/logger"
	"github.com/kailas-cloud/matchdex/internal/metrics"
)

// Service scores one client against one candidate and applies the
// dismissed-feedback penalty. Collaborator failures degrade the score
// (no semantic bonus, no penalty) and are never returned.
type Service struct {
	cfg      Config
	embed    Embedder
	feedback FeedbackReader
	logger   *zap.Logger
}

// New creates a scorer. cfg must be valid; see Config.Validate.
func New(cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, logger: logger}
}

// WithEmbedder enables on-demand embedding of candidate remarks.
func (s *Service) WithEmbedder(e Embedder) *Service {
	s.embed = e
	return s
}

// WithFeedback enables the dismissed-feedback penalty.
func (s *Service) WithFeedback(f FeedbackReader) *Service {
	s.feedback = f
	return s
}

// Score evaluates res for c under policy.
func (s *Service) Score(
	ctx context.Context, c client.Profile, res resource.Candidate, policy vertical.ScoringPolicy,
) dommatch.Result {
	log := logger.FromContext(ctx, s.logger).With(
		zap.String("client_id", c.ID()),
		zap.String("candidate_id", res.ID()),
	)

	emb := s.candidateEmbedding(ctx, res, log)

	out := policy.Score(c, vertical.Candidate{
		EventType:  res.EventType(),
		Attributes: res.Attributes(),
		Remarks:    res.Remarks(),
		Embedding:  emb,
	})
	switch {
	case out.DataError:
		metrics.MatchKnockoutsTotal.WithLabelValues(policy.Name(), "data_error").Inc()
		log.Debug("Candidate has unparseable data", zap.Strings("reasons", out.Reasons))
	case out.Knockout:
		metrics.MatchKnockoutsTotal.WithLabelValues(policy.Name(), "knockout").Inc()
	}

	result := dommatch.New(res.ID(), out.Score, out.Reasons)
	if out.Score > 0 && len(emb) > 0 && s.similarToDismissed(ctx, c.ID(), emb, log) {
		result = result.Damped(s.cfg.Damping, PenaltyReason)
		metrics.MatchPenaltiesTotal.WithLabelValues(policy.Name()).Inc()
	}

	metrics.MatchScores.WithLabelValues(policy.Name()).Observe(float64(result.Score()))
	log.Debug("Candidate scored",
		zap.Int("score", result.Score()),
		zap.Strings("reasons", result.Reasons()),
	)
	return result
}

// EmbedCandidates attaches remark embeddings to candidates that have none,
// one provider call per candidate. Candidates whose embedding fails are
// returned unchanged. The input slice is not modified.
func (s *Service) EmbedCandidates(ctx context.Context, candidates []resource.Candidate) []resource.Candidate {
	out := slices.Clone(candidates)
	if s.embed == nil {
		return out
	}
	log := logger.FromContext(ctx, s.logger)
	for i, res := range out {
		if len(res.Embedding()) > 0 {
			continue
		}
		if emb := s.candidateEmbedding(ctx, res, log.With(zap.String("candidate_id", res.ID()))); len(emb) > 0 {
			out[i] = res.WithEmbedding(emb)
		}
	}
	return out
}

func (s *Service) candidateEmbedding(ctx context.Context, res resource.Candidate, log *zap.Logger) []float32 {
	if emb := res.Embedding(); len(emb) > 0 {
		return emb
	}
	if s.embed == nil || strings.TrimSpace(res.Remarks()) == "" {
		return nil
	}
	embResult, err := s.embed.Embed(ctx, res.Remarks())
	if err != nil {
		metrics.MatchDegradedTotal.WithLabelValues("embedding").Inc()
		log.Warn("Candidate embedding unavailable, scoring without semantic signal", zap.Error(err))
		return nil
	}
	return embResult.Embedding
}

func (s *Service) similarToDismissed(ctx context.Context, clientID string, emb []float32, log *zap.Logger) bool {
	if s.feedback == nil {
		return false
	}
	dismissed, err := s.feedback.DismissedEmbeddings(ctx, clientID)
	if err != nil {
		metrics.MatchDegradedTotal.WithLabelValues("feedback").Inc()
		log.Warn("Dismissed feedback unavailable, skipping penalty", zap.Error(err))
		return false
	}
	return len(dismissed) > 0 && vector.MaxCosine(emb, dismissed) > s.cfg.DismissedSimilarity
}
