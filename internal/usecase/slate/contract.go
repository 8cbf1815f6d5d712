package slate

import (
	"context"

	"github.com/kailas-cloud/matchdex/internal/domain/client"
	dommatch "github.com/kailas-cloud/matchdex/internal/domain/match"
	"github.com/kailas-cloud/matchdex/internal/domain/resource"
	"github.com/kailas-cloud/matchdex/internal/domain/vertical"
)

// Scorer scores one client against one candidate.
type Scorer interface {
	Score(ctx context.Context, c client.Profile, res resource.Candidate, policy vertical.ScoringPolicy) dommatch.Result
}

// CandidateEmbedder is implemented by scorers that can embed candidates up
// front, so a batch embeds each candidate once instead of once per client.
type CandidateEmbedder interface {
	EmbedCandidates(ctx context.Context, candidates []resource.Candidate) []resource.Candidate
}
