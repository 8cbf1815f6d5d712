package matchdex

import (
	"context"
	"strings"

	domclient "github.com/kailas-cloud/matchdex/internal/domain/client"
	domfeedback "github.com/kailas-cloud/matchdex/internal/domain/feedback"
	dommatch "github.com/kailas-cloud/matchdex/internal/domain/match"
	"github.com/kailas-cloud/matchdex/internal/domain/resource"
	domslate "github.com/kailas-cloud/matchdex/internal/domain/slate"
	"github.com/kailas-cloud/matchdex/internal/domain/vertical"
	profileuc "github.com/kailas-cloud/matchdex/internal/usecase/profile"
)

// --- scoreUseCase mock ---

type mockScorer struct {
	fn func(ctx context.Context, c domclient.Profile, res resource.Candidate) dommatch.Result
}

func (m *mockScorer) Score(
	ctx context.Context, c domclient.Profile, res resource.Candidate, _ vertical.ScoringPolicy,
) dommatch.Result {
	return m.fn(ctx, c, res)
}

// --- curateUseCase mock ---

type mockCurator struct {
	curateFn      func(ctx context.Context, c domclient.Profile, cands []resource.Candidate) (domslate.Slate, bool)
	batchFn       func(ctx context.Context, cs []domclient.Profile, cands []resource.Candidate) ([]domslate.Slate, error)
	consolidateFn func(ctx context.Context, c domclient.Profile, pool []resource.Candidate) (domslate.Slate, error)
	mergeFn       func(ctx context.Context, existing domslate.Slate, c domclient.Profile, arrivals []resource.Candidate) (domslate.Slate, error)
	released      bool
}

func (m *mockCurator) Curate(
	ctx context.Context, c domclient.Profile, cands []resource.Candidate,
) (domslate.Slate, bool) {
	return m.curateFn(ctx, c, cands)
}

func (m *mockCurator) CurateBatch(
	ctx context.Context, cs []domclient.Profile, cands []resource.Candidate,
) ([]domslate.Slate, error) {
	return m.batchFn(ctx, cs, cands)
}

func (m *mockCurator) Consolidate(
	ctx context.Context, c domclient.Profile, pool []resource.Candidate,
) (domslate.Slate, error) {
	return m.consolidateFn(ctx, c, pool)
}

func (m *mockCurator) Merge(
	ctx context.Context, existing domslate.Slate, c domclient.Profile, arrivals []resource.Candidate,
) (domslate.Slate, error) {
	return m.mergeFn(ctx, existing, c, arrivals)
}

func (m *mockCurator) Release() { m.released = true }

// --- profileUseCase mock ---

type mockProfiles struct {
	fn func(ctx context.Context, in profileuc.Input) ([]float32, error)
}

func (m *mockProfiles) Refresh(ctx context.Context, in profileuc.Input) ([]float32, error) {
	return m.fn(ctx, in)
}

// --- feedbackUseCase mock ---

type mockFeedback struct {
	dismissed   []domfeedback.Dismissed
	undismissed []string
	err         error
}

func (m *mockFeedback) Dismiss(_ context.Context, d domfeedback.Dismissed) error {
	if m.err != nil {
		return m.err
	}
	m.dismissed = append(m.dismissed, d)
	return nil
}

func (m *mockFeedback) Undismiss(_ context.Context, clientID, candidateID string) error {
	if m.err != nil {
		return m.err
	}
	m.undismissed = append(m.undismissed, clientID+"/"+candidateID)
	return nil
}

// --- public Embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

// keywordEmbedder maps texts onto fixed axes by keyword so similarity is predictable.
func keywordEmbedder(axes ...string) *mockEmbedder {
	return &mockEmbedder{fn: func(_ context.Context, text string) (EmbeddingResult, error) {
		vec := make([]float32, len(axes))
		for i, a := range axes {
			if strings.Contains(text, a) {
				vec[i] = 1
			}
		}
		return EmbeddingResult{Embedding: vec, TotalTokens: len(text)}, nil
	}}
}
