package match

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/attribute"
	"github.com/kailas-cloud/matchdex/internal/domain/client"
	"github.com/kailas-cloud/matchdex/internal/domain/resource"
	"github.com/kailas-cloud/matchdex/internal/domain/vector"
	"github.com/kailas-cloud/matchdex/internal/domain/vertical/realestate"
)

// --- Mocks ---

type mockEmbedder struct {
	vec    []float32
	err    error
	called int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockFeedback struct {
	dismissed [][]float32
	err       error
	called    int
}

func (m *mockFeedback) DismissedEmbeddings(_ context.Context, _ string) ([][]float32, error) {
	m.called++
	return m.dismissed, m.err
}

// --- Helpers ---

func buyer(t *testing.T, prefs map[string]attribute.Value) client.Profile {
	t.Helper()
	c, err := client.New("c1", attribute.NewSet(prefs), nil, nil, "", []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func listing(t *testing.T, attrs map[string]attribute.Value, remarks string, emb []float32) resource.Candidate {
	t.Helper()
	r, err := resource.New("L1", resource.KindListing, "new_listing", attribute.NewSet(attrs), remarks, emb)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// --- Tests ---

func TestScore_UsesCachedEmbedding(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0, 1, 0}}
	svc := New(DefaultConfig(), nil).WithEmbedder(emb)

	r := svc.Score(context.Background(), buyer(t, nil), listing(t, nil, "remarks", []float32{1, 0, 0}), realestate.Default())

	if emb.called != 0 {
		t.Error("embedder must not be called when the candidate has a cached embedding")
	}
	if len(r.Reasons()) != 2 {
		t.Errorf("expected base + semantic reasons, got %v", r.Reasons())
	}
}

func TestScore_EmbedsRemarks(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1, 0, 0}}
	svc := New(DefaultConfig(), nil).WithEmbedder(emb)

	r := svc.Score(context.Background(), buyer(t, nil), listing(t, nil, "Sunny home", nil), realestate.Default())

	if emb.called != 1 {
		t.Fatalf("expected one embed call, got %d", emb.called)
	}
	w := realestate.DefaultWeights()
	if r.Score() != int(w.BuyerBase+w.SemanticWeight) {
		t.Errorf("expected base + full semantic bonus, got %d", r.Score())
	}
}

func TestScore_EmbedderFailureDegrades(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	emb := &mockEmbedder{err: errors.New("provider down")}
	fb := &mockFeedback{dismissed: [][]float32{{1, 0, 0}}}
	svc := New(DefaultConfig(), zap.New(core)).WithEmbedder(emb).WithFeedback(fb)

	r := svc.Score(context.Background(), buyer(t, nil), listing(t, nil, "Sunny home", nil), realestate.Default())

	if r.Score() != int(realestate.DefaultWeights().BuyerBase) {
		t.Errorf("expected base score without semantic bonus, got %d", r.Score())
	}
	if fb.called != 0 {
		t.Error("penalty lookup requires a candidate embedding")
	}
	if logs.FilterMessageSnippet("embedding unavailable").Len() != 1 {
		t.Error("expected a warn log for the degraded embedding")
	}
}

func TestScore_PenaltyApplied(t *testing.T) {
	fb := &mockFeedback{dismissed: [][]float32{{0, 0, 1}, {0.99, 0.01, 0}}}
	svc := New(DefaultConfig(), nil).WithFeedback(fb)

	c := buyer(t, nil)
	cand := listing(t, nil, "", []float32{1, 0, 0})
	raw := New(DefaultConfig(), nil).Score(context.Background(), c, cand, realestate.Default())
	r := svc.Score(context.Background(), c, cand, realestate.Default())

	if want := int(float64(raw.Score()) * 0.1); r.Score() != want {
		t.Errorf("expected damped score %d, got %d", want, r.Score())
	}
	reasons := r.Reasons()
	if reasons[len(reasons)-1] != PenaltyReason {
		t.Errorf("expected penalty reason last, got %v", reasons)
	}
}

func TestScore_PenaltyMonotonic(t *testing.T) {
	candidate := []float32{1, 0, 0}
	atThreshold := [][]float32{{0.85, 0.5267827, 0}}
	tests := []struct {
		name      string
		dismissed [][]float32
		threshold float64
		damped    bool
	}{
		{"similar", [][]float32{{1, 0, 0}}, 0, true},
		{"similar among many", [][]float32{{0, 1, 0}, {0.99, 0.01, 0}}, 0, true},
		{"dissimilar", [][]float32{{0, 1, 0}}, 0, false},
		{"nothing dismissed", nil, 0, false},
		{"exactly at threshold", atThreshold, vector.Cosine(candidate, atThreshold[0]), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tc.threshold > 0 {
				cfg.DismissedSimilarity = tc.threshold
			}
			c := buyer(t, nil)
			cand := listing(t, nil, "", candidate)
			raw := New(cfg, nil).Score(context.Background(), c, cand, realestate.Default())
			got := New(cfg, nil).
				WithFeedback(&mockFeedback{dismissed: tc.dismissed}).
				Score(context.Background(), c, cand, realestate.Default())

			if !tc.damped {
				if got.Score() != raw.Score() {
					t.Errorf("score changed from %d to %d without a similar dismissal", raw.Score(), got.Score())
				}
				return
			}
			if got.Score() >= raw.Score() {
				t.Errorf("penalty must lower the score, raw %d got %d", raw.Score(), got.Score())
			}
			if want := int(float64(raw.Score()) * cfg.Damping); got.Score() != want {
				t.Errorf("damped score = %d, want %d", got.Score(), want)
			}
		})
	}
}

func TestEmbedCandidates(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0, 1, 0}}
	svc := New(DefaultConfig(), nil).WithEmbedder(emb)

	cached := listing(t, nil, "cached", []float32{1, 0, 0})
	fresh, err := resource.New("L2", resource.KindListing, "", attribute.Set{}, "Sunny home", nil)
	if err != nil {
		t.Fatal(err)
	}
	blank, err := resource.New("L3", resource.KindListing, "", attribute.Set{}, "  ", nil)
	if err != nil {
		t.Fatal(err)
	}
	in := []resource.Candidate{cached, fresh, blank}

	out := svc.EmbedCandidates(context.Background(), in)

	if emb.called != 1 {
		t.Fatalf("expected one embed call, got %d", emb.called)
	}
	if out[0].Embedding()[0] != 1 {
		t.Error("cached embedding must be kept")
	}
	if len(out[1].Embedding()) != 3 {
		t.Error("remarks embedding must be attached")
	}
	if out[2].Embedding() != nil {
		t.Error("blank remarks must stay unembedded")
	}
	if in[1].Embedding() != nil {
		t.Error("input slice must not be modified")
	}
}

func TestEmbedCandidates_FailureLeavesCandidate(t *testing.T) {
	svc := New(DefaultConfig(), nil).WithEmbedder(&mockEmbedder{err: errors.New("provider down")})
	out := svc.EmbedCandidates(context.Background(), []resource.Candidate{listing(t, nil, "Sunny home", nil)})
	if len(out) != 1 || out[0].Embedding() != nil {
		t.Errorf("failed embedding must leave the candidate unembedded, got %v", out)
	}
}

func TestScore_KnockoutStaysZero(t *testing.T) {
	fb := &mockFeedback{dismissed: [][]float32{{1, 0, 0}}}
	svc := New(DefaultConfig(), nil).WithFeedback(fb)

	c := buyer(t, map[string]attribute.Value{realestate.PrefBudgetMax: attribute.Number(500000)})
	cand := listing(t, map[string]attribute.Value{realestate.AttrListPrice: attribute.Number(550000)}, "", []float32{1, 0, 0})
	r := svc.Score(context.Background(), c, cand, realestate.Default())

	if r.Score() != 0 {
		t.Errorf("expected 0, got %d", r.Score())
	}
	if reasons := r.Reasons(); len(reasons) != 1 || reasons[0] != "Deal-Breaker: Over Budget" {
		t.Errorf("knockout reason must stand alone, got %v", reasons)
	}
	if fb.called != 0 {
		t.Error("zero scores must skip the feedback lookup")
	}
}

func TestScore_FeedbackFailureSkipsPenalty(t *testing.T) {
	svc := New(DefaultConfig(), nil).WithFeedback(&mockFeedback{err: errors.New("timeout")})

	c := buyer(t, nil)
	cand := listing(t, nil, "", []float32{1, 0, 0})
	r := svc.Score(context.Background(), c, cand, realestate.Default())

	for _, reason := range r.Reasons() {
		if reason == PenaltyReason {
			t.Fatal("penalty must be skipped when feedback is unavailable")
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"similarity zero", Config{DismissedSimilarity: 0, Damping: 0.1}, true},
		{"similarity above one", Config{DismissedSimilarity: 1.1, Damping: 0.1}, true},
		{"damping one", Config{DismissedSimilarity: 0.85, Damping: 1}, true},
		{"damping negative", Config{DismissedSimilarity: 0.85, Damping: -0.1}, true},
		{"damping zero", Config{DismissedSimilarity: 0.85, Damping: 0}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
