package semantic

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/attribute"
	"github.com/kailas-cloud/matchdex/internal/domain/client"
	"github.com/kailas-cloud/matchdex/internal/index"
)

// --- Mocks ---

type mockEmbedder struct {
	vec []float32
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: m.vec}, m.err
}

type mockLister struct {
	profiles []client.Profile
	err      error
}

func (m *mockLister) List(_ context.Context) ([]client.Profile, error) {
	return m.profiles, m.err
}

// --- Helpers ---

func profile(t *testing.T, id string, emb []float32) client.Profile {
	t.Helper()
	p, err := client.New(id, attribute.Set{}, nil, nil, "", emb, 0)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// --- Tests ---

func TestSemanticSearch(t *testing.T) {
	svc := New(index.New(), &mockEmbedder{vec: []float32{1, 0}}, 0, nil)
	err := svc.RebuildIndex(context.Background(), []client.Profile{
		profile(t, "far", []float32{0, 1}),
		profile(t, "near", []float32{1, 0.1}),
		profile(t, "mid", []float32{1, 0.9}),
	})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	ids, err := svc.SemanticSearch(context.Background(), "first-time buyer near parks", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !slices.Equal(ids, []string{"near", "mid"}) {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestSemanticSearch_Unavailable(t *testing.T) {
	svc := New(index.New(), &mockEmbedder{vec: []float32{1, 0}}, 0, nil)

	ids, err := svc.SemanticSearch(context.Background(), "anything", 3)
	if err != nil || len(ids) != 0 {
		t.Errorf("unbuilt index must yield no ids and no error, got %v %v", ids, err)
	}
}

func TestSemanticSearch_DimMismatch(t *testing.T) {
	svc := New(index.New(), &mockEmbedder{vec: []float32{1, 0, 0}}, 0, nil)
	_ = svc.RebuildIndex(context.Background(), []client.Profile{profile(t, "a", []float32{1, 0})})

	ids, err := svc.SemanticSearch(context.Background(), "anything", 3)
	if err != nil || len(ids) != 0 {
		t.Errorf("expected empty result, got %v %v", ids, err)
	}
}

func TestSemanticSearch_EmbedderError(t *testing.T) {
	svc := New(index.New(), &mockEmbedder{err: errors.New("quota")}, 0, nil)

	_, err := svc.SemanticSearch(context.Background(), "anything", 3)
	if !errors.Is(err, domain.ErrCollaborator) {
		t.Errorf("expected ErrCollaborator, got %v", err)
	}
}

func TestSemanticSearch_BlankOrZeroK(t *testing.T) {
	emb := &mockEmbedder{err: errors.New("must not be called")}
	svc := New(index.New(), emb, 0, nil)

	if ids, err := svc.SemanticSearch(context.Background(), "  ", 3); err != nil || ids != nil {
		t.Errorf("blank query: %v %v", ids, err)
	}
	if ids, err := svc.SemanticSearch(context.Background(), "buyer", 0); err != nil || ids != nil {
		t.Errorf("k=0: %v %v", ids, err)
	}
}

func TestRebuildFromStore(t *testing.T) {
	idx := index.New()
	svc := New(idx, &mockEmbedder{}, 0, nil).WithProfiles(&mockLister{
		profiles: []client.Profile{profile(t, "a", []float32{1, 0}), profile(t, "b", nil)},
	})

	if err := svc.RebuildFromStore(context.Background()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if idx.Size() != 1 {
		t.Errorf("expected 1 indexed profile, got %d", idx.Size())
	}
}

func TestRebuildFromStore_Errors(t *testing.T) {
	svc := New(index.New(), &mockEmbedder{}, 0, nil)
	if err := svc.RebuildFromStore(context.Background()); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig without a lister, got %v", err)
	}

	listErr := errors.New("redis down")
	svc.WithProfiles(&mockLister{err: listErr})
	if err := svc.RebuildFromStore(context.Background()); !errors.Is(err, listErr) {
		t.Errorf("expected list error, got %v", err)
	}
}
