package feedback

import (
	"context"
	"errors"
	"slices"
	"testing"

	domfeedback "github.com/kailas-cloud/matchdex/internal/domain/feedback"
)

type mockStore struct {
	hashes map[string]map[string]string
	getErr error
}

func newMockStore() *mockStore { return &mockStore{hashes: map[string]map[string]string{}} }

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.hashes[key], nil
}

func (m *mockStore) HDel(_ context.Context, key string, fields ...string) error {
	for _, f := range fields {
		delete(m.hashes[key], f)
	}
	return nil
}

func dismissed(t *testing.T, candidateID string, vec []float32, at int64) domfeedback.Dismissed {
	t.Helper()
	d, err := domfeedback.New("c1", candidateID, "c1", vec, at)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDismiss_Embeddings(t *testing.T) {
	repo := New(newMockStore())
	ctx := context.Background()

	_ = repo.Dismiss(ctx, dismissed(t, "L2", []float32{0, 1}, 200))
	_ = repo.Dismiss(ctx, dismissed(t, "L1", []float32{1, 0}, 100))

	got, err := repo.DismissedEmbeddings(ctx, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || !slices.Equal(got[0], []float32{1, 0}) || !slices.Equal(got[1], []float32{0, 1}) {
		t.Errorf("expected oldest first, got %v", got)
	}

	list, _ := repo.List(ctx, "c1")
	if list[0].SlateID() != "c1" || list[0].CreatedAt() != 100 {
		t.Errorf("metadata lost: %+v", list[0])
	}
}

func TestDismiss_SameCandidateOverwrites(t *testing.T) {
	repo := New(newMockStore())
	ctx := context.Background()

	_ = repo.Dismiss(ctx, dismissed(t, "L1", []float32{1, 0}, 100))
	_ = repo.Dismiss(ctx, dismissed(t, "L1", []float32{0, 1}, 200))

	got, _ := repo.DismissedEmbeddings(ctx, "c1")
	if len(got) != 1 || !slices.Equal(got[0], []float32{0, 1}) {
		t.Errorf("expected single latest dismissal, got %v", got)
	}
}

func TestDismissedEmbeddings_None(t *testing.T) {
	got, err := New(newMockStore()).DismissedEmbeddings(context.Background(), "nobody")
	if err != nil || got != nil {
		t.Errorf("expected nil, nil; got %v, %v", got, err)
	}
}

func TestUndismiss(t *testing.T) {
	repo := New(newMockStore())
	ctx := context.Background()
	_ = repo.Dismiss(ctx, dismissed(t, "L1", []float32{1, 0}, 100))

	if err := repo.Undismiss(ctx, "c1", "L1"); err != nil {
		t.Fatalf("undismiss: %v", err)
	}
	if got, _ := repo.DismissedEmbeddings(ctx, "c1"); len(got) != 0 {
		t.Errorf("expected no dismissals, got %v", got)
	}
}

func TestDismissedEmbeddings_StoreError(t *testing.T) {
	ms := newMockStore()
	ms.getErr = errors.New("connection refused")
	if _, err := New(ms).DismissedEmbeddings(context.Background(), "c1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDismissedEmbeddings_CorruptEntry(t *testing.T) {
	ms := newMockStore()
	ms.hashes[feedbackKey("c1")] = map[string]string{"L1": "{not json"}
	if _, err := New(ms).DismissedEmbeddings(context.Background(), "c1"); err == nil {
		t.Fatal("expected decode error")
	}
}
