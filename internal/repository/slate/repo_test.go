package slate

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/matchdex/internal/db"
	"github.com/kailas-cloud/matchdex/internal/domain"
	dommatch "github.com/kailas-cloud/matchdex/internal/domain/match"
	domslate "github.com/kailas-cloud/matchdex/internal/domain/slate"
)

type mockStore struct {
	values map[string][]byte
	setErr error
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func TestSaveGet(t *testing.T) {
	repo := New(&mockStore{values: map[string][]byte{}})
	ctx := context.Background()

	s := domslate.Rank("c1", []dommatch.Result{
		dommatch.New("L1", 40, []string{"Within budget"}),
		dommatch.New("L2", 90, []string{"Semantic match"}),
		dommatch.New("L3", 10, nil),
	}, 2)
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !slices.Equal(got.CandidateIDs(), []string{"L2", "L1"}) {
		t.Errorf("expected [L2 L1], got %v", got.CandidateIDs())
	}
	if got.Cap() != 2 || got.TotalConsidered() != 3 {
		t.Errorf("cap/total lost: %d/%d", got.Cap(), got.TotalConsidered())
	}
	if r := got.Entries()[0].Reasons(); len(r) != 1 || r[0] != "Semantic match" {
		t.Errorf("reasons lost: %v", r)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := New(&mockStore{values: map[string][]byte{}})
	if _, err := repo.Get(context.Background(), "c1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_CorruptValue(t *testing.T) {
	repo := New(&mockStore{values: map[string][]byte{slateKey("c1"): []byte("{")}})
	if _, err := repo.Get(context.Background(), "c1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSave_StoreError(t *testing.T) {
	repo := New(&mockStore{values: map[string][]byte{}, setErr: errors.New("READONLY")})
	if err := repo.Save(context.Background(), domslate.Empty("c1", 5)); err == nil {
		t.Fatal("expected error")
	}
}
