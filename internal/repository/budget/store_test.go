package budget

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/kailas-cloud/matchdex/internal/db"
)

type mockStore struct {
	values map[string]int64
	ttls   map[string]time.Duration
	raw    map[string][]byte
	getErr error
	addErr error
}

func newMockStore() *mockStore {
	return &mockStore{values: map[string]int64{}, ttls: map[string]time.Duration{}, raw: map[string][]byte{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if raw, ok := m.raw[key]; ok {
		return raw, nil
	}
	v, ok := m.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(strconv.FormatInt(v, 10)), nil
}

func (m *mockStore) IncrByWithTTL(_ context.Context, key string, val int64, ttl time.Duration) (int64, error) {
	if m.addErr != nil {
		return 0, m.addErr
	}
	m.values[key] += val
	if _, ok := m.ttls[key]; !ok {
		m.ttls[key] = ttl
	}
	return m.values[key], nil
}

func newTestStore(ms *mockStore) *Store {
	s := New(ms, 0)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC) }
	return s
}

func TestIncrBy_ReturnsTotal(t *testing.T) {
	ms := newMockStore()
	s := newTestStore(ms)
	ctx := context.Background()

	daily := "matchdex:budget:openai:daily:2026-10-18"
	if _, err := s.IncrBy(ctx, daily, 100); err != nil {
		t.Fatal(err)
	}
	total, err := s.IncrBy(ctx, daily, 50)
	if err != nil || total != 150 {
		t.Fatalf("expected 150, got %d (%v)", total, err)
	}
	got, err := s.Get(ctx, daily)
	if err != nil || got != 150 {
		t.Fatalf("expected 150, got %d (%v)", got, err)
	}
}

func TestIncrBy_TTLFollowsWindow(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want time.Duration
	}{
		{"day", "matchdex:budget:openai:daily:2026-10-18", 6*time.Hour + DefaultGrace},
		{"month", "matchdex:budget:openai:monthly:2026-10", (13*24+6)*time.Hour + DefaultGrace},
		{"past window", "matchdex:budget:openai:daily:2026-10-01", DefaultGrace},
		{"unparsable", "matchdex:budget:openai:weekly:w42", DefaultGrace},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ms := newMockStore()
			if _, err := newTestStore(ms).IncrBy(context.Background(), tc.key, 1); err != nil {
				t.Fatal(err)
			}
			if ms.ttls[tc.key] != tc.want {
				t.Errorf("ttl = %v, want %v", ms.ttls[tc.key], tc.want)
			}
		})
	}
}

func TestIncrBy_Error(t *testing.T) {
	ms := newMockStore()
	ms.addErr = errors.New("READONLY")
	if _, err := newTestStore(ms).IncrBy(context.Background(), "k", 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestGet_Missing(t *testing.T) {
	got, err := newTestStore(newMockStore()).Get(context.Background(), "missing")
	if err != nil || got != 0 {
		t.Errorf("expected 0, nil; got %d, %v", got, err)
	}
}

func TestGet_Errors(t *testing.T) {
	ms := newMockStore()
	ms.raw["bad"] = []byte("NaN")
	s := newTestStore(ms)
	if _, err := s.Get(context.Background(), "bad"); err == nil {
		t.Error("expected parse error")
	}

	ms.getErr = errors.New("down")
	if _, err := s.Get(context.Background(), "any"); err == nil {
		t.Error("expected store error")
	}
}
