package client

import (
	"context"
	"testing"
	"time"
)

// mockStore is an in-memory implementation of the consumer interface.
type mockStore struct {
	hashes    map[string]map[string]string
	lists     map[string][]string
	hsetErr   error
	scanErr   error
	hsetCalls int
}

func newMockStore() *mockStore {
	return &mockStore{hashes: make(map[string]map[string]string), lists: make(map[string][]string)}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.hsetCalls++
	if m.hsetErr != nil {
		return m.hsetErr
	}
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	out := make(map[string]string)
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i], _ = m.HGetAll(ctx, k)
	}
	return out, nil
}

func (m *mockStore) HDel(_ context.Context, key string, fields ...string) error {
	for _, f := range fields {
		delete(m.hashes[key], f)
	}
	return nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.hashes, k)
		delete(m.lists, k)
	}
	return nil
}

func (m *mockStore) AppendCapped(_ context.Context, key string, limit int, values ...string) error {
	l := append(m.lists[key], values...)
	if limit > 0 && len(l) > limit {
		l = l[len(l)-limit:]
	}
	m.lists[key] = l
	return nil
}

func (m *mockStore) Range(_ context.Context, key string) ([]string, error) {
	return append([]string(nil), m.lists[key]...), nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.hashes[key]
	return ok, nil
}

func (m *mockStore) Scan(_ context.Context, _ string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	keys := make([]string, 0, len(m.hashes))
	for k := range m.hashes {
		keys = append(keys, k)
	}
	return keys, nil
}

func newTestRepo(t *testing.T, dim int) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	repo := New(ms, dim)
	repo.now = func() time.Time { return time.UnixMilli(1760000000000) }
	return repo, ms
}
