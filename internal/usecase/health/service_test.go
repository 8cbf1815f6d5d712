package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

type mockIndex struct {
	ready bool
}

func (m *mockIndex) Ready() bool { return m.ready }

// --- Tests ---

func TestCheck(t *testing.T) {
	down := errors.New("down")
	tests := []struct {
		name      string
		dbErr     error
		embErr    error
		ready     bool
		want      Status
		wantIndex CheckResult
	}{
		{name: "all healthy", ready: true, want: Healthy, wantIndex: CheckOK},
		{name: "embedding down", embErr: down, ready: true, want: Degraded, wantIndex: CheckOK},
		{name: "index warming", ready: false, want: Degraded, wantIndex: CheckPending},
		{name: "database down", dbErr: down, embErr: down, ready: true, want: Unhealthy, wantIndex: CheckOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockDBPinger{err: tt.dbErr}, &mockEmbeddingChecker{err: tt.embErr}, &mockIndex{ready: tt.ready})
			r := svc.Check(context.Background())

			if r.Status != tt.want {
				t.Errorf("expected %q, got %q", tt.want, r.Status)
			}
			if r.Checks["index"] != tt.wantIndex {
				t.Errorf("expected index %q, got %q", tt.wantIndex, r.Checks["index"])
			}
			if tt.embErr != nil && r.Checks["embedding"] != CheckError {
				t.Errorf("expected embedding error, got %q", r.Checks["embedding"])
			}
		})
	}
}

func TestCheck_OptionalComponents(t *testing.T) {
	r := New(&mockDBPinger{}, nil, nil).Check(context.Background())
	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 1 {
		t.Errorf("expected only database check, got %v", r.Checks)
	}
}

func TestReady(t *testing.T) {
	if !New(&mockDBPinger{}, nil, &mockIndex{ready: true}).Ready(context.Background()) {
		t.Error("expected ready")
	}
	if New(&mockDBPinger{}, nil, &mockIndex{}).Ready(context.Background()) {
		t.Error("expected not ready before first index publish")
	}
	if New(&mockDBPinger{err: errors.New("x")}, nil, nil).Ready(context.Background()) {
		t.Error("expected not ready with database down")
	}
}
