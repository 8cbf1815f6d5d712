package matchdex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestZapLogger_ForwardsToSlog(t *testing.T) {
	var buf bytes.Buffer
	l := zapLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	l.Debug("below threshold")
	l.With(zap.String("client_id", "c1")).Warn("degraded", zap.Error(errors.New("boom")), zap.Int("attempt", 2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	want := map[string]any{
		"level":     "WARN",
		"msg":       "degraded",
		"client_id": "c1",
		"error":     "boom",
		"attempt":   float64(2),
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
}

func TestZapLogger_Levels(t *testing.T) {
	tests := []struct {
		zap  zapcore.Level
		slog slog.Level
	}{
		{zapcore.DebugLevel, slog.LevelDebug},
		{zapcore.InfoLevel, slog.LevelInfo},
		{zapcore.WarnLevel, slog.LevelWarn},
		{zapcore.ErrorLevel, slog.LevelError},
		{zapcore.DPanicLevel, slog.LevelError},
	}
	for _, tc := range tests {
		if got := slogLevel(tc.zap); got != tc.slog {
			t.Errorf("slogLevel(%s) = %s, want %s", tc.zap, got, tc.slog)
		}
	}
}

func TestZapLogger_NilDiscards(t *testing.T) {
	if zapLogger(nil).Core().Enabled(zapcore.ErrorLevel) {
		t.Error("nil slog logger must yield a disabled zap logger")
	}
}

func TestEngine_LogsDegradedScoring(t *testing.T) {
	var buf bytes.Buffer
	failing := &mockEmbedder{fn: func(context.Context, string) (EmbeddingResult, error) {
		return EmbeddingResult{}, errors.New("provider down")
	}}
	e := newTestEngine(t,
		WithEmbedder(failing),
		WithLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))),
	)

	m, err := e.Score(context.Background(), Client{ID: "c1"}, Candidate{ID: "l1", Remarks: "Bright corner unit"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if m.Score == 0 {
		t.Errorf("scoring must degrade, not fail: %+v", m)
	}
	if !strings.Contains(buf.String(), "Candidate embedding unavailable") {
		t.Errorf("expected the degraded-scoring warning in the caller's log, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"candidate_id":"l1"`) {
		t.Errorf("expected scoring context fields, got %q", buf.String())
	}
}
