package vector

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1},
		{"empty", nil, nil, 0},
		{"one empty", []float32{1}, nil, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"zero norm", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Cosine(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCosine_Bounded(t *testing.T) {
	a := []float32{0.1, 0.7, 0.3, 0.9}
	got := Cosine(a, a)
	if got > 1 || got < -1 {
		t.Fatalf("cosine out of range: %v", got)
	}
}

func TestNormalize(t *testing.T) {
	n := Normalize([]float32{3, 4})
	if math.Abs(float64(n[0])-0.6) > 1e-6 || math.Abs(float64(n[1])-0.8) > 1e-6 {
		t.Fatalf("unexpected normalized vector: %v", n)
	}

	zero := Normalize([]float32{0, 0, 0})
	for _, x := range zero {
		if x != 0 {
			t.Fatalf("zero vector must stay zero, got %v", zero)
		}
	}

	src := []float32{1, 1}
	_ = Normalize(src)
	if src[0] != 1 {
		t.Fatal("Normalize must not mutate its input")
	}
}

func TestDot(t *testing.T) {
	if got := Dot([]float32{1, 2}, []float32{3, 4}); got != 11 {
		t.Errorf("Dot = %v, want 11", got)
	}
	if got := Dot([]float32{1}, []float32{3, 4}); got != 0 {
		t.Errorf("Dot on mismatch = %v, want 0", got)
	}
}

func TestMaxCosine(t *testing.T) {
	v := []float32{1, 0}
	others := [][]float32{{0, 1}, {1, 0.1}, {-1, 0}}
	got := MaxCosine(v, others)
	if got < 0.99 {
		t.Errorf("MaxCosine = %v, want ~0.995", got)
	}
	if MaxCosine(v, nil) != 0 {
		t.Error("MaxCosine with no others must be 0")
	}
}

func TestEncodeDecode(t *testing.T) {
	v := []float32{0.25, -1.5, 3}
	got, err := Decode(Encode(v))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(v) || got[1] != -1.5 {
		t.Fatalf("decoded %v, want %v", got, v)
	}

	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated data")
	}
}
