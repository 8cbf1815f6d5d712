// Package vector holds the similarity math shared by scoring, feedback and the semantic index.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Empty, length-mismatched or zero-norm inputs yield 0 so callers never need to pre-check.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push identical vectors slightly past 1.
	return math.Max(-1, math.Min(1, sim))
}

// Dot returns the inner product of a and b, or 0 when lengths differ.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Normalize returns a unit-length copy of v. A zero vector stays zero.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return out
	}
	inv := 1 / math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

// MaxCosine returns the highest cosine similarity between v and any of others.
func MaxCosine(v []float32, others [][]float32) float64 {
	best := math.Inf(-1)
	for _, o := range others {
		if s := Cosine(v, o); s > best {
			best = s
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// Encode serializes v as little-endian float32 bytes.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode parses little-endian float32 bytes produced by Encode.
func Decode(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
