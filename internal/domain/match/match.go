// Package match holds the result of scoring one client against one candidate.
package match

import (
	"math"
	"slices"
)

// Result is an immutable scored candidate with human-readable reasons.
type Result struct {
	candidateID string
	score       int
	reasons     []string
}

// New creates a Result. Negative scores are clamped to zero.
func New(candidateID string, score int, reasons []string) Result {
	if score < 0 {
		score = 0
	}
	return Result{
		candidateID: candidateID,
		score:       score,
		reasons:     slices.Clone(reasons),
	}
}

// CandidateID returns the scored resource identifier.
func (r Result) CandidateID() string { return r.candidateID }

// Score returns the integer score.
func (r Result) Score() int { return r.score }

// Reasons returns a copy of the ordered reasons.
func (r Result) Reasons() []string { return slices.Clone(r.reasons) }

// IsZero reports whether the candidate scored nothing.
func (r Result) IsZero() bool { return r.score == 0 }

// Damped multiplies the score by factor (truncating) and appends reason.
// The score never increases; factor outside [0,1] is clamped.
func (r Result) Damped(factor float64, reason string) Result {
	factor = math.Max(0, math.Min(1, factor))
	reasons := make([]string, 0, len(r.reasons)+1)
	reasons = append(reasons, r.reasons...)
	if reason != "" {
		reasons = append(reasons, reason)
	}
	return Result{
		candidateID: r.candidateID,
		score:       int(float64(r.score) * factor),
		reasons:     reasons,
	}
}
