package match

import (
	"fmt"

	"github.com/kailas-cloud/matchdex/internal/domain"
)

// PenaltyReason is appended to results damped by the feedback penalty.
const PenaltyReason = "Penalty: Similar to a previously dismissed match"

// Config holds feedback-penalty thresholds.
type Config struct {
	// DismissedSimilarity is the cosine above which a candidate counts as
	// similar to a dismissed one. Must be in (0, 1].
	DismissedSimilarity float64
	// Damping multiplies penalized scores. Must be in [0, 1).
	Damping float64
}

// DefaultConfig returns the stock penalty thresholds.
func DefaultConfig() Config {
	return Config{DismissedSimilarity: 0.85, Damping: 0.1}
}

// Validate checks threshold ranges.
func (c Config) Validate() error {
	if c.DismissedSimilarity <= 0 || c.DismissedSimilarity > 1 {
		return fmt.Errorf("dismissed similarity must be in (0,1]: %w", domain.ErrInvalidConfig)
	}
	if c.Damping < 0 || c.Damping >= 1 {
		return fmt.Errorf("damping must be in [0,1): %w", domain.ErrInvalidConfig)
	}
	return nil
}
