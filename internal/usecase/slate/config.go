package slate

import (
	"fmt"

	"github.com/kailas-cloud/matchdex/internal/domain"
	domslate "github.com/kailas-cloud/matchdex/internal/domain/slate"
)

// Config holds curation thresholds.
type Config struct {
	MinScore int // results below this never enter a slate
	Cap      int // maximum entries per slate
	Workers  int // concurrent clients in batch mode
}

// DefaultConfig returns stock curation settings.
func DefaultConfig() Config {
	return Config{MinScore: 30, Cap: domslate.DefaultCap, Workers: 8}
}

// Validate checks curation settings.
func (c Config) Validate() error {
	if c.MinScore < 1 {
		return fmt.Errorf("min score must be positive: %w", domain.ErrInvalidConfig)
	}
	if c.Cap < 1 {
		return fmt.Errorf("slate cap must be positive: %w", domain.ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive: %w", domain.ErrInvalidConfig)
	}
	return nil
}
