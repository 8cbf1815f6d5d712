package domain

// KeyPrefix namespaces every storage key written by the engine adapters.
const KeyPrefix = "matchdex:"

// VectorConfig holds deployment-wide vectorization settings.
type VectorConfig struct {
	Model      string
	Dimensions int
	// DocumentInstruction is prepended to composite client profiles and candidate remarks.
	DocumentInstruction string
	// QueryInstruction is prepended to natural-language client search queries.
	QueryInstruction string
}

// DefaultVectorConfig returns the default configuration for text-embedding-3-small.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:      "text-embedding-3-small",
		Dimensions: 1536,
	}
}
