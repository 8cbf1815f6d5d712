package matchdex

import "context"

// Embedder converts text to vector embeddings.
// Required for semantic search and profile refresh; scoring works without
// it and simply skips the semantic bonus.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// FeedbackSource returns the embeddings of candidates a client dismissed.
type FeedbackSource interface {
	DismissedEmbeddings(ctx context.Context, clientID string) ([][]float32, error)
}
