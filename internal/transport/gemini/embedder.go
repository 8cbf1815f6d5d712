// Package gemini embeds text with the Gemini embedding models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/metrics"
)

const (
	defaultModel    = "gemini-embedding-001"
	defaultTaskType = "SEMANTIC_SIMILARITY"
	provider        = "gemini"
)

// Config holds the Gemini embedding settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	TaskType   string
	Logger     *zap.Logger
}

// Embedder implements domain.Embedder on the Gemini API.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int
	taskType   string
	logger     *zap.Logger
}

// NewEmbedder creates a Gemini embedding provider.
func NewEmbedder(ctx context.Context, cfg *Config) (*Embedder, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	taskType := cfg.TaskType
	if taskType == "" {
		taskType = defaultTaskType
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:     client,
		model:      model,
		dimensions: cfg.Dimensions,
		taskType:   taskType,
		logger:     logger,
	}, nil
}

// Embed vectorizes one text. The Gemini API reports no token usage, so
// TotalTokens is zero and the budget tracker does not count these calls.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding input: %w", domain.ErrEmbeddingProviderError)
	}

	cfg := &genai.EmbedContentConfig{TaskType: e.taskType}
	if e.dimensions > 0 {
		dim := int32(e.dimensions)
		cfg.OutputDimensionality = &dim
	}

	start := time.Now()
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), cfg)
	duration := time.Since(start)

	if err != nil {
		e.fail("api_error")
		return domain.EmbeddingResult{}, fmt.Errorf("gemini embed content: %w: %w", err, domain.ErrEmbeddingProviderError)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		e.fail("empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	vec := resp.Embeddings[0].Values
	if e.dimensions > 0 && len(vec) != e.dimensions {
		e.fail("dimension_mismatch")
		return domain.EmbeddingResult{}, fmt.Errorf("provider returned %d dimensions, want %d: %w",
			len(vec), e.dimensions, domain.ErrVectorDimMismatch)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(duration.Seconds())
	e.logger.Debug("Gemini embedding completed", zap.String("model", e.model), zap.Duration("duration", duration))

	return domain.EmbeddingResult{Embedding: vec}, nil
}

// HealthCheck fetches the model's metadata.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.Models.Get(ctx, e.model, nil); err != nil {
		return fmt.Errorf("get model %s: %w", e.model, err)
	}
	return nil
}

// Model returns the configured embedding model.
func (e *Embedder) Model() string { return e.model }

func (e *Embedder) fail(errorType string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, errorType).Inc()
}
