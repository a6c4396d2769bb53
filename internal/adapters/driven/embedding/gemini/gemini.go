// Package gemini implements the embedding port on the Gemini API.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "text-embedding-004"

// DefaultDimensions is the vector size of the default model.
const DefaultDimensions = 768

// Config holds Gemini embedding configuration.
type Config struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// Model is the embedding model name. Defaults to DefaultModel.
	Model string

	// Dimensions is the embedding vector size. Defaults to
	// DefaultDimensions.
	Dimensions int

	// Limiter shapes the request rate. Defaults to the free-tier limiter.
	Limiter *ratelimit.Limiter
}

// EmbeddingService implements driven.EmbeddingService using the Gemini API.
type EmbeddingService struct {
	client  *genai.Client
	model   string
	dims    int
	limiter *ratelimit.Limiter
}

// Compile-time interface check.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// New creates a Gemini embedding service.
func New(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini embedding: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.NewFreeTier()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &EmbeddingService{
		client:  client,
		model:   cfg.Model,
		dims:    cfg.Dimensions,
		limiter: cfg.Limiter,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string, task driven.EmbeddingTask) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	em := s.embeddingModel(task)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embedding content: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding response is empty")
	}

	return resp.Embedding.Values, nil
}

// EmbedBatch generates embeddings for multiple texts with one API call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string, task driven.EmbeddingTask) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	em := s.embeddingModel(task)
	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("embedding batch: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding batch: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	logger.Debug("Embedded %d texts with %s (%s)", len(texts), s.model, task)

	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("embedding batch: empty embedding at index %d", i)
		}
		vectors[i] = e.Values
	}

	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dims
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Close releases the underlying client.
func (s *EmbeddingService) Close() error {
	return s.client.Close()
}

// embeddingModel returns a model handle tuned for the task. Retrieval
// models embed documents and queries differently.
func (s *EmbeddingService) embeddingModel(task driven.EmbeddingTask) *genai.EmbeddingModel {
	em := s.client.EmbeddingModel(s.model)
	switch task {
	case driven.TaskQuery:
		em.TaskType = genai.TaskTypeRetrievalQuery
	default:
		em.TaskType = genai.TaskTypeRetrievalDocument
	}
	return em
}
