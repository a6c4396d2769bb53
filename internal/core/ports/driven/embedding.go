package driven

import "context"

// EmbeddingTask tells the provider what the vector will be used for.
// Retrieval-tuned models embed documents and queries differently.
type EmbeddingTask string

// Embedding task types.
const (
	// TaskDocument embeds text that will be stored in the index.
	TaskDocument EmbeddingTask = "retrieval_document"

	// TaskQuery embeds a search query.
	TaskQuery EmbeddingTask = "retrieval_query"
)

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorStore which stores and searches vectors.
// EmbeddingService generates vectors; VectorStore stores them.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string, task EmbeddingTask) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// Results are positionally aligned with the input.
	EmbedBatch(ctx context.Context, texts []string, task EmbeddingTask) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	// This must match the VectorStore collection configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
