package driven

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// VectorStore persists chunk payloads with their embeddings and answers
// similarity queries. Implementations back onto hosted Qdrant or the
// embedded local store.
type VectorStore interface {
	// EnsureCollection creates the configured collection if it does not
	// exist. Idempotent: an already existing collection is success.
	EnsureCollection(ctx context.Context) error

	// Upsert writes chunks with their embeddings. Vectors are positionally
	// aligned with chunks. At-least-once semantics, no deduplication.
	Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error

	// Query returns up to k chunks whose similarity to the vector is at
	// least scoreThreshold, ordered by descending similarity. An empty
	// slice means nothing qualified.
	Query(ctx context.Context, vector []float32, k int, scoreThreshold float64) ([]domain.ScoredChunk, error)

	// DistinctSources pages through all stored records and returns the
	// distinct source names, sorted ascending.
	DistinctSources(ctx context.Context) ([]string, error)

	// MigrateLegacyPayloads rewrites records carrying pre-versioning
	// payload keys into the current schema. Returns the number of records
	// upgraded. Run on demand, never implicitly.
	MigrateLegacyPayloads(ctx context.Context) (int, error)

	// Close releases the client connection.
	Close() error
}
