// Package chromem implements the vector store port on an embedded
// chromem-go persistent database. No server is required; this backs the
// "local" storage mode.
package chromem

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// Config holds local store configuration.
type Config struct {
	// Path is the on-disk database directory. Required.
	Path string

	// Collection is the collection name. Required.
	Collection string

	// VectorSize is the embedding dimensionality. Required.
	VectorSize int
}

// Store implements driven.VectorStore on chromem-go.
type Store struct {
	mu         sync.Mutex
	db         *chromemgo.DB
	collection *chromemgo.Collection
	name       string
	vectorSize int
}

// Compile-time interface check.
var _ driven.VectorStore = (*Store)(nil)

// New opens (or creates) the persistent database at the configured path.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("chromem: path is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("chromem: collection name is required")
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("chromem: vector size is required")
	}

	db, err := chromemgo.NewPersistentDB(cfg.Path, false)
	if err != nil {
		return nil, fmt.Errorf("opening local store at %s: %w", cfg.Path, err)
	}

	return &Store{
		db:         db,
		name:       cfg.Collection,
		vectorSize: cfg.VectorSize,
	}, nil
}

// EnsureCollection creates the collection if absent. Idempotent.
func (s *Store) EnsureCollection(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection != nil {
		return nil
	}

	metadata := map[string]string{
		"hnsw:space": "cosine",
	}
	collection, err := s.db.GetOrCreateCollection(s.name, metadata, nil)
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", s.name, err)
	}

	s.collection = collection
	return nil
}

// Upsert writes chunks with their embeddings.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chromem: %d chunks but %d vectors: %w", len(chunks), len(vectors), domain.ErrInvalidInput)
	}
	if err := s.EnsureCollection(ctx); err != nil {
		return err
	}

	ids := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ID
		metadatas[i] = payloadMetadata(domain.NewChunkPayload(chunk))
		contents[i] = chunk.Text
	}

	if err := s.collection.Add(ctx, ids, vectors, metadatas, contents); err != nil {
		return fmt.Errorf("adding %d documents: %w", len(ids), err)
	}

	logger.Debug("Stored %d documents in local collection %q", len(ids), s.name)
	return nil
}

// Query returns up to k chunks with similarity >= scoreThreshold.
func (s *Store) Query(ctx context.Context, vector []float32, k int, scoreThreshold float64) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}
	if err := s.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	count := s.collection.Count()
	if count == 0 {
		return []domain.ScoredChunk{}, nil
	}
	if k > count {
		k = count
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", s.name, err)
	}

	scored := make([]domain.ScoredChunk, 0, len(results))
	for _, result := range results {
		if float64(result.Similarity) < scoreThreshold {
			continue
		}
		payload := payloadFromMetadata(result.Metadata, result.Content)
		scored = append(scored, domain.ScoredChunk{
			Chunk: payload.Chunk(result.ID),
			Score: float64(result.Similarity),
		})
	}

	return scored, nil
}

// DistinctSources returns the distinct source names, sorted ascending.
// chromem-go has no scan API, so the collection is enumerated with a
// full-size query against a fixed probe vector.
func (s *Store) DistinctSources(ctx context.Context) ([]string, error) {
	if err := s.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	count := s.collection.Count()
	if count == 0 {
		return []string{}, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, s.probeVector(), count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("enumerating %q: %w", s.name, err)
	}

	seen := make(map[string]struct{})
	for _, result := range results {
		if name := result.Metadata[domain.PayloadKeySourceName]; name != "" {
			seen[name] = struct{}{}
		}
	}

	sources := make([]string, 0, len(seen))
	for name := range seen {
		sources = append(sources, name)
	}
	sort.Strings(sources)

	return sources, nil
}

// MigrateLegacyPayloads is a no-op for the local store: it postdates the
// versioned payload schema, so legacy records cannot exist here.
func (s *Store) MigrateLegacyPayloads(_ context.Context) (int, error) {
	return 0, nil
}

// Close is a no-op; the persistent database writes through on every add.
func (s *Store) Close() error {
	return nil
}

// probeVector is a fixed unit vector used to enumerate the collection.
func (s *Store) probeVector() []float32 {
	v := make([]float32, s.vectorSize)
	v[0] = 1
	return v
}

// payloadMetadata converts a versioned payload to chromem string metadata.
func payloadMetadata(p domain.ChunkPayload) map[string]string {
	return map[string]string{
		domain.PayloadKeySchemaVersion: strconv.Itoa(p.SchemaVersion),
		domain.PayloadKeySourceType:    p.SourceType.String(),
		domain.PayloadKeySourceName:    p.SourceName,
		domain.PayloadKeyIngestedAt:    p.IngestedAt.UTC().Format(time.RFC3339),
	}
}

// payloadFromMetadata reads a versioned payload back. The chunk text lives
// in the document content, not the metadata.
func payloadFromMetadata(metadata map[string]string, content string) domain.ChunkPayload {
	p := domain.ChunkPayload{Text: content}
	if v, err := strconv.Atoi(metadata[domain.PayloadKeySchemaVersion]); err == nil {
		p.SchemaVersion = v
	}
	p.SourceType = domain.SourceType(metadata[domain.PayloadKeySourceType])
	p.SourceName = metadata[domain.PayloadKeySourceName]
	if t, err := time.Parse(time.RFC3339, metadata[domain.PayloadKeyIngestedAt]); err == nil {
		p.IngestedAt = t
	}
	return p
}
