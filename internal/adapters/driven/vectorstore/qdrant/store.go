// Package qdrant implements the vector store port on a hosted Qdrant
// instance over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// scrollPageSize is the fixed page size used when walking the collection.
const scrollPageSize = 256

// Config holds Qdrant connection and collection configuration.
type Config struct {
	// Host is the Qdrant gRPC host. Defaults to localhost.
	Host string

	// Port is the Qdrant gRPC port. Defaults to 6334.
	Port int

	// APIKey authenticates against hosted instances. Optional.
	APIKey string

	// Collection is the collection name. Required.
	Collection string

	// VectorSize is the embedding dimensionality. Required.
	VectorSize int
}

// Store implements driven.VectorStore on Qdrant.
type Store struct {
	client     *qdrant.Client
	collection string
	vectorSize int
}

// Compile-time interface check.
var _ driven.VectorStore = (*Store)(nil)

// New connects to Qdrant. The connection is lazy; the first operation
// establishes it.
func New(cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant: collection name is required")
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("qdrant: vector size is required")
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port <= 0 {
		cfg.Port = 6334
	}

	clientCfg := &qdrant.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	}
	if cfg.APIKey != "" {
		clientCfg.APIKey = cfg.APIKey
		clientCfg.UseTLS = true
	}

	client, err := qdrant.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating qdrant client: %w", err)
	}

	return &Store{
		client:     client,
		collection: cfg.Collection,
		vectorSize: cfg.VectorSize,
	}, nil
}

// EnsureCollection creates the collection if it does not exist. Idempotent.
func (s *Store) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("checking collection %q: %w", s.collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", s.collection, err)
	}

	logger.Info("Created collection %q (size %d, cosine)", s.collection, s.vectorSize)
	return nil
}

// Upsert writes chunks with their embeddings. At-least-once semantics.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("qdrant: %d chunks but %d vectors: %w", len(chunks), len(vectors), domain.ErrInvalidInput)
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: payloadFields(domain.NewChunkPayload(chunk)),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting %d points: %w", len(points), err)
	}

	logger.Debug("Upserted %d points into %q", len(points), s.collection)
	return nil
}

// Query returns up to k chunks with score >= scoreThreshold, descending.
func (s *Store) Query(ctx context.Context, vector []float32, k int, scoreThreshold float64) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	limit := uint64(k)
	threshold := float32(scoreThreshold)

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		ScoreThreshold: &threshold,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", s.collection, err)
	}

	results := make([]domain.ScoredChunk, 0, len(points))
	for _, point := range points {
		payload := payloadFromFields(point.Payload)
		results = append(results, domain.ScoredChunk{
			Chunk: payload.Chunk(point.Id.GetUuid()),
			Score: float64(point.Score),
		})
	}

	return results, nil
}

// DistinctSources pages through all stored records and collects the
// canonical source_name field into a sorted set.
func (s *Store) DistinctSources(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	limit := uint32(scrollPageSize)

	var offset *qdrant.PointId
	for {
		// The low-level points client exposes the next-page offset that
		// the convenience wrapper drops.
		resp, err := s.client.GetPointsClient().Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayloadInclude(domain.PayloadKeySourceName),
		})
		if err != nil {
			return nil, fmt.Errorf("scrolling %q: %w", s.collection, err)
		}

		for _, point := range resp.GetResult() {
			if v, ok := point.Payload[domain.PayloadKeySourceName]; ok {
				if name := v.GetStringValue(); name != "" {
					seen[name] = struct{}{}
				}
			}
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	sources := make([]string, 0, len(seen))
	for name := range seen {
		sources = append(sources, name)
	}
	sort.Strings(sources)

	return sources, nil
}

// MigrateLegacyPayloads rewrites records carrying pre-versioning payload
// keys into the current schema. Records with no recoverable source name are
// left untouched.
func (s *Store) MigrateLegacyPayloads(ctx context.Context) (int, error) {
	migrated := 0
	limit := uint32(scrollPageSize)

	var offset *qdrant.PointId
	for {
		resp, err := s.client.GetPointsClient().Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return migrated, fmt.Errorf("scrolling %q: %w", s.collection, err)
		}

		for _, point := range resp.GetResult() {
			fields := fieldsToMap(point.Payload)
			if current := payloadFromMap(fields); !current.IsLegacy() {
				continue
			}

			upgraded, ok := domain.UpgradeLegacyPayload(fields)
			if !ok {
				logger.Warn("Skipping point %s: no recoverable source name", point.Id.GetUuid())
				continue
			}

			_, err := s.client.OverwritePayload(ctx, &qdrant.SetPayloadPoints{
				CollectionName: s.collection,
				Payload:        payloadFields(upgraded),
				PointsSelector: qdrant.NewPointsSelector(point.Id),
			})
			if err != nil {
				return migrated, fmt.Errorf("rewriting point %s: %w", point.Id.GetUuid(), err)
			}
			migrated++
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	logger.Info("Migrated %d legacy points in %q", migrated, s.collection)
	return migrated, nil
}

// Close releases the gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// payloadFields converts a versioned payload to Qdrant payload values.
func payloadFields(p domain.ChunkPayload) map[string]*qdrant.Value {
	return map[string]*qdrant.Value{
		domain.PayloadKeySchemaVersion: qdrant.NewValueInt(int64(p.SchemaVersion)),
		domain.PayloadKeyText:          qdrant.NewValueString(p.Text),
		domain.PayloadKeySourceType:    qdrant.NewValueString(p.SourceType.String()),
		domain.PayloadKeySourceName:    qdrant.NewValueString(p.SourceName),
		domain.PayloadKeyIngestedAt:    qdrant.NewValueString(p.IngestedAt.UTC().Format(time.RFC3339)),
	}
}

// payloadFromFields reads a versioned payload from Qdrant values.
func payloadFromFields(fields map[string]*qdrant.Value) domain.ChunkPayload {
	return payloadFromMap(fieldsToMap(fields))
}

func payloadFromMap(fields map[string]any) domain.ChunkPayload {
	p := domain.ChunkPayload{}
	if v, ok := fields[domain.PayloadKeySchemaVersion].(int64); ok {
		p.SchemaVersion = int(v)
	}
	if v, ok := fields[domain.PayloadKeyText].(string); ok {
		p.Text = v
	}
	if v, ok := fields[domain.PayloadKeySourceType].(string); ok {
		p.SourceType = domain.SourceType(v)
	}
	if v, ok := fields[domain.PayloadKeySourceName].(string); ok {
		p.SourceName = v
	}
	if v, ok := fields[domain.PayloadKeyIngestedAt].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			p.IngestedAt = t
		}
	}
	return p
}

// fieldsToMap flattens Qdrant values into plain Go values.
func fieldsToMap(fields map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if v == nil {
			continue
		}
		switch kind := v.Kind.(type) {
		case *qdrant.Value_StringValue:
			out[k] = kind.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = kind.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = kind.BoolValue
		}
	}
	return out
}
