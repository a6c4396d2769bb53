package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docchat-cli/internal/chunker"
	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the ingestion flow: load, chunk, embed, upsert.
type IngestService struct {
	loaders   []driven.DocumentLoader
	splitter  *chunker.Splitter
	embedding driven.EmbeddingService
	store     driven.VectorStore
}

// NewIngestService creates an ingest service. Loaders are tried in order;
// the first one that supports the source name wins.
func NewIngestService(
	loaders []driven.DocumentLoader,
	splitter *chunker.Splitter,
	embedding driven.EmbeddingService,
	store driven.VectorStore,
) *IngestService {
	return &IngestService{
		loaders:   loaders,
		splitter:  splitter,
		embedding: embedding,
		store:     store,
	}
}

// Ingest extracts, chunks, embeds, and indexes one source.
func (s *IngestService) Ingest(
	ctx context.Context, session *domain.Session, sourceName string,
) (driving.IngestResult, error) {
	logger.Section("Ingestion")
	logger.Debug("Source: %q", sourceName)

	sourceName = strings.TrimSpace(sourceName)
	if sourceName == "" {
		return driving.IngestResult{}, fmt.Errorf("empty source name: %w", domain.ErrInvalidInput)
	}

	loader := s.loaderFor(sourceName)
	if loader == nil {
		return driving.IngestResult{}, fmt.Errorf("%q: %w", sourceName, domain.ErrUnsupportedSource)
	}
	logger.Debug("Loader: %s", loader.SourceType())

	if s.embedding == nil {
		return driving.IngestResult{}, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return driving.IngestResult{}, domain.ErrVectorStoreUnavailable
	}

	// The processed list holds each source name at most once. The check
	// uses the stored key: base file name for PDFs, full URL for pages.
	doc, err := loader.Load(ctx, sourceName)
	if err != nil {
		return driving.IngestResult{}, fmt.Errorf("load: %w", err)
	}
	if session.IsProcessed(doc.SourceName) {
		logger.Info("Skipping %q, already processed", doc.SourceName)
		return driving.IngestResult{}, fmt.Errorf("%q: %w", doc.SourceName, domain.ErrAlreadyProcessed)
	}

	chunks := s.splitter.Split(doc)
	if len(chunks) == 0 {
		return driving.IngestResult{}, fmt.Errorf("%q: %w", doc.SourceName, domain.ErrEmptyDocument)
	}
	logger.Debug("Split into %d chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedding.EmbedBatch(ctx, texts, driven.TaskDocument)
	if err != nil {
		return driving.IngestResult{}, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return driving.IngestResult{}, fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := s.store.EnsureCollection(ctx); err != nil {
		return driving.IngestResult{}, fmt.Errorf("ensure collection: %w", err)
	}

	if err := s.store.Upsert(ctx, chunks, vectors); err != nil {
		return driving.IngestResult{}, fmt.Errorf("upsert: %w", err)
	}

	session.MarkProcessed(doc.SourceName)
	logger.Info("Indexed %q: %d chunks", doc.SourceName, len(chunks))

	return driving.IngestResult{
		SourceType: doc.SourceType,
		SourceName: doc.SourceName,
		ChunkCount: len(chunks),
	}, nil
}

func (s *IngestService) loaderFor(sourceName string) driven.DocumentLoader {
	for _, l := range s.loaders {
		if l.Supports(sourceName) {
			return l
		}
	}
	return nil
}
