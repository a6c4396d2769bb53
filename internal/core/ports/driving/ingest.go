package driving

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// IngestResult summarises one completed ingestion.
type IngestResult struct {
	// SourceType is what kind of source was ingested.
	SourceType domain.SourceType

	// SourceName is the file name or URL.
	SourceName string

	// ChunkCount is how many chunks were indexed.
	ChunkCount int
}

// IngestService adds documents to the index.
type IngestService interface {
	// Ingest extracts, chunks, embeds, and indexes one source (a PDF path
	// or a URL). Returns domain.ErrAlreadyProcessed when the session has
	// already ingested this source name.
	Ingest(ctx context.Context, session *domain.Session, sourceName string) (IngestResult, error)
}
