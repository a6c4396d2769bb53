package driven

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// DocumentLoader extracts the text of one kind of source (PDF file, web
// page). Extraction failures return an error and no document; there are no
// partial results.
type DocumentLoader interface {
	// Supports reports whether this loader handles the given source name.
	Supports(sourceName string) bool

	// Load fetches and extracts the source into a Document.
	Load(ctx context.Context, sourceName string) (domain.Document, error)

	// SourceType is the type of source this loader produces.
	SourceType() domain.SourceType
}
