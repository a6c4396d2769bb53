// Package chunker provides a fixed-size text splitter with overlap.
package chunker

import (
	"github.com/google/uuid"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Splitter cuts document content into fixed-size chunks that carry the
// document's provenance metadata.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split cuts the document content into chunks. Consecutive chunks of one
// document overlap by exactly the configured overlap; only the final chunk
// may be shorter than the chunk size. Empty content produces no chunks.
func (s *Splitter) Split(doc domain.Document) []domain.Chunk {
	if doc.Content == "" {
		return nil
	}

	// Measure in runes so multi-byte text never splits mid-character.
	content := []rune(doc.Content)
	contentLen := len(content)

	estimatedChunks := (contentLen / (s.chunkSize - s.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimatedChunks)

	position := 0
	start := 0

	for start < contentLen {
		end := start + s.chunkSize
		if end > contentLen {
			end = contentLen
		}

		chunk := domain.Chunk{
			ID:         uuid.New().String(),
			Text:       string(content[start:end]),
			SourceType: doc.SourceType,
			SourceName: doc.SourceName,
			Position:   position,
			IngestedAt: doc.IngestedAt,
		}

		chunks = append(chunks, chunk)
		position++

		start += s.chunkSize - s.overlap

		// Avoid infinite loop for edge cases
		if s.chunkSize <= s.overlap {
			break
		}
	}

	return chunks
}
