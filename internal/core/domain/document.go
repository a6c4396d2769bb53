package domain

import "time"

// SourceType identifies where a document came from.
type SourceType string

// Supported source types.
const (
	// SourcePDF is an uploaded PDF file.
	SourcePDF SourceType = "pdf"

	// SourceURL is a fetched web page.
	SourceURL SourceType = "url"
)

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	switch t {
	case SourcePDF, SourceURL:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t SourceType) String() string {
	return string(t)
}

// Description returns a human-readable description of the source type.
func (t SourceType) Description() string {
	switch t {
	case SourcePDF:
		return "PDF file"
	case SourceURL:
		return "Web page"
	default:
		return "Unknown"
	}
}

// Document represents the extracted text of one ingested source before
// chunking. It carries the provenance metadata that ends up in every chunk.
type Document struct {
	// SourceType says whether the document came from a PDF or a URL.
	SourceType SourceType

	// SourceName is the file name or URL that identifies the source.
	SourceName string

	// Title is the human-readable title, when the loader could find one.
	Title string

	// Content is the full extracted text.
	Content string

	// IngestedAt is when the document was extracted.
	IngestedAt time.Time
}

// Chunk is an immutable unit of text produced by the splitter.
// It is owned by the vector store after upload and never mutated.
type Chunk struct {
	// ID is the unique identifier used as the vector point ID.
	ID string

	// Text is the chunk content.
	Text string

	// SourceType is inherited from the parent document.
	SourceType SourceType

	// SourceName is inherited from the parent document.
	SourceName string

	// Position is the ordinal position within the source.
	Position int

	// IngestedAt is inherited from the parent document.
	IngestedAt time.Time
}

// ScoredChunk is a chunk returned by a similarity query together with its
// similarity score (cosine, 0-1, higher is more similar).
type ScoredChunk struct {
	Chunk Chunk

	// Score is the similarity score that met the query threshold.
	Score float64
}
