package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyProcessed indicates a source was already ingested this
	// session and is skipped instead of re-indexed.
	ErrAlreadyProcessed = errors.New("source already processed")

	// ErrEmptyDocument indicates extraction produced no usable text.
	ErrEmptyDocument = errors.New("no text extracted")

	// ErrLLMUnavailable indicates the generative model is not configured.
	// Query rewriting and answer generation are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Ingestion and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not
	// configured or unreachable. Retrieval is skipped for the turn.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrWebSearchUnavailable indicates web search is disabled or missing
	// a credential. The fallback stage is skipped.
	ErrWebSearchUnavailable = errors.New("web search unavailable")

	// ErrGenerationFailed indicates answer generation failed. This is the
	// only failure terminal to a turn.
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrUnsupportedSource indicates the input is neither a PDF path nor
	// a URL.
	ErrUnsupportedSource = errors.New("unsupported source type")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
