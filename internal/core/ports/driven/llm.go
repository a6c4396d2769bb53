package driven

import "context"

// LLMService provides language model operations for the turn pipeline.
type LLMService interface {
	// Generate produces a free-text completion from a prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// RewriteQuery rewrites a user question into a standalone search query.
	// Callers fall back to the original question when this fails.
	RewriteQuery(ctx context.Context, question string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
