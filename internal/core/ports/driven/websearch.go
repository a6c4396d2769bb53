package driven

import "context"

// WebSearcher runs a live web search and summarises the results to free
// text. This is an optional service - when nil, the fallback stage is
// skipped.
type WebSearcher interface {
	// Search returns a plain-text summary of results for the query.
	Search(ctx context.Context, query string) (string, error)
}
