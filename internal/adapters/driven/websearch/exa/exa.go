// Package exa provides a web search adapter using the Exa search API.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// Ensure Searcher implements the interface.
var _ driven.WebSearcher = (*Searcher)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.exa.ai"
	DefaultNumResults = 3
	DefaultTimeout    = 30 * time.Second
)

// Config holds configuration for the Exa search service.
type Config struct {
	// APIKey is the Exa API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.exa.ai).
	BaseURL string

	// IncludeDomains restricts results to these domains.
	IncludeDomains []string

	// NumResults is how many results to summarise (default: 3).
	NumResults int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Searcher runs web searches against the Exa API and summarises the
// results to free text.
type Searcher struct {
	client         *http.Client
	baseURL        string
	apiKey         string
	includeDomains []string
	numResults     int
}

// searchRequest is the Exa API request format.
type searchRequest struct {
	Query          string   `json:"query"`
	NumResults     int      `json:"numResults"`
	IncludeDomains []string `json:"includeDomains,omitempty"`
	Contents       contents `json:"contents"`
}

type contents struct {
	Text bool `json:"text"`
}

// searchResponse is the Exa API response format.
type searchResponse struct {
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Text  string `json:"text"`
	} `json:"results"`
	Error string `json:"error,omitempty"`
}

// New creates a new Exa search service.
func New(cfg Config) (*Searcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("exa: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.NumResults <= 0 {
		cfg.NumResults = DefaultNumResults
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Searcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		includeDomains: cfg.IncludeDomains,
		numResults:     cfg.NumResults,
	}, nil
}

// Search returns a plain-text summary of results for the query.
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	reqBody := searchRequest{
		Query:          query,
		NumResults:     s.numResults,
		IncludeDomains: s.includeDomains,
		Contents:       contents{Text: true},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/search",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if searchResp.Error != "" {
			return "", fmt.Errorf("exa error (status %d): %s", resp.StatusCode, searchResp.Error)
		}
		return "", fmt.Errorf("exa error (status %d): %s", resp.StatusCode, string(body))
	}

	logger.Debug("Exa returned %d results for %q", len(searchResp.Results), query)
	return summarise(searchResp), nil
}

// summarise flattens results into the free-text block handed to the
// generation stage.
func summarise(resp searchResponse) string {
	var sb strings.Builder
	for i, result := range resp.Results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if result.Title != "" {
			sb.WriteString(result.Title)
			sb.WriteString("\n")
		}
		if result.URL != "" {
			sb.WriteString(result.URL)
			sb.WriteString("\n")
		}
		sb.WriteString(strings.TrimSpace(result.Text))
	}
	return strings.TrimSpace(sb.String())
}
