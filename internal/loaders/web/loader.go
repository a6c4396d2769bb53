// Package web fetches web pages and extracts their readable text.
package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// contentSelectors are the containers tried before falling back to body.
// Ordered; all matches are concatenated in document order per selector.
const contentSelectors = ".post-content, .post-title, .post-header, .content, main"

// DefaultTimeout bounds a page fetch.
const DefaultTimeout = 30 * time.Second

// Loader fetches a URL and extracts readable text from its HTML.
type Loader struct {
	client *http.Client
}

// Compile-time interface check.
var _ driven.DocumentLoader = (*Loader)(nil)

// Option configures the loader.
type Option func(*Loader)

// WithHTTPClient overrides the HTTP client. Useful for testing.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.client = client
		}
	}
}

// New creates a web loader with a bounded-timeout HTTP client.
func New(opts ...Option) *Loader {
	l := &Loader{
		client: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SourceType returns the type of source this loader produces.
func (l *Loader) SourceType() domain.SourceType {
	return domain.SourceURL
}

// Supports reports whether the source name is an http(s) URL.
func (l *Loader) Supports(sourceName string) bool {
	return strings.HasPrefix(sourceName, "http://") || strings.HasPrefix(sourceName, "https://")
}

// Load fetches the URL and extracts its readable text, preferring the
// known content containers and falling back to the whole body.
func (l *Loader) Load(ctx context.Context, sourceName string) (domain.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceName, nil)
	if err != nil {
		return domain.Document{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "docchat/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.Document{}, fmt.Errorf("fetching %s: %w", sourceName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.Document{}, fmt.Errorf("fetching %s: HTTP %d", sourceName, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.Document{}, fmt.Errorf("parsing %s: %w", sourceName, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	content := extractContent(doc)
	if content == "" {
		return domain.Document{}, fmt.Errorf("%s: %w", sourceName, domain.ErrEmptyDocument)
	}

	logger.Debug("extracted %d chars from %s", len(content), sourceName)

	return domain.Document{
		SourceType: domain.SourceURL,
		SourceName: sourceName,
		Title:      title,
		Content:    content,
		IngestedAt: time.Now(),
	}, nil
}

// extractContent pulls text from the preferred content containers, or the
// whole body when none match.
func extractContent(doc *goquery.Document) string {
	var parts []string

	selection := doc.Find(contentSelectors)
	if selection.Length() == 0 {
		selection = doc.Find("body")
	}

	selection.Each(func(_ int, s *goquery.Selection) {
		// Drop script and style text before reading.
		s.Find("script, style, noscript").Remove()
		if text := normaliseWhitespace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	return strings.Join(parts, "\n\n")
}

// normaliseWhitespace collapses runs of whitespace into single spaces and
// trims each line.
func normaliseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
