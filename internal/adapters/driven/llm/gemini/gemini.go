// Package gemini implements the LLM port on the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// DefaultModel is the generative model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// defaultRewritePrompt turns a user question into a standalone search query.
const defaultRewritePrompt = "Rewrite the following question as a standalone search query. " +
	"Keep it concise and preserve all specifics. Reply with the query only.\n\nQuestion: %s"

// Config holds Gemini LLM configuration.
type Config struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// Model is the generative model name. Defaults to DefaultModel.
	Model string

	// Limiter shapes the request rate. Defaults to the free-tier limiter.
	Limiter *ratelimit.Limiter
}

// LLMService implements driven.LLMService using the Gemini API.
type LLMService struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	name    string
	limiter *ratelimit.Limiter
	prompts driven.PromptStore
}

// Compile-time interface checks.
var (
	_ driven.LLMService = (*LLMService)(nil)
)

// New creates a Gemini LLM service.
func New(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini llm: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.NewFreeTier()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &LLMService{
		client:  client,
		model:   client.GenerativeModel(cfg.Model),
		name:    cfg.Model,
		limiter: cfg.Limiter,
	}, nil
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses the built-in default prompts.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Generate produces a free-text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("empty completion from %s", s.name)
	}

	logger.Debug("Generated %d chars with %s", len(text), s.name)
	return text, nil
}

// RewriteQuery rewrites a user question into a standalone search query.
func (s *LLMService) RewriteQuery(ctx context.Context, question string) (string, error) {
	tmpl := defaultRewritePrompt
	if s.prompts != nil {
		if loaded, err := s.prompts.Load(driven.PromptQueryRewrite); err == nil && strings.TrimSpace(loaded) != "" {
			tmpl = loaded
		}
	}

	rewritten, err := s.Generate(ctx, fmt.Sprintf(tmpl, question))
	if err != nil {
		return "", fmt.Errorf("rewriting query: %w", err)
	}

	// Models occasionally wrap the query in quotes.
	return strings.Trim(strings.TrimSpace(rewritten), `"`), nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.name
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	return s.client.Close()
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	return strings.TrimSpace(sb.String())
}
