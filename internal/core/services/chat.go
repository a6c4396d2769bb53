package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// webContextPrefix labels web search results in the generation prompt.
const webContextPrefix = "Web Search Results:\n"

// Default prompt templates, used when no PromptStore override is set.
// The query rewrite template lives in the LLM adapter.
const (
	defaultAnswerPrompt = "Answer the question using the context below. " +
		"If the context does not contain the answer, say so.\n\n" +
		"Context:\n%s\n\nQuestion: %s\n(Search query used: %s)"

	defaultAnswerNoContextPrompt = "Answer the following question.\n\n" +
		"Question: %s\n(Search query used: %s)"
)

// ChatService runs the four-stage turn pipeline: rewrite, retrieve, web
// fallback, generate. Stages run strictly in order; non-terminal failures
// degrade the turn instead of aborting it.
type ChatService struct {
	llm       driven.LLMService
	embedding driven.EmbeddingService
	store     driven.VectorStore
	searcher  driven.WebSearcher
	history   driven.HistoryStore
	prompts   driven.PromptStore
	topK      int
}

// NewChatService creates a chat service. The llm is required for
// generation; store, searcher, and history may be nil and degrade the
// matching stages.
func NewChatService(
	llm driven.LLMService,
	embedding driven.EmbeddingService,
	store driven.VectorStore,
	searcher driven.WebSearcher,
	topK int,
) *ChatService {
	if topK <= 0 {
		topK = 5
	}
	return &ChatService{
		llm:       llm,
		embedding: embedding,
		store:     store,
		searcher:  searcher,
		topK:      topK,
	}
}

// SetHistoryStore enables transcript persistence. Persistence failures are
// logged, never fatal to a turn.
func (s *ChatService) SetHistoryStore(store driven.HistoryStore) {
	s.history = store
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses the built-in default prompts.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Reconcile repairs the session's processed-sources list from the vector
// store. Best-effort: divergence after partial uploads is tolerated.
func (s *ChatService) Reconcile(ctx context.Context, session *domain.Session) error {
	if s.store == nil {
		return domain.ErrVectorStoreUnavailable
	}

	sources, err := s.store.DistinctSources(ctx)
	if err != nil {
		return fmt.Errorf("distinct sources: %w", err)
	}

	session.Reconcile(sources)
	logger.Debug("Reconciled %d sources from the store", len(sources))
	return nil
}

// Ask runs one full turn against the session. On success the question and
// answer are appended to the session history; a generation failure is
// terminal and appends nothing.
func (s *ChatService) Ask(ctx context.Context, session *domain.Session, question string) domain.TurnResult {
	logger.Section("Turn Pipeline")
	logger.Debug("Question: %q", question)

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.TurnResult{Question: question, Err: domain.ErrInvalidInput}
	}
	if s.llm == nil {
		return domain.TurnResult{Question: question, Err: domain.ErrLLMUnavailable}
	}

	stages := make([]domain.StageResult, 0, 4)

	// Stage 1: rewrite. A failure falls back to the original question.
	rewritten, stage := s.rewrite(ctx, question)
	stages = append(stages, stage)

	// Stage 2: vector retrieval.
	retrieved, stage := s.retrieve(ctx, session, rewritten)
	stages = append(stages, stage)

	// Stage 3: web fallback.
	webResults, stage := s.webSearch(ctx, session, rewritten, len(retrieved) > 0)
	stages = append(stages, stage)

	// Stage 4: generation. The only terminal stage.
	contextBlock := buildContext(retrieved, webResults)
	answer, err := s.generate(ctx, contextBlock, question, rewritten)
	if err != nil {
		stages = append(stages, domain.StageResult{Stage: domain.StageGenerate, Detail: err.Error()})
		logger.Warn("Generation failed: %v", err)
		return domain.TurnResult{
			Question: question,
			Err:      fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err),
		}
	}
	stages = append(stages, domain.StageOk(domain.StageGenerate, s.llm.ModelName()))
	logger.Stage(domain.StageGenerate, "answered with %s", s.llm.ModelName())

	s.record(ctx, session, question, answer)

	return domain.TurnResult{
		Question: question,
		Answer: domain.Answer{
			Content:        answer,
			RewrittenQuery: rewritten,
			Sources:        retrieved,
			UsedWebSearch:  webResults != "",
			Stages:         stages,
		},
	}
}

func (s *ChatService) rewrite(ctx context.Context, question string) (string, domain.StageResult) {
	rewritten, err := s.llm.RewriteQuery(ctx, question)
	if err != nil {
		logger.Warn("Rewrite failed, using the original question: %v", err)
		return question, domain.StageDegraded(domain.StageRewrite, err)
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question, domain.StageDegraded(domain.StageRewrite, fmt.Errorf("empty rewrite"))
	}

	logger.Stage(domain.StageRewrite, "query rewritten to %q", rewritten)
	return rewritten, domain.StageOk(domain.StageRewrite, rewritten)
}

func (s *ChatService) retrieve(
	ctx context.Context, session *domain.Session, query string,
) ([]domain.ScoredChunk, domain.StageResult) {
	if session.ForceWebSearch {
		return nil, domain.StageSkipped(domain.StageRetrieve, "web search forced")
	}
	if s.store == nil || s.embedding == nil {
		return nil, domain.StageSkipped(domain.StageRetrieve, "no vector store configured")
	}

	vector, err := s.embedding.Embed(ctx, query, driven.TaskQuery)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, domain.StageDegraded(domain.StageRetrieve, err)
	}

	results, err := s.store.Query(ctx, vector, s.topK, session.Threshold)
	if err != nil {
		logger.Warn("Retrieval failed: %v", err)
		return nil, domain.StageDegraded(domain.StageRetrieve, err)
	}

	logger.Stage(domain.StageRetrieve, "%d chunks above threshold %.2f", len(results), session.Threshold)
	return results, domain.StageOk(domain.StageRetrieve, fmt.Sprintf("%d chunks", len(results)))
}

func (s *ChatService) webSearch(
	ctx context.Context, session *domain.Session, query string, haveRetrieval bool,
) (string, domain.StageResult) {
	if haveRetrieval && !session.ForceWebSearch {
		return "", domain.StageSkipped(domain.StageWebSearch, "retrieval succeeded")
	}
	if !session.WebSearchEnabled {
		return "", domain.StageSkipped(domain.StageWebSearch, "web search disabled")
	}
	if s.searcher == nil {
		return "", domain.StageSkipped(domain.StageWebSearch, domain.ErrWebSearchUnavailable.Error())
	}

	results, err := s.searcher.Search(ctx, query)
	if err != nil {
		logger.Warn("Web search failed: %v", err)
		return "", domain.StageDegraded(domain.StageWebSearch, err)
	}
	if strings.TrimSpace(results) == "" {
		logger.Stage(domain.StageWebSearch, "no results")
		return "", domain.StageOk(domain.StageWebSearch, "no results")
	}

	logger.Stage(domain.StageWebSearch, "results found")
	return results, domain.StageOk(domain.StageWebSearch, "results found")
}

func (s *ChatService) generate(ctx context.Context, contextBlock, question, rewritten string) (string, error) {
	var prompt string
	if contextBlock == "" {
		prompt = fmt.Sprintf(s.prompt(driven.PromptAnswerNoContext, defaultAnswerNoContextPrompt),
			question, rewritten)
	} else {
		prompt = fmt.Sprintf(s.prompt(driven.PromptAnswer, defaultAnswerPrompt),
			contextBlock, question, rewritten)
	}

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("empty completion")
	}
	return answer, nil
}

// record appends the turn to the session and, when configured, the history
// store.
func (s *ChatService) record(ctx context.Context, session *domain.Session, question, answer string) {
	userTurn := session.AppendTurn(domain.RoleUser, question)
	assistantTurn := session.AppendTurn(domain.RoleAssistant, answer)

	if s.history == nil {
		return
	}
	if err := s.history.AppendTurn(ctx, session.ID, userTurn); err != nil {
		logger.Warn("Persisting user turn: %v", err)
		return
	}
	if err := s.history.AppendTurn(ctx, session.ID, assistantTurn); err != nil {
		logger.Warn("Persisting assistant turn: %v", err)
	}
}

// prompt loads a template by name, falling back to the built-in default.
func (s *ChatService) prompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	tmpl, err := s.prompts.Load(name)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		return fallback
	}
	return tmpl
}

// buildContext assembles the generation context block. Retrieved chunks
// take precedence; web results carry the fixed prefix.
func buildContext(retrieved []domain.ScoredChunk, webResults string) string {
	if len(retrieved) > 0 {
		parts := make([]string, len(retrieved))
		for i, sc := range retrieved {
			parts[i] = sc.Chunk.Text
		}
		return strings.Join(parts, "\n\n")
	}
	if webResults != "" {
		return webContextPrefix + webResults
	}
	return ""
}
