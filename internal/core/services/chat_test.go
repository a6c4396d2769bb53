package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

func newTestSession() *domain.Session {
	return domain.NewSession("test-session", 0.7)
}

func scored(text, source string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{ID: "id-" + source, Text: text, SourceType: domain.SourcePDF, SourceName: source},
		Score: score,
	}
}

func TestChatService_Ask_FullPipeline(t *testing.T) {
	llm := &mockLLMService{rewritten: "standalone query", completion: "the answer"}
	embedding := &mockEmbeddingService{embedding: []float32{0.1, 0.2}}
	store := &mockVectorStore{results: []domain.ScoredChunk{
		scored("relevant text", "a.pdf", 0.92),
	}}
	svc := NewChatService(llm, embedding, store, nil, 5)
	session := newTestSession()

	result := svc.Ask(context.Background(), session, "what is this about?")

	require.False(t, result.Failed())
	assert.Equal(t, "the answer", result.Answer.Content)
	assert.Equal(t, "standalone query", result.Answer.RewrittenQuery)
	assert.Len(t, result.Answer.Sources, 1)
	assert.False(t, result.Answer.UsedWebSearch)

	// Retrieval used the session threshold and the configured k.
	assert.Equal(t, 5, store.lastK)
	assert.InDelta(t, 0.7, store.lastThreshold, 1e-9)

	// The retrieved text reaches the generation prompt.
	assert.Contains(t, llm.lastPrompt, "relevant text")
	assert.Contains(t, llm.lastPrompt, "what is this about?")

	// Both turns were appended on success.
	history := session.History()
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
}

// Rewrite failure falls back to the original question and the turn proceeds.
func TestChatService_Ask_RewriteFailureUsesOriginal(t *testing.T) {
	llm := &mockLLMService{rewriteErr: errors.New("quota"), completion: "answer"}
	embedding := &mockEmbeddingService{embedding: []float32{0.1}}
	store := &mockVectorStore{}
	svc := NewChatService(llm, embedding, store, nil, 5)

	result := svc.Ask(context.Background(), newTestSession(), "original question")

	require.False(t, result.Failed())
	assert.Equal(t, "original question", result.Answer.RewrittenQuery)

	var rewriteStage domain.StageResult
	for _, st := range result.Answer.Stages {
		if st.Stage == domain.StageRewrite {
			rewriteStage = st
		}
	}
	assert.True(t, rewriteStage.Degraded)
}

// Force-web-search with web search disabled: retrieval is skipped, the
// fallback is skipped too, and the prompt carries no context block.
func TestChatService_Ask_ForcedWebWithSearchDisabled(t *testing.T) {
	llm := &mockLLMService{completion: "answer"}
	embedding := &mockEmbeddingService{embedding: []float32{0.1}}
	store := &mockVectorStore{results: []domain.ScoredChunk{scored("ignored", "a.pdf", 0.9)}}
	searcher := &mockWebSearcher{results: "never used"}
	svc := NewChatService(llm, embedding, store, searcher, 5)

	session := newTestSession()
	session.ForceWebSearch = true
	session.WebSearchEnabled = false

	result := svc.Ask(context.Background(), session, "question")

	require.False(t, result.Failed())
	assert.Equal(t, 0, store.queryCalls)
	assert.Equal(t, 0, searcher.searchCalls)
	assert.Empty(t, result.Answer.Sources)
	assert.False(t, result.Answer.UsedWebSearch)
	assert.NotContains(t, llm.lastPrompt, "Context:")
	assert.NotContains(t, llm.lastPrompt, "Web Search Results:")
}

// Empty retrieval with web search enabled and configured runs the fallback;
// the context is exactly the fixed prefix plus the returned text.
func TestChatService_Ask_WebFallbackContext(t *testing.T) {
	llm := &mockLLMService{completion: "answer"}
	embedding := &mockEmbeddingService{embedding: []float32{0.1}}
	store := &mockVectorStore{} // nothing above threshold
	searcher := &mockWebSearcher{results: "fresh facts from the web"}
	svc := NewChatService(llm, embedding, store, searcher, 5)

	session := newTestSession()
	session.WebSearchEnabled = true

	result := svc.Ask(context.Background(), session, "question")

	require.False(t, result.Failed())
	assert.Equal(t, 1, searcher.searchCalls)
	assert.True(t, result.Answer.UsedWebSearch)
	assert.Contains(t, llm.lastPrompt, "Web Search Results:\nfresh facts from the web")
}

func TestChatService_Ask_WebFallbackSkippedWhenRetrievalSucceeds(t *testing.T) {
	llm := &mockLLMService{completion: "answer"}
	embedding := &mockEmbeddingService{embedding: []float32{0.1}}
	store := &mockVectorStore{results: []domain.ScoredChunk{scored("found", "a.pdf", 0.9)}}
	searcher := &mockWebSearcher{results: "unused"}
	svc := NewChatService(llm, embedding, store, searcher, 5)

	session := newTestSession()
	session.WebSearchEnabled = true

	result := svc.Ask(context.Background(), session, "question")

	require.False(t, result.Failed())
	assert.Equal(t, 0, searcher.searchCalls)
	assert.False(t, result.Answer.UsedWebSearch)
}

// Web search failure records a degraded stage and the turn continues with
// an empty context.
func TestChatService_Ask_WebFailureDegrades(t *testing.T) {
	llm := &mockLLMService{completion: "answer"}
	embedding := &mockEmbeddingService{embedding: []float32{0.1}}
	store := &mockVectorStore{}
	searcher := &mockWebSearcher{searchErr: errors.New("exa down")}
	svc := NewChatService(llm, embedding, store, searcher, 5)

	session := newTestSession()
	session.WebSearchEnabled = true

	result := svc.Ask(context.Background(), session, "question")

	require.False(t, result.Failed())
	assert.NotContains(t, llm.lastPrompt, "Web Search Results:")

	var webStage domain.StageResult
	for _, st := range result.Answer.Stages {
		if st.Stage == domain.StageWebSearch {
			webStage = st
		}
	}
	assert.True(t, webStage.Degraded)
}

// Generation failure is terminal: no answer, nothing appended to history.
func TestChatService_Ask_GenerationFailureIsTerminal(t *testing.T) {
	llm := &mockLLMService{generateErr: errors.New("model overloaded")}
	embedding := &mockEmbeddingService{embedding: []float32{0.1}}
	store := &mockVectorStore{}
	svc := NewChatService(llm, embedding, store, nil, 5)
	history := newMockHistoryStore()
	svc.SetHistoryStore(history)

	session := newTestSession()
	result := svc.Ask(context.Background(), session, "question")

	require.True(t, result.Failed())
	assert.ErrorIs(t, result.Err, domain.ErrGenerationFailed)
	assert.Empty(t, session.History())
	assert.Empty(t, history.turns[session.ID])
}

func TestChatService_Ask_RetrievalErrorDegrades(t *testing.T) {
	llm := &mockLLMService{completion: "answer"}
	embedding := &mockEmbeddingService{embedding: []float32{0.1}}
	store := &mockVectorStore{queryErr: errors.New("connection refused")}
	svc := NewChatService(llm, embedding, store, nil, 5)

	result := svc.Ask(context.Background(), newTestSession(), "question")

	require.False(t, result.Failed())
	assert.Empty(t, result.Answer.Sources)
}

func TestChatService_Ask_NoVectorStoreSkipsRetrieval(t *testing.T) {
	llm := &mockLLMService{completion: "answer"}
	svc := NewChatService(llm, nil, nil, nil, 5)

	result := svc.Ask(context.Background(), newTestSession(), "question")

	require.False(t, result.Failed())
	var retrieveStage domain.StageResult
	for _, st := range result.Answer.Stages {
		if st.Stage == domain.StageRetrieve {
			retrieveStage = st
		}
	}
	assert.True(t, retrieveStage.Skipped)
}

func TestChatService_Ask_EmptyQuestion(t *testing.T) {
	svc := NewChatService(&mockLLMService{}, nil, nil, nil, 5)

	result := svc.Ask(context.Background(), newTestSession(), "   ")

	require.True(t, result.Failed())
	assert.ErrorIs(t, result.Err, domain.ErrInvalidInput)
}

func TestChatService_Ask_PersistsTurns(t *testing.T) {
	llm := &mockLLMService{completion: "answer"}
	svc := NewChatService(llm, nil, nil, nil, 5)
	history := newMockHistoryStore()
	svc.SetHistoryStore(history)

	session := newTestSession()
	result := svc.Ask(context.Background(), session, "question")

	require.False(t, result.Failed())
	require.Len(t, history.turns[session.ID], 2)
	assert.Equal(t, "question", history.turns[session.ID][0].Content)
	assert.Equal(t, "answer", history.turns[session.ID][1].Content)
}

func TestChatService_Ask_QueryEmbeddingUsesQueryTask(t *testing.T) {
	llm := &mockLLMService{completion: "answer"}
	embedding := &mockEmbeddingService{embedding: []float32{0.1}}
	store := &mockVectorStore{}
	svc := NewChatService(llm, embedding, store, nil, 5)

	_ = svc.Ask(context.Background(), newTestSession(), "question")

	assert.Equal(t, "retrieval_query", string(embedding.lastTask))
}

func TestChatService_Reconcile(t *testing.T) {
	store := &mockVectorStore{sources: []string{"a.pdf", "b.pdf"}}
	svc := NewChatService(&mockLLMService{}, nil, store, nil, 5)

	session := newTestSession()
	err := svc.Reconcile(context.Background(), session)

	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, session.ProcessedSources())
}

func TestChatService_Reconcile_NoStore(t *testing.T) {
	svc := NewChatService(&mockLLMService{}, nil, nil, nil, 5)

	err := svc.Reconcile(context.Background(), newTestSession())

	assert.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)
}

func TestChatService_Reconcile_StoreErrorIsReturned(t *testing.T) {
	store := &mockVectorStore{sourcesErr: errors.New("unreachable")}
	svc := NewChatService(&mockLLMService{}, nil, store, nil, 5)

	session := newTestSession()
	err := svc.Reconcile(context.Background(), session)

	require.Error(t, err)
	assert.Empty(t, session.ProcessedSources())
}

func TestBuildContext_RetrievalWins(t *testing.T) {
	ctx := buildContext([]domain.ScoredChunk{
		scored("first", "a.pdf", 0.9),
		scored("second", "a.pdf", 0.8),
	}, "web text")

	assert.Equal(t, "first\n\nsecond", ctx)
	assert.False(t, strings.Contains(ctx, "Web Search Results:"))
}

func TestBuildContext_WebOnly(t *testing.T) {
	assert.Equal(t, "Web Search Results:\nweb text", buildContext(nil, "web text"))
}

func TestBuildContext_Empty(t *testing.T) {
	assert.Equal(t, "", buildContext(nil, ""))
}
