package services

import (
	"context"
	"time"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding  []float32
	embedErr   error
	embedCalls int
	lastTask   driven.EmbeddingTask
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string, task driven.EmbeddingTask) ([]float32, error) {
	m.embedCalls++
	m.lastTask = task
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string, task driven.EmbeddingTask) ([][]float32, error) {
	m.embedCalls++
	m.lastTask = task
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int { return len(m.embedding) }

func (m *mockEmbeddingService) ModelName() string { return "mock-embedding" }

func (m *mockEmbeddingService) Close() error { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	completion    string
	generateErr   error
	rewritten     string
	rewriteErr    error
	lastPrompt    string
	rewriteCalls  int
	generateCalls int
}

func (m *mockLLMService) Generate(_ context.Context, prompt string) (string, error) {
	m.generateCalls++
	m.lastPrompt = prompt
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.completion, nil
}

func (m *mockLLMService) RewriteQuery(_ context.Context, question string) (string, error) {
	m.rewriteCalls++
	if m.rewriteErr != nil {
		return "", m.rewriteErr
	}
	if m.rewritten != "" {
		return m.rewritten, nil
	}
	return question, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Close() error { return nil }

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	results       []domain.ScoredChunk
	sources       []string
	queryErr      error
	upsertErr     error
	ensureErr     error
	sourcesErr    error
	migrated      int
	migrateErr    error
	ensureCalls   int
	upsertCalls   int
	queryCalls    int
	lastK         int
	lastThreshold float64
	upserted      []domain.Chunk
}

func (m *mockVectorStore) EnsureCollection(_ context.Context) error {
	m.ensureCalls++
	return m.ensureErr
}

func (m *mockVectorStore) Upsert(_ context.Context, chunks []domain.Chunk, _ [][]float32) error {
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, chunks...)
	return nil
}

func (m *mockVectorStore) Query(_ context.Context, _ []float32, k int, threshold float64) ([]domain.ScoredChunk, error) {
	m.queryCalls++
	m.lastK = k
	m.lastThreshold = threshold
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if k < len(m.results) {
		return m.results[:k], nil
	}
	return m.results, nil
}

func (m *mockVectorStore) DistinctSources(_ context.Context) ([]string, error) {
	if m.sourcesErr != nil {
		return nil, m.sourcesErr
	}
	return m.sources, nil
}

func (m *mockVectorStore) MigrateLegacyPayloads(_ context.Context) (int, error) {
	return m.migrated, m.migrateErr
}

func (m *mockVectorStore) Close() error { return nil }

// mockWebSearcher implements driven.WebSearcher for testing.
type mockWebSearcher struct {
	results     string
	searchErr   error
	searchCalls int
	lastQuery   string
}

func (m *mockWebSearcher) Search(_ context.Context, query string) (string, error) {
	m.searchCalls++
	m.lastQuery = query
	if m.searchErr != nil {
		return "", m.searchErr
	}
	return m.results, nil
}

// mockLoader implements driven.DocumentLoader for testing.
type mockLoader struct {
	sourceType domain.SourceType
	doc        domain.Document
	loadErr    error
	supports   func(string) bool
}

func (m *mockLoader) Supports(sourceName string) bool {
	if m.supports != nil {
		return m.supports(sourceName)
	}
	return true
}

func (m *mockLoader) Load(_ context.Context, _ string) (domain.Document, error) {
	if m.loadErr != nil {
		return domain.Document{}, m.loadErr
	}
	return m.doc, nil
}

func (m *mockLoader) SourceType() domain.SourceType { return m.sourceType }

// mockHistoryStore implements driven.HistoryStore for testing.
type mockHistoryStore struct {
	sessions  []driven.SessionRecord
	turns     map[string][]domain.ChatTurn
	appendErr error
	listErr   error
	getErr    error
	clearErr  error
}

func newMockHistoryStore() *mockHistoryStore {
	return &mockHistoryStore{turns: make(map[string][]domain.ChatTurn)}
}

func (m *mockHistoryStore) CreateSession(_ context.Context, id string, startedAt time.Time) error {
	m.sessions = append(m.sessions, driven.SessionRecord{ID: id, StartedAt: startedAt})
	return nil
}

func (m *mockHistoryStore) AppendTurn(_ context.Context, sessionID string, turn domain.ChatTurn) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.turns[sessionID] = append(m.turns[sessionID], turn)
	return nil
}

func (m *mockHistoryStore) ListSessions(_ context.Context) ([]driven.SessionRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sessions, nil
}

func (m *mockHistoryStore) GetTurns(_ context.Context, sessionID string) ([]domain.ChatTurn, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	turns, ok := m.turns[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return turns, nil
}

func (m *mockHistoryStore) Clear(_ context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.sessions = nil
	m.turns = make(map[string][]domain.ChatTurn)
	return nil
}

func (m *mockHistoryStore) Close() error { return nil }
