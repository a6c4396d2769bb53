package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
)

// setupTestServices injects mock services into the command package and
// returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	prevIngest := ingestService
	prevChat := chatService
	prevSettings := settingsService
	prevHistory := historyService
	prevStore := vectorStore
	prevSession := session

	SetServices(Services{
		Ingest:   &mockIngestService{},
		Chat:     &mockChatService{},
		Settings: &mockSettingsService{},
		History:  &mockHistoryService{},
		Store:    &mockVectorStore{},
		Session:  domain.NewSession("test-session", 0.7),
	})

	return func() {
		ingestService = prevIngest
		chatService = prevChat
		settingsService = prevSettings
		historyService = prevHistory
		vectorStore = prevStore
		session = prevSession
	}
}

type mockIngestService struct {
	err error
}

func (m *mockIngestService) Ingest(_ context.Context, s *domain.Session, sourceName string) (driving.IngestResult, error) {
	if m.err != nil {
		return driving.IngestResult{}, m.err
	}
	if s.IsProcessed(sourceName) {
		return driving.IngestResult{}, domain.ErrAlreadyProcessed
	}
	return driving.IngestResult{
		SourceType: domain.SourcePDF,
		SourceName: sourceName,
		ChunkCount: 3,
	}, nil
}

type mockChatService struct {
	result           *domain.TurnResult
	reconcileErr     error
	reconcileSources []string
}

func (m *mockChatService) Ask(_ context.Context, _ *domain.Session, question string) domain.TurnResult {
	if m.result != nil {
		return *m.result
	}
	return domain.TurnResult{
		Question: question,
		Answer: domain.Answer{
			Content:        "A mocked answer.",
			RewrittenQuery: question,
			Sources: []domain.ScoredChunk{
				{Chunk: domain.Chunk{SourceName: "paper.pdf"}, Score: 0.91},
			},
		},
	}
}

func (m *mockChatService) Reconcile(_ context.Context, s *domain.Session) error {
	if m.reconcileErr != nil {
		return m.reconcileErr
	}
	s.Reconcile(m.reconcileSources)
	return nil
}

type mockSettingsService struct {
	updated *domain.AppSettings
	setKey  string
	setVal  any
	err     error
}

func (m *mockSettingsService) GetSettings() (domain.AppSettings, error) {
	if m.err != nil {
		return domain.AppSettings{}, m.err
	}
	settings := domain.DefaultAppSettings()
	settings.Gemini.APIKey = "AIzaSyTestKey1234567890"
	return settings, nil
}

func (m *mockSettingsService) UpdateSettings(settings domain.AppSettings) error {
	m.updated = &settings
	return m.err
}

func (m *mockSettingsService) SetValue(key string, value any) error {
	m.setKey = key
	m.setVal = value
	return m.err
}

type mockHistoryService struct {
	sessions []driven.SessionRecord
	turns    []domain.ChatTurn
	cleared  bool
	err      error
}

func (m *mockHistoryService) ListSessions(_ context.Context) ([]driven.SessionRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.sessions == nil {
		return []driven.SessionRecord{
			{ID: "s1", StartedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), TurnCount: 2},
		}, nil
	}
	return m.sessions, nil
}

func (m *mockHistoryService) GetTranscript(_ context.Context, _ string) ([]domain.ChatTurn, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.turns == nil {
		return []domain.ChatTurn{
			{Role: domain.RoleUser, Content: "What is attention?"},
			{Role: domain.RoleAssistant, Content: "A weighting mechanism."},
		}, nil
	}
	return m.turns, nil
}

func (m *mockHistoryService) Clear(_ context.Context) error {
	m.cleared = true
	return m.err
}

type mockVectorStore struct {
	sources  []string
	migrated int
	err      error
}

func (m *mockVectorStore) EnsureCollection(_ context.Context) error { return m.err }

func (m *mockVectorStore) Upsert(_ context.Context, _ []domain.Chunk, _ [][]float32) error {
	return m.err
}

func (m *mockVectorStore) Query(_ context.Context, _ []float32, _ int, _ float64) ([]domain.ScoredChunk, error) {
	return nil, m.err
}

func (m *mockVectorStore) DistinctSources(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.sources == nil {
		return []string{"https://example.com/post", "paper.pdf"}, nil
	}
	return m.sources, nil
}

func (m *mockVectorStore) MigrateLegacyPayloads(_ context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.migrated, nil
}

func (m *mockVectorStore) Close() error { return nil }
