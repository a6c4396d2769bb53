package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	values  map[string]any
	setErr  error
	saveErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	if v, ok := m.values[key].([]string); ok {
		return v
	}
	return nil
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return m.saveErr }

func (m *mockConfigStore) Load() error { return nil }

func (m *mockConfigStore) Watch(func()) (func(), error) { return func() {}, nil }

func (m *mockConfigStore) Path() string { return "/tmp/config.toml" }

func TestSettingsService_GetSettings_Defaults(t *testing.T) {
	svc := NewSettingsService(newMockConfigStore())

	settings, err := svc.GetSettings()

	require.NoError(t, err)
	assert.Equal(t, domain.StorageModeLocal, settings.Storage.Mode)
	assert.Equal(t, "docchat", settings.Storage.Collection)
	assert.Equal(t, 768, settings.Storage.VectorSize)
	assert.Equal(t, "text-embedding-004", settings.Gemini.EmbeddingModel)
	assert.Equal(t, "gemini-2.0-flash", settings.Gemini.GenerativeModel)
	assert.Equal(t, 1000, settings.Retrieval.ChunkSize)
	assert.Equal(t, 200, settings.Retrieval.ChunkOverlap)
	assert.Equal(t, 5, settings.Retrieval.TopK)
	assert.InDelta(t, 0.7, settings.Retrieval.ScoreThreshold, 1e-9)
}

func TestSettingsService_GetSettings_StoredValuesWin(t *testing.T) {
	store := newMockConfigStore()
	store.values["gemini.api_key"] = "secret"
	store.values["storage.mode"] = "qdrant"
	store.values["storage.qdrant_host"] = "qdrant.example.com"
	store.values["retrieval.score_threshold"] = 0.5
	store.values["web_search.enabled"] = true

	settings, err := NewSettingsService(store).GetSettings()

	require.NoError(t, err)
	assert.Equal(t, "secret", settings.Gemini.APIKey)
	assert.Equal(t, domain.StorageModeQdrant, settings.Storage.Mode)
	assert.Equal(t, "qdrant.example.com", settings.Storage.QdrantHost)
	assert.InDelta(t, 0.5, settings.Retrieval.ScoreThreshold, 1e-9)
	assert.True(t, settings.WebSearch.Enabled)
}

func TestSettingsService_GetSettings_InvalidStoredModeFallsBack(t *testing.T) {
	store := newMockConfigStore()
	store.values["storage.mode"] = "redis"

	settings, err := NewSettingsService(store).GetSettings()

	require.NoError(t, err)
	assert.Equal(t, domain.StorageModeLocal, settings.Storage.Mode)
}

func TestSettingsService_UpdateSettings(t *testing.T) {
	store := newMockConfigStore()
	svc := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	settings.Gemini.APIKey = "new-key"
	settings.Storage.Mode = domain.StorageModeQdrant
	settings.Storage.QdrantHost = "localhost"
	settings.Retrieval.ScoreThreshold = 0.6

	require.NoError(t, svc.UpdateSettings(settings))

	assert.Equal(t, "new-key", store.values["gemini.api_key"])
	assert.Equal(t, "qdrant", store.values["storage.mode"])
	assert.Equal(t, 0.6, store.values["retrieval.score_threshold"])
}

// A blank credential never overwrites a stored one.
func TestSettingsService_UpdateSettings_KeepsStoredCredential(t *testing.T) {
	store := newMockConfigStore()
	store.values["gemini.api_key"] = "existing"
	svc := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	require.NoError(t, svc.UpdateSettings(settings))

	assert.Equal(t, "existing", store.values["gemini.api_key"])
}

func TestSettingsService_UpdateSettings_RejectsBadThreshold(t *testing.T) {
	svc := NewSettingsService(newMockConfigStore())

	settings := domain.DefaultAppSettings()
	settings.Retrieval.ScoreThreshold = 1.5

	assert.ErrorIs(t, svc.UpdateSettings(settings), domain.ErrInvalidInput)
}

func TestSettingsService_UpdateSettings_RejectsBadMode(t *testing.T) {
	svc := NewSettingsService(newMockConfigStore())

	settings := domain.DefaultAppSettings()
	settings.Storage.Mode = domain.StorageMode("bogus")

	assert.ErrorIs(t, svc.UpdateSettings(settings), domain.ErrInvalidInput)
}

func TestSettingsService_SetValue(t *testing.T) {
	store := newMockConfigStore()
	svc := NewSettingsService(store)

	require.NoError(t, svc.SetValue("retrieval.top_k", 10))
	assert.Equal(t, 10, store.values["retrieval.top_k"])

	assert.ErrorIs(t, svc.SetValue("", 1), domain.ErrInvalidInput)
}
