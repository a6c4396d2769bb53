package services

import (
	"fmt"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyGeminiAPIKey   = "gemini.api_key"
	keyGeminiEmbed    = "gemini.embedding_model"
	keyGeminiGenerate = "gemini.generative_model"
	keyStorageMode    = "storage.mode"
	keyQdrantHost     = "storage.qdrant_host"
	keyQdrantPort     = "storage.qdrant_port"
	keyQdrantAPIKey   = "storage.qdrant_api_key"
	keyCollection     = "storage.collection"
	keyVectorSize     = "storage.vector_size"
	keyWebEnabled     = "web_search.enabled"
	keyWebAPIKey      = "web_search.api_key"
	keyWebDomains     = "web_search.include_domains"
	keyChunkSize      = "retrieval.chunk_size"
	keyChunkOverlap   = "retrieval.chunk_overlap"
	keyTopK           = "retrieval.top_k"
	keyScoreThreshold = "retrieval.score_threshold"
)

// SettingsService manages application settings on top of the config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// GetSettings retrieves current application settings with defaults applied.
func (s *SettingsService) GetSettings() (domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := domain.AppSettings{
		Gemini: domain.GeminiSettings{
			APIKey:          s.configStore.GetString(keyGeminiAPIKey),
			EmbeddingModel:  s.getString(keyGeminiEmbed, defaults.Gemini.EmbeddingModel),
			GenerativeModel: s.getString(keyGeminiGenerate, defaults.Gemini.GenerativeModel),
		},
		Storage: domain.StorageSettings{
			Mode:         s.getStorageMode(defaults.Storage.Mode),
			QdrantHost:   s.getString(keyQdrantHost, defaults.Storage.QdrantHost),
			QdrantPort:   s.getInt(keyQdrantPort, defaults.Storage.QdrantPort),
			QdrantAPIKey: s.configStore.GetString(keyQdrantAPIKey),
			Collection:   s.getString(keyCollection, defaults.Storage.Collection),
			VectorSize:   s.getInt(keyVectorSize, defaults.Storage.VectorSize),
		},
		WebSearch: domain.WebSearchSettings{
			Enabled:        s.getBool(keyWebEnabled, defaults.WebSearch.Enabled),
			APIKey:         s.configStore.GetString(keyWebAPIKey),
			IncludeDomains: s.getStringSlice(keyWebDomains, defaults.WebSearch.IncludeDomains),
		},
		Retrieval: domain.RetrievalSettings{
			ChunkSize:      s.getInt(keyChunkSize, defaults.Retrieval.ChunkSize),
			ChunkOverlap:   s.getInt(keyChunkOverlap, defaults.Retrieval.ChunkOverlap),
			TopK:           s.getInt(keyTopK, defaults.Retrieval.TopK),
			ScoreThreshold: s.getFloat(keyScoreThreshold, defaults.Retrieval.ScoreThreshold),
		},
	}

	return settings, nil
}

// UpdateSettings persists the given settings.
func (s *SettingsService) UpdateSettings(settings domain.AppSettings) error {
	if !settings.Storage.Mode.IsValid() {
		return fmt.Errorf("invalid storage mode %q: %w", settings.Storage.Mode, domain.ErrInvalidInput)
	}
	if settings.Retrieval.ScoreThreshold < 0 || settings.Retrieval.ScoreThreshold > 1 {
		return fmt.Errorf("score threshold must be in [0,1]: %w", domain.ErrInvalidInput)
	}

	values := map[string]any{
		keyGeminiEmbed:    settings.Gemini.EmbeddingModel,
		keyGeminiGenerate: settings.Gemini.GenerativeModel,
		keyStorageMode:    settings.Storage.Mode.String(),
		keyQdrantHost:     settings.Storage.QdrantHost,
		keyQdrantPort:     settings.Storage.QdrantPort,
		keyCollection:     settings.Storage.Collection,
		keyVectorSize:     settings.Storage.VectorSize,
		keyWebEnabled:     settings.WebSearch.Enabled,
		keyWebDomains:     settings.WebSearch.IncludeDomains,
		keyChunkSize:      settings.Retrieval.ChunkSize,
		keyChunkOverlap:   settings.Retrieval.ChunkOverlap,
		keyTopK:           settings.Retrieval.TopK,
		keyScoreThreshold: settings.Retrieval.ScoreThreshold,
	}

	// Credentials are only written when set, so a blank wizard pass
	// cannot wipe a stored key.
	if settings.Gemini.APIKey != "" {
		values[keyGeminiAPIKey] = settings.Gemini.APIKey
	}
	if settings.Storage.QdrantAPIKey != "" {
		values[keyQdrantAPIKey] = settings.Storage.QdrantAPIKey
	}
	if settings.WebSearch.APIKey != "" {
		values[keyWebAPIKey] = settings.WebSearch.APIKey
	}

	for key, value := range values {
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// SetValue sets a single configuration value by dot-notation key.
func (s *SettingsService) SetValue(key string, value any) error {
	if key == "" {
		return fmt.Errorf("empty key: %w", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetInt(key)
	}
	return fallback
}

func (s *SettingsService) getFloat(key string, fallback float64) float64 {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetFloat(key)
	}
	return fallback
}

func (s *SettingsService) getBool(key string, fallback bool) bool {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetBool(key)
	}
	return fallback
}

func (s *SettingsService) getStringSlice(key string, fallback []string) []string {
	if v := s.configStore.GetStringSlice(key); len(v) > 0 {
		return v
	}
	return fallback
}

func (s *SettingsService) getStorageMode(fallback domain.StorageMode) domain.StorageMode {
	mode := domain.StorageMode(s.configStore.GetString(keyStorageMode))
	if mode.IsValid() {
		return mode
	}
	return fallback
}
