// Command docchat is a retrieval-augmented chat CLI for PDFs and web pages.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/config/file"
	embeddinggemini "github.com/custodia-labs/docchat-cli/internal/adapters/driven/embedding/gemini"
	llmgemini "github.com/custodia-labs/docchat-cli/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/vectorstore/chromem"
	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/vectorstore/qdrant"
	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/websearch/exa"
	"github.com/custodia-labs/docchat-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/docchat-cli/internal/chunker"
	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/services"
	"github.com/custodia-labs/docchat-cli/internal/loaders/pdf"
	"github.com/custodia-labs/docchat-cli/internal/loaders/web"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Configuration and prompts live under ~/.docchat.
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialising config store: %w", err)
	}

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("initialising prompt store: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.GetSettings()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	// External config edits are picked up without a restart; prompt files
	// are re-read so the next turn sees the new templates.
	stopWatch, err := configStore.Watch(func() {
		promptStore.Reload()
	})
	if err != nil {
		logger.Warn("Config watching unavailable: %v", err)
	} else {
		defer stopWatch()
	}

	session := domain.NewSession(uuid.NewString(), settings.Retrieval.ScoreThreshold)
	session.WebSearchEnabled = settings.WebSearch.Enabled && settings.WebSearch.IsConfigured()

	// The Gemini adapters share one rate limiter so embedding and
	// generation calls draw from the same free-tier budget.
	limiter := ratelimit.NewFreeTier()

	var embeddingService driven.EmbeddingService
	var llmService driven.LLMService
	if settings.Gemini.IsConfigured() {
		embeddingService, err = embeddinggemini.New(ctx, embeddinggemini.Config{
			APIKey:     settings.Gemini.APIKey,
			Model:      settings.Gemini.EmbeddingModel,
			Dimensions: settings.Storage.VectorSize,
			Limiter:    limiter,
		})
		if err != nil {
			return fmt.Errorf("initialising embedding service: %w", err)
		}
		defer embeddingService.Close()

		llm, err := llmgemini.New(ctx, llmgemini.Config{
			APIKey:  settings.Gemini.APIKey,
			Model:   settings.Gemini.GenerativeModel,
			Limiter: limiter,
		})
		if err != nil {
			return fmt.Errorf("initialising llm service: %w", err)
		}
		llm.SetPromptStore(promptStore)
		llmService = llm
		defer llmService.Close()
	} else {
		logger.Warn("Gemini API key not set; run 'docchat settings wizard'")
	}

	vectorStore, err := buildVectorStore(settings.Storage)
	if err != nil {
		logger.Warn("Vector store unavailable: %v", err)
		vectorStore = nil
	} else {
		defer vectorStore.Close()
	}

	var searcher driven.WebSearcher
	if settings.WebSearch.IsConfigured() {
		exaSearcher, err := exa.New(exa.Config{
			APIKey:         settings.WebSearch.APIKey,
			IncludeDomains: settings.WebSearch.IncludeDomains,
		})
		if err != nil {
			logger.Warn("Web search unavailable: %v", err)
		} else {
			searcher = exaSearcher
		}
	}

	historyStore, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("History persistence unavailable: %v", err)
	} else {
		defer historyStore.Close()
	}

	splitter := chunker.New(
		chunker.WithChunkSize(settings.Retrieval.ChunkSize),
		chunker.WithOverlap(settings.Retrieval.ChunkOverlap),
	)
	loaders := []driven.DocumentLoader{
		pdf.New(),
		web.New(),
	}

	ingestService := services.NewIngestService(loaders, splitter, embeddingService, vectorStore)

	chatService := services.NewChatService(
		llmService, embeddingService, vectorStore, searcher, settings.Retrieval.TopK,
	)
	chatService.SetPromptStore(promptStore)
	if historyStore != nil {
		chatService.SetHistoryStore(historyStore)
		if err := historyStore.CreateSession(ctx, session.ID, session.StartedAt); err != nil {
			logger.Warn("Could not register session: %v", err)
		}
	}

	var historyService *services.HistoryService
	if historyStore != nil {
		historyService = services.NewHistoryService(historyStore)
	}

	cli.SetVersion(version)
	cliServices := cli.Services{
		Ingest:   ingestService,
		Chat:     chatService,
		Settings: settingsService,
		Store:    vectorStore,
		Session:  session,
	}
	if historyService != nil {
		cliServices.History = historyService
	}
	cli.SetServices(cliServices)

	return cli.Execute()
}

// buildVectorStore constructs the store selected by the storage mode.
func buildVectorStore(cfg domain.StorageSettings) (driven.VectorStore, error) {
	switch cfg.Mode {
	case domain.StorageModeQdrant:
		store, err := qdrant.New(qdrant.Config{
			Host:       cfg.QdrantHost,
			Port:       cfg.QdrantPort,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.Collection,
			VectorSize: cfg.VectorSize,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case domain.StorageModeLocal:
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		store, err := chromem.New(chromem.Config{
			Path:       filepath.Join(home, ".docchat", "data", "vectors"),
			Collection: cfg.Collection,
			VectorSize: cfg.VectorSize,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.Mode)
	}
}
