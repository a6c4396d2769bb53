// Package cli implements the docchat command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by the composition root. Commands guard against nil
// services so partial wiring (e.g. no API key yet) still allows settings
// and version to run.
var (
	ingestService   driving.IngestService
	chatService     driving.ChatService
	settingsService driving.SettingsService
	historyService  driving.HistoryService
	vectorStore     driven.VectorStore
	session         *domain.Session
)

// Services bundles everything the CLI needs from the composition root.
type Services struct {
	Ingest   driving.IngestService
	Chat     driving.ChatService
	Settings driving.SettingsService
	History  driving.HistoryService
	Store    driven.VectorStore
	Session  *domain.Session
}

// SetServices injects the application services into the CLI commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	chatService = s.Chat
	settingsService = s.Settings
	historyService = s.History
	vectorStore = s.Store
	session = s.Session
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents",
	Long: `docchat ingests PDFs and web pages, indexes them in a vector store,
and answers questions about them using retrieval-augmented generation.

Typical flow:
  docchat settings wizard      configure API keys and storage
  docchat add paper.pdf        ingest a document
  docchat ask "What is X?"     ask a one-shot question
  docchat chat                 start an interactive session`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostic output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
