package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

var addCmd = &cobra.Command{
	Use:   "add [source...]",
	Short: "Ingest documents into the index",
	Long: `Extracts text from PDF files or web pages, splits it into chunks,
embeds the chunks, and indexes them in the configured vector store.

Sources can be local PDF paths or http(s) URLs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if session == nil {
		return errors.New("session not configured")
	}

	ctx := context.Background()

	// Best-effort: learn what the store already holds so a fresh process
	// does not re-ingest and duplicate chunks.
	if chatService != nil {
		if err := chatService.Reconcile(ctx, session); err != nil {
			cmd.PrintErrf("Warning: could not reconcile sources: %v\n", err)
		}
	}

	var failed int
	for _, source := range args {
		result, err := ingestService.Ingest(ctx, session, source)
		switch {
		case errors.Is(err, domain.ErrAlreadyProcessed):
			cmd.Printf("Skipped %s (already indexed)\n", source)
		case err != nil:
			cmd.PrintErrf("Failed to ingest %s: %v\n", source, err)
			failed++
		default:
			cmd.Printf("Ingested %s (%s, %d chunks)\n", result.SourceName, result.SourceType, result.ChunkCount)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(args))
	}
	return nil
}
