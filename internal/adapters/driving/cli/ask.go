package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askForceWeb bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question",
	Long: `Runs a single turn of the answer pipeline: the question is rewritten
into a search query, matching chunks are retrieved from the index, web
search fills in when nothing matches, and an answer is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askForceWeb, "web", false, "skip retrieval and answer from web search")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if session == nil {
		return errors.New("session not configured")
	}

	ctx := context.Background()

	// Best-effort: repair the processed-sources list before the turn.
	if err := chatService.Reconcile(ctx, session); err != nil {
		cmd.PrintErrf("Warning: could not reconcile sources: %v\n", err)
	}

	session.ForceWebSearch = askForceWeb
	result := chatService.Ask(ctx, session, args[0])
	if result.Failed() {
		return fmt.Errorf("answer failed: %w", result.Err)
	}

	cmd.Println(result.Answer.Content)

	if len(result.Answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		seen := make(map[string]struct{})
		for _, chunk := range result.Answer.Sources {
			name := chunk.Chunk.SourceName
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			cmd.Printf("  %s (%.2f)\n", name, chunk.Score)
		}
	}
	if result.Answer.UsedWebSearch {
		cmd.Println()
		cmd.Println("Answered from web search results.")
	}
	return nil
}
