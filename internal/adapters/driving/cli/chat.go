package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat-cli/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Launch the interactive terminal interface for conversing with your
documents. Documents can be added mid-conversation with /add.

Controls:
  Enter   - Ask the typed question
  /help   - Show in-chat commands
  Esc     - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if session == nil {
		return errors.New("session not configured")
	}

	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ctx := context.Background()

	// Best-effort: repair the processed-sources list before the session.
	if err := chatService.Reconcile(ctx, session); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not reconcile sources: %v\n", err)
	}

	app, err := tui.NewApp(&tui.Ports{
		Chat:    chatService,
		Ingest:  ingestService,
		Session: session,
	})
	if err != nil {
		return fmt.Errorf("failed to create chat interface: %w", err)
	}

	program := tea.NewProgram(app.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat interface error: %w", err)
	}
	return nil
}
