package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure API keys, storage, web search, and retrieval options.

Use subcommands to set individual values or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single configuration value",
	Long: `Set one configuration value by its dot-notation key.

Examples:
  docchat settings set retrieval.top_k 8
  docchat settings set storage.mode qdrant
  docchat settings set web_search.enabled true`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Gemini]")
	if settings.Gemini.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Gemini.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Embedding Model: %s\n", settings.Gemini.EmbeddingModel)
	cmd.Printf("  Generative Model: %s\n", settings.Gemini.GenerativeModel)
	status := "configured"
	if !settings.Gemini.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Mode: %s\n", settings.Storage.Mode.Description())
	if settings.Storage.Mode.RequiresServer() {
		cmd.Printf("  Qdrant Host: %s\n", settings.Storage.QdrantHost)
		cmd.Printf("  Qdrant Port: %d\n", settings.Storage.QdrantPort)
		if settings.Storage.QdrantAPIKey != "" {
			cmd.Printf("  Qdrant API Key: %s\n", maskAPIKey(settings.Storage.QdrantAPIKey))
		}
	}
	cmd.Printf("  Collection: %s\n", settings.Storage.Collection)
	cmd.Printf("  Vector Size: %d\n", settings.Storage.VectorSize)
	cmd.Println()

	cmd.Println("[Web Search]")
	if settings.WebSearch.Enabled {
		cmd.Printf("  Enabled: yes\n")
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	if settings.WebSearch.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.WebSearch.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	if len(settings.WebSearch.IncludeDomains) > 0 {
		cmd.Printf("  Domains: %s\n", strings.Join(settings.WebSearch.IncludeDomains, ", "))
	}
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Chunk Size: %d\n", settings.Retrieval.ChunkSize)
	cmd.Printf("  Chunk Overlap: %d\n", settings.Retrieval.ChunkOverlap)
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Score Threshold: %.2f\n", settings.Retrieval.ScoreThreshold)
	cmd.Println()

	if !settings.Gemini.IsConfigured() {
		cmd.Println("Run 'docchat settings wizard' to finish configuration.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("docchat Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	// Step 1: Gemini API
	cmd.Println("Step 1: Gemini API")
	cmd.Println("------------------")
	cmd.Print("Enter Gemini API key")
	if settings.Gemini.APIKey != "" {
		cmd.Printf(" [%s]", maskAPIKey(settings.Gemini.APIKey))
	}
	cmd.Print(": ")
	if key := readPassword(); key != "" {
		settings.Gemini.APIKey = key
	}
	cmd.Println()

	cmd.Printf("Embedding model [%s]: ", settings.Gemini.EmbeddingModel)
	if model := readLine(reader); model != "" {
		settings.Gemini.EmbeddingModel = model
	}
	cmd.Printf("Generative model [%s]: ", settings.Gemini.GenerativeModel)
	if model := readLine(reader); model != "" {
		settings.Gemini.GenerativeModel = model
	}
	cmd.Println()

	// Step 2: Storage
	cmd.Println("Step 2: Vector Storage")
	cmd.Println("----------------------")
	modes := domain.AllStorageModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(modes), 1)
	settings.Storage.Mode = modes[idx-1]

	if settings.Storage.Mode.RequiresServer() {
		cmd.Printf("Qdrant host [%s]: ", settings.Storage.QdrantHost)
		if host := readLine(reader); host != "" {
			settings.Storage.QdrantHost = host
		}
		cmd.Printf("Qdrant port [%d]: ", settings.Storage.QdrantPort)
		if port := readLine(reader); port != "" {
			if p, err := strconv.Atoi(port); err == nil && p > 0 {
				settings.Storage.QdrantPort = p
			}
		}
		cmd.Print("Qdrant API key (empty for unauthenticated): ")
		if key := readPassword(); key != "" {
			settings.Storage.QdrantAPIKey = key
		}
		cmd.Println()
	}
	cmd.Println()

	// Step 3: Web Search
	cmd.Println("Step 3: Web Search Fallback")
	cmd.Println("---------------------------")
	cmd.Print("Enable web search fallback? [y/N]: ")
	settings.WebSearch.Enabled = strings.EqualFold(readLine(reader), "y")
	if settings.WebSearch.Enabled {
		cmd.Print("Enter Exa API key")
		if settings.WebSearch.APIKey != "" {
			cmd.Printf(" [%s]", maskAPIKey(settings.WebSearch.APIKey))
		}
		cmd.Print(": ")
		if key := readPassword(); key != "" {
			settings.WebSearch.APIKey = key
		}
		cmd.Println()
		if settings.WebSearch.APIKey == "" {
			return errors.New("an API key is required for web search")
		}
	}
	cmd.Println()

	if err := settingsService.UpdateSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Println("All settings saved.")
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, raw := args[0], args[1]
	if err := settingsService.SetValue(key, coerceValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

// coerceValue guesses the value type from its shape so numeric and boolean
// settings round-trip through TOML with their proper types.
func coerceValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
